package postgres

import (
	"context"
	"tripsettle/pkg/logger"
	"tripsettle/pkg/models"
	"tripsettle/storage"

	"github.com/jackc/pgx/v5/pgxpool"
)

const tripColumns = `id, trip_date, client_name, product_name, carrier_id, driver_id, vehicle_id, origin_id, destination_id,
	loading_address, unloading_address, status, line, particularity, unloading_lat, unloading_lng,
	completed_at, created_at, updated_at`

type tripRepo struct {
	db  *pgxpool.Pool
	log logger.ILogger
}

func NewTripRepo(db *pgxpool.Pool, log logger.ILogger) storage.ITripStorage {
	return &tripRepo{db: db, log: log}
}

func (r *tripRepo) Create(ctx context.Context, trip *models.Trip) (*models.Trip, error) {
	lat, lng := splitCoordinate(trip.UnloadingCoordinate)
	query := `
		INSERT INTO trips (trip_date, client_name, product_name, carrier_id, driver_id, vehicle_id, origin_id, destination_id,
			loading_address, unloading_address, status, line, particularity, unloading_lat, unloading_lng, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		trip.Date,
		trip.ClientName,
		trip.ProductName,
		trip.CarrierID,
		trip.DriverID,
		trip.VehicleID,
		trip.OriginID,
		trip.DestinationID,
		trip.LoadingAddress,
		trip.UnloadingAddress,
		trip.Status,
		trip.Line,
		trip.Particularity,
		lat,
		lng,
		trip.CompletedAt,
	).Scan(&trip.ID, &trip.CreatedAt, &trip.UpdatedAt)

	if err != nil {
		r.log.Error("failed to create trip", logger.Error(err))
		return nil, mapErr(err)
	}

	return trip, nil
}

func (r *tripRepo) Update(ctx context.Context, trip *models.Trip) (*models.Trip, error) {
	lat, lng := splitCoordinate(trip.UnloadingCoordinate)
	query := `
		UPDATE trips
		SET trip_date = $1, client_name = $2, product_name = $3, carrier_id = $4, driver_id = $5, vehicle_id = $6,
			origin_id = $7, destination_id = $8, loading_address = $9, unloading_address = $10, status = $11,
			line = $12, particularity = $13, unloading_lat = $14, unloading_lng = $15, completed_at = $16,
			updated_at = NOW()
		WHERE id = $17
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		trip.Date,
		trip.ClientName,
		trip.ProductName,
		trip.CarrierID,
		trip.DriverID,
		trip.VehicleID,
		trip.OriginID,
		trip.DestinationID,
		trip.LoadingAddress,
		trip.UnloadingAddress,
		trip.Status,
		trip.Line,
		trip.Particularity,
		lat,
		lng,
		trip.CompletedAt,
		trip.ID,
	).Scan(&trip.CreatedAt, &trip.UpdatedAt)

	if err != nil {
		r.log.Error("failed to update trip", logger.Int64("id", trip.ID), logger.Error(err))
		return nil, mapErr(err)
	}

	return trip, nil
}

func (r *tripRepo) GetByID(ctx context.Context, id int64) (*models.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE id = $1`
	trip, err := scanTrip(r.db.QueryRow(ctx, query, id))
	if err != nil {
		r.log.Error("failed to get trip by id", logger.Int64("id", id), logger.Error(err))
		return nil, mapErr(err)
	}
	return trip, nil
}

func (r *tripRepo) GetAll(ctx context.Context) ([]*models.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips ORDER BY trip_date DESC, id DESC`
	return r.scanTrips(ctx, query)
}

func (r *tripRepo) GetByStatus(ctx context.Context, status models.TripStatus) ([]*models.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE status = $1 ORDER BY trip_date DESC, id DESC`
	return r.scanTrips(ctx, query, status)
}

func (r *tripRepo) scanTrips(ctx context.Context, query string, args ...interface{}) ([]*models.Trip, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("failed to list trips", logger.Error(err))
		return nil, err
	}
	defer rows.Close()

	var trips []*models.Trip
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		trips = append(trips, t)
	}
	return trips, rows.Err()
}

func scanTrip(row rowScanner) (*models.Trip, error) {
	var (
		t        models.Trip
		lat, lng *float64
	)
	err := row.Scan(
		&t.ID, &t.Date, &t.ClientName, &t.ProductName, &t.CarrierID, &t.DriverID, &t.VehicleID, &t.OriginID, &t.DestinationID,
		&t.LoadingAddress, &t.UnloadingAddress, &t.Status, &t.Line, &t.Particularity, &lat, &lng,
		&t.CompletedAt, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.UnloadingCoordinate = joinCoordinate(lat, lng)
	return &t, nil
}

func splitCoordinate(c *models.Coordinate) (lat, lng *float64) {
	if c == nil {
		return nil, nil
	}
	la, ln := c.Lat, c.Lng
	return &la, &ln
}

func joinCoordinate(lat, lng *float64) *models.Coordinate {
	if lat == nil || lng == nil {
		return nil
	}
	return &models.Coordinate{Lat: *lat, Lng: *lng}
}
