package postgres

import (
	"context"
	"tripsettle/pkg/logger"
	"tripsettle/pkg/models"
	"tripsettle/storage"

	"github.com/jackc/pgx/v5/pgxpool"
)

type driverRepo struct {
	db  *pgxpool.Pool
	log logger.ILogger
}

func NewDriverRepo(db *pgxpool.Pool, log logger.ILogger) storage.IDriverStorage {
	return &driverRepo{db: db, log: log}
}

func (r *driverRepo) GetActive(ctx context.Context) ([]*models.Driver, error) {
	query := `SELECT id, full_name, phone, carrier_id, active, created_at FROM drivers WHERE active ORDER BY id ASC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.log.Error("failed to list drivers", logger.Error(err))
		return nil, err
	}
	defer rows.Close()

	var drivers []*models.Driver
	for rows.Next() {
		var d models.Driver
		if err := rows.Scan(&d.ID, &d.FullName, &d.Phone, &d.CarrierID, &d.Active, &d.CreatedAt); err != nil {
			return nil, err
		}
		drivers = append(drivers, &d)
	}
	return drivers, rows.Err()
}

func (r *driverRepo) GetByID(ctx context.Context, id int64) (*models.Driver, error) {
	var d models.Driver
	query := `SELECT id, full_name, phone, carrier_id, active, created_at FROM drivers WHERE id = $1`
	err := r.db.QueryRow(ctx, query, id).Scan(&d.ID, &d.FullName, &d.Phone, &d.CarrierID, &d.Active, &d.CreatedAt)
	if err != nil {
		r.log.Error("failed to get driver by id", logger.Int64("id", id), logger.Error(err))
		return nil, mapErr(err)
	}
	return &d, nil
}

func (r *driverRepo) Create(ctx context.Context, driver *models.Driver) (*models.Driver, error) {
	query := `
		INSERT INTO drivers (full_name, phone, carrier_id, active)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query, driver.FullName, driver.Phone, driver.CarrierID, driver.Active).
		Scan(&driver.ID, &driver.CreatedAt)
	if err != nil {
		r.log.Error("failed to create driver", logger.Error(err))
		return nil, mapErr(err)
	}
	return driver, nil
}

func (r *driverRepo) LastUnloadingCoordinates(ctx context.Context) (map[int64]models.Coordinate, error) {
	query := `
		SELECT DISTINCT ON (driver_id) driver_id, unloading_lat, unloading_lng
		FROM trips
		WHERE driver_id IS NOT NULL
		  AND completed_at IS NOT NULL
		  AND unloading_lat IS NOT NULL
		  AND unloading_lng IS NOT NULL
		  AND status = ANY($1)
		ORDER BY driver_id, completed_at DESC, id DESC
	`
	rows, err := r.db.Query(ctx, query, completedStatuses())
	if err != nil {
		r.log.Error("failed to load last unloading points", logger.Error(err))
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64]models.Coordinate)
	for rows.Next() {
		var (
			id int64
			c  models.Coordinate
		)
		if err := rows.Scan(&id, &c.Lat, &c.Lng); err != nil {
			return nil, err
		}
		out[id] = c
	}
	return out, rows.Err()
}

func completedStatuses() []string {
	var out []string
	for _, s := range models.TripStatuses {
		if s.Completed() {
			out = append(out, string(s))
		}
	}
	return out
}
