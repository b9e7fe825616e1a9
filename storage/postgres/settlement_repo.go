package postgres

import (
	"context"
	"tripsettle/pkg/logger"
	"tripsettle/pkg/models"
	"tripsettle/storage"

	"github.com/jackc/pgx/v5/pgxpool"
)

const settlementColumns = `id, source_trip_id, settlement_date, client_id, product_id, origin_id, destination_id,
	carrier_id, driver_id, vehicle_id,
	tare_origin, gross_origin, tare_destination, gross_destination, net_origin, net_destination, weight_difference,
	tons_source, tons_delivered,
	tariff_rule_id, tariff_rate, tariff_rate_basis, third_party_rate, third_party_rate_basis,
	trip_amount, third_party_amount, tariff_validity, tariff_pending,
	client_payment_status, carrier_payment_status, created_at, updated_at`

type settlementRepo struct {
	db  *pgxpool.Pool
	log logger.ILogger
}

func NewSettlementRepo(db *pgxpool.Pool, log logger.ILogger) storage.ISettlementStorage {
	return &settlementRepo{db: db, log: log}
}

func (r *settlementRepo) Create(ctx context.Context, s *models.Settlement) (*models.Settlement, error) {
	query := `
		INSERT INTO settlements (source_trip_id, settlement_date, client_id, product_id, origin_id, destination_id,
			carrier_id, driver_id, vehicle_id,
			tare_origin, gross_origin, tare_destination, gross_destination, net_origin, net_destination, weight_difference,
			tons_source, tons_delivered,
			tariff_rule_id, tariff_rate, tariff_rate_basis, third_party_rate, third_party_rate_basis,
			trip_amount, third_party_amount, tariff_validity, tariff_pending,
			client_payment_status, carrier_payment_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20,
			$21, $22, $23, $24, $25, $26, $27, $28, $29)
		RETURNING id, created_at, updated_at
	`
	args := append([]interface{}{s.SourceTripID}, settlementValues(s)...)
	err := r.db.QueryRow(ctx, query, args...).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		r.log.Error("failed to create settlement", logger.Int64("source_trip_id", s.SourceTripID), logger.Error(err))
		return nil, mapErr(err)
	}
	return s, nil
}

func (r *settlementRepo) Update(ctx context.Context, s *models.Settlement) (*models.Settlement, error) {
	query := `
		UPDATE settlements
		SET settlement_date = $1, client_id = $2, product_id = $3, origin_id = $4, destination_id = $5,
			carrier_id = $6, driver_id = $7, vehicle_id = $8,
			tare_origin = $9, gross_origin = $10, tare_destination = $11, gross_destination = $12,
			net_origin = $13, net_destination = $14, weight_difference = $15,
			tons_source = $16, tons_delivered = $17,
			tariff_rule_id = $18, tariff_rate = $19, tariff_rate_basis = $20,
			third_party_rate = $21, third_party_rate_basis = $22,
			trip_amount = $23, third_party_amount = $24, tariff_validity = $25, tariff_pending = $26,
			client_payment_status = $27, carrier_payment_status = $28,
			updated_at = NOW()
		WHERE id = $29
		RETURNING source_trip_id, created_at, updated_at
	`
	args := append(settlementValues(s), s.ID)
	err := r.db.QueryRow(ctx, query, args...).Scan(&s.SourceTripID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		r.log.Error("failed to update settlement", logger.Int64("id", s.ID), logger.Error(err))
		return nil, mapErr(err)
	}
	return s, nil
}

func (r *settlementRepo) GetByID(ctx context.Context, id int64) (*models.Settlement, error) {
	query := `SELECT ` + settlementColumns + ` FROM settlements WHERE id = $1`
	s, err := scanSettlement(r.db.QueryRow(ctx, query, id))
	if err != nil {
		r.log.Error("failed to get settlement by id", logger.Int64("id", id), logger.Error(err))
		return nil, mapErr(err)
	}
	return s, nil
}

func (r *settlementRepo) GetBySourceTrip(ctx context.Context, tripID int64) (*models.Settlement, error) {
	query := `SELECT ` + settlementColumns + ` FROM settlements WHERE source_trip_id = $1`
	s, err := scanSettlement(r.db.QueryRow(ctx, query, tripID))
	if err != nil {
		return nil, mapErr(err)
	}
	return s, nil
}

func (r *settlementRepo) GetAll(ctx context.Context) ([]*models.Settlement, error) {
	query := `SELECT ` + settlementColumns + ` FROM settlements ORDER BY settlement_date DESC, id DESC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.log.Error("failed to list settlements", logger.Error(err))
		return nil, err
	}
	defer rows.Close()

	var out []*models.Settlement
	for rows.Next() {
		s, err := scanSettlement(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// settlementValues lists the mutable columns in the order shared by the
// insert and update statements.
func settlementValues(s *models.Settlement) []interface{} {
	w := s.Weights
	return []interface{}{
		s.Date, s.ClientID, s.ProductID, s.OriginID, s.DestinationID,
		s.CarrierID, s.DriverID, s.VehicleID,
		w.TareOrigin, w.GrossOrigin, w.TareDestination, w.GrossDestination,
		w.NetOrigin, w.NetDestination, w.WeightDifference,
		w.Tons.Source, w.Tons.Value,
		s.TariffRuleID, s.TariffRate.Value, s.TariffRate.Basis,
		s.ThirdPartyRate.Value, s.ThirdPartyRate.Basis,
		s.Amounts.TripAmount, s.Amounts.ThirdPartyAmount, s.TariffValidity, s.TariffPending,
		s.ClientPaymentStatus, s.CarrierPaymentStatus,
	}
}

func scanSettlement(row rowScanner) (*models.Settlement, error) {
	var s models.Settlement
	w := &s.Weights
	err := row.Scan(
		&s.ID, &s.SourceTripID, &s.Date, &s.ClientID, &s.ProductID, &s.OriginID, &s.DestinationID,
		&s.CarrierID, &s.DriverID, &s.VehicleID,
		&w.TareOrigin, &w.GrossOrigin, &w.TareDestination, &w.GrossDestination,
		&w.NetOrigin, &w.NetDestination, &w.WeightDifference,
		&w.Tons.Source, &w.Tons.Value,
		&s.TariffRuleID, &s.TariffRate.Value, &s.TariffRate.Basis,
		&s.ThirdPartyRate.Value, &s.ThirdPartyRate.Basis,
		&s.Amounts.TripAmount, &s.Amounts.ThirdPartyAmount, &s.TariffValidity, &s.TariffPending,
		&s.ClientPaymentStatus, &s.CarrierPaymentStatus, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
