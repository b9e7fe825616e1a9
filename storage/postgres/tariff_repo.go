package postgres

import (
	"context"
	"tripsettle/pkg/logger"
	"tripsettle/pkg/models"
	"tripsettle/storage"

	"github.com/jackc/pgx/v5/pgxpool"
)

const tariffColumns = `id, name, client, product, origin, destination, carrier,
	rate_per_ton, rate_per_trip, third_party_rate_per_ton, third_party_rate_per_trip,
	valid_from, valid_until, active, created_at, updated_at`

type tariffRepo struct {
	db  *pgxpool.Pool
	log logger.ILogger
}

func NewTariffRepo(db *pgxpool.Pool, log logger.ILogger) storage.ITariffStorage {
	return &tariffRepo{db: db, log: log}
}

func (r *tariffRepo) GetAll(ctx context.Context) ([]*models.TariffRule, error) {
	query := `SELECT ` + tariffColumns + ` FROM tariff_rules ORDER BY id ASC`
	return r.scanRules(ctx, query)
}

func (r *tariffRepo) GetActive(ctx context.Context) ([]*models.TariffRule, error) {
	query := `SELECT ` + tariffColumns + ` FROM tariff_rules WHERE active ORDER BY id ASC`
	return r.scanRules(ctx, query)
}

func (r *tariffRepo) GetByID(ctx context.Context, id int64) (*models.TariffRule, error) {
	query := `SELECT ` + tariffColumns + ` FROM tariff_rules WHERE id = $1`
	t, err := scanRule(r.db.QueryRow(ctx, query, id))
	if err != nil {
		r.log.Error("failed to get tariff rule", logger.Int64("id", id), logger.Error(err))
		return nil, mapErr(err)
	}
	return t, nil
}

func (r *tariffRepo) Create(ctx context.Context, rule *models.TariffRule) (*models.TariffRule, error) {
	query := `
		INSERT INTO tariff_rules (name, client, product, origin, destination, carrier,
			rate_per_ton, rate_per_trip, third_party_rate_per_ton, third_party_rate_per_trip,
			valid_from, valid_until, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query, ruleValues(rule)...).Scan(&rule.ID, &rule.CreatedAt, &rule.UpdatedAt)
	if err != nil {
		r.log.Error("failed to create tariff rule", logger.Error(err))
		return nil, mapErr(err)
	}
	return rule, nil
}

func (r *tariffRepo) Update(ctx context.Context, rule *models.TariffRule) (*models.TariffRule, error) {
	query := `
		UPDATE tariff_rules
		SET name = $1, client = $2, product = $3, origin = $4, destination = $5, carrier = $6,
			rate_per_ton = $7, rate_per_trip = $8, third_party_rate_per_ton = $9, third_party_rate_per_trip = $10,
			valid_from = $11, valid_until = $12, active = $13, updated_at = NOW()
		WHERE id = $14
		RETURNING created_at, updated_at
	`
	args := append(ruleValues(rule), rule.ID)
	err := r.db.QueryRow(ctx, query, args...).Scan(&rule.CreatedAt, &rule.UpdatedAt)
	if err != nil {
		r.log.Error("failed to update tariff rule", logger.Int64("id", rule.ID), logger.Error(err))
		return nil, mapErr(err)
	}
	return rule, nil
}

func (r *tariffRepo) SetActive(ctx context.Context, id int64, active bool) error {
	res, err := r.db.Exec(ctx, `UPDATE tariff_rules SET active = $1, updated_at = NOW() WHERE id = $2`, active, id)
	if err != nil {
		r.log.Error("failed to toggle tariff rule", logger.Int64("id", id), logger.Error(err))
		return err
	}
	if res.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (r *tariffRepo) scanRules(ctx context.Context, query string, args ...interface{}) ([]*models.TariffRule, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("failed to list tariff rules", logger.Error(err))
		return nil, err
	}
	defer rows.Close()

	var rules []*models.TariffRule
	for rows.Next() {
		t, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, t)
	}
	return rules, rows.Err()
}

func ruleValues(t *models.TariffRule) []interface{} {
	return []interface{}{
		t.Name, t.Client, t.Product, t.Origin, t.Destination, t.Carrier,
		t.RatePerTon, t.RatePerTrip, t.ThirdPartyRatePerTon, t.ThirdPartyRatePerTrip,
		t.ValidFrom, t.ValidUntil, t.Active,
	}
}

func scanRule(row rowScanner) (*models.TariffRule, error) {
	var t models.TariffRule
	err := row.Scan(
		&t.ID, &t.Name, &t.Client, &t.Product, &t.Origin, &t.Destination, &t.Carrier,
		&t.RatePerTon, &t.RatePerTrip, &t.ThirdPartyRatePerTon, &t.ThirdPartyRatePerTrip,
		&t.ValidFrom, &t.ValidUntil, &t.Active, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
