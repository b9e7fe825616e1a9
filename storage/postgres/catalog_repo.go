package postgres

import (
	"context"
	"fmt"
	"tripsettle/pkg/logger"
	"tripsettle/pkg/models"
	"tripsettle/storage"

	"github.com/jackc/pgx/v5/pgxpool"
)

type catalogRepo struct {
	db  *pgxpool.Pool
	log logger.ILogger
}

func NewCatalogRepo(db *pgxpool.Pool, log logger.ILogger) storage.ICatalogStorage {
	return &catalogRepo{db: db, log: log}
}

// catalogSelect returns the select list for kind. Only locations carry an
// address; other tables yield an empty one.
func catalogSelect(kind models.CatalogKind) (string, error) {
	switch kind {
	case models.CatalogLocations:
		return `SELECT id, name, address, active, created_at FROM locations`, nil
	case models.CatalogClients, models.CatalogProducts, models.CatalogCarriers:
		return fmt.Sprintf(`SELECT id, name, '' AS address, active, created_at FROM %s`, kind), nil
	}
	return "", fmt.Errorf("unknown catalog %q", kind)
}

func (r *catalogRepo) GetAll(ctx context.Context, kind models.CatalogKind) ([]*models.CatalogEntry, error) {
	base, err := catalogSelect(kind)
	if err != nil {
		return nil, err
	}
	return r.scanEntries(ctx, kind, base+` ORDER BY id ASC`)
}

func (r *catalogRepo) GetActive(ctx context.Context, kind models.CatalogKind) ([]*models.CatalogEntry, error) {
	base, err := catalogSelect(kind)
	if err != nil {
		return nil, err
	}
	return r.scanEntries(ctx, kind, base+` WHERE active ORDER BY id ASC`)
}

func (r *catalogRepo) GetByID(ctx context.Context, kind models.CatalogKind, id int64) (*models.CatalogEntry, error) {
	base, err := catalogSelect(kind)
	if err != nil {
		return nil, err
	}
	e := models.CatalogEntry{Kind: kind}
	err = r.db.QueryRow(ctx, base+` WHERE id = $1`, id).Scan(&e.ID, &e.Name, &e.Address, &e.Active, &e.CreatedAt)
	if err != nil {
		r.log.Error("failed to get catalog entry", logger.String("kind", string(kind)), logger.Int64("id", id), logger.Error(err))
		return nil, mapErr(err)
	}
	return &e, nil
}

func (r *catalogRepo) Create(ctx context.Context, entry *models.CatalogEntry) (*models.CatalogEntry, error) {
	var (
		query string
		args  []interface{}
	)
	switch entry.Kind {
	case models.CatalogLocations:
		query = `INSERT INTO locations (name, address, active) VALUES ($1, $2, $3) RETURNING id, created_at`
		args = []interface{}{entry.Name, entry.Address, entry.Active}
	case models.CatalogClients, models.CatalogProducts, models.CatalogCarriers:
		query = fmt.Sprintf(`INSERT INTO %s (name, active) VALUES ($1, $2) RETURNING id, created_at`, entry.Kind)
		args = []interface{}{entry.Name, entry.Active}
	default:
		return nil, fmt.Errorf("unknown catalog %q", entry.Kind)
	}

	if err := r.db.QueryRow(ctx, query, args...).Scan(&entry.ID, &entry.CreatedAt); err != nil {
		r.log.Error("failed to create catalog entry", logger.String("kind", string(entry.Kind)), logger.Error(err))
		return nil, mapErr(err)
	}
	return entry, nil
}

func (r *catalogRepo) scanEntries(ctx context.Context, kind models.CatalogKind, query string) ([]*models.CatalogEntry, error) {
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.log.Error("failed to list catalog", logger.String("kind", string(kind)), logger.Error(err))
		return nil, err
	}
	defer rows.Close()

	var entries []*models.CatalogEntry
	for rows.Next() {
		e := models.CatalogEntry{Kind: kind}
		if err := rows.Scan(&e.ID, &e.Name, &e.Address, &e.Active, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}
