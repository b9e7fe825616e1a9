package storage

import (
	"context"
	"errors"
	"tripsettle/pkg/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")
)

type IStorage interface {
	Trip() ITripStorage
	Settlement() ISettlementStorage
	Tariff() ITariffStorage
	Driver() IDriverStorage
	Catalog() ICatalogStorage
	Close()
	GetPool() *pgxpool.Pool
}

type ITripStorage interface {
	Create(ctx context.Context, trip *models.Trip) (*models.Trip, error)
	Update(ctx context.Context, trip *models.Trip) (*models.Trip, error)
	GetByID(ctx context.Context, id int64) (*models.Trip, error)
	GetAll(ctx context.Context) ([]*models.Trip, error)
	GetByStatus(ctx context.Context, status models.TripStatus) ([]*models.Trip, error)
}

type ISettlementStorage interface {
	Create(ctx context.Context, s *models.Settlement) (*models.Settlement, error)
	Update(ctx context.Context, s *models.Settlement) (*models.Settlement, error)
	GetByID(ctx context.Context, id int64) (*models.Settlement, error)
	GetBySourceTrip(ctx context.Context, tripID int64) (*models.Settlement, error)
	GetAll(ctx context.Context) ([]*models.Settlement, error)
}

// ITariffStorage returns rules in catalog order (ascending id). The resolver
// breaks specificity ties by that order.
type ITariffStorage interface {
	GetAll(ctx context.Context) ([]*models.TariffRule, error)
	GetActive(ctx context.Context) ([]*models.TariffRule, error)
	GetByID(ctx context.Context, id int64) (*models.TariffRule, error)
	Create(ctx context.Context, rule *models.TariffRule) (*models.TariffRule, error)
	Update(ctx context.Context, rule *models.TariffRule) (*models.TariffRule, error)
	SetActive(ctx context.Context, id int64, active bool) error
}

type IDriverStorage interface {
	GetActive(ctx context.Context) ([]*models.Driver, error)
	GetByID(ctx context.Context, id int64) (*models.Driver, error)
	Create(ctx context.Context, driver *models.Driver) (*models.Driver, error)
	// LastUnloadingCoordinates maps driver id to the unloading point of the
	// driver's most recently completed trip. Drivers without one are absent.
	LastUnloadingCoordinates(ctx context.Context) (map[int64]models.Coordinate, error)
}

type ICatalogStorage interface {
	GetAll(ctx context.Context, kind models.CatalogKind) ([]*models.CatalogEntry, error)
	GetActive(ctx context.Context, kind models.CatalogKind) ([]*models.CatalogEntry, error)
	GetByID(ctx context.Context, kind models.CatalogKind, id int64) (*models.CatalogEntry, error)
	Create(ctx context.Context, entry *models.CatalogEntry) (*models.CatalogEntry, error)
}
