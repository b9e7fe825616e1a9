package service

import (
	"context"
	"strings"
	"tripsettle/pkg/engine"
	"tripsettle/pkg/logger"
	"tripsettle/pkg/models"
	"tripsettle/storage"
)

type CatalogService interface {
	List(ctx context.Context, kind models.CatalogKind) ([]*models.CatalogEntry, error)
	Get(ctx context.Context, kind models.CatalogKind, id int64) (*models.CatalogEntry, error)
	Create(ctx context.Context, entry *models.CatalogEntry) (*models.CatalogEntry, error)
}

type catalogService struct {
	stg storage.ICatalogStorage
	log logger.ILogger
}

func NewCatalogService(stg storage.IStorage, log logger.ILogger) CatalogService {
	return &catalogService{
		stg: stg.Catalog(),
		log: log,
	}
}

func (s *catalogService) List(ctx context.Context, kind models.CatalogKind) ([]*models.CatalogEntry, error) {
	if !kind.Valid() {
		return nil, engine.NewValidationError("kind", "unknown catalog %q", kind)
	}
	return s.stg.GetAll(ctx, kind)
}

func (s *catalogService) Get(ctx context.Context, kind models.CatalogKind, id int64) (*models.CatalogEntry, error) {
	if !kind.Valid() {
		return nil, engine.NewValidationError("kind", "unknown catalog %q", kind)
	}
	return s.stg.GetByID(ctx, kind, id)
}

func (s *catalogService) Create(ctx context.Context, entry *models.CatalogEntry) (*models.CatalogEntry, error) {
	if !entry.Kind.Valid() {
		return nil, engine.NewValidationError("kind", "unknown catalog %q", entry.Kind)
	}
	entry.Name = strings.TrimSpace(entry.Name)
	if entry.Name == "" {
		return nil, engine.NewValidationError("name", "is required")
	}
	if entry.Kind != models.CatalogLocations {
		entry.Address = ""
	}
	entry.Active = true

	created, err := s.stg.Create(ctx, entry)
	if err != nil {
		return nil, err
	}
	s.log.Info("catalog entry created", logger.String("kind", string(created.Kind)), logger.Int64("id", created.ID))
	return created, nil
}
