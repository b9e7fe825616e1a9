package service

import (
	"errors"
	"time"

	"tripsettle/pkg/engine"
	"tripsettle/pkg/geo"
	"tripsettle/pkg/logger"
	"tripsettle/storage"
)

var (
	// ErrStaleRequest is returned when a newer request for the same session
	// superseded this one; its result must be dropped.
	ErrStaleRequest    = errors.New("request superseded by a newer one")
	ErrAlreadyPromoted = errors.New("trip already has a settlement")
)

type IServiceManager interface {
	Trip() TripService
	Settlement() SettlementService
	Tariff() TariffService
	Driver() DriverService
	Catalog() CatalogService
	Export() ExportService
}

type service struct {
	tripService       TripService
	settlementService SettlementService
	tariffService     TariffService
	driverService     DriverService
	catalogService    CatalogService
	exportService     ExportService
}

// clock yields the operator's calendar day used for tariff validity.
type clock struct {
	loc *time.Location
	now func() time.Time
}

func (c clock) Now() time.Time {
	return c.now().In(c.loc)
}

func (c clock) Today() time.Time {
	n := c.Now()
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
}

func New(stg storage.IStorage, lookup geo.Lookup, loc *time.Location, log logger.ILogger) IServiceManager {
	clk := clock{loc: loc, now: time.Now}
	return &service{
		tripService:       NewTripService(stg, lookup, clk, log),
		settlementService: NewSettlementService(stg, clk, log),
		tariffService:     NewTariffService(stg, clk, log),
		driverService:     NewDriverService(stg, lookup, engine.NewRequestGuard(), log),
		catalogService:    NewCatalogService(stg, log),
		exportService:     NewExportService(stg, log),
	}
}

func (s *service) Trip() TripService {
	return s.tripService
}

func (s *service) Settlement() SettlementService {
	return s.settlementService
}

func (s *service) Tariff() TariffService {
	return s.tariffService
}

func (s *service) Driver() DriverService {
	return s.driverService
}

func (s *service) Catalog() CatalogService {
	return s.catalogService
}

func (s *service) Export() ExportService {
	return s.exportService
}
