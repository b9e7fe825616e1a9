package service

import (
	"context"
	"errors"
	"strings"
	"tripsettle/pkg/engine"
	"tripsettle/pkg/geo"
	"tripsettle/pkg/logger"
	"tripsettle/pkg/models"
	"tripsettle/storage"
)

type RankResult struct {
	Target     *models.Coordinate       `json:"target"`
	Candidates []models.DriverCandidate `json:"candidates"`
	Warnings   []models.Warning         `json:"warnings,omitempty"`
}

type DriverService interface {
	List(ctx context.Context) ([]*models.Driver, error)
	Get(ctx context.Context, id int64) (*models.Driver, error)
	Create(ctx context.Context, driver *models.Driver) (*models.Driver, error)
	// Rank orders active drivers by distance from loadingAddress. A newer
	// Rank call for the same session makes this one return ErrStaleRequest.
	Rank(ctx context.Context, session, loadingAddress string) (*RankResult, error)
}

type driverService struct {
	stg    storage.IDriverStorage
	lookup geo.Lookup
	guard  *engine.RequestGuard
	log    logger.ILogger
}

func NewDriverService(stg storage.IStorage, lookup geo.Lookup, guard *engine.RequestGuard, log logger.ILogger) DriverService {
	return &driverService{
		stg:    stg.Driver(),
		lookup: lookup,
		guard:  guard,
		log:    log,
	}
}

func (s *driverService) List(ctx context.Context) ([]*models.Driver, error) {
	return s.stg.GetActive(ctx)
}

func (s *driverService) Get(ctx context.Context, id int64) (*models.Driver, error) {
	return s.stg.GetByID(ctx, id)
}

func (s *driverService) Create(ctx context.Context, driver *models.Driver) (*models.Driver, error) {
	driver.FullName = strings.TrimSpace(driver.FullName)
	if driver.FullName == "" {
		return nil, engine.NewValidationError("full_name", "is required")
	}
	driver.Active = true
	return s.stg.Create(ctx, driver)
}

func (s *driverService) Rank(ctx context.Context, session, loadingAddress string) (*RankResult, error) {
	ctx, ticket, done := s.guard.Begin(ctx, session)
	defer done()

	res := &RankResult{}

	if strings.TrimSpace(loadingAddress) != "" {
		coord, err := s.lookup.Lookup(ctx, loadingAddress)
		if err != nil {
			if !s.guard.Current(ticket) || errors.Is(err, context.Canceled) {
				return nil, ErrStaleRequest
			}
			s.log.Warning("geocode failed, ranking without distances",
				logger.String("session", session),
				logger.String("address", loadingAddress),
				logger.Error(err),
			)
		}
		res.Target = coord
	}
	if res.Target == nil {
		res.Warnings = append(res.Warnings, models.Warning{
			Code:    models.WarningGeocodeNotFound,
			Message: "loading address could not be located, drivers are listed unranked",
		})
	}

	drivers, err := s.stg.GetActive(ctx)
	if err != nil {
		return nil, err
	}
	last, err := s.stg.LastUnloadingCoordinates(ctx)
	if err != nil {
		return nil, err
	}

	candidates := make([]models.DriverCandidate, 0, len(drivers))
	for _, d := range drivers {
		c := models.DriverCandidate{DriverID: d.ID, FullName: d.FullName}
		if p, ok := last[d.ID]; ok {
			c.LastUnloading = &p
		}
		candidates = append(candidates, c)
	}

	res.Candidates = engine.Rank(res.Target, candidates)

	if !s.guard.Current(ticket) {
		return nil, ErrStaleRequest
	}
	return res, nil
}
