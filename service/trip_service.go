package service

import (
	"context"
	"strings"
	"tripsettle/pkg/engine"
	"tripsettle/pkg/geo"
	"tripsettle/pkg/logger"
	"tripsettle/pkg/models"
	"tripsettle/storage"
)

type TripResult struct {
	Trip     *models.Trip     `json:"trip"`
	Warnings []models.Warning `json:"warnings,omitempty"`
}

type TripService interface {
	Create(ctx context.Context, trip *models.Trip) (*TripResult, error)
	Get(ctx context.Context, id int64) (*models.Trip, error)
	// List returns every trip when status is empty.
	List(ctx context.Context, status models.TripStatus) ([]*models.Trip, error)
	// ChangeStatus moves a trip to status. A nil particularity keeps the
	// stored one.
	ChangeStatus(ctx context.Context, id int64, status models.TripStatus, particularity *string) (*TripResult, error)
}

type tripService struct {
	stg    storage.ITripStorage
	lookup geo.Lookup
	clk    clock
	log    logger.ILogger
}

func NewTripService(stg storage.IStorage, lookup geo.Lookup, clk clock, log logger.ILogger) TripService {
	return &tripService{
		stg:    stg.Trip(),
		lookup: lookup,
		clk:    clk,
		log:    log,
	}
}

func (s *tripService) Create(ctx context.Context, trip *models.Trip) (*TripResult, error) {
	if trip.Date.IsZero() {
		return nil, engine.NewValidationError("date", "is required")
	}

	next := trip.Status
	if next == "" {
		next = models.TripPending
	}

	draft := *trip
	draft.ID = 0
	draft.Status = models.TripPending
	draft.Line = ""
	draft.CompletedAt = nil
	draft.UnloadingCoordinate = nil

	res, err := s.transition(ctx, draft, next, trip.Particularity)
	if err != nil {
		return nil, err
	}

	created, err := s.stg.Create(ctx, &res.trip)
	if err != nil {
		return nil, err
	}

	s.log.Info("trip created", logger.Int64("id", created.ID), logger.String("status", string(created.Status)))
	return &TripResult{Trip: created, Warnings: res.warnings}, nil
}

func (s *tripService) Get(ctx context.Context, id int64) (*models.Trip, error) {
	return s.stg.GetByID(ctx, id)
}

func (s *tripService) List(ctx context.Context, status models.TripStatus) ([]*models.Trip, error) {
	if status == "" {
		return s.stg.GetAll(ctx)
	}
	if !status.Valid() {
		return nil, engine.NewValidationError("status", "unknown trip status %q", status)
	}
	return s.stg.GetByStatus(ctx, status)
}

func (s *tripService) ChangeStatus(ctx context.Context, id int64, status models.TripStatus, particularity *string) (*TripResult, error) {
	current, err := s.stg.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	p := current.Particularity
	if particularity != nil {
		p = *particularity
	}

	res, err := s.transition(ctx, *current, status, p)
	if err != nil {
		return nil, err
	}

	updated, err := s.stg.Update(ctx, &res.trip)
	if err != nil {
		return nil, err
	}

	s.log.Info("trip status changed",
		logger.Int64("id", id),
		logger.String("from", string(current.Status)),
		logger.String("to", string(updated.Status)),
	)
	return &TripResult{Trip: updated, Warnings: res.warnings}, nil
}

type transitionOutcome struct {
	trip     models.Trip
	warnings []models.Warning
}

// transition runs the lifecycle and, when the trip has just been completed,
// geocodes the unloading address. A failed lookup is a warning, never an error.
func (s *tripService) transition(ctx context.Context, trip models.Trip, next models.TripStatus, particularity string) (transitionOutcome, error) {
	res, err := engine.Transition(trip, next, particularity, s.clk.Now())
	if err != nil {
		return transitionOutcome{}, err
	}

	out := transitionOutcome{trip: res.Trip}
	if !res.NeedsGeocode {
		return out, nil
	}

	var coord *models.Coordinate
	if strings.TrimSpace(out.trip.UnloadingAddress) != "" {
		coord, err = s.lookup.Lookup(ctx, out.trip.UnloadingAddress)
		if err != nil {
			s.log.Warning("geocode failed",
				logger.Int64("trip_id", trip.ID),
				logger.String("address", out.trip.UnloadingAddress),
				logger.Error(err),
			)
			coord = nil
		}
	}

	var w *models.Warning
	out.trip, w = engine.ApplyUnloadingCoordinate(out.trip, coord)
	if w != nil {
		out.warnings = append(out.warnings, *w)
	}
	return out, nil
}
