package engine

import (
	"fmt"
	"strings"
	"time"

	"tripsettle/pkg/models"
)

type TransitionResult struct {
	Trip models.Trip
	// NeedsGeocode is set when the trip has just entered a completed status
	// and the unloading address should be looked up.
	NeedsGeocode bool
}

// Transition moves trip to next. particularity is the value the field will
// hold after the change. Any status can be reached from any other so that
// operators can correct mistakes; only the particularity requirement is
// enforced. Stored coordinate and completion time survive a move back to
// pending.
func Transition(trip models.Trip, next models.TripStatus, particularity string, now time.Time) (TransitionResult, error) {
	if !next.Valid() {
		return TransitionResult{}, NewValidationError("status", "unknown trip status %q", next)
	}

	particularity = strings.TrimSpace(particularity)
	if next.RequiresParticularity() && particularity == "" {
		return TransitionResult{}, NewValidationError("particularity", "is required when status is %s", next)
	}

	out := trip
	out.Status = next
	out.Particularity = particularity

	if line, ok := lineFor(next); ok {
		out.Line = line
	}

	res := TransitionResult{Trip: out}
	if next.Completed() && !trip.Status.Completed() {
		res.NeedsGeocode = true
		if res.Trip.CompletedAt == nil {
			at := now
			res.Trip.CompletedAt = &at
		}
	}

	return res, nil
}

// ApplyUnloadingCoordinate stores a geocoding result on the trip. A miss
// keeps whatever coordinate the trip already had and yields a warning.
func ApplyUnloadingCoordinate(trip models.Trip, coord *models.Coordinate) (models.Trip, *models.Warning) {
	if coord == nil {
		return trip, &models.Warning{
			Code:    models.WarningGeocodeNotFound,
			Message: fmt.Sprintf("unloading address %q could not be located", trip.UnloadingAddress),
		}
	}
	c := *coord
	trip.UnloadingCoordinate = &c
	return trip, nil
}

func lineFor(status models.TripStatus) (models.Line, bool) {
	switch status {
	case models.TripCompletedL1:
		return models.LineL1, true
	case models.TripCompletedL2:
		return models.LineL2, true
	case models.TripCompletedL1L2:
		return models.LineL1L2, true
	}
	return "", false
}
