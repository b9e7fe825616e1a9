package memory

import (
	"context"
	"errors"
	"testing"
	"time"
	"tripsettle/pkg/models"
	"tripsettle/storage"
)

func TestSettlementUniquePerTrip(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, err := s.Settlement().Create(ctx, &models.Settlement{SourceTripID: 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := s.Settlement().Create(ctx, &models.Settlement{SourceTripID: 1}); !errors.Is(err, storage.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestTariffCatalogOrder(t *testing.T) {
	s := New()
	ctx := context.Background()
	for _, name := range []string{"a", "b", "c"} {
		if _, err := s.Tariff().Create(ctx, &models.TariffRule{Name: name, Active: name != "b"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	active, _ := s.Tariff().GetActive(ctx)
	if len(active) != 2 || active[0].Name != "a" || active[1].Name != "c" {
		t.Fatalf("active rules = %+v", active)
	}
}

func TestLastUnloadingCoordinates(t *testing.T) {
	s := New()
	ctx := context.Background()
	driver := int64(42)
	early := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	late := early.Add(24 * time.Hour)

	trips := []models.Trip{
		{DriverID: &driver, Status: models.TripCompletedL1, CompletedAt: &early, UnloadingCoordinate: &models.Coordinate{Lat: 1}},
		{DriverID: &driver, Status: models.TripCompletedL2, CompletedAt: &late, UnloadingCoordinate: &models.Coordinate{Lat: 2}},
		{DriverID: &driver, Status: models.TripPending, CompletedAt: &late, UnloadingCoordinate: &models.Coordinate{Lat: 3}},
	}
	for i := range trips {
		if _, err := s.Trip().Create(ctx, &trips[i]); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	got, err := s.Driver().LastUnloadingCoordinates(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c, ok := got[driver]; !ok || c.Lat != 2 {
		t.Fatalf("last point = %+v, want lat 2", got)
	}
}
