package service

import (
	"context"
	"errors"
	"testing"
	"time"
	"tripsettle/pkg/engine"
	"tripsettle/pkg/logger"
	"tripsettle/pkg/models"
	"tripsettle/storage/memory"
)

func seedDrivers(t *testing.T, stg *memory.Store) (near, far, idle int64) {
	t.Helper()
	ctx := context.Background()
	ids := make([]int64, 0, 3)
	for _, name := range []string{"Far Driver", "Idle Driver", "Near Driver"} {
		d, err := stg.Driver().Create(ctx, &models.Driver{FullName: name, Active: true})
		if err != nil {
			t.Fatalf("create driver: %v", err)
		}
		ids = append(ids, d.ID)
	}
	far, idle, near = ids[0], ids[1], ids[2]

	done := fixedNow.Add(-time.Hour)
	for _, tr := range []models.Trip{
		{DriverID: &far, Status: models.TripCompletedL1, CompletedAt: &done, UnloadingCoordinate: &models.Coordinate{Lng: 4.497}},
		{DriverID: &near, Status: models.TripCompletedL2, CompletedAt: &done, UnloadingCoordinate: &models.Coordinate{Lng: 0.4497}},
	} {
		if _, err := stg.Trip().Create(ctx, &tr); err != nil {
			t.Fatalf("create trip: %v", err)
		}
	}
	return near, far, idle
}

func TestDriverRank(t *testing.T) {
	stg := memory.New()
	near, far, idle := seedDrivers(t, stg)
	lookup := &stubLookup{coords: map[string]models.Coordinate{"depot": {}}}
	svc := NewDriverService(stg, lookup, engine.NewRequestGuard(), logger.NewNop())

	res, err := svc.Rank(context.Background(), "chat-1", "depot")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := []int64{res.Candidates[0].DriverID, res.Candidates[1].DriverID, res.Candidates[2].DriverID}
	want := []int64{near, far, idle}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
	if len(res.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %+v", res.Warnings)
	}
}

func TestDriverRankUnknownAddressKeepsOrder(t *testing.T) {
	stg := memory.New()
	near, far, idle := seedDrivers(t, stg)
	svc := NewDriverService(stg, &stubLookup{}, engine.NewRequestGuard(), logger.NewNop())

	res, err := svc.Rank(context.Background(), "chat-1", "nowhere")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Target != nil || len(res.Warnings) != 1 {
		t.Fatalf("expected degraded result, got %+v", res)
	}
	got := []int64{res.Candidates[0].DriverID, res.Candidates[1].DriverID, res.Candidates[2].DriverID}
	want := []int64{far, idle, near}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestDriverRankSupersededRequestIsStale(t *testing.T) {
	stg := memory.New()
	seedDrivers(t, stg)
	lookup := &stubLookup{
		coords:  map[string]models.Coordinate{"first": {}, "second": {Lat: 1}},
		block:   make(chan struct{}),
		started: make(chan struct{}, 1),
	}
	svc := NewDriverService(stg, lookup, engine.NewRequestGuard(), logger.NewNop())

	errc := make(chan error, 1)
	go func() {
		_, err := svc.Rank(context.Background(), "chat-1", "first")
		errc <- err
	}()
	<-lookup.started

	lookup.mu.Lock()
	lookup.block = nil
	lookup.mu.Unlock()

	res, err := svc.Rank(context.Background(), "chat-1", "second")
	if err != nil {
		t.Fatalf("newest request failed: %v", err)
	}
	if res.Target == nil || res.Target.Lat != 1 {
		t.Fatalf("target = %+v, want second address", res.Target)
	}

	if err := <-errc; !errors.Is(err, ErrStaleRequest) {
		t.Fatalf("superseded request returned %v, want ErrStaleRequest", err)
	}
}
