package service

import (
	"context"
	"sync"
	"testing"
	"time"
	"tripsettle/pkg/logger"
	"tripsettle/pkg/models"
	"tripsettle/storage/memory"

	"github.com/shopspring/decimal"
)

var fixedNow = time.Date(2026, time.March, 10, 15, 0, 0, 0, time.UTC)

func testClock() clock {
	return clock{loc: time.UTC, now: func() time.Time { return fixedNow }}
}

type stubLookup struct {
	mu      sync.Mutex
	coords  map[string]models.Coordinate
	err     error
	calls   []string
	block   chan struct{}
	started chan struct{}
}

func (l *stubLookup) Lookup(ctx context.Context, address string) (*models.Coordinate, error) {
	l.mu.Lock()
	l.calls = append(l.calls, address)
	block, started := l.block, l.started
	l.mu.Unlock()

	if block != nil {
		if started != nil {
			started <- struct{}{}
		}
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if l.err != nil {
		return nil, l.err
	}
	c, ok := l.coords[address]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func dec(s string) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: decimal.RequireFromString(s), Valid: true}
}

func ptr[T any](v T) *T {
	return &v
}

// seed creates catalogs and returns their ids keyed by name.
func seed(t *testing.T, stg *memory.Store) map[string]int64 {
	t.Helper()
	ctx := context.Background()
	ids := make(map[string]int64)
	entries := []models.CatalogEntry{
		{Kind: models.CatalogClients, Name: "Acme Mining", Active: true},
		{Kind: models.CatalogProducts, Name: "Diesel", Active: true},
		{Kind: models.CatalogLocations, Name: "Callao", Address: "Av. Argentina 100", Active: true},
		{Kind: models.CatalogLocations, Name: "Arequipa", Address: "Parque Industrial", Active: true},
		{Kind: models.CatalogCarriers, Name: "Fast Haul", Active: true},
	}
	for i := range entries {
		e, err := stg.Catalog().Create(ctx, &entries[i])
		if err != nil {
			t.Fatalf("seed catalog: %v", err)
		}
		ids[e.Name] = e.ID
	}
	return ids
}

func newTestServices(stg *memory.Store, lookup *stubLookup) *service {
	log := logger.NewNop()
	clk := testClock()
	return &service{
		tripService:       NewTripService(stg, lookup, clk, log),
		settlementService: NewSettlementService(stg, clk, log),
		tariffService:     NewTariffService(stg, clk, log),
		catalogService:    NewCatalogService(stg, log),
		exportService:     NewExportService(stg, log),
	}
}
