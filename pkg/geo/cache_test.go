package geo

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"tripsettle/pkg/logger"
	"tripsettle/pkg/models"
)

type countingLookup struct {
	mu    sync.Mutex
	calls int
	coord *models.Coordinate
	err   error
}

func (l *countingLookup) Lookup(ctx context.Context, address string) (*models.Coordinate, error) {
	l.mu.Lock()
	l.calls++
	l.mu.Unlock()
	return l.coord, l.err
}

func (l *countingLookup) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

func newCache(t *testing.T, next Lookup) (*CachedLookup, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewCachedLookup(next, rdb, time.Hour, logger.NewNop()), mr
}

func TestCachedLookupStoresHits(t *testing.T) {
	up := &countingLookup{coord: &models.Coordinate{Lat: 1.5, Lng: 2.5}}
	c, mr := newCache(t, up)

	for _, addr := range []string{"Av. Industrial 100", "  av.  industrial 100"} {
		coord, err := c.Lookup(context.Background(), addr)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if coord == nil || *coord != (models.Coordinate{Lat: 1.5, Lng: 2.5}) {
			t.Fatalf("coord = %+v", coord)
		}
	}
	if up.count() != 1 {
		t.Fatalf("upstream calls = %d, want 1", up.count())
	}
	if !mr.Exists(cacheKeyPrefix + "av. industrial 100") {
		t.Fatal("cache entry missing")
	}
	if ttl := mr.TTL(cacheKeyPrefix + "av. industrial 100"); ttl != time.Hour {
		t.Fatalf("ttl = %v, want 1h", ttl)
	}
}

func TestCachedLookupDoesNotCacheMisses(t *testing.T) {
	up := &countingLookup{}
	c, _ := newCache(t, up)

	for i := 0; i < 2; i++ {
		coord, err := c.Lookup(context.Background(), "unknown street")
		if err != nil || coord != nil {
			t.Fatalf("expected miss, got %+v, %v", coord, err)
		}
	}
	if up.count() != 2 {
		t.Fatalf("upstream calls = %d, want 2", up.count())
	}
}

func TestCachedLookupPropagatesUpstreamError(t *testing.T) {
	up := &countingLookup{err: errors.New("timeout")}
	c, _ := newCache(t, up)

	if _, err := c.Lookup(context.Background(), "x"); err == nil {
		t.Fatal("expected upstream error")
	}
}

func TestCachedLookupSurvivesRedisOutage(t *testing.T) {
	up := &countingLookup{coord: &models.Coordinate{Lat: 3, Lng: 4}}
	c, mr := newCache(t, up)
	mr.Close()

	coord, err := c.Lookup(context.Background(), "depot")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if coord == nil || coord.Lat != 3 {
		t.Fatalf("coord = %+v", coord)
	}
}
