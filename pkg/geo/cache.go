package geo

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"tripsettle/pkg/logger"
	"tripsettle/pkg/models"
)

const cacheKeyPrefix = "geocode:"

// CachedLookup keeps successful lookups in Redis. Misses are not cached so a
// corrected address can be found on the next try. Redis failures fall
// through to the upstream lookup.
type CachedLookup struct {
	next  Lookup
	rdb   *redis.Client
	ttl   time.Duration
	log   logger.ILogger
	group singleflight.Group
}

func NewCachedLookup(next Lookup, rdb *redis.Client, ttl time.Duration, log logger.ILogger) *CachedLookup {
	return &CachedLookup{next: next, rdb: rdb, ttl: ttl, log: log}
}

func (c *CachedLookup) Lookup(ctx context.Context, address string) (*models.Coordinate, error) {
	key := Normalize(address)
	if key == "" {
		return nil, nil
	}

	if coord, ok := c.get(ctx, key); ok {
		return coord, nil
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		coord, err := c.next.Lookup(ctx, address)
		if err != nil || coord == nil {
			return coord, err
		}
		c.set(ctx, key, *coord)
		return coord, nil
	})
	if err != nil {
		return nil, err
	}

	coord, _ := v.(*models.Coordinate)
	if coord == nil {
		return nil, nil
	}
	out := *coord
	return &out, nil
}

func (c *CachedLookup) get(ctx context.Context, key string) (*models.Coordinate, bool) {
	val, err := c.rdb.Get(ctx, cacheKeyPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warning("geocode cache read failed", logger.String("key", key), logger.Error(err))
		}
		return nil, false
	}

	var coord models.Coordinate
	if err := json.Unmarshal(val, &coord); err != nil {
		c.log.Warning("geocode cache entry corrupt", logger.String("key", key), logger.Error(err))
		return nil, false
	}
	return &coord, true
}

func (c *CachedLookup) set(ctx context.Context, key string, coord models.Coordinate) {
	b, err := json.Marshal(coord)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, cacheKeyPrefix+key, b, c.ttl).Err(); err != nil {
		c.log.Warning("geocode cache write failed", logger.String("key", key), logger.Error(err))
	}
}
