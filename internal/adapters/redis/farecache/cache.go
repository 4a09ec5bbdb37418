package farecache

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/railquote/fare-estimator-api/internal/domain"
	"github.com/railquote/fare-estimator-api/internal/platform/config"
	"github.com/railquote/fare-estimator-api/internal/ports/out/fareprovider"
)

const keyPrefix = "fare:v1:"

// sharedFetchTimeout bounds an upstream call shared by coalesced misses.
const sharedFetchTimeout = 30 * time.Second

// Store is the subset of the redis client the cache needs. *redis.Client satisfies it.
type Store interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// NewClient opens a redis client and checks that the server answers.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return client, nil
}

// Cache is a fareprovider.Provider that remembers usable base fares per route and travel day.
//
// Failures and unusable fares are never stored. Concurrent misses for the same key
// share a single upstream call, which runs detached from any one caller's
// cancellation; each caller still stops waiting when its own context ends.
// When redis itself misbehaves the cache is bypassed.
type Cache struct {
	next  fareprovider.Provider
	store Store
	ttl   time.Duration
	log   *zap.Logger

	group singleflight.Group
}

func New(next fareprovider.Provider, store Store, ttl time.Duration, log *zap.Logger) *Cache {
	if log == nil {
		log = zap.NewNop()
	}
	return &Cache{next: next, store: store, ttl: ttl, log: log.Named("farecache")}
}

// Key returns the cache key for trip.
func Key(trip domain.TripDetails) string {
	return keyPrefix +
		url.QueryEscape(fareprovider.StationKey(trip.Origin)) + ":" +
		url.QueryEscape(fareprovider.StationKey(trip.Destination)) + ":" +
		fareprovider.TravelDay(trip.TravelDate).Format(time.DateOnly)
}

type fetchResult struct {
	fare float64
}

func (c *Cache) FetchBaseFare(ctx context.Context, trip domain.TripDetails) (float64, error) {
	key := Key(trip)

	raw, err := c.store.Get(ctx, key).Result()
	switch {
	case err == nil:
		if fare, perr := strconv.ParseFloat(raw, 64); perr == nil && fareprovider.IsUsable(fare) {
			return fare, nil
		}
		c.log.Warn("discarding malformed cached fare", zap.String("key", key), zap.String("value", raw))
	case errors.Is(err, redis.Nil):
	default:
		c.log.Warn("fare cache read failed", zap.String("key", key), zap.Error(err))
	}

	ch := c.group.DoChan(key, func() (interface{}, error) {
		shared, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedFetchTimeout)
		defer cancel()

		fare, err := c.next.FetchBaseFare(shared, trip)
		if err != nil || !fareprovider.IsUsable(fare) {
			return fetchResult{fare: fare}, err
		}
		if serr := c.store.Set(shared, key, strconv.FormatFloat(fare, 'g', -1, 64), c.ttl).Err(); serr != nil {
			c.log.Warn("fare cache write failed", zap.String("key", key), zap.Error(serr))
		}
		return fetchResult{fare: fare}, nil
	})

	select {
	case <-ctx.Done():
		return fareprovider.Unavailable, ctx.Err()
	case r := <-ch:
		res, _ := r.Val.(fetchResult)
		return res.fare, r.Err
	}
}
