package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/travelbooking/config"
	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/redis/go-redis/v9"
)

const travelOptionsVersionKey = "cache:travel_options:version"

// RedisCache stores filtered travel option lists. Every list key embeds the
// current version, so bumping the version drops all lists at once.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(cfg config.RedisConfig, ttl time.Duration) *RedisCache {
	return &RedisCache{
		client: redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		ttl:    ttl,
	}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// GetTravelOptions returns the cached list for filter and the version it was
// looked up under. A miss returns a nil list. Pass the version back to
// SetTravelOptions so a list loaded before an invalidation is never stored
// under the newer version.
func (c *RedisCache) GetTravelOptions(ctx context.Context, filter domain.TravelOptionFilter) ([]domain.TravelOption, int64, error) {
	version, err := c.version(ctx)
	if err != nil {
		return nil, 0, err
	}

	data, err := c.client.Get(ctx, travelOptionsKey(version, filter)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, version, nil
		}
		return nil, version, err
	}

	var options []domain.TravelOption
	if err := json.Unmarshal(data, &options); err != nil {
		return nil, version, err
	}
	if options == nil {
		options = []domain.TravelOption{}
	}
	return options, version, nil
}

func (c *RedisCache) SetTravelOptions(ctx context.Context, filter domain.TravelOptionFilter, version int64, options []domain.TravelOption) error {
	if options == nil {
		options = []domain.TravelOption{}
	}
	payload, err := json.Marshal(options)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, travelOptionsKey(version, filter), payload, c.ttl).Err()
}

func (c *RedisCache) InvalidateTravelOptions(ctx context.Context) error {
	return c.client.Incr(ctx, travelOptionsVersionKey).Err()
}

func (c *RedisCache) version(ctx context.Context) (int64, error) {
	v, err := c.client.Get(ctx, travelOptionsVersionKey).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, err
	}
	return v, nil
}

func travelOptionsKey(version int64, filter domain.TravelOptionFilter) string {
	return fmt.Sprintf("cache:travel_options:v%d:%s", version, filter.Key())
}
