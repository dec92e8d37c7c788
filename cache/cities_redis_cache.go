package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/AilenFranco43/Booked/domain"
	"github.com/go-redis/redis"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	citiesKey        = constructKeyCities("unique")
	citiesVersionKey = constructKeyCities("version")
)

var errVersionMoved = errors.New("cities version moved")

type CitiesRedisCache struct {
	client *redis.Client
	ttl    time.Duration
	tracer trace.Tracer
	logger *logrus.Logger
}

func NewCitiesRedisCache(client *redis.Client, ttl time.Duration, tracer trace.Tracer, logger *logrus.Logger) domain.CitiesCache {
	return &CitiesRedisCache{
		client: client,
		ttl:    ttl,
		tracer: tracer,
		logger: logger,
	}
}

func (c *CitiesRedisCache) GetCities(ctx context.Context) ([]string, int64, error) {
	_, span := c.tracer.Start(ctx, "CitiesRedisCache.GetCities")
	defer span.End()

	values, err := c.client.MGet(citiesVersionKey, citiesKey).Result()
	if err != nil {
		span.SetStatus(codes.Error, "Error getting cached cities")
		c.logger.Errorf("redis mget error: %s", err)
		return nil, 0, err
	}

	var version int64
	if raw, ok := values[0].(string); ok {
		if version, err = strconv.ParseInt(raw, 10, 64); err != nil {
			span.SetStatus(codes.Error, "Error decoding cities version")
			return nil, 0, err
		}
	}

	raw, ok := values[1].(string)
	if !ok {
		c.logger.Debug("cities cache miss")
		return nil, version, nil
	}

	cities := []string{}
	if err := json.Unmarshal([]byte(raw), &cities); err != nil {
		span.SetStatus(codes.Error, "Error decoding cached cities")
		return nil, version, err
	}
	c.logger.Debug("cities cache hit")
	return cities, version, nil
}

// PostCities writes under WATCH on the version key so an invalidation from
// any instance in between makes the write a no-op.
func (c *CitiesRedisCache) PostCities(ctx context.Context, cities []string, version int64) error {
	_, span := c.tracer.Start(ctx, "CitiesRedisCache.PostCities")
	defer span.End()

	value, err := json.Marshal(cities)
	if err != nil {
		return err
	}

	err = c.client.Watch(func(tx *redis.Tx) error {
		current, err := tx.Get(citiesVersionKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != version {
			return errVersionMoved
		}
		_, err = tx.Pipelined(func(pipe redis.Pipeliner) error {
			pipe.Set(citiesKey, value, c.ttl)
			return nil
		})
		return err
	}, citiesVersionKey)

	if errors.Is(err, errVersionMoved) || errors.Is(err, redis.TxFailedErr) {
		c.logger.Debug("cities invalidated while computing, not caching")
		return nil
	}
	if err != nil {
		span.SetStatus(codes.Error, "Error posting cached cities")
		c.logger.Errorf("redis set error: %s", err)
		return err
	}
	return nil
}

func (c *CitiesRedisCache) DelCities(ctx context.Context) error {
	_, span := c.tracer.Start(ctx, "CitiesRedisCache.DelCities")
	defer span.End()

	_, err := c.client.TxPipelined(func(pipe redis.Pipeliner) error {
		pipe.Incr(citiesVersionKey)
		pipe.Del(citiesKey)
		return nil
	})
	if err != nil {
		span.SetStatus(codes.Error, "Error deleting cached cities")
		c.logger.Errorf("redis del error: %s", err)
		return err
	}
	return nil
}
