package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

const testTTL = 30 * time.Second

func newTestCache(t *testing.T) (*miniredis.Miniredis, *CitiesRedisCache) {
	t.Helper()
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { client.Close() })

	logger, _ := test.NewNullLogger()
	cache := NewCitiesRedisCache(client, testTTL, trace.NewNoopTracerProvider().Tracer(""), logger)
	return server, cache.(*CitiesRedisCache)
}

func TestGetCitiesMiss(t *testing.T) {
	_, cache := newTestCache(t)

	cities, version, err := cache.GetCities(context.Background())
	require.NoError(t, err)
	assert.Nil(t, cities)
	assert.Zero(t, version)
}

func TestPostCitiesThenHit(t *testing.T) {
	server, cache := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.PostCities(ctx, []string{"Mendoza", "Salta"}, 0))

	stored, err := server.Get(citiesKey)
	require.NoError(t, err)
	assert.JSONEq(t, `["Mendoza","Salta"]`, stored)
	assert.Equal(t, testTTL, server.TTL(citiesKey))

	cities, version, err := cache.GetCities(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Mendoza", "Salta"}, cities)
	assert.Zero(t, version)
}

func TestPostEmptyCitiesIsAHit(t *testing.T) {
	_, cache := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.PostCities(ctx, []string{}, 0))

	cities, _, err := cache.GetCities(ctx)
	require.NoError(t, err)
	assert.NotNil(t, cities)
	assert.Empty(t, cities)
}

func TestGetCitiesCorruptValue(t *testing.T) {
	server, cache := newTestCache(t)
	require.NoError(t, server.Set(citiesKey, "not json"))

	_, _, err := cache.GetCities(context.Background())
	assert.Error(t, err)
}

func TestDelCitiesBumpsVersion(t *testing.T) {
	server, cache := newTestCache(t)
	ctx := context.Background()
	require.NoError(t, cache.PostCities(ctx, []string{"Salta"}, 0))

	require.NoError(t, cache.DelCities(ctx))

	assert.False(t, server.Exists(citiesKey))
	version, err := server.Get(citiesVersionKey)
	require.NoError(t, err)
	assert.Equal(t, "1", version)

	cities, current, err := cache.GetCities(ctx)
	require.NoError(t, err)
	assert.Nil(t, cities)
	assert.Equal(t, int64(1), current)
}

func TestPostCitiesWithStaleVersionIsDropped(t *testing.T) {
	server, cache := newTestCache(t)
	ctx := context.Background()

	_, version, err := cache.GetCities(ctx)
	require.NoError(t, err)
	require.NoError(t, cache.DelCities(ctx))

	require.NoError(t, cache.PostCities(ctx, []string{"Salta"}, version))
	assert.False(t, server.Exists(citiesKey))

	require.NoError(t, cache.PostCities(ctx, []string{"Jujuy", "Salta"}, version+1))
	cities, _, err := cache.GetCities(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Jujuy", "Salta"}, cities)
}
