package domain

import "context"

// CitiesCache holds the unique-cities list together with a version that
// every invalidation bumps.
type CitiesCache interface {
	// GetCities returns nil cities on a miss. The version is returned either way.
	GetCities(ctx context.Context) ([]string, int64, error)
	// PostCities is a no-op when the version moved past version.
	PostCities(ctx context.Context, cities []string, version int64) error
	DelCities(ctx context.Context) error
}
