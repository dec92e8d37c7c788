package application

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/AilenFranco43/Booked/domain"
	"github.com/AilenFranco43/Booked/errors"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type PropertyService struct {
	store  domain.PropertyStore
	users  domain.UserStore
	cache  domain.CitiesCache
	cb     *gobreaker.CircuitBreaker
	tracer trace.Tracer
	logger *logrus.Logger

	// bumped on every catalog write; a cities list computed across a bump
	// is not cached
	generation atomic.Uint64
}

type citiesSnapshot struct {
	cities  []string
	version int64
}

// NewPropertyService accepts a nil cache; unique cities are then always read
// from the store.
func NewPropertyService(store domain.PropertyStore, users domain.UserStore, cache domain.CitiesCache, tracer trace.Tracer, logger *logrus.Logger) *PropertyService {
	return &PropertyService{
		store:  store,
		users:  users,
		cache:  cache,
		cb:     CircuitBreaker("citiesCache", logger),
		tracer: tracer,
		logger: logger,
	}
}

func (service *PropertyService) List(ctx context.Context, filter domain.PropertyFilter) ([]*domain.Property, error) {
	ctx, span := service.tracer.Start(ctx, "PropertyService.List")
	defer span.End()

	var (
		properties []*domain.Property
		err        error
	)
	if filter.SortByRating != "" {
		properties, err = service.store.GetAllWithRating(ctx, filter)
	} else {
		properties, err = service.store.GetAll(ctx, filter)
	}
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return properties, nil
}

func (service *PropertyService) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Property, error) {
	ctx, span := service.tracer.Start(ctx, "PropertyService.FindByID")
	defer span.End()

	property, err := service.store.Get(ctx, id)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if property == nil {
		return nil, errors.NotFound(errors.PropertyNotFound, id.Hex())
	}
	return property, nil
}

func (service *PropertyService) FindAllByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]*domain.Property, error) {
	ctx, span := service.tracer.Start(ctx, "PropertyService.FindAllByOwner")
	defer span.End()

	properties, err := service.store.GetByOwner(ctx, ownerID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if len(properties) == 0 {
		return nil, errors.NotFound(errors.OwnerPropertiesNotFound, ownerID.Hex())
	}
	return properties, nil
}

func (service *PropertyService) Create(ctx context.Context, property *domain.Property, ownerID primitive.ObjectID) (*domain.Property, error) {
	ctx, span := service.tracer.Start(ctx, "PropertyService.Create")
	defer span.End()

	exists, err := service.users.Exists(ctx, ownerID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if !exists {
		return nil, errors.NotFound(errors.UserNotFound, ownerID.Hex())
	}

	now := time.Now().UTC()
	property.UserID = ownerID
	property.AverageRating = nil
	property.ReviewCount = nil
	property.Reviews = nil
	property.CreatedAt = now
	property.UpdatedAt = now

	created, err := service.store.Insert(ctx, property)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	service.invalidateCities(ctx)

	service.logger.WithFields(logrus.Fields{"property": created.ID.Hex(), "owner": ownerID.Hex()}).Info("property created")
	return created, nil
}

func (service *PropertyService) Update(ctx context.Context, id primitive.ObjectID, patch *domain.PropertyPatch) (*domain.Property, error) {
	ctx, span := service.tracer.Start(ctx, "PropertyService.Update")
	defer span.End()

	if _, err := service.FindByID(ctx, id); err != nil {
		return nil, err
	}

	updated, err := service.store.Update(ctx, id, patch)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if updated == nil {
		// deleted between the lookup and the write
		return nil, errors.NotFound(errors.PropertyNotFound, id.Hex())
	}
	service.invalidateCities(ctx)
	return updated, nil
}

// Remove returns nil without an error when nothing was deleted.
func (service *PropertyService) Remove(ctx context.Context, id primitive.ObjectID) (*domain.Property, error) {
	ctx, span := service.tracer.Start(ctx, "PropertyService.Remove")
	defer span.End()

	deleted, err := service.store.Delete(ctx, id)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if deleted != nil {
		service.invalidateCities(ctx)
		service.logger.WithField("property", id.Hex()).Info("property removed")
	}
	return deleted, nil
}

func (service *PropertyService) UniqueCities(ctx context.Context) ([]string, error) {
	ctx, span := service.tracer.Start(ctx, "PropertyService.UniqueCities")
	defer span.End()

	generation := service.generation.Load()
	snapshot, cached := service.cachedCities(ctx)
	if cached && snapshot.cities != nil {
		return snapshot.cities, nil
	}

	addresses, err := service.store.GetAddresses(ctx)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	cities := uniqueCities(addresses)

	if cached && service.generation.Load() == generation {
		_, err := service.cb.Execute(func() (interface{}, error) {
			return nil, service.cache.PostCities(ctx, cities, snapshot.version)
		})
		if err != nil {
			service.logger.WithError(err).Warn("could not cache unique cities")
		}
	}
	return cities, nil
}

// cachedCities reports false when there is no cache or it could not be read.
func (service *PropertyService) cachedCities(ctx context.Context) (citiesSnapshot, bool) {
	if service.cache == nil {
		return citiesSnapshot{}, false
	}
	result, err := service.cb.Execute(func() (interface{}, error) {
		cities, version, err := service.cache.GetCities(ctx)
		return citiesSnapshot{cities: cities, version: version}, err
	})
	if err != nil {
		service.logger.WithError(err).Warn("cities cache unavailable, reading from store")
		return citiesSnapshot{}, false
	}
	return result.(citiesSnapshot), true
}

func (service *PropertyService) invalidateCities(ctx context.Context) {
	service.generation.Add(1)
	if service.cache == nil {
		return
	}
	_, err := service.cb.Execute(func() (interface{}, error) {
		return nil, service.cache.DelCities(ctx)
	})
	if err != nil {
		service.logger.WithError(err).Warn("could not invalidate cities cache")
	}
}
