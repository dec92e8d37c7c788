package application

import (
	"context"
	"math"
	"time"

	"github.com/AilenFranco43/Booked/domain"
	"github.com/AilenFranco43/Booked/errors"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

type ReviewService struct {
	store      domain.ReviewStore
	properties domain.PropertyStore
	users      domain.UserStore
	tracer     trace.Tracer
	logger     *logrus.Logger
}

func NewReviewService(store domain.ReviewStore, properties domain.PropertyStore, users domain.UserStore, tracer trace.Tracer, logger *logrus.Logger) *ReviewService {
	return &ReviewService{
		store:      store,
		properties: properties,
		users:      users,
		tracer:     tracer,
		logger:     logger,
	}
}

func (service *ReviewService) Create(ctx context.Context, review *domain.Review) (*domain.Review, error) {
	ctx, span := service.tracer.Start(ctx, "ReviewService.Create")
	defer span.End()

	if err := service.checkReferences(ctx, &review.Property, &review.Guest); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	now := time.Now().UTC()
	review.CreatedAt = now
	review.UpdatedAt = now
	review.GuestDetails = nil
	review.PropertyDetails = nil

	created, err := service.store.Insert(ctx, review)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := service.RecomputeAverage(ctx, created.Property); err != nil {
		return nil, err
	}
	return created, nil
}

func (service *ReviewService) FindAll(ctx context.Context) ([]*domain.Review, error) {
	ctx, span := service.tracer.Start(ctx, "ReviewService.FindAll")
	defer span.End()

	return service.store.GetAll(ctx)
}

func (service *ReviewService) FindOne(ctx context.Context, id primitive.ObjectID) (*domain.Review, error) {
	ctx, span := service.tracer.Start(ctx, "ReviewService.FindOne")
	defer span.End()

	review, err := service.store.Get(ctx, id)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if review == nil {
		return nil, errors.NotFound(errors.ReviewNotFound, id.Hex())
	}
	return review, nil
}

// FindByProperty averages the returned reviews on the fly. It does not read
// the rating persisted on the property.
func (service *ReviewService) FindByProperty(ctx context.Context, propertyID primitive.ObjectID) (*domain.PropertyReviews, error) {
	ctx, span := service.tracer.Start(ctx, "ReviewService.FindByProperty")
	defer span.End()

	reviews, err := service.store.GetByProperty(ctx, propertyID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if len(reviews) == 0 {
		return nil, errors.NotFound(errors.PropertyReviewsNotFound, propertyID.Hex())
	}

	var sum float64
	var rated int
	for _, review := range reviews {
		if review.Rating == nil {
			continue
		}
		sum += *review.Rating
		rated++
	}

	var average float64
	if rated > 0 {
		average = roundTo2(sum / float64(rated))
	}

	return &domain.PropertyReviews{
		Reviews:       reviews,
		AverageRating: average,
		Count:         len(reviews),
	}, nil
}

func (service *ReviewService) Update(ctx context.Context, id primitive.ObjectID, patch *domain.ReviewPatch) (*domain.Review, error) {
	ctx, span := service.tracer.Start(ctx, "ReviewService.Update")
	defer span.End()

	current, err := service.store.Get(ctx, id)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if current == nil {
		return nil, errors.NotFound(errors.ReviewNotFound, id.Hex())
	}

	if err := service.checkReferences(ctx, patch.Property, patch.Guest); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	updated, err := service.store.Update(ctx, id, patch)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if updated == nil {
		return nil, errors.NotFound(errors.ReviewNotFound, id.Hex())
	}

	if err := service.RecomputeAverage(ctx, updated.Property); err != nil {
		return nil, err
	}
	if updated.Property != current.Property {
		if err := service.RecomputeAverage(ctx, current.Property); err != nil {
			return nil, err
		}
	}
	return updated, nil
}

func (service *ReviewService) Remove(ctx context.Context, id primitive.ObjectID) (*domain.Review, error) {
	ctx, span := service.tracer.Start(ctx, "ReviewService.Remove")
	defer span.End()

	deleted, err := service.store.Delete(ctx, id)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if deleted == nil {
		return nil, errors.NotFound(errors.ReviewNotFound, id.Hex())
	}

	if err := service.RecomputeAverage(ctx, deleted.Property); err != nil {
		return nil, err
	}
	return deleted, nil
}

// RecomputeAverage writes the mean rating of the property's reviews onto the
// property. With no reviews left the stored value is kept as is.
func (service *ReviewService) RecomputeAverage(ctx context.Context, propertyID primitive.ObjectID) error {
	ctx, span := service.tracer.Start(ctx, "ReviewService.RecomputeAverage")
	defer span.End()

	aggregate, err := service.store.AverageRating(ctx, propertyID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if aggregate == nil {
		service.logger.WithField("property", propertyID.Hex()).Debug("no reviews left, keeping stored rating")
		return nil
	}

	if err := service.properties.SetAverageRating(ctx, propertyID, aggregate.Mean); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

func (service *ReviewService) MigrateLegacyReferences(ctx context.Context) (*domain.MigrationResult, error) {
	ctx, span := service.tracer.Start(ctx, "ReviewService.MigrateLegacyReferences")
	defer span.End()

	migrated, err := service.store.MigrateLegacyReferences(ctx)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	service.logger.WithField("migrated", migrated).Info("legacy review references migrated")
	return &domain.MigrationResult{Migrated: migrated}, nil
}

// checkReferences runs the property and guest lookups concurrently. A nil id
// is not checked. When both are missing the property is reported.
func (service *ReviewService) checkReferences(ctx context.Context, propertyID, guestID *primitive.ObjectID) error {
	var group errgroup.Group
	var propertyErr, guestErr error

	if propertyID != nil {
		id := *propertyID
		group.Go(func() error {
			property, err := service.properties.Get(ctx, id)
			switch {
			case err != nil:
				propertyErr = err
			case property == nil:
				propertyErr = errors.NotFound(errors.PropertyIDNotFound, id.Hex())
			}
			return nil
		})
	}

	if guestID != nil {
		id := *guestID
		group.Go(func() error {
			exists, err := service.users.Exists(ctx, id)
			switch {
			case err != nil:
				guestErr = err
			case !exists:
				guestErr = errors.NotFound(errors.UserNotFound, id.Hex())
			}
			return nil
		})
	}

	_ = group.Wait()
	if propertyErr != nil {
		return propertyErr
	}
	return guestErr
}

func roundTo2(value float64) float64 {
	return math.Round(value*100) / 100
}
