package domain

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ReviewStore interface {
	Insert(ctx context.Context, review *Review) (*Review, error)
	Get(ctx context.Context, id primitive.ObjectID) (*Review, error)
	GetAll(ctx context.Context) ([]*Review, error)
	GetByProperty(ctx context.Context, propertyID primitive.ObjectID) ([]*Review, error)
	Update(ctx context.Context, id primitive.ObjectID, patch *ReviewPatch) (*Review, error)
	Delete(ctx context.Context, id primitive.ObjectID) (*Review, error)
	// AverageRating returns nil when the property has no reviews.
	AverageRating(ctx context.Context, propertyID primitive.ObjectID) (*RatingAggregate, error)
	MigrateLegacyReferences(ctx context.Context) (int, error)
}

type UserStore interface {
	Exists(ctx context.Context, id primitive.ObjectID) (bool, error)
}
