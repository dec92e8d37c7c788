package domain

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PropertyStore returns (nil, nil) from single-document reads when nothing
// matched; callers decide whether that is an error.
type PropertyStore interface {
	Insert(ctx context.Context, property *Property) (*Property, error)
	Get(ctx context.Context, id primitive.ObjectID) (*Property, error)
	GetAll(ctx context.Context, filter PropertyFilter) ([]*Property, error)
	GetAllWithRating(ctx context.Context, filter PropertyFilter) ([]*Property, error)
	GetByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]*Property, error)
	GetAddresses(ctx context.Context) ([]string, error)
	Update(ctx context.Context, id primitive.ObjectID, patch *PropertyPatch) (*Property, error)
	Delete(ctx context.Context, id primitive.ObjectID) (*Property, error)
	SetAverageRating(ctx context.Context, id primitive.ObjectID, rating *float64) error
}
