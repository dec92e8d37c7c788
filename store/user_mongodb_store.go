package store

import (
	"context"
	"fmt"

	"github.com/AilenFranco43/Booked/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// UserMongoDBStore is a read-only view over the users collection. Accounts
// are owned by the auth side of the platform.
type UserMongoDBStore struct {
	users  *mongo.Collection
	tracer trace.Tracer
}

func NewUserMongoDBStore(client *mongo.Client, tracer trace.Tracer) domain.UserStore {
	users := client.Database(DATABASE).Collection(USERS_COLLECTION)
	return &UserMongoDBStore{
		users:  users,
		tracer: tracer,
	}
}

func (store *UserMongoDBStore) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	ctx, span := store.tracer.Start(ctx, "UserStore.Exists")
	defer span.End()

	count, err := store.users.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return false, fmt.Errorf("count user %s: %w", id.Hex(), err)
	}
	return count > 0, nil
}
