package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AilenFranco43/Booked/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	DATABASE              = "booked"
	PROPERTIES_COLLECTION = "properties"
	REVIEWS_COLLECTION    = "reviews"
	USERS_COLLECTION      = "users"
)

type PropertyMongoDBStore struct {
	properties *mongo.Collection
	tracer     trace.Tracer
}

func NewPropertyMongoDBStore(client *mongo.Client, tracer trace.Tracer) domain.PropertyStore {
	properties := client.Database(DATABASE).Collection(PROPERTIES_COLLECTION)
	return &PropertyMongoDBStore{
		properties: properties,
		tracer:     tracer,
	}
}

func (store *PropertyMongoDBStore) Insert(ctx context.Context, property *domain.Property) (*domain.Property, error) {
	ctx, span := store.tracer.Start(ctx, "PropertyStore.Insert")
	defer span.End()

	property.ID = primitive.NewObjectID()
	result, err := store.properties.InsertOne(ctx, property)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("insert property: %w", err)
	}
	property.ID = result.InsertedID.(primitive.ObjectID)
	return property, nil
}

func (store *PropertyMongoDBStore) Get(ctx context.Context, id primitive.ObjectID) (*domain.Property, error) {
	ctx, span := store.tracer.Start(ctx, "PropertyStore.Get")
	defer span.End()

	return store.filterOne(ctx, bson.M{"_id": id})
}

func (store *PropertyMongoDBStore) GetAll(ctx context.Context, params domain.PropertyFilter) ([]*domain.Property, error) {
	ctx, span := store.tracer.Start(ctx, "PropertyStore.GetAll")
	defer span.End()

	opts := options.Find().SetSort(priceSort(params.OrderBy))
	return store.filter(ctx, BuildPropertyFilter(params), opts)
}

func (store *PropertyMongoDBStore) GetAllWithRating(ctx context.Context, params domain.PropertyFilter) ([]*domain.Property, error) {
	ctx, span := store.tracer.Start(ctx, "PropertyStore.GetAllWithRating")
	defer span.End()

	cursor, err := store.properties.Aggregate(ctx, RatingPipeline(params))
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("aggregate properties by rating: %w", err)
	}
	defer cursor.Close(ctx)

	return decode(ctx, cursor)
}

func (store *PropertyMongoDBStore) GetByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]*domain.Property, error) {
	ctx, span := store.tracer.Start(ctx, "PropertyStore.GetByOwner")
	defer span.End()

	return store.filter(ctx, bson.M{"userId": ownerID})
}

func (store *PropertyMongoDBStore) GetAddresses(ctx context.Context) ([]string, error) {
	ctx, span := store.tracer.Start(ctx, "PropertyStore.GetAddresses")
	defer span.End()

	opts := options.Find().SetProjection(bson.M{"address": 1})
	cursor, err := store.properties.Find(ctx, bson.M{}, opts)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("find addresses: %w", err)
	}
	defer cursor.Close(ctx)

	var addresses []string
	for cursor.Next(ctx) {
		var row struct {
			Address string `bson:"address"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, err
		}
		addresses = append(addresses, row.Address)
	}
	return addresses, cursor.Err()
}

func (store *PropertyMongoDBStore) Update(ctx context.Context, id primitive.ObjectID, patch *domain.PropertyPatch) (*domain.Property, error) {
	ctx, span := store.tracer.Start(ctx, "PropertyStore.Update")
	defer span.End()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	result := store.properties.FindOneAndUpdate(ctx, bson.M{"_id": id}, propertyPatchUpdate(patch, time.Now().UTC()), opts)

	var property domain.Property
	if err := result.Decode(&property); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("update property %s: %w", id.Hex(), err)
	}
	return &property, nil
}

func (store *PropertyMongoDBStore) Delete(ctx context.Context, id primitive.ObjectID) (*domain.Property, error) {
	ctx, span := store.tracer.Start(ctx, "PropertyStore.Delete")
	defer span.End()

	result := store.properties.FindOneAndDelete(ctx, bson.M{"_id": id})

	var property domain.Property
	if err := result.Decode(&property); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("delete property %s: %w", id.Hex(), err)
	}
	return &property, nil
}

func (store *PropertyMongoDBStore) SetAverageRating(ctx context.Context, id primitive.ObjectID, rating *float64) error {
	ctx, span := store.tracer.Start(ctx, "PropertyStore.SetAverageRating")
	defer span.End()

	_, err := store.properties.UpdateByID(ctx, id, bson.M{"$set": bson.M{"averageRating": rating}})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("set average rating on %s: %w", id.Hex(), err)
	}
	return nil
}

func propertyPatchUpdate(patch *domain.PropertyPatch, now time.Time) bson.M {
	set := bson.M{"updatedAt": now}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Price != nil {
		set["price"] = *patch.Price
	}
	if patch.MaxPeople != nil {
		set["max_people"] = *patch.MaxPeople
	}
	if patch.Tags != nil {
		set["tags"] = *patch.Tags
	}
	if patch.Address != nil {
		set["address"] = *patch.Address
	}
	if patch.Coordinates != nil {
		set["coordinates"] = *patch.Coordinates
	}
	if patch.Photos != nil {
		set["photos"] = *patch.Photos
	}
	return bson.M{"$set": set}
}

func (store *PropertyMongoDBStore) filter(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]*domain.Property, error) {
	cursor, err := store.properties.Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("find properties: %w", err)
	}
	defer cursor.Close(ctx)

	return decode(ctx, cursor)
}

func (store *PropertyMongoDBStore) filterOne(ctx context.Context, filter interface{}) (*domain.Property, error) {
	result := store.properties.FindOne(ctx, filter)

	var property domain.Property
	if err := result.Decode(&property); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("find property: %w", err)
	}
	return &property, nil
}

func decode(ctx context.Context, cursor *mongo.Cursor) ([]*domain.Property, error) {
	properties := []*domain.Property{}
	for cursor.Next(ctx) {
		var property domain.Property
		if err := cursor.Decode(&property); err != nil {
			return nil, err
		}
		properties = append(properties, &property)
	}
	return properties, cursor.Err()
}
