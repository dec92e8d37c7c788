package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AilenFranco43/Booked/domain"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type ReviewMongoDBStore struct {
	reviews *mongo.Collection
	tracer  trace.Tracer
	logger  *logrus.Logger
}

func NewReviewMongoDBStore(client *mongo.Client, tracer trace.Tracer, logger *logrus.Logger) domain.ReviewStore {
	reviews := client.Database(DATABASE).Collection(REVIEWS_COLLECTION)
	return &ReviewMongoDBStore{
		reviews: reviews,
		tracer:  tracer,
		logger:  logger,
	}
}

func (store *ReviewMongoDBStore) Insert(ctx context.Context, review *domain.Review) (*domain.Review, error) {
	ctx, span := store.tracer.Start(ctx, "ReviewStore.Insert")
	defer span.End()

	review.ID = primitive.NewObjectID()
	result, err := store.reviews.InsertOne(ctx, review)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("insert review: %w", err)
	}
	review.ID = result.InsertedID.(primitive.ObjectID)
	return review, nil
}

func (store *ReviewMongoDBStore) Get(ctx context.Context, id primitive.ObjectID) (*domain.Review, error) {
	ctx, span := store.tracer.Start(ctx, "ReviewStore.Get")
	defer span.End()

	pipeline := append(mongo.Pipeline{matchStage(bson.M{"_id": id})}, populateStages(true)...)
	reviews, err := store.aggregate(ctx, pipeline)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if len(reviews) == 0 {
		return nil, nil
	}
	return reviews[0], nil
}

func (store *ReviewMongoDBStore) GetAll(ctx context.Context) ([]*domain.Review, error) {
	ctx, span := store.tracer.Start(ctx, "ReviewStore.GetAll")
	defer span.End()

	return store.aggregate(ctx, populateStages(true))
}

func (store *ReviewMongoDBStore) GetByProperty(ctx context.Context, propertyID primitive.ObjectID) ([]*domain.Review, error) {
	ctx, span := store.tracer.Start(ctx, "ReviewStore.GetByProperty")
	defer span.End()

	pipeline := append(mongo.Pipeline{matchStage(bson.M{"property": propertyID})}, populateStages(false)...)
	return store.aggregate(ctx, pipeline)
}

func (store *ReviewMongoDBStore) Update(ctx context.Context, id primitive.ObjectID, patch *domain.ReviewPatch) (*domain.Review, error) {
	ctx, span := store.tracer.Start(ctx, "ReviewStore.Update")
	defer span.End()

	set := bson.M{"updatedAt": time.Now().UTC()}
	if patch.Property != nil {
		set["property"] = *patch.Property
	}
	if patch.Guest != nil {
		set["guest"] = *patch.Guest
	}
	if patch.Rating != nil {
		set["rating"] = *patch.Rating
	}
	if patch.Comment != nil {
		set["comment"] = *patch.Comment
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	result := store.reviews.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts)

	var review domain.Review
	if err := result.Decode(&review); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("update review %s: %w", id.Hex(), err)
	}
	return &review, nil
}

func (store *ReviewMongoDBStore) Delete(ctx context.Context, id primitive.ObjectID) (*domain.Review, error) {
	ctx, span := store.tracer.Start(ctx, "ReviewStore.Delete")
	defer span.End()

	var review domain.Review
	if err := store.reviews.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&review); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("delete review %s: %w", id.Hex(), err)
	}
	return &review, nil
}

func (store *ReviewMongoDBStore) AverageRating(ctx context.Context, propertyID primitive.ObjectID) (*domain.RatingAggregate, error) {
	ctx, span := store.tracer.Start(ctx, "ReviewStore.AverageRating")
	defer span.End()

	pipeline := mongo.Pipeline{
		matchStage(bson.M{"property": propertyID}),
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "avgRating", Value: bson.D{{Key: "$avg", Value: "$rating"}}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}

	cursor, err := store.reviews.Aggregate(ctx, pipeline)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("aggregate rating for %s: %w", propertyID.Hex(), err)
	}
	defer cursor.Close(ctx)

	if !cursor.Next(ctx) {
		return nil, cursor.Err()
	}

	var row struct {
		AvgRating *float64 `bson:"avgRating"`
		Count     int      `bson:"count"`
	}
	if err := cursor.Decode(&row); err != nil {
		return nil, err
	}
	return &domain.RatingAggregate{Mean: row.AvgRating, Count: row.Count}, nil
}

// MigrateLegacyReferences rewrites string-typed property/guest references to
// ObjectIDs. Documents already holding ObjectIDs are not matched.
func (store *ReviewMongoDBStore) MigrateLegacyReferences(ctx context.Context) (int, error) {
	ctx, span := store.tracer.Start(ctx, "ReviewStore.MigrateLegacyReferences")
	defer span.End()

	filter := bson.M{"$or": bson.A{
		bson.M{"property": bson.M{"$type": "string"}},
		bson.M{"guest": bson.M{"$type": "string"}},
	}}

	cursor, err := store.reviews.Find(ctx, filter)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return 0, fmt.Errorf("find legacy reviews: %w", err)
	}
	defer cursor.Close(ctx)

	var models []mongo.WriteModel
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return 0, err
		}
		set := legacyReferenceSet(doc, store.logger)
		if len(set) == 0 {
			continue
		}
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": doc["_id"]}).
			SetUpdate(bson.M{"$set": set}))
	}
	if err := cursor.Err(); err != nil {
		return 0, err
	}

	if len(models) > 0 {
		if _, err := store.reviews.BulkWrite(ctx, models); err != nil {
			span.SetStatus(codes.Error, err.Error())
			return 0, fmt.Errorf("bulk migrate reviews: %w", err)
		}
	}
	return len(models), nil
}

func legacyReferenceSet(doc bson.M, logger *logrus.Logger) bson.M {
	set := bson.M{}
	for _, field := range []string{"property", "guest"} {
		raw, ok := doc[field].(string)
		if !ok {
			continue
		}
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			logger.WithFields(logrus.Fields{"review": doc["_id"], "field": field, "value": raw}).
				Warn("skipping malformed legacy reference")
			continue
		}
		set[field] = id
	}
	return set
}

func matchStage(filter bson.M) bson.D {
	return bson.D{{Key: "$match", Value: filter}}
}

func populateStages(withProperty bool) mongo.Pipeline {
	stages := mongo.Pipeline{
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: USERS_COLLECTION},
			{Key: "localField", Value: "guest"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "guestDetails"},
		}}},
		{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$guestDetails"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
	}
	if withProperty {
		stages = append(stages,
			bson.D{{Key: "$lookup", Value: bson.D{
				{Key: "from", Value: PROPERTIES_COLLECTION},
				{Key: "localField", Value: "property"},
				{Key: "foreignField", Value: "_id"},
				{Key: "as", Value: "propertyDetails"},
			}}},
			bson.D{{Key: "$unwind", Value: bson.D{
				{Key: "path", Value: "$propertyDetails"},
				{Key: "preserveNullAndEmptyArrays", Value: true},
			}}},
		)
	}
	return stages
}

func (store *ReviewMongoDBStore) aggregate(ctx context.Context, pipeline mongo.Pipeline) ([]*domain.Review, error) {
	cursor, err := store.reviews.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate reviews: %w", err)
	}
	defer cursor.Close(ctx)

	reviews := []*domain.Review{}
	for cursor.Next(ctx) {
		var review domain.Review
		if err := cursor.Decode(&review); err != nil {
			return nil, err
		}
		reviews = append(reviews, &review)
	}
	return reviews, cursor.Err()
}
