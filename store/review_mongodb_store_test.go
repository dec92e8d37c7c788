package store

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
	"go.opentelemetry.io/otel/trace"
)

var testTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

var noopTracer = trace.NewNoopTracerProvider().Tracer("")

const reviewsNamespace = DATABASE + "." + REVIEWS_COLLECTION

func newReviewStore(mt *mtest.T) *ReviewMongoDBStore {
	logger, _ := test.NewNullLogger()
	return NewReviewMongoDBStore(mt.Client, noopTracer, logger).(*ReviewMongoDBStore)
}

func TestReviewStoreAverageRating(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("aggregate row", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, reviewsNamespace, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: nil},
			{Key: "avgRating", Value: 4.0},
			{Key: "count", Value: 3},
		}))

		aggregate, err := newReviewStore(mt).AverageRating(context.Background(), primitive.NewObjectID())
		require.NoError(mt, err)
		require.NotNil(mt, aggregate)
		require.NotNil(mt, aggregate.Mean)
		assert.Equal(mt, 4.0, *aggregate.Mean)
		assert.Equal(mt, 3, aggregate.Count)
	})

	mt.Run("no reviews", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, reviewsNamespace, mtest.FirstBatch))

		aggregate, err := newReviewStore(mt).AverageRating(context.Background(), primitive.NewObjectID())
		require.NoError(mt, err)
		assert.Nil(mt, aggregate)
	})
}

func TestReviewStoreDeleteMissing(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("returns nil", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		review, err := newReviewStore(mt).Delete(context.Background(), primitive.NewObjectID())
		require.NoError(mt, err)
		assert.Nil(mt, review)
	})
}

func TestReviewStoreMigrateLegacyReferences(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("converts string references", func(mt *mtest.T) {
		property := primitive.NewObjectID()
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, reviewsNamespace, mtest.FirstBatch,
				bson.D{
					{Key: "_id", Value: primitive.NewObjectID()},
					{Key: "property", Value: property.Hex()},
					{Key: "guest", Value: primitive.NewObjectID()},
				},
				bson.D{
					{Key: "_id", Value: primitive.NewObjectID()},
					{Key: "property", Value: "not-an-id"},
					{Key: "guest", Value: primitive.NewObjectID()},
				},
			),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
		)

		migrated, err := newReviewStore(mt).MigrateLegacyReferences(context.Background())
		require.NoError(mt, err)
		assert.Equal(mt, 1, migrated)
	})

	mt.Run("nothing to migrate", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, reviewsNamespace, mtest.FirstBatch))

		migrated, err := newReviewStore(mt).MigrateLegacyReferences(context.Background())
		require.NoError(mt, err)
		assert.Zero(mt, migrated)
	})
}

func TestLegacyReferenceSet(t *testing.T) {
	logger, hook := test.NewNullLogger()
	property := primitive.NewObjectID()
	guest := primitive.NewObjectID()

	set := legacyReferenceSet(bson.M{
		"_id":      primitive.NewObjectID(),
		"property": property.Hex(),
		"guest":    guest.Hex(),
	}, logger)
	assert.Equal(t, bson.M{"property": property, "guest": guest}, set)

	set = legacyReferenceSet(bson.M{"property": "bogus", "guest": guest}, logger)
	assert.Empty(t, set)
	assert.Len(t, hook.AllEntries(), 1)
}

func TestUserStoreExists(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, DATABASE+"."+USERS_COLLECTION, mtest.FirstBatch, bson.D{{Key: "n", Value: 1}}))

		exists, err := NewUserMongoDBStore(mt.Client, noopTracer).Exists(context.Background(), primitive.NewObjectID())
		require.NoError(mt, err)
		assert.True(mt, exists)
	})

	mt.Run("missing", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, DATABASE+"."+USERS_COLLECTION, mtest.FirstBatch))

		exists, err := NewUserMongoDBStore(mt.Client, noopTracer).Exists(context.Background(), primitive.NewObjectID())
		require.NoError(mt, err)
		assert.False(mt, exists)
	})
}
