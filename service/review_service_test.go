package application

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"

	"github.com/AilenFranco43/Booked/domain"
	"github.com/AilenFranco43/Booked/errors"
	"github.com/AilenFranco43/Booked/store/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type reviewFixture struct {
	service    *ReviewService
	reviews    *storetest.ReviewStore
	properties *storetest.PropertyStore
	users      *storetest.UserStore
	property   primitive.ObjectID
	guest      primitive.ObjectID
}

func newReviewFixture(t *testing.T) *reviewFixture {
	t.Helper()
	f := &reviewFixture{
		reviews:    storetest.NewReviewStore(),
		properties: storetest.NewPropertyStore(),
		guest:      primitive.NewObjectID(),
	}
	f.users = storetest.NewUserStore(f.guest)
	f.property = f.addProperty(t)
	f.service = NewReviewService(f.reviews, f.properties, f.users, noopTracer, nullLogger())
	return f
}

func (f *reviewFixture) addProperty(t *testing.T) primitive.ObjectID {
	t.Helper()
	property, err := f.properties.Insert(context.Background(), &domain.Property{Title: "Casa", Price: 10, MaxPeople: 1})
	require.NoError(t, err)
	return property.ID
}

func (f *reviewFixture) rate(t *testing.T, rating float64) *domain.Review {
	t.Helper()
	review, err := f.service.Create(context.Background(), &domain.Review{
		Property: f.property,
		Guest:    f.guest,
		Rating:   float(rating),
	})
	require.NoError(t, err)
	return review
}

func (f *reviewFixture) storedRating(t *testing.T, id primitive.ObjectID) *float64 {
	t.Helper()
	property, err := f.properties.Get(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, property)
	return property.AverageRating
}

func TestAverageRatingFollowsReviewLifecycle(t *testing.T) {
	f := newReviewFixture(t)

	five := f.rate(t, 5)
	three := f.rate(t, 3)
	four := f.rate(t, 4)
	require.NotNil(t, f.storedRating(t, f.property))
	assert.InDelta(t, 4.0, *f.storedRating(t, f.property), 1e-9)

	_, err := f.service.Remove(context.Background(), five.ID)
	require.NoError(t, err)
	assert.InDelta(t, 3.5, *f.storedRating(t, f.property), 1e-9)

	_, err = f.service.Remove(context.Background(), three.ID)
	require.NoError(t, err)
	_, err = f.service.Remove(context.Background(), four.ID)
	require.NoError(t, err)

	// nothing left to average, the last value stays
	assert.InDelta(t, 3.5, *f.storedRating(t, f.property), 1e-9)
}

func TestCreateUnknownPropertyPersistsNothing(t *testing.T) {
	f := newReviewFixture(t)
	missing := primitive.NewObjectID()

	_, err := f.service.Create(context.Background(), &domain.Review{Property: missing, Guest: f.guest, Rating: float(4)})

	var notFound *errors.NotFoundError
	require.True(t, stderrors.As(err, &notFound))
	assert.Equal(t, "Property with ID "+missing.Hex()+" not found", notFound.Message)
	assert.Zero(t, f.reviews.Len())
}

func TestCreateUnknownGuestPersistsNothing(t *testing.T) {
	f := newReviewFixture(t)
	missing := primitive.NewObjectID()

	_, err := f.service.Create(context.Background(), &domain.Review{Property: f.property, Guest: missing, Rating: float(4)})

	var notFound *errors.NotFoundError
	require.True(t, stderrors.As(err, &notFound))
	assert.Equal(t, "User with ID "+missing.Hex()+" not found", notFound.Message)
	assert.Zero(t, f.reviews.Len())
	assert.Nil(t, f.storedRating(t, f.property))
}

func TestFindByPropertyAveragesLive(t *testing.T) {
	f := newReviewFixture(t)
	f.rate(t, 2)
	f.rate(t, 5)

	result, err := f.service.FindByProperty(context.Background(), f.property)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Count)
	assert.Equal(t, 3.5, result.AverageRating)
	assert.Len(t, result.Reviews, 2)
}

func TestFindByPropertyRoundsToTwoDecimals(t *testing.T) {
	f := newReviewFixture(t)
	f.rate(t, 5)
	f.rate(t, 4)
	f.rate(t, 4)

	result, err := f.service.FindByProperty(context.Background(), f.property)
	require.NoError(t, err)
	assert.Equal(t, 4.33, result.AverageRating)
}

func TestFindByPropertyWithoutReviews(t *testing.T) {
	f := newReviewFixture(t)

	_, err := f.service.FindByProperty(context.Background(), f.property)

	var notFound *errors.NotFoundError
	assert.True(t, stderrors.As(err, &notFound))
}

func TestFindOneNotFound(t *testing.T) {
	f := newReviewFixture(t)

	_, err := f.service.FindOne(context.Background(), primitive.NewObjectID())

	var notFound *errors.NotFoundError
	assert.True(t, stderrors.As(err, &notFound))
}

func TestUpdateRatingRecomputes(t *testing.T) {
	f := newReviewFixture(t)
	review := f.rate(t, 2)
	f.rate(t, 4)

	_, err := f.service.Update(context.Background(), review.ID, &domain.ReviewPatch{Rating: float(5)})
	require.NoError(t, err)
	assert.InDelta(t, 4.5, *f.storedRating(t, f.property), 1e-9)
}

func TestUpdateCommentRecomputesStaleRating(t *testing.T) {
	f := newReviewFixture(t)
	review := f.rate(t, 4)
	require.NoError(t, f.properties.SetAverageRating(context.Background(), f.property, float(1)))

	comment := "great view"
	_, err := f.service.Update(context.Background(), review.ID, &domain.ReviewPatch{Comment: &comment})
	require.NoError(t, err)
	assert.InDelta(t, 4.0, *f.storedRating(t, f.property), 1e-9)
}

func TestUpdateMovingPropertyRecomputesBoth(t *testing.T) {
	f := newReviewFixture(t)
	other := f.addProperty(t)
	moving := f.rate(t, 1)
	f.rate(t, 5)

	_, err := f.service.Update(context.Background(), moving.ID, &domain.ReviewPatch{Property: &other})
	require.NoError(t, err)

	assert.InDelta(t, 5.0, *f.storedRating(t, f.property), 1e-9)
	assert.InDelta(t, 1.0, *f.storedRating(t, other), 1e-9)
}

func TestUpdateRejectsUnknownReferences(t *testing.T) {
	f := newReviewFixture(t)
	review := f.rate(t, 3)
	missing := primitive.NewObjectID()

	_, err := f.service.Update(context.Background(), review.ID, &domain.ReviewPatch{Guest: &missing})

	var notFound *errors.NotFoundError
	require.True(t, stderrors.As(err, &notFound))
	assert.Contains(t, notFound.Message, missing.Hex())

	stored, err := f.reviews.Get(context.Background(), review.ID)
	require.NoError(t, err)
	assert.Equal(t, f.guest, stored.Guest)
}

func TestCreateReportsMissingPropertyFirst(t *testing.T) {
	f := newReviewFixture(t)
	property := primitive.NewObjectID()
	guest := primitive.NewObjectID()

	for i := 0; i < 50; i++ {
		_, err := f.service.Create(context.Background(), &domain.Review{Property: property, Guest: guest, Rating: float(3)})

		var notFound *errors.NotFoundError
		require.True(t, stderrors.As(err, &notFound))
		require.Contains(t, notFound.Message, property.Hex())
		require.NotContains(t, notFound.Message, guest.Hex())
	}
	assert.Zero(t, f.reviews.Len())
}

func TestUpdateAndRemoveMissingReview(t *testing.T) {
	f := newReviewFixture(t)
	id := primitive.NewObjectID()

	_, err := f.service.Update(context.Background(), id, &domain.ReviewPatch{Rating: float(3)})
	var notFound *errors.NotFoundError
	assert.True(t, stderrors.As(err, &notFound))

	_, err = f.service.Remove(context.Background(), id)
	assert.True(t, stderrors.As(err, &notFound))
}

func TestConcurrentCreates(t *testing.T) {
	f := newReviewFixture(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(rating float64) {
			defer wg.Done()
			_, err := f.service.Create(context.Background(), &domain.Review{Property: f.property, Guest: f.guest, Rating: float(rating)})
			assert.NoError(t, err)
		}(float64(i%5 + 1))
	}
	wg.Wait()

	assert.Equal(t, 20, f.reviews.Len())
	rating := f.storedRating(t, f.property)
	require.NotNil(t, rating)
	assert.GreaterOrEqual(t, *rating, 1.0)
	assert.LessOrEqual(t, *rating, 5.0)
}

func TestMigrateLegacyReferences(t *testing.T) {
	f := newReviewFixture(t)
	f.reviews.Legacy = 3

	result, err := f.service.MigrateLegacyReferences(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, result.Migrated)

	result, err = f.service.MigrateLegacyReferences(context.Background())
	require.NoError(t, err)
	assert.Zero(t, result.Migrated)
}
