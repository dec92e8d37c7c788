// Package storetest holds in-memory implementations of the domain stores
// for use in tests.
package storetest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/AilenFranco43/Booked/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PropertyStore applies listing filters and sorts the way the MongoDB store
// does. Rating-mode listing joins Reviews when it is set.
type PropertyStore struct {
	mu         sync.Mutex
	properties map[primitive.ObjectID]domain.Property
	Reviews    *ReviewStore
	LastFilter *domain.PropertyFilter
	RatingMode bool
}

func NewPropertyStore() *PropertyStore {
	return &PropertyStore{properties: map[primitive.ObjectID]domain.Property{}}
}

func (s *PropertyStore) Insert(ctx context.Context, property *domain.Property) (*domain.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if property.ID.IsZero() {
		property.ID = primitive.NewObjectID()
	}
	s.properties[property.ID] = *property
	return property, nil
}

func (s *PropertyStore) Get(ctx context.Context, id primitive.ObjectID) (*domain.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	property, ok := s.properties[id]
	if !ok {
		return nil, nil
	}
	return &property, nil
}

func (s *PropertyStore) GetAll(ctx context.Context, filter domain.PropertyFilter) ([]*domain.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.LastFilter = &filter
	s.RatingMode = false

	properties := s.matching(filter)
	sort.SliceStable(properties, func(i, j int) bool {
		a, b := properties[i], properties[j]
		switch filter.OrderBy {
		case domain.PriceAscending:
			return a.Price < b.Price
		case domain.PriceDescending:
			return a.Price > b.Price
		default:
			return a.CreatedAt.Before(b.CreatedAt)
		}
	})
	return properties, nil
}

func (s *PropertyStore) GetAllWithRating(ctx context.Context, filter domain.PropertyFilter) ([]*domain.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.LastFilter = &filter
	s.RatingMode = true

	properties := s.matching(filter)
	for _, property := range properties {
		var reviews []*domain.Review
		if s.Reviews != nil {
			reviews, _ = s.Reviews.GetByProperty(ctx, property.ID)
		}
		average, count := liveRating(reviews)
		property.AverageRating = &average
		property.ReviewCount = &count
		property.Reviews = nil
		for _, review := range reviews {
			property.Reviews = append(property.Reviews, *review)
		}
	}

	ascending := filter.SortByRating == domain.RatingAscending
	sort.SliceStable(properties, func(i, j int) bool {
		a, b := properties[i], properties[j]
		if *a.AverageRating != *b.AverageRating {
			if ascending {
				return *a.AverageRating < *b.AverageRating
			}
			return *a.AverageRating > *b.AverageRating
		}
		if ascending {
			return *a.ReviewCount < *b.ReviewCount
		}
		return *a.ReviewCount > *b.ReviewCount
	})
	return properties, nil
}

// liveRating is 0 for a property without reviews.
func liveRating(reviews []*domain.Review) (float64, int) {
	var sum float64
	var rated int
	for _, review := range reviews {
		if review.Rating != nil {
			sum += *review.Rating
			rated++
		}
	}
	if rated == 0 {
		return 0, len(reviews)
	}
	return sum / float64(rated), len(reviews)
}

func (s *PropertyStore) matching(filter domain.PropertyFilter) []*domain.Property {
	properties := []*domain.Property{}
	for _, property := range s.sorted() {
		if matches(property, filter) {
			properties = append(properties, property)
		}
	}
	return properties
}

func matches(property *domain.Property, filter domain.PropertyFilter) bool {
	if filter.Title != nil && *filter.Title != "" && !containsFold(property.Title, *filter.Title) {
		return false
	}
	if filter.Address != nil && *filter.Address != "" && !containsFold(property.Address, *filter.Address) {
		return false
	}
	if filter.MinPeople != nil && property.MaxPeople < *filter.MinPeople {
		return false
	}
	if filter.MinPrice != nil && property.Price < *filter.MinPrice {
		return false
	}
	if filter.MaxPrice != nil && property.Price > *filter.MaxPrice {
		return false
	}
	if len(filter.Tags) > 0 && !sharesTag(property.Tags, filter.Tags) {
		return false
	}
	return true
}

func containsFold(value, substr string) bool {
	return strings.Contains(strings.ToLower(value), strings.ToLower(substr))
}

func sharesTag(tags, wanted []string) bool {
	for _, tag := range tags {
		for _, w := range wanted {
			if tag == w {
				return true
			}
		}
	}
	return false
}

func (s *PropertyStore) GetByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]*domain.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	properties := []*domain.Property{}
	for _, property := range s.sorted() {
		if property.UserID == ownerID {
			properties = append(properties, property)
		}
	}
	return properties, nil
}

func (s *PropertyStore) GetAddresses(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var addresses []string
	for _, property := range s.sorted() {
		addresses = append(addresses, property.Address)
	}
	return addresses, nil
}

func (s *PropertyStore) Update(ctx context.Context, id primitive.ObjectID, patch *domain.PropertyPatch) (*domain.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	property, ok := s.properties[id]
	if !ok {
		return nil, nil
	}
	if patch.Title != nil {
		property.Title = *patch.Title
	}
	if patch.Description != nil {
		property.Description = *patch.Description
	}
	if patch.Price != nil {
		property.Price = *patch.Price
	}
	if patch.MaxPeople != nil {
		property.MaxPeople = *patch.MaxPeople
	}
	if patch.Tags != nil {
		property.Tags = *patch.Tags
	}
	if patch.Address != nil {
		property.Address = *patch.Address
	}
	if patch.Coordinates != nil {
		property.Coordinates = patch.Coordinates
	}
	if patch.Photos != nil {
		property.Photos = *patch.Photos
	}
	property.UpdatedAt = time.Now().UTC()
	s.properties[id] = property
	return &property, nil
}

func (s *PropertyStore) Delete(ctx context.Context, id primitive.ObjectID) (*domain.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	property, ok := s.properties[id]
	if !ok {
		return nil, nil
	}
	delete(s.properties, id)
	return &property, nil
}

func (s *PropertyStore) SetAverageRating(ctx context.Context, id primitive.ObjectID, rating *float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	property, ok := s.properties[id]
	if !ok {
		return nil
	}
	if rating != nil {
		value := *rating
		rating = &value
	}
	property.AverageRating = rating
	s.properties[id] = property
	return nil
}

func (s *PropertyStore) sorted() []*domain.Property {
	properties := []*domain.Property{}
	for id := range s.properties {
		property := s.properties[id]
		properties = append(properties, &property)
	}
	sort.Slice(properties, func(i, j int) bool {
		return properties[i].ID.Hex() < properties[j].ID.Hex()
	})
	return properties
}

type ReviewStore struct {
	mu      sync.Mutex
	reviews map[primitive.ObjectID]domain.Review
	Legacy  int
}

func NewReviewStore() *ReviewStore {
	return &ReviewStore{reviews: map[primitive.ObjectID]domain.Review{}}
}

func (s *ReviewStore) Insert(ctx context.Context, review *domain.Review) (*domain.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if review.ID.IsZero() {
		review.ID = primitive.NewObjectID()
	}
	s.reviews[review.ID] = *review
	return review, nil
}

func (s *ReviewStore) Get(ctx context.Context, id primitive.ObjectID) (*domain.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	review, ok := s.reviews[id]
	if !ok {
		return nil, nil
	}
	return &review, nil
}

func (s *ReviewStore) GetAll(ctx context.Context) ([]*domain.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.matching(func(*domain.Review) bool { return true }), nil
}

func (s *ReviewStore) GetByProperty(ctx context.Context, propertyID primitive.ObjectID) ([]*domain.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.matching(func(r *domain.Review) bool { return r.Property == propertyID }), nil
}

func (s *ReviewStore) Update(ctx context.Context, id primitive.ObjectID, patch *domain.ReviewPatch) (*domain.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	review, ok := s.reviews[id]
	if !ok {
		return nil, nil
	}
	if patch.Property != nil {
		review.Property = *patch.Property
	}
	if patch.Guest != nil {
		review.Guest = *patch.Guest
	}
	if patch.Rating != nil {
		rating := *patch.Rating
		review.Rating = &rating
	}
	if patch.Comment != nil {
		review.Comment = *patch.Comment
	}
	review.UpdatedAt = time.Now().UTC()
	s.reviews[id] = review
	return &review, nil
}

func (s *ReviewStore) Delete(ctx context.Context, id primitive.ObjectID) (*domain.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	review, ok := s.reviews[id]
	if !ok {
		return nil, nil
	}
	delete(s.reviews, id)
	return &review, nil
}

// AverageRating mirrors $group/$avg: unrated reviews count but do not
// contribute to the mean.
func (s *ReviewStore) AverageRating(ctx context.Context, propertyID primitive.ObjectID) (*domain.RatingAggregate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reviews := s.matching(func(r *domain.Review) bool { return r.Property == propertyID })
	if len(reviews) == 0 {
		return nil, nil
	}

	var sum float64
	var rated int
	for _, review := range reviews {
		if review.Rating != nil {
			sum += *review.Rating
			rated++
		}
	}
	aggregate := &domain.RatingAggregate{Count: len(reviews)}
	if rated > 0 {
		mean := sum / float64(rated)
		aggregate.Mean = &mean
	}
	return aggregate, nil
}

func (s *ReviewStore) MigrateLegacyReferences(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	migrated := s.Legacy
	s.Legacy = 0
	return migrated, nil
}

func (s *ReviewStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.reviews)
}

func (s *ReviewStore) matching(keep func(*domain.Review) bool) []*domain.Review {
	reviews := []*domain.Review{}
	for id := range s.reviews {
		review := s.reviews[id]
		if keep(&review) {
			reviews = append(reviews, &review)
		}
	}
	sort.Slice(reviews, func(i, j int) bool {
		return reviews[i].ID.Hex() < reviews[j].ID.Hex()
	})
	return reviews
}

type UserStore struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]struct{}
}

func NewUserStore(ids ...primitive.ObjectID) *UserStore {
	store := &UserStore{users: map[primitive.ObjectID]struct{}{}}
	for _, id := range ids {
		store.users[id] = struct{}{}
	}
	return store
}

func (s *UserStore) Add(id primitive.ObjectID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users[id] = struct{}{}
}

func (s *UserStore) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.users[id]
	return ok, nil
}

// CitiesCache counts calls. Setting Err makes every call fail. Version is
// bumped by DelCities; PostCities with an older version is skipped.
type CitiesCache struct {
	mu      sync.Mutex
	cities  []string
	version int64
	Err     error
	Gets    int
	Posts   int
	Skipped int
	Dels    int
}

func (c *CitiesCache) GetCities(ctx context.Context) ([]string, int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.Gets++
	if c.Err != nil {
		return nil, 0, c.Err
	}
	return c.cities, c.version, nil
}

func (c *CitiesCache) PostCities(ctx context.Context, cities []string, version int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.Posts++
	if c.Err != nil {
		return c.Err
	}
	if version != c.version {
		c.Skipped++
		return nil
	}
	c.cities = append([]string{}, cities...)
	return nil
}

func (c *CitiesCache) DelCities(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.Dels++
	if c.Err != nil {
		return c.Err
	}
	c.version++
	c.cities = nil
	return nil
}
