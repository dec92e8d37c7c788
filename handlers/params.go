package handlers

import (
	"net/url"
	"strconv"

	"github.com/AilenFranco43/Booked/domain"
	"github.com/AilenFranco43/Booked/errors"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type listQuery struct {
	MinPrice     *float64 `validate:"omitempty,gte=0"`
	MaxPrice     *float64 `validate:"omitempty,gte=0"`
	MinPeople    *int     `validate:"omitempty,gte=1"`
	OrderBy      string   `validate:"omitempty,oneof=ASC DES"`
	SortByRating string   `validate:"omitempty,oneof=asc desc"`
}

// parsePropertyFilter reads the listing criteria from the query string.
// tags and min_people are also accepted as tags[] and minPeople.
func parsePropertyFilter(query url.Values, validate *validator.Validate) (domain.PropertyFilter, error) {
	var filter domain.PropertyFilter
	var q listQuery
	var err error

	if q.MinPrice, err = optionalFloat(query, "minPrice"); err != nil {
		return filter, err
	}
	if q.MaxPrice, err = optionalFloat(query, "maxPrice"); err != nil {
		return filter, err
	}
	if q.MinPeople, err = optionalInt(query, "min_people", "minPeople"); err != nil {
		return filter, err
	}
	q.OrderBy = query.Get("orderBy")
	q.SortByRating = query.Get("sortByRating")

	if err := validate.Struct(q); err != nil {
		return filter, errors.Validation(err.Error())
	}
	if q.MinPrice != nil && q.MaxPrice != nil && *q.MinPrice > *q.MaxPrice {
		return filter, errors.Validation("minPrice cannot be greater than maxPrice")
	}

	filter.Title = optionalString(query, "title")
	filter.Address = optionalString(query, "address")
	filter.MinPrice = q.MinPrice
	filter.MaxPrice = q.MaxPrice
	filter.MinPeople = q.MinPeople
	filter.OrderBy = domain.PriceOrder(q.OrderBy)
	filter.SortByRating = domain.RatingOrder(q.SortByRating)

	for _, key := range []string{"tags", "tags[]"} {
		for _, tag := range query[key] {
			if tag != "" {
				filter.Tags = append(filter.Tags, tag)
			}
		}
	}
	return filter, nil
}

func optionalString(query url.Values, key string) *string {
	value := query.Get(key)
	if value == "" {
		return nil
	}
	return &value
}

func optionalFloat(query url.Values, key string) (*float64, error) {
	raw := query.Get(key)
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, errors.Validation(key + " must be a number")
	}
	return &value, nil
}

func optionalInt(query url.Values, keys ...string) (*int, error) {
	for _, key := range keys {
		raw := query.Get(key)
		if raw == "" {
			continue
		}
		value, err := strconv.Atoi(raw)
		if err != nil {
			return nil, errors.Validation(key + " must be an integer")
		}
		return &value, nil
	}
	return nil, nil
}

func parseObjectID(raw string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, errors.Validation(errors.InvalidIDError)
	}
	return id, nil
}
