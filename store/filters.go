package store

import (
	"regexp"

	"github.com/AilenFranco43/Booked/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// BuildPropertyFilter maps the optional listing criteria onto a MongoDB
// predicate. An empty filter matches every property.
func BuildPropertyFilter(params domain.PropertyFilter) bson.M {
	filter := bson.M{}

	if params.Title != nil && *params.Title != "" {
		filter["title"] = containsFold(*params.Title)
	}

	if params.MinPeople != nil {
		filter["max_people"] = bson.M{"$gte": *params.MinPeople}
	}

	if params.MinPrice != nil || params.MaxPrice != nil {
		price := bson.M{}
		if params.MinPrice != nil {
			price["$gte"] = *params.MinPrice
		}
		if params.MaxPrice != nil {
			price["$lte"] = *params.MaxPrice
		}
		filter["price"] = price
	}

	if len(params.Tags) > 0 {
		filter["tags"] = bson.M{"$in": params.Tags}
	}

	if params.Address != nil && *params.Address != "" {
		filter["address"] = containsFold(*params.Address)
	}

	return filter
}

func containsFold(value string) bson.M {
	return bson.M{"$regex": regexp.QuoteMeta(value), "$options": "i"}
}

func priceSort(order domain.PriceOrder) bson.D {
	switch order {
	case domain.PriceAscending:
		return bson.D{{Key: "price", Value: 1}}
	case domain.PriceDescending:
		return bson.D{{Key: "price", Value: -1}}
	default:
		return bson.D{{Key: "createdAt", Value: 1}}
	}
}

// RatingPipeline joins every property with its reviews, derives the live
// average and count, applies the listing filter to the joined rows and sorts
// by (averageRating, reviewCount). Both keys always share one direction.
func RatingPipeline(params domain.PropertyFilter) mongo.Pipeline {
	direction := -1
	if params.SortByRating == domain.RatingAscending {
		direction = 1
	}

	reviewCount := bson.D{{Key: "$size", Value: "$reviews"}}

	return mongo.Pipeline{
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: REVIEWS_COLLECTION},
			{Key: "localField", Value: "_id"},
			{Key: "foreignField", Value: "property"},
			{Key: "as", Value: "reviews"},
		}}},
		{{Key: "$addFields", Value: bson.D{
			{Key: "averageRating", Value: bson.D{{Key: "$cond", Value: bson.A{
				bson.D{{Key: "$gt", Value: bson.A{reviewCount, 0}}},
				bson.D{{Key: "$avg", Value: "$reviews.rating"}},
				0,
			}}}},
			{Key: "reviewCount", Value: reviewCount},
		}}},
		{{Key: "$match", Value: BuildPropertyFilter(params)}},
		{{Key: "$sort", Value: bson.D{
			{Key: "averageRating", Value: direction},
			{Key: "reviewCount", Value: direction},
		}}},
	}
}
