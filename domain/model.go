package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Coordinates struct {
	Lat float64 `bson:"lat" json:"lat" mapstructure:"lat"`
	Lng float64 `bson:"lng" json:"lng" mapstructure:"lng"`
}

type Property struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title         string             `bson:"title" json:"title"`
	Description   string             `bson:"description,omitempty" json:"description,omitempty"`
	Price         float64            `bson:"price" json:"price"`
	MaxPeople     int                `bson:"max_people" json:"max_people"`
	Tags          []string           `bson:"tags" json:"tags"`
	Address       string             `bson:"address" json:"address"`
	Coordinates   *Coordinates       `bson:"coordinates,omitempty" json:"coordinates,omitempty"`
	Photos        []string           `bson:"photos" json:"photos"`
	UserID        primitive.ObjectID `bson:"userId" json:"userId"`
	AverageRating *float64           `bson:"averageRating,omitempty" json:"averageRating,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`

	// Only set by the rating-sorted listing, which joins reviews at query time.
	ReviewCount *int     `bson:"reviewCount,omitempty" json:"reviewCount,omitempty"`
	Reviews     []Review `bson:"reviews,omitempty" json:"reviews,omitempty"`
}

type Review struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Property  primitive.ObjectID `bson:"property" json:"property"`
	Guest     primitive.ObjectID `bson:"guest" json:"guest"`
	Rating    *float64           `bson:"rating,omitempty" json:"rating,omitempty"`
	Comment   string             `bson:"comment,omitempty" json:"comment,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`

	GuestDetails    *UserSummary     `bson:"guestDetails,omitempty" json:"guestDetails,omitempty"`
	PropertyDetails *PropertySummary `bson:"propertyDetails,omitempty" json:"propertyDetails,omitempty"`
}

type UserSummary struct {
	ID    primitive.ObjectID `bson:"_id" json:"id"`
	Name  string             `bson:"name,omitempty" json:"name,omitempty"`
	Email string             `bson:"email,omitempty" json:"email,omitempty"`
}

type PropertySummary struct {
	ID      primitive.ObjectID `bson:"_id" json:"id"`
	Title   string             `bson:"title,omitempty" json:"title,omitempty"`
	Address string             `bson:"address,omitempty" json:"address,omitempty"`
}

// RatingAggregate is the derived summary of a property's reviews. A nil
// aggregate means the property has no reviews at all.
type RatingAggregate struct {
	Mean  *float64
	Count int
}

type PropertyReviews struct {
	Reviews       []*Review `json:"reviews"`
	AverageRating float64   `json:"averageRating"`
	Count         int       `json:"count"`
}

type MigrationResult struct {
	Migrated int `json:"migrated"`
}

type PriceOrder string

const (
	PriceAscending  PriceOrder = "ASC"
	PriceDescending PriceOrder = "DES"
)

type RatingOrder string

const (
	RatingAscending  RatingOrder = "asc"
	RatingDescending RatingOrder = "desc"
)

// PropertyFilter holds the optional listing criteria. Nil or empty fields do
// not narrow the result.
type PropertyFilter struct {
	Title        *string
	Address      *string
	MinPrice     *float64
	MaxPrice     *float64
	MinPeople    *int
	Tags         []string
	OrderBy      PriceOrder
	SortByRating RatingOrder
}

type PropertyPatch struct {
	Title       *string      `mapstructure:"title" validate:"omitempty,min=1"`
	Description *string      `mapstructure:"description"`
	Price       *float64     `mapstructure:"price" validate:"omitempty,gt=0"`
	MaxPeople   *int         `mapstructure:"max_people" validate:"omitempty,gt=0"`
	Tags        *[]string    `mapstructure:"tags"`
	Address     *string      `mapstructure:"address" validate:"omitempty,min=1"`
	Coordinates *Coordinates `mapstructure:"coordinates"`
	Photos      *[]string    `mapstructure:"photos"`
}

type ReviewPatch struct {
	Property *primitive.ObjectID
	Guest    *primitive.ObjectID
	Rating   *float64
	Comment  *string
}
