package mongo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"clearplot/internal/domain"
	"clearplot/internal/listing"
	"clearplot/internal/repository"
)

func TestBuildFilter(t *testing.T) {
	owner := primitive.NewObjectID()
	minPrice, maxArea := 100.0, 900.0

	got := buildFilter(repository.PropertyQuery{
		ExcludeOwner: owner.Hex(),
		Filter: listing.Filter{
			City:        "Pune",
			ListingType: domain.ListingTypeRent,
			MinPrice:    &minPrice,
			MaxArea:     &maxArea,
			Amenities: map[string]listing.AmenityState{
				"AC":        listing.AmenityNo,
				"Gymnasium": listing.AmenityYes,
				"Wifi":      listing.AmenityAny,
			},
		},
	})

	want := bson.D{
		{Key: "userId", Value: bson.M{"$ne": owner}},
		{Key: "City", Value: "Pune"},
		{Key: "ListingType", Value: "Rent"},
		{Key: "Price", Value: bson.M{"$gte": 100.0}},
		{Key: "Area", Value: bson.M{"$lte": 900.0}},
		{Key: "BinaryFeatures.Gymnasium", Value: "Yes"},
		{Key: "BinaryFeatures.AC", Value: bson.M{"$ne": "Yes"}},
	}
	assert.Equal(t, want, got)
}

func TestBuildFilterEmpty(t *testing.T) {
	assert.Empty(t, buildFilter(repository.PropertyQuery{}))
}

func TestBuildFilterIgnoresMalformedOwner(t *testing.T) {
	got := buildFilter(repository.PropertyQuery{ExcludeOwner: "not-an-object-id"})
	assert.Empty(t, got)
}
