package mongo

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"clearplot/internal/domain"
	"clearplot/internal/repository"
)

// buildFilter translates a PropertyQuery into a properties collection filter.
// An owner id that is not an ObjectID cannot own any document, so it is not
// used as an exclusion.
func buildFilter(q repository.PropertyQuery) bson.D {
	filter := bson.D{}

	if q.ExcludeOwner != "" {
		if oid, err := primitive.ObjectIDFromHex(q.ExcludeOwner); err == nil {
			filter = append(filter, bson.E{Key: "userId", Value: bson.M{"$ne": oid}})
		}
	}

	f := q.Filter
	if f.City != "" {
		filter = append(filter, bson.E{Key: "City", Value: f.City})
	}
	if f.PropertyType != "" {
		filter = append(filter, bson.E{Key: "PropertyType", Value: f.PropertyType})
	}
	if f.ListingType != "" {
		filter = append(filter, bson.E{Key: "ListingType", Value: string(f.ListingType)})
	}
	if r := rangeOf(f.MinPrice, f.MaxPrice); r != nil {
		filter = append(filter, bson.E{Key: "Price", Value: r})
	}
	if r := rangeOf(f.MinArea, f.MaxArea); r != nil {
		filter = append(filter, bson.E{Key: "Area", Value: r})
	}

	yes, no := f.AmenityPredicates()
	for _, name := range yes {
		filter = append(filter, bson.E{Key: "BinaryFeatures." + name, Value: domain.AmenityYes})
	}
	for _, name := range no {
		filter = append(filter, bson.E{Key: "BinaryFeatures." + name, Value: bson.M{"$ne": domain.AmenityYes}})
	}
	return filter
}

func rangeOf(min, max *float64) bson.M {
	if min == nil && max == nil {
		return nil
	}
	r := bson.M{}
	if min != nil {
		r["$gte"] = *min
	}
	if max != nil {
		r["$lte"] = *max
	}
	return r
}
