package listing

import (
	"math"
	"strings"

	"clearplot/internal/domain"
)

// lakh is the unit the price model predicts in.
const lakh = 100000

// monthlyRentRatio converts a predicted capital value into a monthly rent.
const monthlyRentRatio = 0.003

// PredictionFeatures builds the numeric feature vector the price model expects
// from listing form fields. Amenities are encoded as 1 for "Yes" and 0 otherwise.
func PredictionFeatures(fields map[string]string) (map[string]float64, error) {
	features := make(map[string]float64, len(domain.Amenities)+4)
	for _, key := range []string{"Area", "Latitude", "Longitude"} {
		v, err := requiredFloat(fields, key)
		if err != nil {
			return nil, err
		}
		features[key] = v
	}

	bedroomsKey := FieldBedrooms
	if strings.TrimSpace(fields[bedroomsKey]) == "" {
		bedroomsKey = FieldBedroomsAlias
	}
	bedrooms, err := requiredFloat(fields, bedroomsKey)
	if err != nil {
		return nil, err
	}
	features[FieldBedrooms] = bedrooms

	for _, name := range domain.Amenities {
		if strings.EqualFold(strings.TrimSpace(fields[name]), domain.AmenityYes) {
			features[name] = 1
		} else {
			features[name] = 0
		}
	}
	return features, nil
}

// ScalePrediction converts a model output in lakhs to the listing's price unit:
// a monthly rent rounded to whole units for rentals, a sale price rounded to
// two decimals otherwise.
func ScalePrediction(lakhs float64, listingType domain.ListingType) float64 {
	value := lakhs * lakh
	if listingType == domain.ListingTypeRent {
		return math.Round(value * monthlyRentRatio)
	}
	return math.Round(value*100) / 100
}
