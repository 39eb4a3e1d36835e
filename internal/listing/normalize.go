package listing

import (
	"math"
	"strconv"
	"strings"

	"clearplot/internal/domain"
)

// Form field names that differ from the property attribute they feed.
const (
	FieldBedrooms      = "No. of Bedrooms"
	FieldBedroomsAlias = "Bedrooms"
)

// Normalize turns the flat string fields of a listing form into a Property.
// Owner, ID and images are left for the caller. Required fields that are
// missing or malformed yield a *domain.ValidationError.
func Normalize(fields map[string]string) (*domain.Property, error) {
	get := func(key string) string {
		return strings.TrimSpace(fields[key])
	}

	listingType, ok := domain.ParseListingType(get("ListingType"))
	if !ok {
		if get("ListingType") == "" {
			return nil, domain.NewValidationError("ListingType", "is required")
		}
		return nil, domain.NewValidationError("ListingType", "must be Buy or Rent")
	}

	propertyType := get("PropertyType")
	if propertyType == "" {
		return nil, domain.NewValidationError("PropertyType", "is required")
	}
	city := get("City")
	if city == "" {
		return nil, domain.NewValidationError("City", "is required")
	}

	area, err := requiredFloat(fields, "Area")
	if err != nil {
		return nil, err
	}
	if area <= 0 {
		return nil, domain.NewValidationError("Area", "must be positive")
	}

	bedroomsKey := FieldBedrooms
	if get(bedroomsKey) == "" && get(FieldBedroomsAlias) != "" {
		bedroomsKey = FieldBedroomsAlias
	}
	bedroomsRaw := get(bedroomsKey)
	if bedroomsRaw == "" {
		return nil, domain.NewValidationError(FieldBedrooms, "is required")
	}
	bedrooms, err := strconv.Atoi(bedroomsRaw)
	if err != nil {
		return nil, domain.NewValidationError(FieldBedrooms, "must be a whole number")
	}
	if bedrooms < 0 {
		return nil, domain.NewValidationError(FieldBedrooms, "must not be negative")
	}

	lat, err := requiredFloat(fields, "Latitude")
	if err != nil {
		return nil, err
	}
	if lat < -90 || lat > 90 {
		return nil, domain.NewValidationError("Latitude", "must be within [-90, 90]")
	}
	lng, err := requiredFloat(fields, "Longitude")
	if err != nil {
		return nil, err
	}
	if lng < -180 || lng > 180 {
		return nil, domain.NewValidationError("Longitude", "must be within [-180, 180]")
	}

	price, err := requiredFloat(fields, "Price")
	if err != nil {
		return nil, err
	}
	if price < 0 {
		return nil, domain.NewValidationError("Price", "must not be negative")
	}

	amenities, err := ProjectAmenities(fields)
	if err != nil {
		return nil, err
	}

	return &domain.Property{
		ListingType:    listingType,
		PropertyType:   propertyType,
		City:           city,
		Furnishing:     get("Furnishing"),
		Facing:         get("Facing"),
		Area:           area,
		Bedrooms:       bedrooms,
		Latitude:       lat,
		Longitude:      lng,
		Price:          price,
		PredictedPrice: predictedPrice(get("PredictedPrice"), listingType, price),
		Description:    get("Description"),
		Amenities:      amenities,
	}, nil
}

// ProjectAmenities picks the vocabulary amenities out of the flat form fields.
// Absent or empty fields are skipped; any other value than Yes/No is rejected.
func ProjectAmenities(fields map[string]string) (map[string]string, error) {
	out := make(map[string]string)
	for _, name := range domain.Amenities {
		raw, ok := fields[name]
		if !ok {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(raw)) {
		case "":
			continue
		case "yes":
			out[name] = domain.AmenityYes
		case "no":
			out[name] = domain.AmenityNo
		default:
			return nil, domain.NewValidationError(name, "must be Yes or No")
		}
	}
	return out, nil
}

// An unparseable or zero predicted price counts as not supplied.
func predictedPrice(raw string, listingType domain.ListingType, price float64) float64 {
	if raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err == nil && v != 0 && !math.IsNaN(v) && !math.IsInf(v, 0) {
			return v
		}
	}
	return domain.FallbackPredictedPrice(listingType, price)
}

func requiredFloat(fields map[string]string, key string) (float64, error) {
	raw := strings.TrimSpace(fields[key])
	if raw == "" {
		return 0, domain.NewValidationError(key, "is required")
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, domain.NewValidationError(key, "must be a number")
	}
	return v, nil
}
