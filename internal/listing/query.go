package listing

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"clearplot/internal/domain"
)

// ParseQuery reads the listing browser query string: city, propertyType,
// listingType, minPrice, maxPrice, minArea, maxArea, amenities (comma
// separated, each required to be "Yes"), page and limit.
func ParseQuery(values url.Values) (Filter, Page, error) {
	var f Filter
	f.City = strings.TrimSpace(values.Get("city"))
	f.PropertyType = strings.TrimSpace(values.Get("propertyType"))

	if raw := strings.TrimSpace(values.Get("listingType")); raw != "" {
		lt, ok := domain.ParseListingType(raw)
		if !ok {
			return Filter{}, Page{}, domain.NewValidationError("listingType", "must be Buy or Rent")
		}
		f.ListingType = lt
	}

	bounds := []struct {
		key string
		dst **float64
	}{
		{"minPrice", &f.MinPrice},
		{"maxPrice", &f.MaxPrice},
		{"minArea", &f.MinArea},
		{"maxArea", &f.MaxArea},
	}
	for _, b := range bounds {
		v, err := optionalFloat(values, b.key)
		if err != nil {
			return Filter{}, Page{}, err
		}
		*b.dst = v
	}

	if raw := values.Get("amenities"); strings.TrimSpace(raw) != "" {
		f.Amenities = make(map[string]AmenityState)
		for _, name := range strings.Split(raw, ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			if !domain.IsAmenity(name) {
				return Filter{}, Page{}, domain.NewValidationError("amenities", "unknown amenity %q", name)
			}
			f.Amenities[name] = AmenityYes
		}
	}

	page := Page{Number: 1, Limit: DefaultPageLimit}
	if raw := strings.TrimSpace(values.Get("page")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return Filter{}, Page{}, domain.NewValidationError("page", "must be a positive integer")
		}
		page.Number = n
	}
	if raw := strings.TrimSpace(values.Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return Filter{}, Page{}, domain.NewValidationError("limit", "must be a positive integer")
		}
		if n > MaxPageLimit {
			n = MaxPageLimit
		}
		page.Limit = n
	}
	if page.Number-1 > math.MaxInt/page.Limit {
		return Filter{}, Page{}, domain.NewValidationError("page", "is too large")
	}

	return f, page, nil
}

func optionalFloat(values url.Values, key string) (*float64, error) {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, domain.NewValidationError(key, "must be a number")
	}
	return &v, nil
}
