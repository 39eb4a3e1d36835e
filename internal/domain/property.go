package domain

import "time"

type ListingType string

const (
	ListingTypeBuy  ListingType = "Buy"
	ListingTypeRent ListingType = "Rent"
)

// ParseListingType returns the canonical listing type for s.
func ParseListingType(s string) (ListingType, bool) {
	switch ListingType(s) {
	case ListingTypeBuy, ListingTypeRent:
		return ListingType(s), true
	default:
		return "", false
	}
}

// PropertyTypes is the list offered by the listing form. The stored value is not
// restricted to it.
var PropertyTypes = []string{
	"Apartment",
	"Standalone",
	"Villa",
	"Row House",
	"Plot",
	"Farmhouse",
	"Penthouse",
	"Duplex House",
	"Loft",
	"Cottage",
	"Studio",
}

// MaxImages caps the number of images attached to a single listing.
const MaxImages = 5

// Property is a single listing offered for sale or rent.
type Property struct {
	ID             string
	OwnerID        string
	ListingType    ListingType
	PropertyType   string
	City           string
	Furnishing     string
	Facing         string
	Area           float64
	Bedrooms       int
	Latitude       float64
	Longitude      float64
	Price          float64
	PredictedPrice float64
	Description    string
	Amenities      map[string]string
	Images         []string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// FallbackPredictedPrice estimates a predicted price when none was supplied:
// 30% of the price for rentals, the full price otherwise.
func FallbackPredictedPrice(listingType ListingType, price float64) float64 {
	if listingType == ListingTypeRent {
		return 0.3 * price
	}
	return price
}
