package listing

import (
	"fmt"
	"strings"

	"clearplot/internal/domain"
)

// AmenityState is the tri-state amenity predicate of the listing browser.
type AmenityState int

const (
	AmenityAny AmenityState = iota
	AmenityYes
	AmenityNo
)

// ParseAmenityState accepts "Yes", "No", and "", "Any" or "Don't care" for AmenityAny.
func ParseAmenityState(s string) (AmenityState, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "any", "don't care", "dont care":
		return AmenityAny, nil
	case "yes":
		return AmenityYes, nil
	case "no":
		return AmenityNo, nil
	default:
		return AmenityAny, fmt.Errorf("invalid amenity state %q", s)
	}
}

// Filter is the set of listing predicates. Zero-valued predicates match
// everything; the rest are AND-combined.
type Filter struct {
	City         string
	PropertyType string
	ListingType  domain.ListingType
	MinPrice     *float64
	MaxPrice     *float64
	MinArea      *float64
	MaxArea      *float64
	Amenities    map[string]AmenityState
}

// Matches reports whether p satisfies every active predicate of f. An amenity
// missing from the listing counts as "No".
func (f Filter) Matches(p domain.Property) bool {
	if f.City != "" && p.City != f.City {
		return false
	}
	if f.PropertyType != "" && p.PropertyType != f.PropertyType {
		return false
	}
	if f.ListingType != "" && p.ListingType != f.ListingType {
		return false
	}
	if f.MinPrice != nil && p.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && p.Price > *f.MaxPrice {
		return false
	}
	if f.MinArea != nil && p.Area < *f.MinArea {
		return false
	}
	if f.MaxArea != nil && p.Area > *f.MaxArea {
		return false
	}
	for name, state := range f.Amenities {
		has := p.Amenities[name] == domain.AmenityYes
		switch state {
		case AmenityYes:
			if !has {
				return false
			}
		case AmenityNo:
			if has {
				return false
			}
		}
	}
	return true
}

// Apply returns the listings matching f, preserving input order.
func (f Filter) Apply(props []domain.Property) []domain.Property {
	out := make([]domain.Property, 0, len(props))
	for _, p := range props {
		if f.Matches(p) {
			out = append(out, p)
		}
	}
	return out
}

// AmenityPredicates splits the active amenity predicates into the names that
// must be "Yes" and the names that must not be, in vocabulary order.
func (f Filter) AmenityPredicates() (yes, no []string) {
	for _, name := range domain.Amenities {
		switch f.Amenities[name] {
		case AmenityYes:
			yes = append(yes, name)
		case AmenityNo:
			no = append(no, name)
		}
	}
	return yes, no
}

// Page selects a 1-based page of results.
type Page struct {
	Number int
	Limit  int
}

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

func (p Page) Offset() int {
	return (p.Number - 1) * p.Limit
}

// TotalPages is ceil(total/limit).
func TotalPages(total int64, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
