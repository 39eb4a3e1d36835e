package http

import (
	"time"

	"clearplot/internal/domain"
)

type UserResponse struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func userToResponse(u *domain.User) UserResponse {
	return UserResponse{ID: u.ID, Name: u.Name, Email: u.Email}
}

// PropertyResponse keeps the field names listing clients already consume.
type PropertyResponse struct {
	ID             string            `json:"_id"`
	UserID         string            `json:"userId"`
	ListingType    string            `json:"ListingType"`
	PropertyType   string            `json:"PropertyType"`
	City           string            `json:"City"`
	Furnishing     string            `json:"Furnishing,omitempty"`
	Facing         string            `json:"Facing,omitempty"`
	Area           float64           `json:"Area"`
	Bedrooms       int               `json:"Bedrooms"`
	Latitude       float64           `json:"Latitude"`
	Longitude      float64           `json:"Longitude"`
	Price          float64           `json:"Price"`
	PredictedPrice float64           `json:"PredictedPrice"`
	Description    string            `json:"Description"`
	BinaryFeatures map[string]string `json:"BinaryFeatures"`
	Images         []string          `json:"images"`
	CreatedAt      time.Time         `json:"createdAt"`
	UpdatedAt      time.Time         `json:"updatedAt"`
}

func propertyToResponse(p domain.Property) PropertyResponse {
	resp := PropertyResponse{
		ID:             p.ID,
		UserID:         p.OwnerID,
		ListingType:    string(p.ListingType),
		PropertyType:   p.PropertyType,
		City:           p.City,
		Furnishing:     p.Furnishing,
		Facing:         p.Facing,
		Area:           p.Area,
		Bedrooms:       p.Bedrooms,
		Latitude:       p.Latitude,
		Longitude:      p.Longitude,
		Price:          p.Price,
		PredictedPrice: p.PredictedPrice,
		Description:    p.Description,
		BinaryFeatures: p.Amenities,
		Images:         p.Images,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
	if resp.BinaryFeatures == nil {
		resp.BinaryFeatures = map[string]string{}
	}
	if resp.Images == nil {
		resp.Images = []string{}
	}
	return resp
}

func propertiesToResponse(props []domain.Property) []PropertyResponse {
	resp := make([]PropertyResponse, len(props))
	for i := range props {
		resp[i] = propertyToResponse(props[i])
	}
	return resp
}

type PropertyPageResponse struct {
	Properties      []PropertyResponse `json:"properties"`
	TotalProperties int64              `json:"totalProperties"`
	TotalPages      int                `json:"totalPages"`
	CurrentPage     int                `json:"currentPage"`
}

type ProfileResponse struct {
	User       UserResponse       `json:"user"`
	Properties []PropertyResponse `json:"properties"`
	CanEdit    bool               `json:"canEdit"`
}
