package repository

import (
	"context"

	"clearplot/internal/domain"
	"clearplot/internal/listing"
)

// PropertyQuery selects listings for the browse endpoint.
type PropertyQuery struct {
	Filter       listing.Filter
	ExcludeOwner string
	Page         listing.Page
}

// PropertyPage is one page of a PropertyQuery together with the total match count.
type PropertyPage struct {
	Items []domain.Property
	Total int64
}

// PropertyRepository exposes persistence operations for listings.
type PropertyRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, property *domain.Property) error
	Update(ctx context.Context, property *domain.Property) error
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*domain.Property, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Property, error)
	Query(ctx context.Context, query PropertyQuery) (*PropertyPage, error)
}
