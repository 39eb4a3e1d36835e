package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"clearplot/internal/cache"
	"clearplot/internal/domain"
	"clearplot/internal/listing"
	"clearplot/internal/repository"
	"clearplot/internal/storage"
	"clearplot/internal/upstream"
)

var (
	// ErrPropertyNotFound is returned when no listing has the requested id.
	ErrPropertyNotFound = errors.New("Property not found")
	// ErrForbidden is returned when the caller does not own the listing.
	ErrForbidden = errors.New("Not authorized to modify this property")
)

// ImageUpload is one image file attached to a listing submission.
type ImageUpload struct {
	Filename    string
	ContentType string
	Open        func() (io.ReadCloser, error)
}

// PricePredictor returns a price estimate in lakhs for a feature vector.
type PricePredictor interface {
	Predict(ctx context.Context, features map[string]float64) (float64, error)
}

// DescriptionEnhancer rewrites free text listing descriptions.
type DescriptionEnhancer interface {
	Enhance(ctx context.Context, prompt string) (string, error)
}

// BrowseResult is one page of the listing browser.
type BrowseResult struct {
	Properties  []domain.Property
	Total       int64
	TotalPages  int
	CurrentPage int
}

// PropertyService coordinates listing operations across the store, the image
// store and the upstream collaborators.
type PropertyService interface {
	Create(ctx context.Context, ownerID string, fields map[string]string, images []ImageUpload) (*domain.Property, error)
	Update(ctx context.Context, callerID, id string, fields map[string]string, keep []string, images []ImageUpload) (*domain.Property, error)
	Delete(ctx context.Context, callerID, id string) error
	Get(ctx context.Context, id string) (*domain.Property, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Property, error)
	Browse(ctx context.Context, callerID string, filter listing.Filter, page listing.Page) (*BrowseResult, error)
	PredictPrice(ctx context.Context, fields map[string]string) (float64, error)
	EnhanceDescription(ctx context.Context, prompt string) (string, error)
}

type propertyService struct {
	props     repository.PropertyRepository
	images    storage.Service
	cache     Cache
	predictor PricePredictor
	enhancer  DescriptionEnhancer
	log       logrus.FieldLogger
	now       func() time.Time
}

// PropertyDeps groups the collaborators of the property service.
type PropertyDeps struct {
	Properties repository.PropertyRepository
	Images     storage.Service
	Cache      Cache
	Predictor  PricePredictor
	Enhancer   DescriptionEnhancer
	Logger     logrus.FieldLogger
}

func NewPropertyService(deps PropertyDeps) PropertyService {
	log := deps.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &propertyService{
		props:     deps.Properties,
		images:    deps.Images,
		cache:     cacheOrNoop(deps.Cache),
		predictor: deps.Predictor,
		enhancer:  deps.Enhancer,
		log:       log,
		now:       time.Now,
	}
}

func (s *propertyService) Create(ctx context.Context, ownerID string, fields map[string]string, images []ImageUpload) (*domain.Property, error) {
	prop, err := listing.Normalize(fields)
	if err != nil {
		return nil, err
	}
	if len(images) > domain.MaxImages {
		return nil, tooManyImages()
	}

	names, err := s.stage(ctx, images)
	if err != nil {
		return nil, err
	}

	prop.OwnerID = ownerID
	prop.Images = names
	if err := s.props.Create(ctx, prop); err != nil {
		s.discard(ctx, names)
		return nil, fmt.Errorf("create property: %w", err)
	}

	if err := s.images.Promote(ctx, names); err != nil {
		if delErr := s.props.Delete(ctx, prop.ID); delErr != nil {
			s.log.WithError(delErr).WithField("property_id", prop.ID).Error("roll back property after failed image promotion")
		}
		s.discard(ctx, names)
		s.removePublished(ctx, names)
		return nil, fmt.Errorf("publish images: %w", err)
	}

	return prop, nil
}

func (s *propertyService) Update(ctx context.Context, callerID, id string, fields map[string]string, keep []string, images []ImageUpload) (*domain.Property, error) {
	existing, err := s.owned(ctx, callerID, id)
	if err != nil {
		return nil, err
	}

	prop, err := listing.Normalize(fields)
	if err != nil {
		return nil, err
	}
	kept, removed := listing.RetainImages(existing.Images, keep)
	if len(kept)+len(images) > domain.MaxImages {
		return nil, tooManyImages()
	}

	names, err := s.stage(ctx, images)
	if err != nil {
		return nil, err
	}

	prop.ID = existing.ID
	prop.OwnerID = existing.OwnerID
	prop.CreatedAt = existing.CreatedAt
	prop.Images = append(kept, names...)
	if err := s.props.Update(ctx, prop); err != nil {
		s.discard(ctx, names)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPropertyNotFound
		}
		return nil, fmt.Errorf("update property: %w", err)
	}
	s.cache.Delete(ctx, cache.PropertyKey(id))

	if err := s.images.Promote(ctx, names); err != nil {
		if restoreErr := s.props.Update(ctx, existing); restoreErr != nil {
			s.log.WithError(restoreErr).WithField("property_id", id).Error("restore property after failed image promotion")
		}
		s.cache.Delete(ctx, cache.PropertyKey(id))
		s.discard(ctx, names)
		s.removePublished(ctx, names)
		return nil, fmt.Errorf("publish images: %w", err)
	}

	s.removePublished(ctx, removed)
	return prop, nil
}

func (s *propertyService) Delete(ctx context.Context, callerID, id string) error {
	existing, err := s.owned(ctx, callerID, id)
	if err != nil {
		return err
	}
	if err := s.props.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPropertyNotFound
		}
		return fmt.Errorf("delete property: %w", err)
	}
	s.cache.Delete(ctx, cache.PropertyKey(id))
	s.removePublished(ctx, existing.Images)
	return nil
}

func (s *propertyService) Get(ctx context.Context, id string) (*domain.Property, error) {
	var cached domain.Property
	if s.cache.GetJSON(ctx, cache.PropertyKey(id), &cached) {
		return &cached, nil
	}

	prop, err := s.props.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPropertyNotFound
		}
		return nil, err
	}
	s.cache.SetJSON(ctx, cache.PropertyKey(id), prop)
	return prop, nil
}

func (s *propertyService) ListByOwner(ctx context.Context, ownerID string) ([]domain.Property, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, domain.NewValidationError("userId", "is required")
	}
	return s.props.ListByOwner(ctx, ownerID)
}

func (s *propertyService) Browse(ctx context.Context, callerID string, filter listing.Filter, page listing.Page) (*BrowseResult, error) {
	if page.Number < 1 {
		page.Number = 1
	}
	if page.Limit < 1 {
		page.Limit = listing.DefaultPageLimit
	}

	res, err := s.props.Query(ctx, repository.PropertyQuery{
		Filter:       filter,
		ExcludeOwner: callerID,
		Page:         page,
	})
	if err != nil {
		return nil, err
	}
	return &BrowseResult{
		Properties:  res.Items,
		Total:       res.Total,
		TotalPages:  listing.TotalPages(res.Total, page.Limit),
		CurrentPage: page.Number,
	}, nil
}

func (s *propertyService) PredictPrice(ctx context.Context, fields map[string]string) (float64, error) {
	listingType := domain.ListingTypeBuy
	if raw := strings.TrimSpace(fields["ListingType"]); raw != "" {
		lt, ok := domain.ParseListingType(raw)
		if !ok {
			return 0, domain.NewValidationError("ListingType", "must be Buy or Rent")
		}
		listingType = lt
	}

	features, err := listing.PredictionFeatures(fields)
	if err != nil {
		return 0, err
	}
	if s.predictor == nil {
		return 0, upstream.ErrNotConfigured
	}
	lakhs, err := s.predictor.Predict(ctx, features)
	if err != nil {
		return 0, err
	}
	return listing.ScalePrediction(lakhs, listingType), nil
}

func (s *propertyService) EnhanceDescription(ctx context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", domain.NewValidationError("prompt", "is required")
	}
	if s.enhancer == nil {
		return "", upstream.ErrNotConfigured
	}
	return s.enhancer.Enhance(ctx, prompt)
}

// owned loads the listing and checks that callerID owns it.
func (s *propertyService) owned(ctx context.Context, callerID, id string) (*domain.Property, error) {
	prop, err := s.props.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPropertyNotFound
		}
		return nil, err
	}
	if prop.OwnerID != callerID {
		return nil, ErrForbidden
	}
	return prop, nil
}

// stage names and stages every upload. On failure nothing stays staged.
func (s *propertyService) stage(ctx context.Context, uploads []ImageUpload) ([]string, error) {
	names := make([]string, 0, len(uploads))
	for _, up := range uploads {
		name, err := listing.ImageFilename(up.Filename, s.now())
		if err != nil {
			return nil, err
		}
		names = append(names, name)
	}

	for i, up := range uploads {
		if err := s.stageOne(ctx, names[i], up); err != nil {
			s.discard(ctx, names[:i+1])
			return nil, err
		}
	}
	return names, nil
}

func (s *propertyService) stageOne(ctx context.Context, name string, up ImageUpload) error {
	body, err := up.Open()
	if err != nil {
		return fmt.Errorf("open upload %s: %w", up.Filename, err)
	}
	defer body.Close()

	if err := s.images.Stage(ctx, name, body, up.ContentType); err != nil {
		return fmt.Errorf("stage image: %w", err)
	}
	return nil
}

func (s *propertyService) discard(ctx context.Context, names []string) {
	if len(names) == 0 {
		return
	}
	if err := s.images.Discard(ctx, names); err != nil {
		s.log.WithError(err).WithField("images", names).Warn("discard staged images")
	}
}

func (s *propertyService) removePublished(ctx context.Context, names []string) {
	if len(names) == 0 {
		return
	}
	if err := s.images.Delete(ctx, names); err != nil {
		s.log.WithError(err).WithField("images", names).Warn("delete images")
	}
}

func tooManyImages() error {
	return domain.NewValidationError("", "%s", listing.ErrTooManyImages.Error())
}
