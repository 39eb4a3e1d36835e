package listing

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"clearplot/internal/domain"
)

// ErrTooManyImages is the notice shown when a listing would exceed its image cap.
var ErrTooManyImages = errors.New("Max 5 images")

// ImageSet accumulates the images selected for a listing, never holding more
// than its capacity.
type ImageSet[T any] struct {
	items    []T
	capacity int
}

// NewImageSet returns an empty set that accepts up to capacity items. A
// negative capacity is treated as zero.
func NewImageSet[T any](capacity int) *ImageSet[T] {
	if capacity < 0 {
		capacity = 0
	}
	return &ImageSet[T]{capacity: capacity}
}

// Add appends items in order until the set is full. Items that did not fit are
// returned together with ErrTooManyImages.
func (s *ImageSet[T]) Add(items ...T) ([]T, error) {
	free := s.capacity - len(s.items)
	if free >= len(items) {
		s.items = append(s.items, items...)
		return nil, nil
	}
	if free < 0 {
		free = 0
	}
	s.items = append(s.items, items[:free]...)
	return items[free:], ErrTooManyImages
}

// Remove drops the item at index i; out-of-range indexes are ignored.
func (s *ImageSet[T]) Remove(i int) {
	if i < 0 || i >= len(s.items) {
		return
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
}

func (s *ImageSet[T]) Items() []T {
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

func (s *ImageSet[T]) Len() int {
	return len(s.items)
}

var imageExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
	".webp": {},
}

// ImageFilename generates the stored name for an uploaded image, keeping the
// original extension.
func ImageFilename(original string, now time.Time) (string, error) {
	ext := strings.ToLower(filepath.Ext(original))
	if _, ok := imageExtensions[ext]; !ok {
		return "", domain.NewValidationError("images", "unsupported image type %q", ext)
	}
	return fmt.Sprintf("images-%d-%s%s", now.UnixMilli(), uuid.NewString(), ext), nil
}

// RetainImages keeps the current images named in keep, in their current order.
// A nil keep retains everything.
func RetainImages(current, keep []string) (kept, removed []string) {
	if keep == nil {
		return append([]string(nil), current...), nil
	}
	wanted := make(map[string]struct{}, len(keep))
	for _, name := range keep {
		wanted[name] = struct{}{}
	}
	for _, name := range current {
		if _, ok := wanted[name]; ok {
			kept = append(kept, name)
		} else {
			removed = append(removed, name)
		}
	}
	return kept, removed
}
