package storage

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when a named image does not exist in the public area.
	ErrNotFound = errors.New("image not found")
	// ErrInvalidName is returned for names that are not a single path element.
	ErrInvalidName = errors.New("invalid image name")
)

// DefaultStagingGrace is how long a staged file is left alone before a purge
// may remove it.
const DefaultStagingGrace = time.Hour

// Object tells the HTTP layer how to serve a stored image: either from a local
// file or by redirecting to a (presigned) URL.
type Object struct {
	Path        string
	RedirectURL string
}

// Service stores listing images. Files are first staged, then promoted into
// the public area once the owning record has been written.
type Service interface {
	Stage(ctx context.Context, name string, body io.Reader, contentType string) error
	Promote(ctx context.Context, names []string) error
	Discard(ctx context.Context, names []string) error
	Delete(ctx context.Context, names []string) error
	Resolve(ctx context.Context, name string) (Object, error)
	// PurgeStaging removes staged files older than olderThan. Younger files may
	// belong to a save still in progress on another instance.
	PurgeStaging(ctx context.Context, olderThan time.Duration) error
}

// ValidateName accepts generated image names only: one path element, no
// traversal, no separators.
func ValidateName(name string) error {
	if name == "" || name == "." || name == ".." {
		return ErrInvalidName
	}
	if strings.ContainsAny(name, `/\`) || filepath.Base(name) != name {
		return ErrInvalidName
	}
	return nil
}
