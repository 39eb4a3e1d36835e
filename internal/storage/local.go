package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// LocalService keeps images in a directory on disk; staged files live in a
// sibling staging directory on the same filesystem so promotion is a rename.
type LocalService struct {
	dir        string
	stagingDir string
}

func NewLocalService(dir, stagingDir string) (*LocalService, error) {
	for _, d := range []string{dir, stagingDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir %s: %w", d, err)
		}
	}
	return &LocalService{dir: dir, stagingDir: stagingDir}, nil
}

func (s *LocalService) Stage(ctx context.Context, name string, body io.Reader, _ string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	path := filepath.Join(s.stagingDir, name)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create staged file %s: %w", name, err)
	}
	_, err = io.Copy(f, body)
	closeErr := f.Close()
	if err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("write staged file %s: %w", name, err)
	}
	if closeErr != nil {
		_ = os.Remove(path)
		return fmt.Errorf("close staged file %s: %w", name, closeErr)
	}
	return ctx.Err()
}

func (s *LocalService) Promote(_ context.Context, names []string) error {
	for _, name := range names {
		if err := ValidateName(name); err != nil {
			return err
		}
		if err := os.Rename(filepath.Join(s.stagingDir, name), filepath.Join(s.dir, name)); err != nil {
			return fmt.Errorf("promote %s: %w", name, err)
		}
	}
	return nil
}

func (s *LocalService) Discard(_ context.Context, names []string) error {
	return removeAll(s.stagingDir, names)
}

func (s *LocalService) Delete(_ context.Context, names []string) error {
	return removeAll(s.dir, names)
}

func (s *LocalService) Resolve(_ context.Context, name string) (Object, error) {
	if err := ValidateName(name); err != nil {
		return Object{}, err
	}
	path := filepath.Join(s.dir, name)
	fi, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Object{}, ErrNotFound
		}
		return Object{}, fmt.Errorf("stat %s: %w", name, err)
	}
	if fi.IsDir() {
		return Object{}, ErrNotFound
	}
	return Object{Path: path}, nil
}

func (s *LocalService) PurgeStaging(_ context.Context, olderThan time.Duration) error {
	entries, err := os.ReadDir(s.stagingDir)
	if err != nil {
		return fmt.Errorf("read staging dir: %w", err)
	}
	cutoff := time.Now().Add(-olderThan)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			// removed since the directory was read
			continue
		}
		if info.ModTime().Before(cutoff) {
			names = append(names, e.Name())
		}
	}
	return removeAll(s.stagingDir, names)
}

// removeAll deletes every named file in dir; files that are already gone are
// not an error. The first failure is returned after all removals were tried.
func removeAll(dir string, names []string) error {
	var first error
	for _, name := range names {
		if err := ValidateName(name); err != nil {
			if first == nil {
				first = err
			}
			continue
		}
		err := os.Remove(filepath.Join(dir, name))
		if err != nil && !errors.Is(err, fs.ErrNotExist) && first == nil {
			first = fmt.Errorf("remove %s: %w", name, err)
		}
	}
	return first
}

var _ Service = (*LocalService)(nil)
