package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLocal(t *testing.T) (*LocalService, string, string) {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "uploads")
	staging := filepath.Join(root, "staging")
	svc, err := NewLocalService(dir, staging)
	require.NoError(t, err)
	return svc, dir, staging
}

func TestLocalStagePromote(t *testing.T) {
	ctx := context.Background()
	svc, dir, staging := newLocal(t)

	require.NoError(t, svc.Stage(ctx, "images-1-a.jpg", strings.NewReader("jpeg"), "image/jpeg"))
	assert.FileExists(t, filepath.Join(staging, "images-1-a.jpg"))

	_, err := svc.Resolve(ctx, "images-1-a.jpg")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, svc.Promote(ctx, []string{"images-1-a.jpg"}))
	assert.NoFileExists(t, filepath.Join(staging, "images-1-a.jpg"))

	obj, err := svc.Resolve(ctx, "images-1-a.jpg")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "images-1-a.jpg"), obj.Path)
	data, err := os.ReadFile(obj.Path)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", string(data))

	require.NoError(t, svc.Delete(ctx, []string{"images-1-a.jpg", "already-gone.png"}))
	_, err = svc.Resolve(ctx, "images-1-a.jpg")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalDiscardAndPurge(t *testing.T) {
	ctx := context.Background()
	svc, _, staging := newLocal(t)

	require.NoError(t, svc.Stage(ctx, "a.png", strings.NewReader("a"), ""))
	require.NoError(t, svc.Stage(ctx, "b.png", strings.NewReader("b"), ""))

	require.NoError(t, svc.Discard(ctx, []string{"a.png"}))
	assert.NoFileExists(t, filepath.Join(staging, "a.png"))
	assert.FileExists(t, filepath.Join(staging, "b.png"))

	require.NoError(t, svc.PurgeStaging(ctx, time.Hour))
	assert.FileExists(t, filepath.Join(staging, "b.png"))

	require.NoError(t, svc.PurgeStaging(ctx, 0))
	entries, err := os.ReadDir(staging)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLocalPurgeKeepsRecentStagedFiles(t *testing.T) {
	ctx := context.Background()
	svc, _, staging := newLocal(t)

	require.NoError(t, svc.Stage(ctx, "stale.png", strings.NewReader("a"), ""))
	require.NoError(t, svc.Stage(ctx, "fresh.png", strings.NewReader("b"), ""))
	old := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(staging, "stale.png"), old, old))

	require.NoError(t, svc.PurgeStaging(ctx, time.Hour))
	assert.NoFileExists(t, filepath.Join(staging, "stale.png"))
	assert.FileExists(t, filepath.Join(staging, "fresh.png"))

	// the in-flight save can still publish its file
	require.NoError(t, svc.Promote(ctx, []string{"fresh.png"}))
}

func TestLocalRejectsTraversal(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newLocal(t)

	for _, name := range []string{"", "..", "../etc/passwd", "a/b.png", `a\b.png`} {
		assert.ErrorIs(t, svc.Stage(ctx, name, strings.NewReader("x"), ""), ErrInvalidName, name)
		_, err := svc.Resolve(ctx, name)
		assert.ErrorIs(t, err, ErrInvalidName, name)
	}
}

func TestLocalStageRefusesOverwrite(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newLocal(t)

	require.NoError(t, svc.Stage(ctx, "a.png", strings.NewReader("a"), ""))
	assert.Error(t, svc.Stage(ctx, "a.png", strings.NewReader("b"), ""))
}
