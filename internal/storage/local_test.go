package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateName(t *testing.T) {
	for _, name := range []string{"", "..", "../x.png", "a/b.png", `a\b.png`, "x..png"} {
		assert.ErrorIs(t, ValidateName(name), ErrInvalidName, name)
	}
	assert.NoError(t, ValidateName("0b7c1a9e.png"))
}

func TestLocalStore_Lifecycle(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	store, err := NewLocalStore(dir, "/uploads")
	require.NoError(t, err)
	ctx := context.Background()

	obj, err := store.Save(ctx, "a.txt", strings.NewReader("hello"), "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/a.txt", obj.Path)
	assert.Equal(t, int64(5), obj.Size)

	_, err = store.Save(ctx, "a.txt", strings.NewReader("again"), "text/plain")
	assert.Error(t, err, "existing files are never overwritten")
	data, err := os.ReadFile(filepath.Join(dir, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	info, err := store.Stat(ctx, "a.txt")
	require.NoError(t, err)
	assert.Equal(t, int64(5), info.Size)
	assert.False(t, info.ModifiedAt.IsZero())

	require.NoError(t, store.Delete(ctx, "a.txt"))
	assert.ErrorIs(t, store.Delete(ctx, "a.txt"), ErrNotFound)
	_, err = store.Stat(ctx, "a.txt")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStore_RejectsTraversal(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "/uploads")
	require.NoError(t, err)

	_, err = store.Save(context.Background(), "../escape.png", strings.NewReader("x"), "image/png")
	assert.ErrorIs(t, err, ErrInvalidName)
	assert.ErrorIs(t, store.Delete(context.Background(), "../escape.png"), ErrInvalidName)
}
