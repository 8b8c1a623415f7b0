package images

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/dogwalk/internal/common"
)

func TestStore_PutGet(t *testing.T) {
	s := NewStore()
	img, err := s.Put("/dogs/rex.png", "image/png", []byte("rex"))
	require.NoError(t, err)
	assert.Equal(t, "dogs/rex.png", img.Path)

	got, err := s.Get(context.Background(), "dogs/rex.png")
	require.NoError(t, err)
	assert.Equal(t, []byte("rex"), got.Data)
	assert.Equal(t, img.ETag, got.ETag)
	assert.Regexp(t, `^"[0-9a-f]{32}"$`, got.ETag)
}

func TestStore_ETagFollowsContent(t *testing.T) {
	s := NewStore()
	a, _ := s.Put("x", "", []byte("one"))
	b, _ := s.Put("x", "", []byte("one"))
	c, _ := s.Put("x", "", []byte("two"))

	assert.Equal(t, a.ETag, b.ETag)
	assert.NotEqual(t, a.ETag, c.ETag)
}

func TestStore_Unknown(t *testing.T) {
	s := NewStore()
	_, err := s.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	_, err = s.Get(context.Background(), "/")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, err = s.Put("", "", nil)
	assert.Error(t, err)
}

func TestStore_CleansTraversal(t *testing.T) {
	s := NewStore()
	_, err := s.Put("a/../../b.png", "", []byte("b"))
	require.NoError(t, err)

	_, err = s.Get(context.Background(), "b.png")
	assert.NoError(t, err)
}

func TestStore_LoadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "dogs"), 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dogs", "a.png"), []byte("a"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.jpg"), []byte("b"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden"), []byte("h"), 0o600))

	s := NewStore()
	n, err := s.LoadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	img, err := s.Get(context.Background(), "dogs/a.png")
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.ContentType)

	_, err = s.LoadDir(filepath.Join(dir, "nope"))
	assert.Error(t, err)
}

func TestStore_SeedAndDelete(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Seed())
	assert.Equal(t, 3, s.Len())

	s.Delete("dogs/1.svg")
	_, err := s.Get(context.Background(), "dogs/1.svg")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}
