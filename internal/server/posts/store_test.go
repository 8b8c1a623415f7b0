package posts

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/dogwalk/internal/common"
)

func seed(t *testing.T, s *Store, n int, category string) []Post {
	t.Helper()
	out := make([]Post, 0, n)
	for i := range n {
		p, err := s.Create(context.Background(), "u1", Draft{Category: category, Title: "walk " + strconv.Itoa(i)})
		require.NoError(t, err)
		out = append(out, p)
	}
	return out
}

func titles(ps []Post) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.Title)
	}
	return out
}

func TestList_PagesNewestFirstUntilEndCursor(t *testing.T) {
	s := NewStore()
	seed(t, s, 5, "free")
	ctx := context.Background()

	var seen []string
	next := ""
	for pages := 0; next != EndCursor; pages++ {
		require.Less(t, pages, 5)
		page, err := s.List(ctx, Query{Next: next, Limit: 2})
		require.NoError(t, err)
		seen = append(seen, titles(page.Posts)...)
		next = page.NextCursor
	}
	assert.Equal(t, []string{"walk 4", "walk 3", "walk 2", "walk 1", "walk 0"}, seen)

	page, err := s.List(ctx, Query{Next: EndCursor})
	require.NoError(t, err)
	assert.Empty(t, page.Posts)
}

func TestList_ExactMultipleEndsWithoutEmptyPage(t *testing.T) {
	s := NewStore()
	seed(t, s, 2, "free")

	page, err := s.List(context.Background(), Query{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page.Posts, 2)
	assert.Equal(t, EndCursor, page.NextCursor)
}

func TestList_FiltersByCategory(t *testing.T) {
	s := NewStore()
	seed(t, s, 2, "free")
	seed(t, s, 1, "walks")

	page, err := s.List(context.Background(), Query{Categories: []string{"walks"}})
	require.NoError(t, err)
	require.Len(t, page.Posts, 1)
	assert.Equal(t, "walks", page.Posts[0].Category)
}

func TestList_UnknownCursor(t *testing.T) {
	s := NewStore()
	_, err := s.List(context.Background(), Query{Next: "nope"})
	assert.ErrorIs(t, err, ErrInvalidCursor)
}

func TestCreate_RequiresTitleAndCategory(t *testing.T) {
	s := NewStore()
	_, err := s.Create(context.Background(), "u1", Draft{Title: "x"})
	assert.ErrorIs(t, err, common.ErrorInvalidArgument)
}

func TestViewsLikesComments(t *testing.T) {
	s := NewStore()
	p := seed(t, s, 1, "free")[0]
	ctx := context.Background()

	views, err := s.AddView(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, views)

	for range 2 {
		liked, err := s.Like(ctx, p.ID, "u2", true)
		require.NoError(t, err)
		assert.True(t, liked)
	}
	c, err := s.AddComment(ctx, p.ID, "u2", "good dog")
	require.NoError(t, err)

	got, err := s.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"u2"}, got.Likes)
	assert.Equal(t, []Comment{c}, got.Comments)

	_, err = s.Like(ctx, p.ID, "u2", false)
	require.NoError(t, err)
	got, err = s.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Likes)

	_, err = s.AddComment(ctx, p.ID, "u2", "")
	assert.ErrorIs(t, err, common.ErrorInvalidArgument)
	_, err = s.AddView(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestGet_ReturnsCopy(t *testing.T) {
	s := NewStore()
	p, err := s.Create(context.Background(), "u1", Draft{Category: "free", Title: "t", Files: []string{"a"}})
	require.NoError(t, err)
	p.Files[0] = "changed"

	got, err := s.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, got.Files)
}
