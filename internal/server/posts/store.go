// Package posts implements the origin's community feed: cursor-paged posts
// with views, likes and comments.
package posts

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/dogwalk/internal/common"
)

const (
	// EndCursor marks the last page.
	EndCursor    = "0"
	DefaultLimit = 20
	MaxLimit     = 100
)

var ErrInvalidCursor = errors.New("invalid cursor")

// Store keeps posts in creation order; the feed lists them newest first.
type Store struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]*Post
	now   func() time.Time
}

func NewStore() *Store {
	return &Store{byID: map[string]*Post{}, now: time.Now}
}

func clonePost(p *Post) Post {
	cp := *p
	cp.Files = slices.Clone(p.Files)
	cp.Likes = slices.Clone(p.Likes)
	cp.Comments = slices.Clone(p.Comments)
	return cp
}

func (s *Store) Create(_ context.Context, creatorID string, d Draft) (Post, error) {
	if d.Title == "" || d.Category == "" {
		return Post{}, common.ErrorInvalidArgument
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p := &Post{
		ID:        uuid.NewString(),
		Category:  d.Category,
		Title:     d.Title,
		Price:     d.Price,
		Content:   d.Content,
		Files:     slices.Clone(d.Files),
		Longitude: d.Longitude,
		Latitude:  d.Latitude,
		CreatorID: creatorID,
		CreatedAt: s.now(),
	}
	s.order = append(s.order, p.ID)
	s.byID[p.ID] = p
	return clonePost(p), nil
}

func (s *Store) Get(_ context.Context, id string) (Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.byID[id]
	if !ok {
		return Post{}, common.ErrorNotFound
	}
	return clonePost(p), nil
}

// List walks the feed newest first. q.Next is the id of the last post of
// the previous page, or empty for the first page.
func (s *Store) List(_ context.Context, q Query) (Page, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	limit = min(limit, MaxLimit)

	s.mu.RLock()
	defer s.mu.RUnlock()

	if q.Next == EndCursor {
		return Page{NextCursor: EndCursor}, nil
	}
	start := len(s.order) - 1
	if q.Next != "" {
		i := slices.Index(s.order, q.Next)
		if i < 0 {
			return Page{}, ErrInvalidCursor
		}
		start = i - 1
	}

	page := Page{NextCursor: EndCursor}
	for i := start; i >= 0; i-- {
		p := s.byID[s.order[i]]
		if len(q.Categories) > 0 && !slices.Contains(q.Categories, p.Category) {
			continue
		}
		if len(page.Posts) == limit {
			page.NextCursor = page.Posts[len(page.Posts)-1].ID
			break
		}
		page.Posts = append(page.Posts, clonePost(p))
	}
	return page, nil
}

func (s *Store) update(id string, fn func(p *Post)) (Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.byID[id]
	if !ok {
		return Post{}, common.ErrorNotFound
	}
	fn(p)
	return clonePost(p), nil
}

// AddView counts one more view and returns the new total.
func (s *Store) AddView(_ context.Context, id string) (int, error) {
	p, err := s.update(id, func(p *Post) { p.Views++ })
	return p.Views, err
}

// Like sets or clears userID's like. It is idempotent in both directions.
func (s *Store) Like(_ context.Context, id, userID string, like bool) (bool, error) {
	_, err := s.update(id, func(p *Post) {
		i := slices.Index(p.Likes, userID)
		switch {
		case like && i < 0:
			p.Likes = append(p.Likes, userID)
		case !like && i >= 0:
			p.Likes = slices.Delete(p.Likes, i, i+1)
		}
	})
	if err != nil {
		return false, err
	}
	return like, nil
}

func (s *Store) AddComment(_ context.Context, id, userID, content string) (Comment, error) {
	if content == "" {
		return Comment{}, common.ErrorInvalidArgument
	}
	c := Comment{ID: uuid.NewString(), Content: content, CreatorID: userID, CreatedAt: s.now()}
	if _, err := s.update(id, func(p *Post) { p.Comments = append(p.Comments, c) }); err != nil {
		return Comment{}, err
	}
	return c, nil
}
