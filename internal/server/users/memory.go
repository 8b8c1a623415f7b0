package users

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/dogwalk/internal/common"
)

var ErrEmailTaken = common.ErrorAlreadyExists

type MemoryRepository struct {
	mu      sync.RWMutex
	byID    map[string]*User
	byEmail map[string]*User
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byID: map[string]*User{}, byEmail: map[string]*User{}}
}

func normalizeEmail(e string) string { return strings.ToLower(strings.TrimSpace(e)) }

// Create assigns an id when user has none.
func (r *MemoryRepository) Create(_ context.Context, user *User) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	email := normalizeEmail(user.Email)
	if _, ok := r.byEmail[email]; ok {
		return nil, ErrEmailTaken
	}
	u := *user
	u.Email = email
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	r.byID[u.ID] = &u
	r.byEmail[email] = &u
	cp := u
	return &cp, nil
}

func (r *MemoryRepository) GetUserByEmail(_ context.Context, email string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byEmail[normalizeEmail(email)]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *MemoryRepository) GetUserByID(_ context.Context, id string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

// Update applies fn to the stored user under the write lock. fn must not
// change ID or Email.
func (r *MemoryRepository) Update(_ context.Context, id string, fn func(u *User)) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	fn(u)
	cp := *u
	return &cp, nil
}

var _ Repository = (*MemoryRepository)(nil)
