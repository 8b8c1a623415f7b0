package refreshtokens

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/dogwalk/internal/common"
)

type MemoryRepository struct {
	mu     sync.Mutex
	tokens map[string]RefreshToken
	now    func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{tokens: make(map[string]RefreshToken), now: time.Now}
}

func (r *MemoryRepository) Create(_ context.Context, userID string, token string, validity time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	r.tokens[token] = RefreshToken{UserID: userID, Token: token, Expires: now.Add(validity), CreatedAt: now}
	r.sweep(now)
	return nil
}

func (r *MemoryRepository) Find(_ context.Context, token string) (*RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rt, ok := r.tokens[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &rt, nil
}

func (r *MemoryRepository) Delete(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tokens, token)
	return nil
}

// sweep drops tokens expired for longer than a minute. Callers hold mu.
func (r *MemoryRepository) sweep(now time.Time) {
	for k, rt := range r.tokens {
		if now.Sub(rt.Expires) > time.Minute {
			delete(r.tokens, k)
		}
	}
}

var _ Repository = (*MemoryRepository)(nil)
