// Package session holds the signed-in user's credential pair.
//
// Readers never block and always see an access/refresh pair that was
// installed together; writers are serialized so that what is persisted
// matches the order in which pairs were installed.
package session

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/dmitrijs2005/dogwalk/internal/common"
	"github.com/dmitrijs2005/dogwalk/internal/logging"
)

type Credentials struct {
	AccessToken  string
	RefreshToken string
	UserID       string
	Nick         string
}

func (c Credentials) Empty() bool {
	return c.AccessToken == "" && c.RefreshToken == ""
}

// Persister keeps credentials across restarts.
type Persister interface {
	Load(ctx context.Context) (Credentials, bool, error)
	Save(ctx context.Context, c Credentials) error
	Clear(ctx context.Context) error
}

type StoreOption func(*Store)

func WithPersister(p Persister) StoreOption {
	return func(s *Store) { s.persister = p }
}

func WithLogger(l logging.Logger) StoreOption {
	return func(s *Store) { s.log = l }
}

type Store struct {
	cur       atomic.Pointer[Credentials]
	mu        sync.Mutex
	persister Persister
	log       logging.Logger
}

func NewStore(opts ...StoreOption) *Store {
	s := &Store{log: logging.Discard()}
	for _, o := range opts {
		o(s)
	}
	s.cur.Store(&Credentials{})
	return s
}

// Current returns a snapshot; changing it does not affect the store.
func (s *Store) Current() Credentials {
	return *s.cur.Load()
}

func (s *Store) AccessToken() string {
	return s.cur.Load().AccessToken
}

func (s *Store) LoggedIn() bool {
	return s.cur.Load().AccessToken != ""
}

// AuthHeaders returns the headers for a refresh call, taken from one
// snapshot.
func (s *Store) AuthHeaders() map[string]string {
	c := s.cur.Load()
	return map[string]string{
		common.HeaderAuthorization: c.AccessToken,
		common.HeaderRefreshToken:  c.RefreshToken,
	}
}

// install swaps in c and persists it. The in-memory value is kept even when
// persisting fails.
func (s *Store) install(ctx context.Context, c Credentials) error {
	s.cur.Store(&c)
	if s.persister == nil {
		return nil
	}
	var err error
	if c.Empty() {
		err = s.persister.Clear(ctx)
	} else {
		err = s.persister.Save(ctx, c)
	}
	if err != nil {
		s.log.Warn(ctx, "failed to persist credentials", "error", err)
		return fmt.Errorf("persist credentials: %w", err)
	}
	return nil
}

func (s *Store) Login(ctx context.Context, c Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.install(ctx, c)
}

// Rotate replaces both tokens at once and keeps the user identity.
func (s *Store) Rotate(ctx context.Context, access, refresh string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.Current()
	if c.Empty() {
		return common.ErrorNotLoggedIn
	}
	c.AccessToken, c.RefreshToken = access, refresh
	return s.install(ctx, c)
}

func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.install(ctx, Credentials{})
}

// Restore loads persisted credentials, if any. Without a persister it is a
// no-op.
func (s *Store) Restore(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok, err := s.persister.Load(ctx)
	if err != nil {
		return fmt.Errorf("load credentials: %w", err)
	}
	if ok {
		s.cur.Store(&c)
	}
	return nil
}
