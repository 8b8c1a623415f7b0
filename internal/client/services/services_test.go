package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/dogwalk/internal/client/api"
	"github.com/dmitrijs2005/dogwalk/internal/client/cache"
	"github.com/dmitrijs2005/dogwalk/internal/client/refresh"
	"github.com/dmitrijs2005/dogwalk/internal/client/session"
)

// origin accepts alice/secret, hands out a1/r1 and rotates to a2/r2 on
// refresh. Profiles require the current access token and answer 419 to a1
// once expired is set.
type origin struct {
	expired   atomic.Bool
	refreshes atomic.Int32
}

func (o *origin) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /users/login", func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email != "alice@dog.walk" || req.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(LoginResponse{UserID: "u1", Email: req.Email, Nick: "alice", AccessToken: "a1", RefreshToken: "r1"})
	})
	mux.HandleFunc("GET /auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		o.refreshes.Add(1)
		if r.Header.Get("RefreshToken") != "r1" {
			w.WriteHeader(http.StatusTeapot)
			return
		}
		_ = json.NewEncoder(w).Encode(refresh.TokenPair{AccessToken: "a2", RefreshToken: "r2"})
	})
	profile := func(me string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			id := me
			if id == "" {
				id = r.PathValue("id")
			}
			switch tok := r.Header.Get("Authorization"); {
			case tok == "a1" && o.expired.Load():
				w.WriteHeader(api.StatusTokenExpired)
				return
			case tok != "a1" && tok != "a2":
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_ = json.NewEncoder(w).Encode(Profile{UserID: id, Nick: "nick-" + id})
		}
	}
	mux.HandleFunc("GET /users/me/profile", profile("u1"))
	mux.HandleFunc("GET /users/{id}/profile", profile(""))
	return mux
}

type env struct {
	origin *origin
	store  *session.Store
	auth   AuthService
	users  UserService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	o := &origin{}
	srv := httptest.NewServer(o.handler())
	t.Cleanup(srv.Close)

	store := session.NewStore()
	tr := api.NewHTTPTransport(0)
	policy := api.RetryPolicy{MaxRetries: 1}
	coord := refresh.NewCoordinator(tr, store, refresh.RefreshTarget(srv.URL), refresh.WithRetryPolicy(policy))
	exec := api.NewExecutor(tr, store, coord, api.WithRetryPolicy(policy))
	return &env{
		origin: o,
		store:  store,
		auth:   NewAuthService(exec, store, srv.URL),
		users:  NewUserService(exec, srv.URL),
	}
}

func TestEmailLogin_InstallsCredentials(t *testing.T) {
	e := newEnv(t)

	c, err := e.auth.EmailLogin(context.Background(), "alice@dog.walk", []byte("secret"))
	require.NoError(t, err)
	want := session.Credentials{AccessToken: "a1", RefreshToken: "r1", UserID: "u1", Nick: "alice"}
	assert.Equal(t, want, c)
	assert.Equal(t, want, e.store.Current())

	who, ok := e.auth.Whoami()
	assert.True(t, ok)
	assert.Equal(t, "alice", who.Nick)
}

func TestEmailLogin_WrongPasswordDoesNotRefresh(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	_, err := e.auth.EmailLogin(ctx, "alice@dog.walk", []byte("secret"))
	require.NoError(t, err)

	_, err = e.auth.EmailLogin(ctx, "alice@dog.walk", []byte("wrong"))
	require.ErrorIs(t, err, api.ErrUnauthorized)
	assert.Equal(t, int32(0), e.origin.refreshes.Load())
	assert.Equal(t, "a1", e.store.AccessToken())
}

func TestLogout(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	_, err := e.auth.EmailLogin(ctx, "alice@dog.walk", []byte("secret"))
	require.NoError(t, err)

	require.NoError(t, e.auth.Logout(ctx))
	_, ok := e.auth.Whoami()
	assert.False(t, ok)
}

func TestMyProfile_RefreshesExpiredToken(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	_, err := e.auth.EmailLogin(ctx, "alice@dog.walk", []byte("secret"))
	require.NoError(t, err)
	e.origin.expired.Store(true)

	p, err := e.users.MyProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, Profile{UserID: "u1", Nick: "nick-u1"}, p)
	assert.Equal(t, int32(1), e.origin.refreshes.Load())
	assert.Equal(t, session.Credentials{AccessToken: "a2", RefreshToken: "r2", UserID: "u1", Nick: "alice"}, e.store.Current())
}

func TestProfile_OtherUser(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	_, err := e.auth.EmailLogin(ctx, "alice@dog.walk", []byte("secret"))
	require.NoError(t, err)

	p, err := e.users.Profile(ctx, "u7")
	require.NoError(t, err)
	assert.Equal(t, "nick-u7", p.Nick)

	p, err = e.users.Profile(ctx, "u 2")
	require.NoError(t, err)
	assert.Equal(t, "u 2", p.UserID)
}

func TestMyProfile_NotLoggedIn(t *testing.T) {
	e := newEnv(t)

	_, err := e.users.MyProfile(context.Background())
	require.ErrorIs(t, err, api.ErrUnauthorized)
}

type fakeCache struct {
	data []byte
	err  error
	id   string
	tier cache.Tier
}

func (f *fakeCache) Fetch(_ context.Context, id string, tier cache.Tier) ([]byte, error) {
	f.id, f.tier = id, tier
	return f.data, f.err
}

func TestImageService(t *testing.T) {
	fc := &fakeCache{data: []byte("png")}
	s := NewImageService(fc)

	got, err := s.Image(context.Background(), "img/42", cache.TierDocument)
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), got)
	assert.Equal(t, "img/42", fc.id)
	assert.Equal(t, cache.TierDocument, fc.tier)

	fc.data, fc.err = nil, errors.New("boom")
	_, err = s.Image(context.Background(), "img/42", cache.TierCache)
	assert.ErrorContains(t, err, "image img/42: boom")

	fc.data, fc.err = nil, nil
	got, err = s.Image(context.Background(), "img/gone", cache.TierCache)
	require.NoError(t, err)
	assert.Nil(t, got)
}
