// Package refresh coalesces credential refreshes: however many calls see an
// expired token at once, the origin receives a single refresh request and
// every waiter observes its outcome.
package refresh

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dmitrijs2005/dogwalk/internal/client/api"
	"github.com/dmitrijs2005/dogwalk/internal/client/session"
	"github.com/dmitrijs2005/dogwalk/internal/common"
	"github.com/dmitrijs2005/dogwalk/internal/logging"
)

const (
	RefreshPath    = "auth/refresh"
	DefaultTimeout = 10 * time.Second
	flightKey      = "refresh"
)

// TokenPair is the body of a successful refresh.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// TargetFunc builds the refresh request from the credentials being replaced.
type TargetFunc func(session.Credentials) api.Target

// RefreshTarget is the origin's refresh endpoint: GET {base}/auth/refresh
// carrying both tokens.
func RefreshTarget(baseURL string) TargetFunc {
	return func(c session.Credentials) api.Target {
		return api.Target{
			BaseURL: baseURL,
			Path:    RefreshPath,
			Method:  http.MethodGet,
			Header: map[string]string{
				common.HeaderAuthorization: c.AccessToken,
				common.HeaderRefreshToken:  c.RefreshToken,
			},
		}
	}
}

type Option func(*options)

type options struct {
	timeout time.Duration
	policy  api.RetryPolicy
	headers map[string]string
	log     logging.Logger
}

// WithTimeout bounds one shared refresh, independent of any caller's context.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

func WithRetryPolicy(p api.RetryPolicy) Option {
	return func(o *options) { o.policy = p }
}

func WithDefaultHeaders(h map[string]string) Option {
	return func(o *options) { o.headers = h }
}

func WithLogger(l logging.Logger) Option {
	return func(o *options) { o.log = l }
}

type Coordinator struct {
	exec    *api.Executor
	store   *session.Store
	target  TargetFunc
	timeout time.Duration
	log     logging.Logger
	group   singleflight.Group
}

// NewCoordinator builds a coordinator whose refresh calls go through their
// own executor. That executor has no refresher, so a rejected refresh never
// recurses.
func NewCoordinator(t api.Transport, s *session.Store, target TargetFunc, opts ...Option) *Coordinator {
	o := options{
		timeout: DefaultTimeout,
		policy:  api.DefaultRetryPolicy(),
		log:     logging.Discard(),
	}
	for _, fn := range opts {
		fn(&o)
	}
	execOpts := []api.Option{api.WithRetryPolicy(o.policy), api.WithLogger(o.log)}
	if o.headers != nil {
		execOpts = append(execOpts, api.WithDefaultHeaders(o.headers))
	}
	return &Coordinator{
		exec:    api.NewExecutor(t, nil, nil, execOpts...),
		store:   s,
		target:  target,
		timeout: o.timeout,
		log:     o.log.With("component", "refresh"),
	}
}

// Refresh reports whether credentials newer than stale are installed when it
// returns. A caller whose ctx ends stops waiting and gets false; the shared
// refresh keeps going for the others.
func (c *Coordinator) Refresh(ctx context.Context, stale string) bool {
	if cur := c.store.AccessToken(); cur != "" && cur != stale {
		return true
	}

	ch := c.group.DoChan(flightKey, func() (any, error) {
		return nil, c.refresh(context.WithoutCancel(ctx), stale)
	})

	select {
	case <-ctx.Done():
		return false
	case res := <-ch:
		return res.Err == nil
	}
}

func (c *Coordinator) refresh(ctx context.Context, stale string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	creds := c.store.Current()
	if creds.RefreshToken == "" {
		return common.ErrorNotLoggedIn
	}
	if creds.AccessToken != stale {
		return nil
	}

	pair, err := api.Do[TokenPair](ctx, c.exec, c.target(creds))
	if err != nil {
		c.log.Warn(ctx, "refresh failed", "kind", api.KindOf(err).String(), "error", err)
		return err
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		err := &api.RequestError{Kind: api.KindDecodeFailed, StatusCode: http.StatusOK, Err: errors.New("empty token in refresh response")}
		c.log.Warn(ctx, "refresh failed", "kind", err.Kind.String())
		return err
	}

	if err := c.store.Rotate(ctx, pair.AccessToken, pair.RefreshToken); err != nil {
		if errors.Is(err, common.ErrorNotLoggedIn) {
			return fmt.Errorf("install refreshed credentials: %w", err)
		}
		// The new pair is live in memory; only persisting it failed.
		c.log.Warn(ctx, "refreshed credentials not persisted", "error", err)
	}
	c.log.Info(ctx, "credentials refreshed")
	return nil
}

var _ api.Refresher = (*Coordinator)(nil)
