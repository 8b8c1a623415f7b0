package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/dogwalk/internal/common"
	"github.com/dmitrijs2005/dogwalk/internal/logging"
)

// CredentialSource yields the access token to attach to outgoing requests.
// An empty token means no Authorization header.
type CredentialSource interface {
	AccessToken() string
}

// Refresher obtains a new credential pair. stale is the access token that was
// rejected; implementations may return true without a network call when the
// stored token has already moved on.
type Refresher interface {
	Refresh(ctx context.Context, stale string) bool
}

type Option func(*Executor)

func WithRetryPolicy(p RetryPolicy) Option {
	return func(e *Executor) { e.policy = p }
}

func WithLogger(l logging.Logger) Option {
	return func(e *Executor) { e.log = l }
}

// WithDefaultHeaders sets headers sent on every request, such as the app key
// and product id. Target headers override them.
func WithDefaultHeaders(h map[string]string) Option {
	return func(e *Executor) {
		e.headers = make(map[string]string, len(h))
		for k, v := range h {
			e.headers[k] = v
		}
	}
}

type CallOption func(*callConfig)

type callConfig struct {
	policy    RetryPolicy
	noRefresh bool
}

// WithCallRetryPolicy overrides the executor's policy for one call.
func WithCallRetryPolicy(p RetryPolicy) CallOption {
	return func(c *callConfig) { c.policy = p }
}

// WithoutRefresh makes auth failures terminal for one call. Login uses it:
// a rejected password must not trigger a refresh of an older session.
func WithoutRefresh() CallOption {
	return func(c *callConfig) { c.noRefresh = true }
}

// Executor runs Targets against a Transport. It is safe for concurrent use.
type Executor struct {
	transport Transport
	creds     CredentialSource
	refresher Refresher
	policy    RetryPolicy
	headers   map[string]string
	log       logging.Logger
}

// NewExecutor builds an executor. creds and r may be nil for unauthenticated
// use; without a refresher auth failures surface immediately.
func NewExecutor(t Transport, creds CredentialSource, r Refresher, opts ...Option) *Executor {
	e := &Executor{
		transport: t,
		creds:     creds,
		refresher: r,
		policy:    DefaultRetryPolicy(),
		log:       logging.Discard(),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

func (e *Executor) accessToken() string {
	if e.creds == nil {
		return ""
	}
	return e.creds.AccessToken()
}

func (e *Executor) requestHeaders(access, callID string) map[string]string {
	h := make(map[string]string, len(e.headers)+2)
	for k, v := range e.headers {
		h[k] = v
	}
	if access != "" {
		h[common.HeaderAuthorization] = access
	}
	h[common.HeaderRequestID] = callID
	return h
}

// Fetch runs t until it gets a 200 response or a terminal failure.
//
// Two independent budgets bound the loop: at most one credential refresh and
// replay on 401/419, and at most RetryPolicy.MaxRetries retries for other
// retryable failures. A refresh does not consume a retry.
func (e *Executor) Fetch(ctx context.Context, t Target, opts ...CallOption) (*Response, error) {
	cfg := callConfig{policy: e.policy}
	for _, o := range opts {
		o(&cfg)
	}

	callID := uuid.NewString()
	log := e.log.With("call_id", callID, "method", t.method(), "path", t.Path)

	state := cfg.policy.NewState()
	backoff := cfg.policy.backoff()
	refreshed := false

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		access := e.accessToken()
		req, err := t.Request(ctx, e.requestHeaders(access, callID))
		if err != nil {
			return nil, err
		}

		resp, err := e.transport.Send(ctx, req)
		var rerr *RequestError
		switch {
		case err != nil:
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			rerr = &RequestError{Kind: KindNoResponse, Err: err}
		case resp.StatusCode == http.StatusOK:
			log.Debug(ctx, "request succeeded", "attempt", attempt, "status", resp.StatusCode)
			return resp, nil
		default:
			rerr = statusError(resp.StatusCode)
		}
		log.Debug(ctx, "request failed", "attempt", attempt, "status", rerr.StatusCode, "kind", rerr.Kind.String())

		if rerr.Kind.NeedsRefresh() {
			if refreshed || cfg.noRefresh || e.refresher == nil {
				return nil, rerr
			}
			refreshed = true
			if !e.refresher.Refresh(ctx, access) {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return nil, ctxErr
				}
				log.Warn(ctx, "credential refresh failed", "kind", rerr.Kind.String())
				return nil, rerr
			}
			log.Debug(ctx, "credentials refreshed, replaying")
			continue
		}

		if !cfg.policy.ShouldRetry(rerr.Kind, state) {
			return nil, rerr
		}
		state = state.Next()
		if err := wait(ctx, backoff); err != nil {
			return nil, err
		}
	}
}

// Execute fetches t and decodes the JSON body into out. out may be nil when
// the body is irrelevant. Decode failures are never retried.
func (e *Executor) Execute(ctx context.Context, t Target, out any, opts ...CallOption) error {
	resp, err := e.Fetch(ctx, t, opts...)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return &RequestError{Kind: KindDecodeFailed, StatusCode: resp.StatusCode, Err: err}
	}
	return nil
}

// Do is the typed form of Execute.
func Do[T any](ctx context.Context, e *Executor, t Target, opts ...CallOption) (T, error) {
	var out T
	err := e.Execute(ctx, t, &out, opts...)
	return out, err
}
