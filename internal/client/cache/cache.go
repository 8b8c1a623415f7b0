// Package cache serves content identifiers (such as image paths) from one of
// two tiers: an in-memory LRU, or durable storage revalidated against the
// origin's ETag with a HEAD request. Both tiers fetch through the same
// api.Executor, so credential refresh and retries behave exactly as for any
// other call.
package cache

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/dogwalk/internal/client/api"
	"github.com/dmitrijs2005/dogwalk/internal/common"
	"github.com/dmitrijs2005/dogwalk/internal/logging"
)

type Tier int

const (
	TierCache Tier = iota
	TierDocument
)

func (t Tier) String() string {
	switch t {
	case TierCache:
		return "cache"
	case TierDocument:
		return "document"
	}
	return fmt.Sprintf("tier(%d)", int(t))
}

func ParseTier(s string) (Tier, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cache", "":
		return TierCache, nil
	case "document":
		return TierDocument, nil
	}
	return 0, fmt.Errorf("unknown cache tier %q", s)
}

// Fetcher is the part of api.Executor the cache needs.
type Fetcher interface {
	Fetch(ctx context.Context, t api.Target, opts ...api.CallOption) (*api.Response, error)
}

// tierPolicy decides where a tier looks before going to the origin and what
// it keeps afterwards.
type tierPolicy interface {
	fetch(ctx context.Context, c *Cache, id string, t api.Target) ([]byte, error)
}

type Option func(*Cache)

// WithRetryPolicy sets the policy for content calls. InvalidURL is never
// retried regardless.
func WithRetryPolicy(p api.RetryPolicy) Option {
	return func(c *Cache) { c.policy = p }
}

func WithLogger(l logging.Logger) Option {
	return func(c *Cache) { c.log = l }
}

type Cache struct {
	exec   Fetcher
	base   string
	eph    *Ephemeral
	dur    *Durable
	policy api.RetryPolicy
	locks  *keyedMutex
	log    logging.Logger
}

// New builds a cache for content under base. Either tier may be nil, in
// which case fetching from it fails.
func New(exec Fetcher, base string, eph *Ephemeral, dur *Durable, opts ...Option) *Cache {
	c := &Cache{
		exec:   exec,
		base:   base,
		eph:    eph,
		dur:    dur,
		policy: api.DefaultRetryPolicy(),
		locks:  newKeyedMutex(),
		log:    logging.Discard(),
	}
	for _, o := range opts {
		o(c)
	}
	c.log = c.log.With("component", "cache")
	return c
}

var errTierUnavailable = errors.New("cache tier not configured")

// Fetch returns the bytes for id. A nil slice with a nil error means the
// origin reports no such content.
func (c *Cache) Fetch(ctx context.Context, id string, tier Tier) ([]byte, error) {
	var p tierPolicy
	switch tier {
	case TierCache:
		if c.eph == nil {
			return nil, fmt.Errorf("%s: %w", tier, errTierUnavailable)
		}
		p = ephemeralPolicy{}
	case TierDocument:
		if c.dur == nil {
			return nil, fmt.Errorf("%s: %w", tier, errTierUnavailable)
		}
		p = durablePolicy{}
	default:
		return nil, fmt.Errorf("%s: %w", tier, errTierUnavailable)
	}

	unlock, err := c.locks.Lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	data, err := p.fetch(ctx, c, id, c.target(id))
	if errors.Is(err, api.ErrInvalidURL) {
		c.log.Debug(ctx, "no content", "id", id, "tier", tier.String())
		return nil, nil
	}
	return data, err
}

func (c *Cache) target(id string) api.Target {
	return api.Target{BaseURL: c.base, Path: id, Method: http.MethodGet}
}

func (c *Cache) get(ctx context.Context, t api.Target) (*api.Response, error) {
	return c.exec.Fetch(ctx, t, api.WithCallRetryPolicy(c.policy.Without(api.KindInvalidURL)))
}

// Prune removes durable-tier leftovers. It is a no-op without a durable tier.
func (c *Cache) Prune(ctx context.Context) (PruneReport, error) {
	if c.dur == nil {
		return PruneReport{}, nil
	}
	return c.dur.Prune(ctx)
}

// Clear empties both tiers.
func (c *Cache) Clear(ctx context.Context) error {
	if c.eph != nil {
		c.eph.Purge()
	}
	if c.dur != nil {
		return c.dur.Clear(ctx)
	}
	return nil
}

type ephemeralPolicy struct{}

func (ephemeralPolicy) fetch(ctx context.Context, c *Cache, id string, t api.Target) ([]byte, error) {
	key, err := requestKey(t)
	if err != nil {
		return nil, err
	}
	if ent, ok := c.eph.get(key); ok {
		c.log.Debug(ctx, "cache hit", "id", id, "tier", TierCache.String())
		return bytes.Clone(ent.body), nil
	}

	resp, err := c.get(ctx, t)
	if err != nil {
		return nil, err
	}
	c.eph.add(key, resp)
	c.log.Debug(ctx, "cache fill", "id", id, "tier", TierCache.String(), "bytes", len(resp.Body))
	return resp.Body, nil
}

type durablePolicy struct{}

func (durablePolicy) fetch(ctx context.Context, c *Cache, id string, t api.Target) ([]byte, error) {
	log := c.log.With("id", id, "tier", TierDocument.String())

	rec, ok, err := c.dur.tag(ctx, id)
	if err != nil {
		return nil, err
	}
	if ok {
		head := t
		head.Method = http.MethodHead
		resp, err := c.get(ctx, head)
		if err != nil {
			return nil, err
		}
		if etag := resp.Header.Get(common.HeaderETag); etag != "" && etag == rec.ETag {
			data, found, err := c.dur.blob(ctx, rec)
			if err != nil {
				return nil, err
			}
			if found {
				log.Debug(ctx, "revalidated", "etag", etag)
				return data, nil
			}
		}
	}

	resp, err := c.get(ctx, t)
	if err != nil {
		return nil, err
	}
	etag := resp.Header.Get(common.HeaderETag)
	if etag == "" {
		log.Debug(ctx, "origin sent no etag, not persisting")
		return resp.Body, nil
	}
	if err := c.dur.commit(ctx, id, etag, resp.Body); err != nil {
		log.Warn(ctx, "failed to persist content", "error", err)
		return resp.Body, nil
	}
	log.Debug(ctx, "stored", "etag", etag, "bytes", len(resp.Body))
	return resp.Body, nil
}
