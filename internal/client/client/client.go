package client

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/dmitrijs2005/dogwalk/internal/client/api"
	"github.com/dmitrijs2005/dogwalk/internal/client/blobstore"
	"github.com/dmitrijs2005/dogwalk/internal/client/cache"
	"github.com/dmitrijs2005/dogwalk/internal/client/config"
	"github.com/dmitrijs2005/dogwalk/internal/client/refresh"
	"github.com/dmitrijs2005/dogwalk/internal/client/repositories/tags"
	"github.com/dmitrijs2005/dogwalk/internal/client/services"
	"github.com/dmitrijs2005/dogwalk/internal/client/session"
	"github.com/dmitrijs2005/dogwalk/internal/common"
	"github.com/dmitrijs2005/dogwalk/internal/logging"
)

type Client struct {
	Session  *session.Store
	Executor *api.Executor
	Cache    *cache.Cache
	Auth     services.AuthService
	Users    services.UserService
	Images   services.ImageService
	Posts    services.PostService

	base string
	db   *sql.DB
	log  logging.Logger
}

type Option func(*options)

type options struct {
	log       logging.Logger
	transport api.Transport
	blobs     blobstore.Store
}

func WithLogger(l logging.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithTransport replaces the HTTP transport built from the config.
func WithTransport(t api.Transport) Option {
	return func(o *options) { o.transport = t }
}

// WithBlobStore replaces the blob backend selected by the config.
func WithBlobStore(b blobstore.Store) Option {
	return func(o *options) { o.blobs = b }
}

func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Client, error) {
	o := options{log: logging.Discard()}
	for _, opt := range opts {
		opt(&o)
	}
	log := o.log

	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	db, err := InitDatabase(ctx, cfg.DBPath())
	if err != nil {
		return nil, err
	}

	c, err := build(ctx, cfg, db, o)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	log.Debug(ctx, "client ready", "base_url", cfg.BaseURL, "logged_in", c.Session.LoggedIn())
	return c, nil
}

func build(ctx context.Context, cfg *config.Config, db *sql.DB, o options) (*Client, error) {
	store := session.NewStore(
		session.WithPersister(session.NewSQLPersister(db)),
		session.WithLogger(o.log),
	)
	if err := store.Restore(ctx); err != nil {
		return nil, fmt.Errorf("restore session: %w", err)
	}

	transport := o.transport
	if transport == nil {
		transport = api.NewHTTPTransport(cfg.RequestTimeout)
	}

	policy := api.RetryPolicy{
		MaxRetries: cfg.MaxRetries,
		BaseDelay:  cfg.RetryBaseDelay,
		MaxDelay:   cfg.RetryMaxDelay,
	}
	headers := map[string]string{
		common.HeaderAppKey:    cfg.APIKey,
		common.HeaderProductID: cfg.ProductID,
	}

	coordinator := refresh.NewCoordinator(transport, store, refresh.RefreshTarget(cfg.BaseURL),
		refresh.WithTimeout(cfg.RefreshTimeout),
		refresh.WithRetryPolicy(policy),
		refresh.WithDefaultHeaders(headers),
		refresh.WithLogger(o.log),
	)
	exec := api.NewExecutor(transport, store, coordinator,
		api.WithRetryPolicy(policy),
		api.WithDefaultHeaders(headers),
		api.WithLogger(o.log),
	)

	blobs := o.blobs
	if blobs == nil {
		var err error
		if blobs, err = openBlobStore(ctx, cfg); err != nil {
			return nil, err
		}
	}
	eph, err := cache.NewEphemeral(cfg.CacheEntries)
	if err != nil {
		return nil, err
	}
	dur := cache.NewDurable(tags.NewSQLiteRepository(db), blobs, o.log)
	contentCache := cache.New(exec, cfg.BaseURL, eph, dur,
		cache.WithRetryPolicy(policy),
		cache.WithLogger(o.log),
	)

	return &Client{
		Session:  store,
		Executor: exec,
		Cache:    contentCache,
		Auth:     services.NewAuthService(exec, store, cfg.BaseURL),
		Users:    services.NewUserService(exec, cfg.BaseURL),
		Images:   services.NewImageService(contentCache),
		Posts:    services.NewPostService(exec, cfg.BaseURL),
		base:     cfg.BaseURL,
		db:       db,
		log:      o.log,
	}, nil
}

func openBlobStore(ctx context.Context, cfg *config.Config) (blobstore.Store, error) {
	switch cfg.BlobBackend {
	case config.BlobBackendS3:
		return blobstore.NewS3Store(ctx, blobstore.S3Config{
			Region:       cfg.S3.Region,
			Endpoint:     cfg.S3.Endpoint,
			AccessKey:    cfg.S3.AccessKey,
			SecretKey:    cfg.S3.SecretKey,
			Bucket:       cfg.S3.Bucket,
			Prefix:       cfg.S3.Prefix,
			UsePathStyle: cfg.S3.UsePathStyle,
		})
	case config.BlobBackendFile, "":
		return blobstore.NewFileStore(cfg.BlobDir())
	default:
		return nil, fmt.Errorf("unknown blob backend %q", cfg.BlobBackend)
	}
}

// Get performs an authenticated GET of path relative to the base URL and
// returns the raw body.
func (c *Client) Get(ctx context.Context, path string) ([]byte, error) {
	resp, err := c.Executor.Fetch(ctx, api.Target{BaseURL: c.base, Path: path})
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}
