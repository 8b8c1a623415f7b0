// Package server assembles the development origin: the in-memory account
// and refresh-token stores, the image and post stores and the HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/dogwalk/internal/common"
	"github.com/dmitrijs2005/dogwalk/internal/logging"
	"github.com/dmitrijs2005/dogwalk/internal/server/config"
	"github.com/dmitrijs2005/dogwalk/internal/server/httpapi"
	"github.com/dmitrijs2005/dogwalk/internal/server/images"
	"github.com/dmitrijs2005/dogwalk/internal/server/posts"
	"github.com/dmitrijs2005/dogwalk/internal/server/refreshtokens"
	"github.com/dmitrijs2005/dogwalk/internal/server/users"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	userService *users.Service
	images      *images.Store
	posts       *posts.Store
	server      *httpapi.Server
}

// NewApp wires the origin. An empty SecretKey is replaced by a random one,
// which invalidates every token on restart.
func NewApp(ctx context.Context, c *config.Config, w io.Writer) (*App, error) {
	logger := logging.New(w, c.LogLevel).With("app", "dogwalk-origin")

	if c.SecretKey == "" {
		key, err := common.MakeRandHexString(32)
		if err != nil {
			return nil, fmt.Errorf("generate secret key: %w", err)
		}
		c.SecretKey = key
		logger.Warn(ctx, "no secret key configured, using a random one")
	}

	us := users.NewService(users.NewMemoryRepository(), refreshtokens.NewMemoryRepository(), c)
	if c.DemoEmail != "" && c.DemoPassword != "" {
		if _, err := us.Register(ctx, c.DemoEmail, c.DemoNick, []byte(c.DemoPassword)); err != nil && !errors.Is(err, users.ErrEmailTaken) {
			return nil, fmt.Errorf("create demo user: %w", err)
		}
		logger.Info(ctx, "demo user ready", "email", c.DemoEmail)
	}

	is := images.NewStore()
	if err := is.Seed(); err != nil {
		return nil, fmt.Errorf("seed images: %w", err)
	}
	if c.ImageDir != "" {
		n, err := is.LoadDir(c.ImageDir)
		if err != nil {
			return nil, err
		}
		logger.Info(ctx, "images loaded", "dir", c.ImageDir, "count", n)
	}

	ps := posts.NewStore()

	router := httpapi.NewRouter(us, is, ps, httpapi.RouterOptions{
		APIKey:    c.APIKey,
		ProductID: c.ProductID,
		Logger:    logger,
	})

	return &App{
		config:      c,
		logger:      logger,
		userService: us,
		images:      is,
		posts:       ps,
		server:      httpapi.NewServer(c.Addr, router, logger),
	}, nil
}

// Run serves until ctx is cancelled.
func (app *App) Run(ctx context.Context) error {
	app.logger.Info(ctx, "Starting app...")
	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, "server stopped", "error", err)
		return err
	}
	app.logger.Info(ctx, "Stopped")
	return nil
}
