// Package httpapi is the development origin's HTTP surface: login, token
// refresh, profiles, images and the post feed, behind the app-key and
// access-token checks the client pipeline expects.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrijs2005/dogwalk/internal/logging"
	"github.com/dmitrijs2005/dogwalk/internal/server/images"
	"github.com/dmitrijs2005/dogwalk/internal/server/posts"
	"github.com/dmitrijs2005/dogwalk/internal/server/users"
)

type RouterOptions struct {
	APIKey    string
	ProductID string
	Logger    logging.Logger
}

func NewRouter(us *users.Service, is *images.Store, ps *posts.Store, opts RouterOptions) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logging.Discard()
	}
	h := &handlers{users: us, images: is, posts: ps}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger(log))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "not found")
	})

	r.Group(func(r chi.Router) {
		r.Use(RequireAppKey(opts.APIKey, opts.ProductID))

		r.Post("/users/login", h.login)
		r.Get("/auth/refresh", h.refresh)

		r.Group(func(r chi.Router) {
			r.Use(RequireAccessToken(us))

			r.Get("/users/me/profile", h.myProfile)
			r.Put("/users/me/profile", h.updateProfile)
			r.Get("/users/{id}/profile", h.profile)
			r.Get("/images/*", h.image)
			r.Head("/images/*", h.image)

			r.Route("/posts", func(r chi.Router) {
				r.Get("/", h.listPosts)
				r.Post("/", h.createPost)
				r.Post("/files", h.uploadFiles)
				r.Get("/{id}", h.post)
				r.Post("/{id}/views", h.addView)
				r.Post("/{id}/comments", h.addComment)
				r.Post("/{id}/like", h.like)
			})
		})
	})
	return r
}
