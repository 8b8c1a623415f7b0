package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrijs2005/dogwalk/internal/common"
	"github.com/dmitrijs2005/dogwalk/internal/logging"
)

// RequireAppKey rejects requests without the SeSACKey header (420) or
// with a ProductId other than productID (421). An empty apiKey accepts any
// non-empty key.
func RequireAppKey(apiKey, productID string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(common.HeaderAppKey)
			if key == "" || (apiKey != "" && key != apiKey) {
				writeError(w, r, StatusMissingAppKey, "missing or unknown app key")
				return
			}
			if r.Header.Get(common.HeaderProductID) != productID {
				writeError(w, r, StatusMissingProductID, "missing or unknown product id")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Authenticator resolves an access token to a user id.
type Authenticator interface {
	Authenticate(accessToken string) (string, error)
}

// RequireAccessToken stores the caller's user id in the request context.
// Expired tokens get 419, anything else that fails gets 401.
func RequireAccessToken(a Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get(common.HeaderAuthorization))
			if raw == "" {
				writeError(w, r, http.StatusUnauthorized, "missing access token")
				return
			}
			userID, err := a.Authenticate(raw)
			switch {
			case errors.Is(err, common.ErrTokenExpired):
				writeError(w, r, StatusTokenExpired, "access token expired")
				return
			case err != nil:
				writeError(w, r, http.StatusUnauthorized, "invalid access token")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

// RequestLogger logs one line per request after it completes.
func RequestLogger(log logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Info(r.Context(), "request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
