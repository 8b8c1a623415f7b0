package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrijs2005/dogwalk/internal/common"
	"github.com/dmitrijs2005/dogwalk/internal/server/images"
	"github.com/dmitrijs2005/dogwalk/internal/server/posts"
	"github.com/dmitrijs2005/dogwalk/internal/server/users"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	UserID       string `json:"user_id"`
	Email        string `json:"email"`
	Nick         string `json:"nick"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type refreshResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type profileResponse struct {
	UserID       string  `json:"user_id"`
	Email        string  `json:"email,omitempty"`
	Nick         string  `json:"nick"`
	ProfileImage string  `json:"profileImage,omitempty"`
	Address      string  `json:"address,omitempty"`
	Longitude    float64 `json:"longitude,omitempty"`
	Latitude     float64 `json:"latitude,omitempty"`
	Points       int     `json:"points,omitempty"`
	Temperature  float64 `json:"temperature,omitempty"`
}

type updateProfileRequest struct {
	Nick        string  `json:"nick"`
	Address     string  `json:"address"`
	Longitude   float64 `json:"longitude"`
	Latitude    float64 `json:"latitude"`
	Points      int     `json:"points"`
	Temperature float64 `json:"temperature"`
}

type handlers struct {
	users  *users.Service
	images *images.Store
	posts  *posts.Store
}

func (h *handlers) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, r, http.StatusBadRequest, "email and password are required")
		return
	}

	password := []byte(req.Password)
	defer common.WipeByteArray(password)

	user, pair, err := h.users.Login(r.Context(), req.Email, password)
	switch {
	case errors.Is(err, common.ErrInvalidCredentials):
		writeError(w, r, http.StatusUnauthorized, "invalid email or password")
		return
	case err != nil:
		writeError(w, r, http.StatusInternalServerError, "login failed")
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{
		UserID:       user.ID,
		Email:        user.Email,
		Nick:         user.Nick,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

func (h *handlers) refresh(w http.ResponseWriter, r *http.Request) {
	access := strings.TrimSpace(r.Header.Get(common.HeaderAuthorization))
	refresh := strings.TrimSpace(r.Header.Get(common.HeaderRefreshToken))
	if access == "" || refresh == "" {
		writeError(w, r, http.StatusUnauthorized, "access and refresh tokens are required")
		return
	}

	pair, err := h.users.Refresh(r.Context(), access, refresh)
	switch {
	case errors.Is(err, common.ErrRefreshTokenExpired):
		writeError(w, r, StatusRefreshExpired, "refresh token expired")
		return
	case errors.Is(err, common.ErrInvalidToken):
		writeError(w, r, http.StatusUnauthorized, "invalid access token")
		return
	case err != nil:
		writeError(w, r, http.StatusInternalServerError, "refresh failed")
		return
	}
	writeJSON(w, http.StatusOK, refreshResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

func (h *handlers) myProfile(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	h.writeProfile(w, r, userID, true)
}

func (h *handlers) profile(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	id := chi.URLParam(r, "id")
	h.writeProfile(w, r, id, id == userID)
}

func (h *handlers) writeProfile(w http.ResponseWriter, r *http.Request, id string, self bool) {
	user, err := h.users.Profile(r.Context(), id)
	switch {
	case errors.Is(err, common.ErrorNotFound):
		writeError(w, r, http.StatusNotFound, "no such user")
		return
	case err != nil:
		writeError(w, r, http.StatusInternalServerError, "profile lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, newProfileResponse(user, self))
}

func newProfileResponse(u *users.User, self bool) profileResponse {
	resp := profileResponse{
		UserID:       u.ID,
		Nick:         u.Nick,
		ProfileImage: u.ProfileImage,
		Address:      u.Address,
		Longitude:    u.Longitude,
		Latitude:     u.Latitude,
		Points:       u.Points,
		Temperature:  u.Temperature,
	}
	if self {
		resp.Email = u.Email
	}
	return resp
}

func (h *handlers) updateProfile(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	var req updateProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user, err := h.users.UpdateProfile(r.Context(), userID, users.ProfileUpdate{
		Nick:        req.Nick,
		Address:     req.Address,
		Longitude:   req.Longitude,
		Latitude:    req.Latitude,
		Points:      req.Points,
		Temperature: req.Temperature,
	})
	switch {
	case errors.Is(err, common.ErrorInvalidArgument):
		writeError(w, r, http.StatusBadRequest, "nick is required")
		return
	case errors.Is(err, common.ErrorNotFound):
		writeError(w, r, http.StatusNotFound, "no such user")
		return
	case err != nil:
		writeError(w, r, http.StatusInternalServerError, "profile update failed")
		return
	}
	writeJSON(w, http.StatusOK, newProfileResponse(user, true))
}

// image serves GET and HEAD with a strong ETag. Unknown paths get 444.
func (h *handlers) image(w http.ResponseWriter, r *http.Request) {
	img, err := h.images.Get(r.Context(), chi.URLParam(r, "*"))
	switch {
	case errors.Is(err, common.ErrorNotFound):
		writeError(w, r, StatusInvalidURL, "no such image")
		return
	case err != nil:
		writeError(w, r, http.StatusInternalServerError, "image lookup failed")
		return
	}

	w.Header().Set(common.HeaderETag, img.ETag)
	w.Header().Set("Cache-Control", "no-cache")
	if etagMatches(r.Header.Get(common.HeaderIfNoneMatch), img.ETag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", img.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(img.Data)))
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		_, _ = w.Write(img.Data)
	}
}

func etagMatches(header, etag string) bool {
	if header == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || candidate == etag {
			return true
		}
	}
	return false
}
