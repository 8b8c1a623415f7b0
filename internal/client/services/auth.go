// Package services holds the client's application services: thin callers of
// the request pipeline that know endpoint paths and payload shapes. Errors
// from the pipeline are passed through wrapped, never reinterpreted.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/dogwalk/internal/client/api"
	"github.com/dmitrijs2005/dogwalk/internal/client/session"
	"github.com/dmitrijs2005/dogwalk/internal/common"
)

const loginPath = "users/login"

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	UserID       string `json:"user_id"`
	Email        string `json:"email"`
	Nick         string `json:"nick"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// AuthService signs the user in and out.
type AuthService interface {
	// EmailLogin authenticates and installs the returned credentials.
	EmailLogin(ctx context.Context, email string, password []byte) (session.Credentials, error)
	Logout(ctx context.Context) error
	// Whoami returns the stored session, if any.
	Whoami() (session.Credentials, bool)
}

type authService struct {
	exec  *api.Executor
	store *session.Store
	base  string
}

func NewAuthService(exec *api.Executor, store *session.Store, baseURL string) AuthService {
	return &authService{exec: exec, store: store, base: baseURL}
}

func (a *authService) EmailLogin(ctx context.Context, email string, password []byte) (session.Credentials, error) {
	body, err := json.Marshal(LoginRequest{Email: email, Password: string(password)})
	if err != nil {
		return session.Credentials{}, fmt.Errorf("encode login: %w", err)
	}
	defer common.WipeByteArray(body)

	t := api.Target{
		BaseURL: a.base,
		Path:    loginPath,
		Method:  http.MethodPost,
		Header:  map[string]string{"Content-Type": "application/json"},
		Body:    body,
	}
	resp, err := api.Do[LoginResponse](ctx, a.exec, t, api.WithoutRefresh())
	if err != nil {
		return session.Credentials{}, fmt.Errorf("login: %w", err)
	}

	c := session.Credentials{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		UserID:       resp.UserID,
		Nick:         resp.Nick,
	}
	if err := a.store.Login(ctx, c); err != nil {
		return c, err
	}
	return c, nil
}

func (a *authService) Logout(ctx context.Context) error {
	return a.store.Logout(ctx)
}

func (a *authService) Whoami() (session.Credentials, bool) {
	c := a.store.Current()
	return c, !c.Empty()
}
