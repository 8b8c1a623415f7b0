package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/dogwalk/internal/client/api"
)

const myProfilePath = "users/me/profile"

type Profile struct {
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

// ProfileUpdate replaces every editable field of the caller's profile.
type ProfileUpdate struct {
	Nick        string  `json:"nick"`
	Address     string  `json:"address"`
	Longitude   float64 `json:"longitude"`
	Latitude    float64 `json:"latitude"`
	Points      int     `json:"points"`
	Temperature float64 `json:"temperature"`
}

type UserService interface {
	MyProfile(ctx context.Context) (Profile, error)
	Profile(ctx context.Context, userID string) (Profile, error)
	UpdateProfile(ctx context.Context, upd ProfileUpdate) (Profile, error)
}

type userService struct {
	exec *api.Executor
	base string
}

func NewUserService(exec *api.Executor, baseURL string) UserService {
	return &userService{exec: exec, base: baseURL}
}

func (u *userService) MyProfile(ctx context.Context) (Profile, error) {
	p, err := api.Do[Profile](ctx, u.exec, api.Target{BaseURL: u.base, Path: myProfilePath})
	if err != nil {
		return Profile{}, fmt.Errorf("my profile: %w", err)
	}
	return p, nil
}

func (u *userService) Profile(ctx context.Context, userID string) (Profile, error) {
	t := api.Target{BaseURL: u.base, Path: "users/" + url.PathEscape(userID) + "/profile"}
	p, err := api.Do[Profile](ctx, u.exec, t)
	if err != nil {
		return Profile{}, fmt.Errorf("profile %s: %w", userID, err)
	}
	return p, nil
}

func (u *userService) UpdateProfile(ctx context.Context, upd ProfileUpdate) (Profile, error) {
	t, err := jsonTarget(u.base, myProfilePath, http.MethodPut, upd)
	if err != nil {
		return Profile{}, fmt.Errorf("update profile: %w", err)
	}
	p, err := api.Do[Profile](ctx, u.exec, t)
	if err != nil {
		return Profile{}, fmt.Errorf("update profile: %w", err)
	}
	return p, nil
}
