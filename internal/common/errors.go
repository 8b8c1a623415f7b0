package common

import "errors"

var (
	// repository specific errors
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// service specific errors
	ErrorInternal         = errors.New("internal error")
	ErrorUnauthorized     = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrorNotLoggedIn      = errors.New("not logged in")
	ErrorInvalidArgument  = errors.New("invalid argument")

	ErrInvalidToken = errors.New("invalid token")

	// token lifecycle errors
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
)
