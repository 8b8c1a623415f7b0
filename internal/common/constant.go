// Package common holds the header names and sentinel errors shared by the
// client pipeline and the development origin.
package common

// Header names of the origin's wire contract. Authorization carries the raw
// access token, without a "Bearer" prefix.
const (
	HeaderAuthorization = "Authorization"
	HeaderRefreshToken  = "RefreshToken"
	HeaderAppKey        = "SeSACKey"
	HeaderProductID     = "ProductId"
	HeaderRequestID     = "X-Request-ID"
	HeaderETag          = "ETag"
	HeaderIfNoneMatch   = "If-None-Match"
)
