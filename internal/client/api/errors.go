package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the closed classification of a failed call.
type Kind int

const (
	KindUnknown Kind = iota
	KindUnauthorized
	KindForbidden
	KindTokenExpired
	KindMissingAppKey
	KindMissingProductID
	KindRateLimited
	KindInvalidURL
	KindServerError
	KindMalformedTarget
	KindNoResponse
	KindDecodeFailed
)

// Status codes outside net/http used by the origin.
const (
	StatusTokenExpired     = 419
	StatusMissingAppKey    = 420
	StatusMissingProductID = 421
	StatusInvalidURL       = 444
)

var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrForbidden        = errors.New("forbidden")
	ErrTokenExpired     = errors.New("access token expired")
	ErrMissingAppKey    = errors.New("missing app key")
	ErrMissingProductID = errors.New("missing product id")
	ErrRateLimited      = errors.New("rate limited")
	ErrInvalidURL       = errors.New("invalid url")
	ErrServerError      = errors.New("server error")
	ErrMalformedTarget  = errors.New("malformed target")
	ErrNoResponse       = errors.New("no response")
	ErrDecodeFailed     = errors.New("decode failed")
	ErrUnknown          = errors.New("unknown error")
)

var kindSentinels = map[Kind]error{
	KindUnknown:          ErrUnknown,
	KindUnauthorized:     ErrUnauthorized,
	KindForbidden:        ErrForbidden,
	KindTokenExpired:     ErrTokenExpired,
	KindMissingAppKey:    ErrMissingAppKey,
	KindMissingProductID: ErrMissingProductID,
	KindRateLimited:      ErrRateLimited,
	KindInvalidURL:       ErrInvalidURL,
	KindServerError:      ErrServerError,
	KindMalformedTarget:  ErrMalformedTarget,
	KindNoResponse:       ErrNoResponse,
	KindDecodeFailed:     ErrDecodeFailed,
}

func (k Kind) Sentinel() error {
	if err, ok := kindSentinels[k]; ok {
		return err
	}
	return ErrUnknown
}

func (k Kind) String() string { return k.Sentinel().Error() }

// NeedsRefresh reports whether the kind is answered by refreshing
// credentials and replaying the request.
func (k Kind) NeedsRefresh() bool {
	return k == KindUnauthorized || k == KindTokenExpired
}

// KindFromStatus maps an origin status code. It must not be called with 200.
func KindFromStatus(code int) Kind {
	switch code {
	case http.StatusUnauthorized:
		return KindUnauthorized
	case http.StatusForbidden:
		return KindForbidden
	case StatusTokenExpired:
		return KindTokenExpired
	case StatusMissingAppKey:
		return KindMissingAppKey
	case StatusMissingProductID:
		return KindMissingProductID
	case http.StatusTooManyRequests:
		return KindRateLimited
	case StatusInvalidURL:
		return KindInvalidURL
	}
	if code >= 500 && code <= 599 {
		return KindServerError
	}
	return KindUnknown
}

// RequestError carries the classification of a failed call. It matches its
// kind's sentinel with errors.Is and unwraps to the underlying cause.
type RequestError struct {
	Kind       Kind
	StatusCode int
	Err        error
}

func (e *RequestError) Error() string {
	msg := e.Kind.String()
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *RequestError) Is(target error) bool {
	return target == e.Kind.Sentinel()
}

func (e *RequestError) Unwrap() error { return e.Err }

func statusError(code int) *RequestError {
	return &RequestError{Kind: KindFromStatus(code), StatusCode: code}
}

// KindOf extracts the classification of err. Errors that did not come from
// the pipeline are KindUnknown.
func KindOf(err error) Kind {
	var re *RequestError
	if errors.As(err, &re) {
		return re.Kind
	}
	for k, s := range kindSentinels {
		if errors.Is(err, s) {
			return k
		}
	}
	return KindUnknown
}
