package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

type QueryParam struct {
	Name  string
	Value string
}

// Target describes one logical request. The pipeline never mutates it, so a
// replay after a refresh rebuilds the request from the same value.
type Target struct {
	BaseURL string
	Path    string
	Method  string
	Header  map[string]string
	Query   []QueryParam
	Body    []byte
}

func (t Target) method() string {
	if t.Method == "" {
		return http.MethodGet
	}
	return t.Method
}

// URL joins BaseURL and Path with exactly one slash and appends Query in
// declaration order.
func (t Target) URL() (*url.URL, error) {
	base, err := url.Parse(t.BaseURL)
	if err != nil {
		return nil, &RequestError{Kind: KindMalformedTarget, Err: err}
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, &RequestError{Kind: KindMalformedTarget, Err: fmt.Errorf("base url %q is not absolute", t.BaseURL)}
	}

	u := *base
	switch {
	case t.Path == "":
	case u.Path == "":
		u.Path = "/" + strings.TrimLeft(t.Path, "/")
	default:
		u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.TrimLeft(t.Path, "/")
	}
	u.RawPath = ""

	if len(t.Query) > 0 {
		var sb strings.Builder
		for i, q := range t.Query {
			if i > 0 {
				sb.WriteByte('&')
			}
			sb.WriteString(url.QueryEscape(q.Name))
			sb.WriteByte('=')
			sb.WriteString(url.QueryEscape(q.Value))
		}
		u.RawQuery = sb.String()
	}
	return &u, nil
}

// Request builds an *http.Request. extra is applied first so the target's
// own headers win on collision.
func (t Target) Request(ctx context.Context, extra map[string]string) (*http.Request, error) {
	u, err := t.URL()
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if t.Body != nil {
		body = bytes.NewReader(t.Body)
	}
	req, err := http.NewRequestWithContext(ctx, t.method(), u.String(), body)
	if err != nil {
		return nil, &RequestError{Kind: KindMalformedTarget, Err: err}
	}

	for k, v := range extra {
		req.Header.Set(k, v)
	}
	for k, v := range t.Header {
		req.Header.Set(k, v)
	}
	return req, nil
}

// WithHeader returns a copy of t with key set. The receiver's map is not
// touched.
func (t Target) WithHeader(key, value string) Target {
	h := make(map[string]string, len(t.Header)+1)
	for k, v := range t.Header {
		h[k] = v
	}
	h[key] = value
	t.Header = h
	return t
}
