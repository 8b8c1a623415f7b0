package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Response is a fully read origin reply.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Transport performs one HTTP exchange. A non-nil error means no response
// arrived at all; any status code is returned as a Response.
type Transport interface {
	Send(ctx context.Context, req *http.Request) (*Response, error)
}

type HTTPTransport struct {
	client *http.Client
}

// NewHTTPTransport bounds each exchange, including reading the body, by
// timeout. Zero means no limit.
func NewHTTPTransport(timeout time.Duration) *HTTPTransport {
	return &HTTPTransport{client: &http.Client{Timeout: timeout}}
}

func NewHTTPTransportWithClient(c *http.Client) *HTTPTransport {
	return &HTTPTransport{client: c}
}

func (t *HTTPTransport) Send(ctx context.Context, req *http.Request) (*Response, error) {
	resp, err := t.client.Do(req.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: body}, nil
}

var _ Transport = (*HTTPTransport)(nil)
