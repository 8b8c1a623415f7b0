package api

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTarget_URLJoinsWithSingleSlash(t *testing.T) {
	cases := []struct {
		base, path, want string
	}{
		{"https://api.example.com", "users/me", "https://api.example.com/users/me"},
		{"https://api.example.com/", "/users/me", "https://api.example.com/users/me"},
		{"https://api.example.com/v1", "users/me", "https://api.example.com/v1/users/me"},
		{"https://api.example.com/v1/", "//users/me", "https://api.example.com/v1/users/me"},
		{"https://api.example.com/v1", "", "https://api.example.com/v1"},
	}
	for _, c := range cases {
		u, err := Target{BaseURL: c.base, Path: c.path}.URL()
		require.NoError(t, err, c.base+" "+c.path)
		assert.Equal(t, c.want, u.String())
	}
}

func TestTarget_QueryKeepsDeclaredOrder(t *testing.T) {
	tg := Target{
		BaseURL: "http://h",
		Path:    "posts",
		Query:   []QueryParam{{"z", "1"}, {"a", "x y"}, {"m", "&"}},
	}
	u, err := tg.URL()
	require.NoError(t, err)
	assert.Equal(t, "z=1&a=x+y&m=%26", u.RawQuery)
}

func TestTarget_MalformedBase(t *testing.T) {
	for _, base := range []string{"", "not a url", "/relative/only", "://bad"} {
		_, err := Target{BaseURL: base, Path: "x"}.URL()
		require.Error(t, err, base)
		assert.ErrorIs(t, err, ErrMalformedTarget)
		assert.Equal(t, KindMalformedTarget, KindOf(err))
	}
}

func TestTarget_RequestHeadersAndBody(t *testing.T) {
	tg := Target{
		BaseURL: "http://h",
		Path:    "users/login",
		Method:  http.MethodPost,
		Header:  map[string]string{"Content-Type": "application/json", "SeSACKey": "override"},
		Body:    []byte(`{"a":1}`),
	}
	req, err := tg.Request(context.Background(), map[string]string{"SeSACKey": "default", "Authorization": "tok"})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "override", req.Header.Get("SeSACKey"))
	assert.Equal(t, "tok", req.Header.Get("Authorization"))
	body, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(body))
}

func TestTarget_DefaultMethodIsGET(t *testing.T) {
	req, err := Target{BaseURL: "http://h", Path: "x"}.Request(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, req.Method)
}

func TestTarget_WithHeaderDoesNotMutateReceiver(t *testing.T) {
	orig := Target{BaseURL: "http://h", Header: map[string]string{"A": "1"}}
	cp := orig.WithHeader("B", "2")

	assert.Equal(t, map[string]string{"A": "1"}, orig.Header)
	assert.Equal(t, map[string]string{"A": "1", "B": "2"}, cp.Header)
}
