package cache

import (
	"bytes"
	"fmt"
	"net/http"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dmitrijs2005/dogwalk/internal/client/api"
)

const DefaultEphemeralEntries = 256

type ephemeralEntry struct {
	body   []byte
	header http.Header
}

// Ephemeral is the in-memory tier: an LRU of successful responses keyed by
// the canonical request. It does not survive a restart.
type Ephemeral struct {
	lru *lru.Cache[string, ephemeralEntry]
}

func NewEphemeral(size int) (*Ephemeral, error) {
	if size <= 0 {
		size = DefaultEphemeralEntries
	}
	c, err := lru.New[string, ephemeralEntry](size)
	if err != nil {
		return nil, fmt.Errorf("create ephemeral cache: %w", err)
	}
	return &Ephemeral{lru: c}, nil
}

// requestKey is method, absolute URL and the headers that select a
// representation.
func requestKey(t api.Target) (string, error) {
	u, err := t.URL()
	if err != nil {
		return "", err
	}
	method := t.Method
	if method == "" {
		method = http.MethodGet
	}
	return method + " " + u.String() + "\nAccept: " + t.Header["Accept"], nil
}

func (e *Ephemeral) get(key string) (ephemeralEntry, bool) {
	return e.lru.Get(key)
}

func (e *Ephemeral) add(key string, resp *api.Response) {
	e.lru.Add(key, ephemeralEntry{body: bytes.Clone(resp.Body), header: resp.Header.Clone()})
}

func (e *Ephemeral) Len() int { return e.lru.Len() }

func (e *Ephemeral) Purge() { e.lru.Purge() }
