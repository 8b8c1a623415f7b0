// Package blobstore holds the bytes of durably cached content. Keys are opaque
// strings chosen by the caller; a Put either fully replaces the blob or leaves
// the previous one untouched.
package blobstore

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("blob not found")

type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
	// Delete of a missing key is not an error.
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) ([]string, error)
}
