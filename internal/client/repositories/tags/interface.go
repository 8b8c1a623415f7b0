// Package tags persists the durable cache's side table: for every content
// identifier, the origin's last known ETag and the blob holding the bytes
// that ETag describes.
package tags

import (
	"context"
	"time"
)

// Record ties an identifier to the blob whose bytes match ETag.
type Record struct {
	Identifier string
	ETag       string
	BlobKey    string
	UpdatedAt  time.Time
}

type Repository interface {
	// Get returns ok=false when the identifier has no record.
	Get(ctx context.Context, identifier string) (rec Record, ok bool, err error)
	Put(ctx context.Context, rec Record) error
	Delete(ctx context.Context, identifier string) error
	List(ctx context.Context) ([]Record, error)
	Clear(ctx context.Context) error
}
