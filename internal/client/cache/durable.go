package cache

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/dmitrijs2005/dogwalk/internal/client/blobstore"
	"github.com/dmitrijs2005/dogwalk/internal/client/repositories/tags"
	"github.com/dmitrijs2005/dogwalk/internal/logging"
)

// BlobKey names the blob holding the bytes of id at etag. Distinct versions
// get distinct keys, so a new version never overwrites the blob the current
// row points to.
func BlobKey(id, etag string) string {
	sum := blake2b.Sum256([]byte(id + "\x00" + etag))
	return hex.EncodeToString(sum[:])
}

// Durable is the on-disk tier: bytes in a blob store and, per identifier, a
// tag row naming the ETag and blob those bytes belong to.
//
// The tag row is the commit point. A blob is written before its row and the
// previous blob is removed after, so a crash at any step leaves each row
// pointing at a complete blob matching its tag. Orphaned blobs are collected
// by Prune.
type Durable struct {
	tags  tags.Repository
	blobs blobstore.Store
	log   logging.Logger
	now   func() time.Time

	// commits hold it shared, Prune and Clear exclusively, so a blob written
	// ahead of its row is never mistaken for an orphan.
	gc sync.RWMutex
}

func NewDurable(t tags.Repository, b blobstore.Store, log logging.Logger) *Durable {
	if log == nil {
		log = logging.Discard()
	}
	return &Durable{tags: t, blobs: b, log: log, now: time.Now}
}

// tag returns the stored record without reading its blob.
func (d *Durable) tag(ctx context.Context, id string) (tags.Record, bool, error) {
	return d.tags.Get(ctx, id)
}

// blob reads the bytes rec points to. ok is false when the blob is gone.
func (d *Durable) blob(ctx context.Context, rec tags.Record) ([]byte, bool, error) {
	data, err := d.blobs.Get(ctx, rec.BlobKey)
	if errors.Is(err, blobstore.ErrNotFound) {
		d.log.Warn(ctx, "cached blob missing", "id", rec.Identifier, "blob", rec.BlobKey)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// commit stores data as the current version of id. Callers serialize commits
// per identifier.
func (d *Durable) commit(ctx context.Context, id, etag string, data []byte) error {
	d.gc.RLock()
	defer d.gc.RUnlock()

	prev, hadPrev, err := d.tags.Get(ctx, id)
	if err != nil {
		return err
	}

	key := BlobKey(id, etag)
	if err := d.blobs.Put(ctx, key, data); err != nil {
		return fmt.Errorf("write blob for %s: %w", id, err)
	}
	rec := tags.Record{Identifier: id, ETag: etag, BlobKey: key, UpdatedAt: d.now()}
	if err := d.tags.Put(ctx, rec); err != nil {
		if !hadPrev || prev.BlobKey != key {
			_ = d.blobs.Delete(ctx, key)
		}
		return fmt.Errorf("record tag for %s: %w", id, err)
	}

	if hadPrev && prev.BlobKey != key {
		if err := d.blobs.Delete(ctx, prev.BlobKey); err != nil {
			d.log.Warn(ctx, "failed to delete superseded blob", "id", id, "blob", prev.BlobKey, "error", err)
		}
	}
	return nil
}

type PruneReport struct {
	OrphanBlobs  int
	DanglingTags int
}

// Prune deletes blobs no tag row points to and tag rows whose blob is gone.
func (d *Durable) Prune(ctx context.Context) (PruneReport, error) {
	d.gc.Lock()
	defer d.gc.Unlock()

	var rep PruneReport
	recs, err := d.tags.List(ctx)
	if err != nil {
		return rep, err
	}
	keys, err := d.blobs.List(ctx)
	if err != nil {
		return rep, err
	}

	present := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		present[k] = struct{}{}
	}
	referenced := make(map[string]struct{}, len(recs))
	for _, r := range recs {
		referenced[r.BlobKey] = struct{}{}
		if _, ok := present[r.BlobKey]; !ok {
			if err := d.tags.Delete(ctx, r.Identifier); err != nil {
				return rep, err
			}
			rep.DanglingTags++
		}
	}
	for _, k := range keys {
		if _, ok := referenced[k]; ok {
			continue
		}
		if err := d.blobs.Delete(ctx, k); err != nil {
			return rep, err
		}
		rep.OrphanBlobs++
	}
	return rep, nil
}

// Clear drops every tag row and every blob.
func (d *Durable) Clear(ctx context.Context) error {
	d.gc.Lock()
	defer d.gc.Unlock()

	if err := d.tags.Clear(ctx); err != nil {
		return err
	}
	keys, err := d.blobs.List(ctx)
	if err != nil {
		return err
	}
	for _, k := range keys {
		if err := d.blobs.Delete(ctx, k); err != nil {
			return err
		}
	}
	return nil
}
