package tags

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/dogwalk/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Get(ctx context.Context, identifier string) (Record, bool, error) {
	rec := Record{Identifier: identifier}
	var updated int64
	err := r.db.QueryRowContext(ctx,
		`SELECT etag, blob_key, updated_at FROM content_tags WHERE identifier = ?`, identifier,
	).Scan(&rec.ETag, &rec.BlobKey, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("failed to get content_tags[%s]: %w", identifier, err)
	}
	rec.UpdatedAt = time.UnixMilli(updated)
	return rec, true, nil
}

// Put upserts rec. A zero UpdatedAt is stamped with the current time.
func (r *SQLiteRepository) Put(ctx context.Context, rec Record) error {
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO content_tags (identifier, etag, blob_key, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(identifier) DO UPDATE SET
			etag = excluded.etag,
			blob_key = excluded.blob_key,
			updated_at = excluded.updated_at
	`, rec.Identifier, rec.ETag, rec.BlobKey, rec.UpdatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to put content_tags[%s]: %w", rec.Identifier, err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, identifier string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM content_tags WHERE identifier = ?`, identifier)
	if err != nil {
		return fmt.Errorf("failed to delete content_tags[%s]: %w", identifier, err)
	}
	return nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT identifier, etag, blob_key, updated_at FROM content_tags ORDER BY identifier`)
	if err != nil {
		return nil, fmt.Errorf("failed to list content_tags: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		var updated int64
		if err := rows.Scan(&rec.Identifier, &rec.ETag, &rec.BlobKey, &updated); err != nil {
			return nil, fmt.Errorf("failed to scan content_tags row: %w", err)
		}
		rec.UpdatedAt = time.UnixMilli(updated)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate content_tags rows: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM content_tags`); err != nil {
		return fmt.Errorf("failed to clear content_tags: %w", err)
	}
	return nil
}

var _ Repository = (*SQLiteRepository)(nil)
