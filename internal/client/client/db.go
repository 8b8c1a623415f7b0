package client

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/dogwalk/internal/client/migrations"
	"github.com/dmitrijs2005/dogwalk/internal/dbx"
)

// InitDatabase opens the SQLite database at dsn and brings its schema up to
// date.
func InitDatabase(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := dbx.OpenSQLite(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := migrations.Up(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
