package session

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/dogwalk/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/dogwalk/internal/dbx"
)

const (
	keyAccessToken  = "access_token"
	keyRefreshToken = "refresh_token"
	keyUserID       = "user_id"
	keyNick         = "nick"
)

// SQLPersister stores credentials as four rows of the metadata table,
// written in one transaction.
type SQLPersister struct {
	db *sql.DB
}

func NewSQLPersister(db *sql.DB) *SQLPersister {
	return &SQLPersister{db: db}
}

func (p *SQLPersister) Load(ctx context.Context) (Credentials, bool, error) {
	repo := metadata.NewSQLiteRepository(p.db)
	var c Credentials
	fields := []struct {
		key string
		dst *string
	}{
		{keyAccessToken, &c.AccessToken},
		{keyRefreshToken, &c.RefreshToken},
		{keyUserID, &c.UserID},
		{keyNick, &c.Nick},
	}
	for _, f := range fields {
		v, err := repo.Get(ctx, f.key)
		if err != nil {
			return Credentials{}, false, err
		}
		*f.dst = string(v)
	}
	if c.Empty() {
		return Credentials{}, false, nil
	}
	return c, true, nil
}

func (p *SQLPersister) Save(ctx context.Context, c Credentials) error {
	return dbx.WithTx(ctx, p.db, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		for k, v := range map[string]string{
			keyAccessToken:  c.AccessToken,
			keyRefreshToken: c.RefreshToken,
			keyUserID:       c.UserID,
			keyNick:         c.Nick,
		} {
			if err := repo.Set(ctx, k, []byte(v)); err != nil {
				return err
			}
		}
		return nil
	})
}

func (p *SQLPersister) Clear(ctx context.Context) error {
	return metadata.NewSQLiteRepository(p.db).Delete(ctx, keyAccessToken, keyRefreshToken, keyUserID, keyNick)
}

var _ Persister = (*SQLPersister)(nil)
