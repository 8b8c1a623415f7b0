package refreshtokens

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/dogwalk/internal/common"
)

func TestMemoryRepository_CreateFindDelete(t *testing.T) {
	r := NewMemoryRepository()
	now := time.Unix(1_700_000_000, 0)
	r.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, "u1", "tok", time.Hour))
	rt, err := r.Find(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, RefreshToken{UserID: "u1", Token: "tok", Expires: now.Add(time.Hour), CreatedAt: now}, *rt)

	require.NoError(t, r.Delete(ctx, "tok"))
	_, err = r.Find(ctx, "tok")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestMemoryRepository_SweepsLongExpired(t *testing.T) {
	r := NewMemoryRepository()
	now := time.Unix(1_700_000_000, 0)
	r.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, "u1", "old", time.Second))
	now = now.Add(time.Hour)
	require.NoError(t, r.Create(ctx, "u1", "new", time.Hour))

	_, err := r.Find(ctx, "old")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	_, err = r.Find(ctx, "new")
	assert.NoError(t, err)
}
