package sessions

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/gatekeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	repo := NewMemoryRepository()
	repo.now = func() time.Time { return now }

	require.NoError(t, repo.Create(ctx, "s1", "u1", time.Hour))
	require.NoError(t, repo.Create(ctx, "s2", "u1", time.Hour))
	require.NoError(t, repo.Create(ctx, "s3", "u2", time.Minute))

	userID, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)

	now = now.Add(time.Minute)
	_, err = repo.Get(ctx, "s3")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	require.NoError(t, repo.Delete(ctx, "s1"))
	_, err = repo.Get(ctx, "s1")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	require.NoError(t, repo.Create(ctx, "s4", "u1", time.Hour))
	require.NoError(t, repo.DeleteUser(ctx, "u1"))
	for _, sid := range []string{"s2", "s4"} {
		_, err := repo.Get(ctx, sid)
		assert.ErrorIs(t, err, common.ErrorNotFound, sid)
	}
}
