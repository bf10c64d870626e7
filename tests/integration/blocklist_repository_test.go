package integration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smsrelay/internal/blocklist"
	"smsrelay/internal/logger"
)

func TestBlocklistRepository_Lifecycle(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, false, true, false)

	ctx := context.Background()
	repo := blocklist.NewRepository(infra.RedisClient)

	blocked, err := repo.Exists(ctx, "+15551234567")
	require.NoError(t, err)
	assert.False(t, blocked)

	require.NoError(t, repo.Set(ctx, "+15551234567"))

	blocked, err = repo.Exists(ctx, "+15551234567")
	require.NoError(t, err)
	assert.True(t, blocked)

	require.NoError(t, repo.Delete(ctx, "+15551234567"))

	blocked, err = repo.Exists(ctx, "+15551234567")
	require.NoError(t, err)
	assert.False(t, blocked)
}

func TestBlocklistRepository_KeyFormat(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, false, true, false)

	ctx := context.Background()
	repo := blocklist.NewRepository(infra.RedisClient)

	require.NoError(t, repo.Set(ctx, "+15551234567"))

	// Presence is encoded under the blocklist prefix, the value is opaque.
	n, err := infra.RedisClient.Exists(ctx, "blocklist:+15551234567").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestBlocklistRepository_DeleteUnknownKey(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, false, true, false)

	repo := blocklist.NewRepository(infra.RedisClient)
	assert.NoError(t, repo.Delete(context.Background(), "+19990000000"))
}

func TestBlocklistService_SeedOnStartup(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, false, true, false)

	ctx := context.Background()
	svc := blocklist.NewService(blocklist.NewRepository(infra.RedisClient), logger.NopLogger())

	seed := []string{"+15550000001", "+15550000002"}
	require.NoError(t, svc.Seed(ctx, seed))

	for _, phoneNumber := range seed {
		blocked, err := svc.IsBlocked(ctx, phoneNumber)
		require.NoError(t, err)
		assert.True(t, blocked)
	}
}
