package blocklist

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smsrelay/internal/logger"
)

type stubRepo struct {
	entries map[string]bool
	err     error
}

func newStubRepo() *stubRepo {
	return &stubRepo{entries: make(map[string]bool)}
}

func (r *stubRepo) Exists(ctx context.Context, phoneNumber string) (bool, error) {
	if r.err != nil {
		return false, r.err
	}
	return r.entries[phoneNumber], nil
}

func (r *stubRepo) Set(ctx context.Context, phoneNumber string) error {
	if r.err != nil {
		return r.err
	}
	r.entries[phoneNumber] = true
	return nil
}

func (r *stubRepo) Delete(ctx context.Context, phoneNumber string) error {
	if r.err != nil {
		return r.err
	}
	delete(r.entries, phoneNumber)
	return nil
}

func TestService_BlockUnblockCycle(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newStubRepo(), logger.NopLogger())

	blocked, err := svc.IsBlocked(ctx, "+15551234567")
	require.NoError(t, err)
	assert.False(t, blocked)

	require.NoError(t, svc.Block(ctx, "+15551234567"))

	blocked, err = svc.IsBlocked(ctx, "+15551234567")
	require.NoError(t, err)
	assert.True(t, blocked)

	require.NoError(t, svc.Unblock(ctx, "+15551234567"))

	blocked, err = svc.IsBlocked(ctx, "+15551234567")
	require.NoError(t, err)
	assert.False(t, blocked)
}

func TestService_BlockIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newStubRepo(), logger.NopLogger())

	require.NoError(t, svc.Block(ctx, "+15551234567"))
	require.NoError(t, svc.Block(ctx, "+15551234567"))

	blocked, err := svc.IsBlocked(ctx, "+15551234567")
	require.NoError(t, err)
	assert.True(t, blocked)
}

func TestService_UnblockUnknownRecipient(t *testing.T) {
	svc := NewService(newStubRepo(), logger.NopLogger())
	assert.NoError(t, svc.Unblock(context.Background(), "+19990000000"))
}

func TestService_IsBlockedStoreError(t *testing.T) {
	repo := newStubRepo()
	repo.err = errors.New("connection refused")
	svc := NewService(repo, logger.NopLogger())

	_, err := svc.IsBlocked(context.Background(), "+15551234567")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "blocklist lookup failed")
}

func TestService_Seed(t *testing.T) {
	ctx := context.Background()
	repo := newStubRepo()
	svc := NewService(repo, logger.NopLogger())

	require.NoError(t, svc.Seed(ctx, []string{"+15550000001", "+15550000002"}))

	for _, phoneNumber := range []string{"+15550000001", "+15550000002"} {
		blocked, err := svc.IsBlocked(ctx, phoneNumber)
		require.NoError(t, err)
		assert.True(t, blocked)
	}
}

func TestService_SeedStoreError(t *testing.T) {
	repo := newStubRepo()
	repo.err = errors.New("connection refused")
	svc := NewService(repo, logger.NopLogger())

	err := svc.Seed(context.Background(), []string{"+15550000001"})
	require.Error(t, err)
}
