package integration

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smsrelay/internal/history"
	"smsrelay/internal/logger"
	"smsrelay/pkg/migrations"
	"smsrelay/pkg/models"
)

func newHistoryRepo(t *testing.T, infra *TestInfra) history.Repository {
	t.Helper()

	ctx := context.Background()
	require.NoError(t, migrations.EnsureUserMessagesCollection(ctx, infra.MongoDB, "user_messages"))
	return history.NewRepository(infra.MongoDB, "user_messages")
}

func storedMessage(message, status string) history.StoredMessage {
	return history.StoredMessage{
		EventID:   message + "-id",
		Message:   message,
		Status:    status,
		Timestamp: time.Now().UTC(),
	}
}

func TestHistoryRepository_AppendAndGetAll(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, true, false, false)

	ctx := context.Background()
	repo := newHistoryRepo(t, infra)

	require.NoError(t, repo.Append(ctx, "+15551234567", storedMessage("first", "delivered")))
	require.NoError(t, repo.Append(ctx, "+15551234567", storedMessage("second", "failed")))

	messages, err := repo.GetAll(ctx, "+15551234567")
	require.NoError(t, err)
	require.Len(t, messages, 2)

	assert.Equal(t, "first", messages[0].Message)
	assert.Equal(t, "delivered", messages[0].Status)
	assert.Equal(t, "second", messages[1].Message)
	assert.Equal(t, "failed", messages[1].Status)
}

func TestHistoryRepository_GetAllUnknownRecipient(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, true, false, false)

	repo := newHistoryRepo(t, infra)

	messages, err := repo.GetAll(context.Background(), "+19990000000")
	require.NoError(t, err)
	assert.NotNil(t, messages)
	assert.Empty(t, messages)
}

func TestHistoryRepository_DuplicateAppends(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, true, false, false)

	ctx := context.Background()
	repo := newHistoryRepo(t, infra)

	msg := storedMessage("hi", "delivered")
	require.NoError(t, repo.Append(ctx, "+15551234567", msg))
	require.NoError(t, repo.Append(ctx, "+15551234567", msg))

	// The store appends blindly, redelivered events become two entries.
	messages, err := repo.GetAll(ctx, "+15551234567")
	require.NoError(t, err)
	assert.Len(t, messages, 2)
}

func TestHistoryRepository_ConcurrentAppends(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, true, false, false)

	ctx := context.Background()
	repo := newHistoryRepo(t, infra)

	const writers = 5
	const perWriter = 10

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				_ = repo.Append(ctx, "+15551234567", storedMessage("msg", "delivered"))
			}
		}()
	}
	wg.Wait()

	messages, err := repo.GetAll(ctx, "+15551234567")
	require.NoError(t, err)
	assert.Len(t, messages, writers*perWriter)
}

func TestHistoryService_DedupGuardSkipsRedelivery(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, true, true, false)

	ctx := context.Background()
	repo := newHistoryRepo(t, infra)
	guard := history.NewDedupGuard(infra.RedisClient, guardConfig(300))
	svc := history.NewService(repo, guard, logger.NopLogger())

	event := models.NewOutcomeEventBuilder().
		WithPhoneNumber("+15551234567").
		WithMessage("hi").
		WithStatus(models.StatusDelivered).
		Build()

	require.NoError(t, svc.Record(ctx, event))
	require.NoError(t, svc.Record(ctx, event))

	_, count, err := svc.GetAll(ctx, "+15551234567")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
