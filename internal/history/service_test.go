package history

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smsrelay/internal/logger"
	"smsrelay/pkg/models"
)

type memoryRepo struct {
	mu      sync.Mutex
	records map[string][]StoredMessage
	err     error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{records: make(map[string][]StoredMessage)}
}

func (r *memoryRepo) Append(ctx context.Context, phoneNumber string, msg StoredMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.records[phoneNumber] = append(r.records[phoneNumber], msg)
	return nil
}

func (r *memoryRepo) GetAll(ctx context.Context, phoneNumber string) ([]StoredMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	msgs, ok := r.records[phoneNumber]
	if !ok {
		return []StoredMessage{}, nil
	}
	out := make([]StoredMessage, len(msgs))
	copy(out, msgs)
	return out, nil
}

func testEvent(phoneNumber, message string, status models.Status) models.OutcomeEvent {
	return models.NewOutcomeEventBuilder().
		WithPhoneNumber(phoneNumber).
		WithMessage(message).
		WithStatus(status).
		Build()
}

func TestService_RecordAndGetAll(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	svc := NewService(repo, nil, logger.NopLogger())

	require.NoError(t, svc.Record(ctx, testEvent("+15551234567", "hi", models.StatusDelivered)))
	require.NoError(t, svc.Record(ctx, testEvent("+15551234567", "again", models.StatusFailed)))

	messages, count, err := svc.GetAll(ctx, "+15551234567")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	require.Len(t, messages, 2)

	// Arrival order is preserved.
	assert.Equal(t, "hi", messages[0].Message)
	assert.Equal(t, string(models.StatusDelivered), messages[0].Status)
	assert.Equal(t, "again", messages[1].Message)
	assert.Equal(t, string(models.StatusFailed), messages[1].Status)
}

func TestService_GetAllUnknownRecipient(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil, logger.NopLogger())

	messages, count, err := svc.GetAll(context.Background(), "+19990000000")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.NotNil(t, messages)
	assert.Empty(t, messages)
}

func TestService_RecordDuplicatesWithoutGuard(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	svc := NewService(repo, nil, logger.NopLogger())

	event := testEvent("+15551234567", "hi", models.StatusDelivered)
	require.NoError(t, svc.Record(ctx, event))
	require.NoError(t, svc.Record(ctx, event))

	// Without the guard, a redelivered event is appended again.
	_, count, err := svc.GetAll(ctx, "+15551234567")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestService_RecordRejectsInvalidEvents(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryRepo(), nil, logger.NopLogger())

	err := svc.Record(ctx, models.OutcomeEvent{Status: models.StatusDelivered})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no phone number")

	err = svc.Record(ctx, models.OutcomeEvent{PhoneNumber: "+15551234567", Status: "sent"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid status")
}

func TestService_RecordStoreError(t *testing.T) {
	repo := newMemoryRepo()
	repo.err = errors.New("mongo down")
	svc := NewService(repo, nil, logger.NopLogger())

	err := svc.Record(context.Background(), testEvent("+15551234567", "hi", models.StatusDelivered))
	require.Error(t, err)
}

func TestEventHandler_RecoversPanic(t *testing.T) {
	handler := EventHandler(nil) // nil service panics on use

	err := handler(context.Background(), testEvent("+15551234567", "hi", models.StatusDelivered))
	require.Error(t, err)
}

func TestService_ConcurrentAppendsDifferentRecipients(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	svc := NewService(repo, nil, logger.NopLogger())

	recipients := []string{"+15550000001", "+15550000002", "+15550000003"}
	perRecipient := 10

	var wg sync.WaitGroup
	for _, phoneNumber := range recipients {
		wg.Add(1)
		go func(pn string) {
			defer wg.Done()
			for i := 0; i < perRecipient; i++ {
				_ = svc.Record(ctx, testEvent(pn, "msg", models.StatusDelivered))
			}
		}(phoneNumber)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("concurrent appends did not finish")
	}

	for _, phoneNumber := range recipients {
		_, count, err := svc.GetAll(ctx, phoneNumber)
		require.NoError(t, err)
		assert.Equal(t, perRecipient, count)
	}
}
