package integration

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smsrelay/internal/broker"
	"smsrelay/internal/logger"
	"smsrelay/pkg/models"
)

const messageWaitTimeout = 60 * time.Second

func TestKafkaBroker_PublishConsumeRoundtrip(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, false, false, true)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := kafkaConfig(infra.KafkaBrokers, "roundtrip-group")
	log := logger.NopLogger()

	producer := broker.NewKafkaProducer(cfg, log)
	defer producer.Close()

	consumer := broker.NewKafkaConsumer(cfg, log)
	consumer.SetServiceName("history-service")
	defer consumer.Close()

	var mu sync.Mutex
	var received []models.OutcomeEvent
	done := make(chan struct{})

	go func() {
		_ = consumer.Consume(ctx, cfg.OutcomeTopic, func(ctx context.Context, event models.OutcomeEvent) error {
			mu.Lock()
			received = append(received, event)
			if len(received) == 2 {
				close(done)
			}
			mu.Unlock()
			return nil
		})
	}()

	// Give the group time to join before publishing.
	time.Sleep(5 * time.Second)

	events := []models.OutcomeEvent{
		models.NewOutcomeEventBuilder().
			WithPhoneNumber("+15551234567").
			WithMessage("first").
			WithStatus(models.StatusDelivered).
			Build(),
		models.NewOutcomeEventBuilder().
			WithPhoneNumber("+15551234567").
			WithMessage("second").
			WithStatus(models.StatusBlocked).
			Build(),
	}

	for _, event := range events {
		require.NoError(t, producer.Publish(ctx, cfg.OutcomeTopic, event))
	}

	select {
	case <-done:
	case <-time.After(messageWaitTimeout):
		t.Fatal("timed out waiting for events")
	}

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, received, 2)

	// Same recipient means same partition, so order is preserved.
	assert.Equal(t, "first", received[0].Message)
	assert.Equal(t, models.StatusDelivered, received[0].Status)
	assert.Equal(t, "second", received[1].Message)
	assert.Equal(t, models.StatusBlocked, received[1].Status)
}

func TestKafkaBroker_InvalidRecordIsSkipped(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, false, false, true)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := kafkaConfig(infra.KafkaBrokers, "skip-group")
	log := logger.NopLogger()

	producer := broker.NewKafkaProducer(cfg, log)
	defer producer.Close()

	consumer := broker.NewKafkaConsumer(cfg, log)
	consumer.SetServiceName("history-service")
	defer consumer.Close()

	received := make(chan models.OutcomeEvent, 1)
	go func() {
		_ = consumer.Consume(ctx, cfg.OutcomeTopic, func(ctx context.Context, event models.OutcomeEvent) error {
			received <- event
			return nil
		})
	}()

	time.Sleep(5 * time.Second)

	// Raw garbage first, then a valid event. The consumer must skip the
	// garbage and still deliver the valid one.
	require.NoError(t, publishRaw(ctx, infra.KafkaBrokers, cfg.OutcomeTopic, []byte("not json")))

	valid := models.NewOutcomeEventBuilder().
		WithPhoneNumber("+15551234567").
		WithMessage("after garbage").
		WithStatus(models.StatusDelivered).
		Build()
	require.NoError(t, producer.Publish(ctx, cfg.OutcomeTopic, valid))

	select {
	case event := <-received:
		assert.Equal(t, "after garbage", event.Message)
	case <-time.After(messageWaitTimeout):
		t.Fatal("timed out waiting for the valid event")
	}
}
