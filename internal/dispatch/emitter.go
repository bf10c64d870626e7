package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"smsrelay/internal/broker"
	"smsrelay/internal/constants"
	"smsrelay/pkg/metrics"
	"smsrelay/pkg/models"
)

// PublishErrorKind classifies why an outcome event failed to reach the
// broker.
type PublishErrorKind string

const (
	PublishErrorTransport PublishErrorKind = "transport"
	PublishErrorTimeout   PublishErrorKind = "timeout"
	PublishErrorCancelled PublishErrorKind = "cancelled"
)

type PublishError struct {
	Kind  PublishErrorKind
	Topic string
	Cause error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("failed to publish outcome event to %s (%s): %v", e.Topic, e.Kind, e.Cause)
}

func (e *PublishError) Unwrap() error {
	return e.Cause
}

// Emitter publishes outcome events with a bounded wait, so a slow or dead
// broker cannot stall the send path past the configured timeout.
type Emitter struct {
	producer broker.Producer
	topic    string
	timeout  time.Duration
}

func NewEmitter(producer broker.Producer, topic string, timeoutSeconds int) *Emitter {
	timeout := time.Duration(timeoutSeconds) * time.Second
	if timeoutSeconds <= 0 {
		timeout = constants.DefaultPublishTimeout
	}
	if topic == "" {
		topic = constants.DefaultOutcomeTopic
	}

	return &Emitter{
		producer: producer,
		topic:    topic,
		timeout:  timeout,
	}
}

func (e *Emitter) Emit(ctx context.Context, event models.OutcomeEvent) error {
	publishCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	err := e.producer.Publish(publishCtx, e.topic, event)
	if err == nil {
		return nil
	}

	kind := PublishErrorTransport
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		kind = PublishErrorTimeout
	case errors.Is(err, context.Canceled):
		kind = PublishErrorCancelled
	}

	metrics.PublishFailuresTotal.WithLabelValues(string(kind)).Inc()
	return &PublishError{
		Kind:  kind,
		Topic: e.topic,
		Cause: err,
	}
}
