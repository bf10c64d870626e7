package broker

import (
	"context"

	"smsrelay/pkg/models"
)

type Producer interface {
	Publish(ctx context.Context, topic string, event models.OutcomeEvent) error
	Close() error
	SetServiceName(name string)
}

type Consumer interface {
	Consume(ctx context.Context, topic string, handler HandlerFunc) error
	Close() error
	SetServiceName(name string)
}

type HandlerFunc func(ctx context.Context, event models.OutcomeEvent) error
