package models

import (
	"time"

	"github.com/google/uuid"
)

type OutcomeEventBuilder struct {
	event *OutcomeEvent
}

func NewOutcomeEventBuilder() *OutcomeEventBuilder {
	return &OutcomeEventBuilder{
		event: &OutcomeEvent{},
	}
}

func (b *OutcomeEventBuilder) WithEventID(id string) *OutcomeEventBuilder {
	b.event.EventID = id
	return b
}

func (b *OutcomeEventBuilder) WithPhoneNumber(phoneNumber string) *OutcomeEventBuilder {
	b.event.PhoneNumber = phoneNumber
	return b
}

func (b *OutcomeEventBuilder) WithMessage(message string) *OutcomeEventBuilder {
	b.event.Message = message
	return b
}

func (b *OutcomeEventBuilder) WithStatus(status Status) *OutcomeEventBuilder {
	b.event.Status = status
	return b
}

func (b *OutcomeEventBuilder) WithTimestamp(timestamp time.Time) *OutcomeEventBuilder {
	b.event.Timestamp = timestamp
	return b
}

func (b *OutcomeEventBuilder) WithTraceID(traceID string) *OutcomeEventBuilder {
	b.event.Metadata.TraceID = traceID
	return b
}

func (b *OutcomeEventBuilder) Build() OutcomeEvent {
	if b.event.EventID == "" {
		b.event.EventID = uuid.New().String()
	}
	if b.event.Timestamp.IsZero() {
		b.event.Timestamp = time.Now()
	}
	return *b.event
}
