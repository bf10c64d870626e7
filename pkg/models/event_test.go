package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusValid(t *testing.T) {
	tests := []struct {
		name   string
		status Status
		want   bool
	}{
		{name: "blocked", status: StatusBlocked, want: true},
		{name: "delivered", status: StatusDelivered, want: true},
		{name: "failed", status: StatusFailed, want: true},
		{name: "empty", status: Status(""), want: false},
		{name: "unknown", status: Status("successful"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.status.Valid())
		})
	}
}

func TestOutcomeEventJSONFieldNames(t *testing.T) {
	event := OutcomeEvent{
		EventID:     "evt-1",
		PhoneNumber: "+1555",
		Message:     "hi",
		Status:      StatusDelivered,
		Timestamp:   time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	body, err := json.Marshal(event)
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &raw))

	assert.Equal(t, "evt-1", raw["eventId"])
	assert.Equal(t, "+1555", raw["phoneNumber"])
	assert.Equal(t, "hi", raw["message"])
	assert.Equal(t, "delivered", raw["status"])
}

func TestOutcomeEventBuilderDefaults(t *testing.T) {
	event := NewOutcomeEventBuilder().
		WithPhoneNumber("+1555").
		WithMessage("hi").
		WithStatus(StatusBlocked).
		Build()

	assert.NotEmpty(t, event.EventID)
	assert.False(t, event.Timestamp.IsZero())
	assert.Equal(t, StatusBlocked, event.Status)
}

func TestOutcomeEventBuilderKeepsExplicitValues(t *testing.T) {
	ts := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	event := NewOutcomeEventBuilder().
		WithEventID("evt-42").
		WithPhoneNumber("+1555").
		WithMessage("hi").
		WithStatus(StatusFailed).
		WithTimestamp(ts).
		WithTraceID("trace-1").
		Build()

	assert.Equal(t, "evt-42", event.EventID)
	assert.Equal(t, ts, event.Timestamp)
	assert.Equal(t, "trace-1", event.Metadata.TraceID)
}
