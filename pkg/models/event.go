package models

import "time"

// Status is the dispatcher's verdict for one send request. It is decided
// once on the send side and stored verbatim by the history service.
type Status string

const (
	StatusBlocked   Status = "blocked"
	StatusDelivered Status = "delivered"
	StatusFailed    Status = "failed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusBlocked, StatusDelivered, StatusFailed:
		return true
	}
	return false
}

// OutcomeEvent is the immutable record published to the outcome topic for
// every send request. The topic is at-least-once: consumers may see the same
// event id more than once.
type OutcomeEvent struct {
	EventID     string    `json:"eventId"`
	PhoneNumber string    `json:"phoneNumber"`
	Message     string    `json:"message"`
	Status      Status    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Metadata    Metadata  `json:"metadata,omitempty"`
}

type Metadata struct {
	TraceID string `json:"trace_id,omitempty"`
}
