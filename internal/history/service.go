package history

import (
	"context"
	"fmt"

	"smsrelay/internal/logger"
	"smsrelay/pkg/metrics"
	"smsrelay/pkg/models"
	"smsrelay/pkg/tracing"
)

// Service persists outcome events and serves per-recipient history. The
// guard is optional; when nil, every event is appended, duplicates
// included.
type Service struct {
	repo   Repository
	guard  *DedupGuard
	logger logger.Logger
}

func NewService(repo Repository, guard *DedupGuard, log logger.Logger) *Service {
	return &Service{
		repo:   repo,
		guard:  guard,
		logger: log,
	}
}

// Record appends the event to the recipient's history. The status was
// decided by the dispatcher and is stored verbatim.
func (s *Service) Record(ctx context.Context, event models.OutcomeEvent) error {
	ctx, span := tracing.GetTracer("history-service").Start(ctx, "history.record")
	defer span.End()

	if event.PhoneNumber == "" {
		return fmt.Errorf("outcome event has no phone number")
	}
	if !event.Status.Valid() {
		return fmt.Errorf("outcome event has invalid status %q", event.Status)
	}

	if s.guard != nil && event.EventID != "" {
		first, err := s.guard.FirstSeen(ctx, event.EventID)
		if err != nil {
			// A broken guard must not stop persistence. Worst case is a
			// duplicate entry, which the store tolerates anyway.
			s.logger.ErrorwCtx(ctx, "Dedup guard lookup failed, appending anyway", "error", err)
		} else if !first {
			s.logger.InfowCtx(ctx, "Duplicate outcome event skipped",
				"phone_number", event.PhoneNumber,
			)
			metrics.ConsumerEventsTotal.WithLabelValues("duplicate").Inc()
			return nil
		}
	}

	msg := StoredMessage{
		EventID:   event.EventID,
		Message:   event.Message,
		Status:    string(event.Status),
		Timestamp: event.Timestamp,
	}

	if err := s.repo.Append(ctx, event.PhoneNumber, msg); err != nil {
		return err
	}

	metrics.ConsumerEventsTotal.WithLabelValues("stored").Inc()
	s.logger.InfowCtx(ctx, "Outcome event stored",
		"phone_number", event.PhoneNumber,
		"status", string(event.Status),
	)
	return nil
}

// GetAll returns the recipient's history and its length. The count is
// computed at read time, never cached.
func (s *Service) GetAll(ctx context.Context, phoneNumber string) ([]StoredMessage, int, error) {
	messages, err := s.repo.GetAll(ctx, phoneNumber)
	if err != nil {
		return nil, 0, err
	}
	return messages, len(messages), nil
}
