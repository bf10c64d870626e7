package blocklist

import (
	"context"
	"fmt"

	"smsrelay/internal/logger"
	"smsrelay/pkg/metrics"
	"smsrelay/pkg/tracing"
)

// Service answers the single question the dispatch path asks before any
// delivery attempt: is this recipient blocked. A lookup failure is returned
// as an error rather than treated as "not blocked", so a broken blocklist
// store fails the send instead of silently letting messages through.
type Service struct {
	repo   Repository
	logger logger.Logger
}

func NewService(repo Repository, log logger.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: log,
	}
}

func (s *Service) IsBlocked(ctx context.Context, phoneNumber string) (bool, error) {
	ctx, span := tracing.GetTracer("blocklist-service").Start(ctx, "blocklist.is_blocked")
	defer span.End()

	blocked, err := s.repo.Exists(ctx, phoneNumber)
	if err != nil {
		metrics.BlocklistLookupsTotal.WithLabelValues("error").Inc()
		return false, fmt.Errorf("blocklist lookup failed: %w", err)
	}

	if blocked {
		metrics.BlocklistLookupsTotal.WithLabelValues("blocked").Inc()
	} else {
		metrics.BlocklistLookupsTotal.WithLabelValues("allowed").Inc()
	}
	return blocked, nil
}

// Block is idempotent, blocking an already blocked recipient succeeds.
func (s *Service) Block(ctx context.Context, phoneNumber string) error {
	if err := s.repo.Set(ctx, phoneNumber); err != nil {
		return fmt.Errorf("failed to block recipient: %w", err)
	}

	s.logger.InfowCtx(ctx, "Recipient blocked", "phone_number", phoneNumber)
	return nil
}

// Unblock is idempotent, unblocking an unknown recipient succeeds.
func (s *Service) Unblock(ctx context.Context, phoneNumber string) error {
	if err := s.repo.Delete(ctx, phoneNumber); err != nil {
		return fmt.Errorf("failed to unblock recipient: %w", err)
	}

	s.logger.InfowCtx(ctx, "Recipient unblocked", "phone_number", phoneNumber)
	return nil
}

// Seed blocks the configured recipients at startup. Seeding stops on the
// first store error so a misconfigured store is caught before serving.
func (s *Service) Seed(ctx context.Context, phoneNumbers []string) error {
	for _, phoneNumber := range phoneNumbers {
		if err := s.repo.Set(ctx, phoneNumber); err != nil {
			return fmt.Errorf("failed to seed blocklist entry %s: %w", phoneNumber, err)
		}
	}

	if len(phoneNumbers) > 0 {
		s.logger.Infow("Blocklist seeded", "count", len(phoneNumbers))
	}
	return nil
}
