package carrier

import (
	"context"

	"smsrelay/internal/logger"
)

// noopCarrier accepts every message without contacting anything. Used in
// development and as the default when no carrier endpoint is configured.
type noopCarrier struct {
	logger logger.Logger
}

func (c *noopCarrier) Send(ctx context.Context, phoneNumber, message string) error {
	c.logger.InfowCtx(ctx, "Noop carrier accepted message", "phone_number", phoneNumber)
	return nil
}
