package history

import (
	"context"

	"smsrelay/internal/broker"
	"smsrelay/pkg/errors"
	"smsrelay/pkg/models"
)

// EventHandler adapts the service to the broker's consumer callback.
func EventHandler(service *Service) broker.HandlerFunc {
	return func(ctx context.Context, event models.OutcomeEvent) (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = errors.RecoverPanic(r)
			}
		}()

		return service.Record(ctx, event)
	}
}
