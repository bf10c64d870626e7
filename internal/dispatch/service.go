package dispatch

import (
	"context"
	"time"

	"smsrelay/internal/blocklist"
	"smsrelay/internal/carrier"
	"smsrelay/internal/constants"
	"smsrelay/internal/logger"
	"smsrelay/pkg/logging"
	"smsrelay/pkg/metrics"
	"smsrelay/pkg/models"
	"smsrelay/pkg/tracing"
)

type SendRequest struct {
	PhoneNumber string `json:"phoneNumber" binding:"required"`
	Message     string `json:"message" binding:"required"`
}

// Service runs the send pipeline: blocklist gate, delivery attempt, outcome
// event. The event is best effort, a publish failure never changes the
// result already decided by the gate and the carrier.
type Service struct {
	blocklist *blocklist.Service
	carrier   carrier.Carrier
	emitter   *Emitter
	logger    logger.Logger
}

func NewService(bl *blocklist.Service, c carrier.Carrier, emitter *Emitter, log logger.Logger) *Service {
	return &Service{
		blocklist: bl,
		carrier:   c,
		emitter:   emitter,
		logger:    log,
	}
}

// Dispatch returns the result string for the request, or an error when the
// blocklist store cannot be consulted. A blocked recipient and a failed
// delivery are results, not errors.
func (s *Service) Dispatch(ctx context.Context, req SendRequest) (string, error) {
	ctx, span := tracing.GetTracer("dispatch-service").Start(ctx, "dispatch.send")
	defer span.End()

	start := time.Now()

	blocked, err := s.blocklist.IsBlocked(ctx, req.PhoneNumber)
	if err != nil {
		metrics.DispatchRequestsTotal.WithLabelValues("gate_error").Inc()
		return "", err
	}

	if blocked {
		s.logger.InfowCtx(ctx, "Send blocked", "phone_number", req.PhoneNumber)
		metrics.DispatchRequestsTotal.WithLabelValues("blocked").Inc()
		metrics.ObserveDispatchDuration(time.Since(start), "blocked")
		s.emit(ctx, req, models.StatusBlocked)
		return constants.ResultBlocked, nil
	}

	if err := s.carrier.Send(ctx, req.PhoneNumber, req.Message); err != nil {
		s.logger.ErrorwCtx(ctx, "Delivery failed",
			"error", err,
			"phone_number", req.PhoneNumber,
		)
		metrics.DispatchRequestsTotal.WithLabelValues("failed").Inc()
		metrics.ObserveDispatchDuration(time.Since(start), "failed")
		s.emit(ctx, req, models.StatusFailed)
		return constants.ResultFailedPrefix + err.Error(), nil
	}

	s.logger.InfowCtx(ctx, "Message delivered", "phone_number", req.PhoneNumber)
	metrics.DispatchRequestsTotal.WithLabelValues("delivered").Inc()
	metrics.ObserveDispatchDuration(time.Since(start), "delivered")
	s.emit(ctx, req, models.StatusDelivered)
	return constants.ResultDeliveredPrefix + req.PhoneNumber, nil
}

// emit publishes the outcome event and logs failures without surfacing
// them. The result returned to the caller is already final at this point.
func (s *Service) emit(ctx context.Context, req SendRequest, status models.Status) {
	event := models.NewOutcomeEventBuilder().
		WithPhoneNumber(req.PhoneNumber).
		WithMessage(req.Message).
		WithStatus(status).
		WithTraceID(logging.GetTraceID(ctx)).
		Build()

	emitCtx := logging.WithEventID(ctx, event.EventID)
	if err := s.emitter.Emit(emitCtx, event); err != nil {
		s.logger.ErrorwCtx(emitCtx, "Failed to publish outcome event",
			"error", err,
			"phone_number", req.PhoneNumber,
			"status", string(status),
		)
		return
	}

	s.logger.DebugwCtx(emitCtx, "Outcome event published", "status", string(status))
}
