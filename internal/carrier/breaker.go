package carrier

import (
	"context"

	"smsrelay/internal/config"
	"smsrelay/pkg/circuitbreaker"

	"github.com/sony/gobreaker"
)

// breakerCarrier shields the dispatch path from a failing carrier. When the
// breaker is open, sends fail fast instead of holding HTTP workers on a
// timing-out upstream.
type breakerCarrier struct {
	inner Carrier
	cb    *circuitbreaker.Wrapper
}

func withBreaker(inner Carrier, cfg config.CircuitBreakerConfig) Carrier {
	bcfg := circuitbreaker.DefaultConfig("carrier")
	if cfg.MaxRequests > 0 {
		bcfg.MaxRequests = cfg.MaxRequests
	}
	if cfg.Interval > 0 {
		bcfg.Interval = cfg.Interval
	}
	if cfg.Timeout > 0 {
		bcfg.Timeout = cfg.Timeout
	}
	if cfg.FailureRatio > 0 && cfg.MinRequests > 0 {
		ratio := cfg.FailureRatio
		minRequests := cfg.MinRequests
		bcfg.ReadyToTrip = func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= minRequests && failureRatio >= ratio
		}
	}

	return &breakerCarrier{
		inner: inner,
		cb:    circuitbreaker.NewWrapper(bcfg),
	}
}

func (c *breakerCarrier) Send(ctx context.Context, phoneNumber, message string) error {
	_, err := c.cb.ExecuteWithContext(ctx, func() (interface{}, error) {
		return nil, c.inner.Send(ctx, phoneNumber, message)
	})
	c.cb.RecordRequest(err == nil)
	return err
}
