package retry

import (
	"math"
	"time"

	"github.com/cenkalti/backoff/v4"
)

func ExponentialBackoff(initialInterval, maxInterval time.Duration, multiplier float64) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = initialInterval
	exp.MaxInterval = maxInterval
	exp.Multiplier = multiplier
	exp.MaxElapsedTime = 0
	return exp
}

func ExponentialBackoffWithMaxElapsed(initialInterval, maxInterval, maxElapsed time.Duration, multiplier float64) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = initialInterval
	exp.MaxInterval = maxInterval
	exp.Multiplier = multiplier
	exp.MaxElapsedTime = maxElapsed
	return exp
}

// Backoff is a stateful delay sequence for long-running reconnect loops
// where backoff.Retry's run-to-completion shape does not fit.
type Backoff struct {
	policy  Policy
	attempt int
}

func NewBackoff(policy Policy) *Backoff {
	if policy.InitialInterval <= 0 {
		policy.InitialInterval = 1 * time.Second
	}
	if policy.MaxInterval <= 0 {
		policy.MaxInterval = 30 * time.Second
	}
	if policy.Multiplier <= 0 {
		policy.Multiplier = 2.0
	}
	return &Backoff{policy: policy}
}

func (b *Backoff) Next() time.Duration {
	d := CalculateBackoffDuration(b.attempt, b.policy.InitialInterval, b.policy.Multiplier, b.policy.MaxInterval)
	b.attempt++
	return d
}

func (b *Backoff) Reset() {
	b.attempt = 0
}

func CalculateBackoffDuration(attempt int, initialInterval time.Duration, multiplier float64, maxInterval time.Duration) time.Duration {
	duration := float64(initialInterval) * math.Pow(multiplier, float64(attempt))
	if duration > float64(maxInterval) {
		return maxInterval
	}
	return time.Duration(duration)
}
