package history

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"smsrelay/internal/config"
	"smsrelay/internal/constants"
)

// DedupGuard is an optional shield against broker redelivery. The outcome
// topic is at-least-once and the store appends blindly, so without the
// guard a crash between fetch and commit double-counts a message. SETNX on
// the event id makes the second append a no-op within the TTL window.
type DedupGuard struct {
	client *redis.Client
	ttl    time.Duration
}

func NewDedupGuard(client *redis.Client, cfg config.DedupGuardConfig) *DedupGuard {
	ttl := time.Duration(cfg.TTLSeconds) * time.Second
	if cfg.TTLSeconds <= 0 {
		ttl = time.Duration(constants.DefaultDedupGuardTTLSecs) * time.Second
	}

	return &DedupGuard{
		client: client,
		ttl:    ttl,
	}
}

// FirstSeen reports whether this event id has not been processed within the
// TTL window, claiming it atomically when so.
func (g *DedupGuard) FirstSeen(ctx context.Context, eventID string) (bool, error) {
	key := constants.CacheKeyPrefixEvent + eventID
	first, err := g.client.SetNX(ctx, key, time.Now().Unix(), g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis SetNX failed: %w", err)
	}
	return first, nil
}
