package constants

import "time"

const (
	KafkaBatchTimeout = 10 * time.Millisecond
	KafkaWriteTimeout = 10 * time.Second
)

const (
	// DefaultPublishTimeout bounds the synchronous outcome publish inside the
	// dispatcher request path.
	DefaultPublishTimeout = 5 * time.Second
)

const (
	CacheKeyPrefixBlocklist = "blocklist:"
	CacheKeyPrefixEvent     = "smsevent:"
)

const (
	DefaultOutcomeTopic = "sms_events"
	DefaultGroupID      = "sms-history-group"
)

const (
	DefaultMongoDBName     = "sms_db"
	DefaultMongoCollection = "user_messages"
)

const (
	DefaultCarrierTimeout    = 10 * time.Second
	DefaultDedupGuardTTLSecs = 86400
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	ResultBlocked         = "Failed: phone number is blocked"
	ResultDeliveredPrefix = "SMS sent to "
	ResultFailedPrefix    = "Failed to send SMS: "
)
