package integration

import (
	"smsrelay/internal/config"
)

func guardConfig(ttlSeconds int) config.DedupGuardConfig {
	return config.DedupGuardConfig{
		Enabled:    true,
		TTLSeconds: ttlSeconds,
	}
}

func kafkaConfig(brokers []string, groupID string) config.KafkaConfig {
	return config.KafkaConfig{
		Brokers:      brokers,
		GroupID:      groupID,
		OutcomeTopic: "sms_events",
	}
}
