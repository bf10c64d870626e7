package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	DispatchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_requests_total",
			Help: "Total number of send requests handled by the dispatcher (count)",
		},
		[]string{"status"},
	)

	DispatchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dispatch_duration_ms",
			Help:    "End-to-end dispatch duration in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		},
		[]string{"status"},
	)

	BlocklistLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blocklist_lookups_total",
			Help: "Total number of blocklist membership checks (count)",
		},
		[]string{"result"},
	)

	CarrierSendTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "carrier_send_total",
			Help: "Total number of delivery attempts against the carrier (count)",
		},
		[]string{"status"},
	)

	CarrierSendDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "carrier_send_duration_ms",
			Help:    "Duration of carrier send calls in milliseconds",
			Buckets: []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		},
		[]string{"status"},
	)

	PublishFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outcome_publish_failures_total",
			Help: "Total number of outcome events that failed to publish (count)",
		},
		[]string{"reason"},
	)

	ConsumerEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "history_consumer_events_total",
			Help: "Total number of outcome events seen by the history consumer (count)",
		},
		[]string{"status"},
	)

	StoreAppendDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "history_store_append_duration_ms",
			Help:    "Duration of message store appends in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"status"},
	)

	BrokerReconnectsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "broker_reconnects_total",
			Help: "Total number of consumer resubscribes after transport errors (count)",
		},
		[]string{"service", "topic"},
	)

	DLQMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dlq_messages_total",
			Help: "Total number of messages sent to DLQ (count)",
		},
		[]string{"service", "topic", "reason"},
	)

	KafkaMessagesReadTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_messages_read_total",
			Help: "Total number of messages read from Kafka (count)",
		},
		[]string{"service", "topic"},
	)

	KafkaMessagesWrittenTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_messages_written_total",
			Help: "Total number of messages written to Kafka (count)",
		},
		[]string{"service", "topic"},
	)

	KafkaWriteDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kafka_write_duration_ms",
			Help:    "Duration of writing messages to Kafka in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"service", "topic"},
	)

	CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open) (state code)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker (count)",
		},
		[]string{"name", "state"},
	)

	CircuitBreakerFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_failures_total",
			Help: "Total number of failures through circuit breaker (count)",
		},
		[]string{"name"},
	)

	RateLimitRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_requests_total",
			Help: "Total number of requests checked against rate limit (count)",
		},
		[]string{"status"},
	)
)

func RegisterDispatchMetrics() {
	prometheus.MustRegister(DispatchRequestsTotal)
	prometheus.MustRegister(DispatchDuration)
	prometheus.MustRegister(BlocklistLookupsTotal)
	prometheus.MustRegister(CarrierSendTotal)
	prometheus.MustRegister(CarrierSendDuration)
	prometheus.MustRegister(PublishFailuresTotal)
	prometheus.MustRegister(RateLimitRequestsTotal)
}

func RegisterHistoryMetrics() {
	prometheus.MustRegister(ConsumerEventsTotal)
	prometheus.MustRegister(StoreAppendDuration)
}

func RegisterBrokerMetrics() {
	prometheus.MustRegister(BrokerReconnectsTotal)
	prometheus.MustRegister(DLQMessagesTotal)
	prometheus.MustRegister(KafkaMessagesReadTotal)
	prometheus.MustRegister(KafkaMessagesWrittenTotal)
	prometheus.MustRegister(KafkaWriteDuration)
}

func RegisterCircuitBreakerMetrics() {
	prometheus.MustRegister(CircuitBreakerState)
	prometheus.MustRegister(CircuitBreakerRequests)
	prometheus.MustRegister(CircuitBreakerFailures)
}

func ObserveDispatchDuration(duration time.Duration, status string) {
	DispatchDuration.WithLabelValues(status).Observe(float64(duration.Milliseconds()))
}

func ObserveCarrierDuration(duration time.Duration, status string) {
	CarrierSendDuration.WithLabelValues(status).Observe(float64(duration.Milliseconds()))
}

func ObserveStoreAppendDuration(duration time.Duration, status string) {
	StoreAppendDuration.WithLabelValues(status).Observe(float64(duration.Milliseconds()))
}
