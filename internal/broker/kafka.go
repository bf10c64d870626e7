package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"smsrelay/internal/config"
	"smsrelay/internal/constants"
	"smsrelay/internal/logger"
	"smsrelay/pkg/logging"
	"smsrelay/pkg/metrics"
	"smsrelay/pkg/models"
	"smsrelay/pkg/retry"
	"smsrelay/pkg/tracing"
)

type KafkaProducer struct {
	writer      *kafka.Writer
	logger      logger.Logger
	serviceName string
}

func NewKafkaProducer(cfg config.KafkaConfig, log logger.Logger) *KafkaProducer {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.Hash{},
		BatchTimeout:           constants.KafkaBatchTimeout,
		WriteTimeout:           constants.KafkaWriteTimeout,
		Async:                  false,
		AllowAutoTopicCreation: true,
	}
	return &KafkaProducer{writer: w, logger: log, serviceName: "unknown"}
}

func (p *KafkaProducer) SetServiceName(name string) {
	p.serviceName = name
}

// Publish writes one outcome event keyed by recipient, so all events for a
// recipient land on the same partition and stay ordered.
func (p *KafkaProducer) Publish(ctx context.Context, topic string, event models.OutcomeEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal outcome event: %w", err)
	}

	headers := []kafka.Header{}
	headers = tracing.InjectTraceContext(ctx, headers)

	start := time.Now()
	err = p.writer.WriteMessages(ctx,
		kafka.Message{
			Topic:   topic,
			Key:     []byte(event.PhoneNumber),
			Value:   body,
			Headers: headers,
			Time:    time.Now(),
		},
	)
	metrics.KafkaWriteDuration.WithLabelValues(p.serviceName, topic).Observe(float64(time.Since(start).Milliseconds()))

	if err != nil {
		return fmt.Errorf("failed to write kafka message: %w", err)
	}

	metrics.KafkaMessagesWrittenTotal.WithLabelValues(p.serviceName, topic).Inc()
	return nil
}

func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}

type KafkaConsumer struct {
	cfg         config.KafkaConfig
	mu          sync.Mutex
	reader      *kafka.Reader
	logger      logger.Logger
	dlqProducer Producer
	serviceName string
}

func NewKafkaConsumer(cfg config.KafkaConfig, log logger.Logger) *KafkaConsumer {
	consumer := &KafkaConsumer{
		cfg:         cfg,
		logger:      log,
		serviceName: "unknown",
	}

	if cfg.DLQTopic != "" {
		consumer.dlqProducer = NewKafkaProducer(cfg, log)
	}

	return consumer
}

// SetServiceName labels the consumer's metrics, including those of the DLQ
// producer it owns.
func (c *KafkaConsumer) SetServiceName(name string) {
	c.serviceName = name
	if c.dlqProducer != nil {
		c.dlqProducer.SetServiceName(name)
	}
}

func (c *KafkaConsumer) newReader(topic string) *kafka.Reader {
	maxWait := c.cfg.FetchMaxWait
	if maxWait <= 0 {
		maxWait = 10 * time.Second
	}
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  c.cfg.Brokers,
		GroupID:  c.cfg.GroupID,
		Topic:    topic,
		MinBytes: 10e3,
		MaxBytes: 10e6,
		MaxWait:  maxWait,
	})
}

func (c *KafkaConsumer) reconnectBackoff() retry.Policy {
	policy := retry.Policy{
		InitialInterval: 1 * time.Second,
		MaxInterval:     30 * time.Second,
		Multiplier:      2.0,
	}
	if c.cfg.Reconnect.InitialInterval > 0 {
		policy.InitialInterval = c.cfg.Reconnect.InitialInterval
	}
	if c.cfg.Reconnect.MaxInterval > 0 {
		policy.MaxInterval = c.cfg.Reconnect.MaxInterval
	}
	if c.cfg.Reconnect.Multiplier > 0 {
		policy.Multiplier = c.cfg.Reconnect.Multiplier
	}
	return policy
}

// Consume runs the subscription loop until ctx is cancelled. Records are
// committed after they are handled, so a crash between fetch and commit
// causes redelivery rather than loss.
//
// Failure handling is split in two classes: a handler or decode failure is
// logged (and forwarded to the DLQ when one is configured), committed and
// skipped; a fetch failure is treated as a transport problem and the reader
// is recreated after a backoff delay.
func (c *KafkaConsumer) Consume(ctx context.Context, topic string, handler HandlerFunc) error {
	c.logger.Infow("Creating Kafka reader",
		"topic", topic,
		"brokers", c.cfg.Brokers,
		"group_id", c.cfg.GroupID,
		"service_name", c.serviceName,
	)

	c.setReader(c.newReader(topic))

	consumeCtx := logging.WithServiceName(ctx, c.serviceName)
	c.logger.InfowCtx(consumeCtx, "Started consuming", "topic", topic)

	backoff := retry.NewBackoff(c.reconnectBackoff())

	for {
		if ctx.Err() != nil {
			c.logger.InfowCtx(consumeCtx, "Stopped consuming",
				"topic", topic,
				"reason", "context canceled",
			)
			return ctx.Err()
		}

		m, err := c.currentReader().FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.InfowCtx(consumeCtx, "Stopped consuming",
					"topic", topic,
					"reason", "context canceled",
				)
				return ctx.Err()
			}

			delay := backoff.Next()
			c.logger.ErrorwCtx(consumeCtx, "Transport error fetching kafka message, resubscribing",
				"error", err,
				"topic", topic,
				"delay", delay,
			)
			metrics.BrokerReconnectsTotal.WithLabelValues(c.serviceName, topic).Inc()

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}

			c.resubscribe(topic)
			continue
		}
		backoff.Reset()
		metrics.KafkaMessagesReadTotal.WithLabelValues(c.serviceName, topic).Inc()

		c.processMessage(ctx, m, topic, handler)

		if err := c.currentReader().CommitMessages(ctx, m); err != nil {
			c.logger.ErrorwCtx(consumeCtx, "Failed to commit message",
				"error", err,
				"topic", topic,
				"offset", m.Offset,
			)
		}
	}
}

// processMessage handles a single record. It never returns an error: a bad
// record is logged and dropped (DLQ'd when configured) so the stream keeps
// draining.
func (c *KafkaConsumer) processMessage(ctx context.Context, m kafka.Message, topic string, handler HandlerFunc) {
	var event models.OutcomeEvent
	if err := json.Unmarshal(m.Value, &event); err != nil {
		metrics.ConsumerEventsTotal.WithLabelValues("invalid").Inc()
		c.logger.ErrorwCtx(ctx, "Failed to unmarshal outcome event, skipping record",
			"error", err,
			"topic", topic,
			"partition", m.Partition,
			"offset", m.Offset,
			"service_name", c.serviceName,
		)
		return
	}

	msgCtx, span := tracing.StartSpanFromKafkaMessage(ctx, "kafka.consume", m.Headers)
	defer span.End()

	if event.Metadata.TraceID != "" {
		msgCtx = logging.WithTraceID(msgCtx, event.Metadata.TraceID)
	}
	msgCtx = logging.WithEventID(msgCtx, event.EventID)
	msgCtx = logging.WithServiceName(msgCtx, c.serviceName)

	if err := handler(msgCtx, event); err != nil {
		c.logger.ErrorwCtx(msgCtx, "Failed to process outcome event, skipping record",
			"error", err,
			"topic", topic,
			"partition", m.Partition,
			"offset", m.Offset,
		)
		if c.dlqProducer != nil && c.cfg.DLQTopic != "" {
			if dlqErr := c.sendToDLQ(msgCtx, event, err, topic); dlqErr != nil {
				c.logger.ErrorwCtx(msgCtx, "Failed to send event to DLQ",
					"error", dlqErr,
					"topic", topic,
				)
			}
		}
		metrics.ConsumerEventsTotal.WithLabelValues("skipped").Inc()
	}
}

func (c *KafkaConsumer) sendToDLQ(ctx context.Context, event models.OutcomeEvent, originalErr error, sourceTopic string) error {
	policy := retry.Policy{
		MaxAttempts:     3,
		InitialInterval: 1 * time.Second,
		MaxInterval:     10 * time.Second,
		Multiplier:      2.0,
	}

	err := retry.RetryWithCallback(ctx, policy, func() error {
		if err := c.dlqProducer.Publish(ctx, c.cfg.DLQTopic, event); err != nil {
			if ctx.Err() != nil {
				return retry.NewFatalError(err)
			}
			return err
		}
		return nil
	}, func(attempt int, err error, nextDelay time.Duration) {
		c.logger.WarnwCtx(ctx, "Retrying DLQ publish",
			"attempt", attempt,
			"next_delay", nextDelay,
			"error", err,
			"dlq_topic", c.cfg.DLQTopic,
		)
	})
	if err != nil {
		return fmt.Errorf("failed to publish to DLQ: %w", err)
	}

	metrics.DLQMessagesTotal.WithLabelValues(c.serviceName, sourceTopic, "processing_failed").Inc()
	c.logger.InfowCtx(ctx, "Event sent to DLQ",
		"source_topic", sourceTopic,
		"dlq_topic", c.cfg.DLQTopic,
		"reason", originalErr.Error(),
	)

	return nil
}

func (c *KafkaConsumer) resubscribe(topic string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.reader != nil {
		_ = c.reader.Close()
	}
	c.reader = c.newReader(topic)
}

func (c *KafkaConsumer) setReader(r *kafka.Reader) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reader = r
}

func (c *KafkaConsumer) currentReader() *kafka.Reader {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reader
}

func (c *KafkaConsumer) Close() error {
	c.mu.Lock()
	reader := c.reader
	c.mu.Unlock()

	var err error
	if reader != nil {
		err = reader.Close()
	}
	if c.dlqProducer != nil {
		if closeErr := c.dlqProducer.Close(); closeErr != nil {
			if err == nil {
				err = closeErr
			}
		}
	}
	return err
}
