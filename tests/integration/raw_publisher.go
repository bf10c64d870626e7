package integration

import (
	"context"

	"github.com/segmentio/kafka-go"
)

// publishRaw writes arbitrary bytes to a topic, bypassing the typed
// producer. Used to exercise the consumer's handling of undecodable
// records.
func publishRaw(ctx context.Context, brokers []string, topic string, value []byte) error {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		AllowAutoTopicCreation: true,
	}
	defer w.Close()

	return w.WriteMessages(ctx, kafka.Message{Value: value})
}
