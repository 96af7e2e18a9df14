package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"jots/internal/events"

	kafkago "github.com/segmentio/kafka-go"
)

// Publisher implements events.Publisher over a Kafka topic.
type Publisher struct {
	writer *kafkago.Writer
}

// NewPublisher creates a Kafka publisher for the given brokers and topic.
func NewPublisher(brokers []string, topic string) *Publisher {
	return &Publisher{
		writer: &kafkago.Writer{
			Addr:     kafkago.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafkago.LeastBytes{},
		},
	}
}

// Publish writes the event as JSON, keyed by customer id so a customer's
// events stay ordered within a partition.
func (p *Publisher) Publish(ctx context.Context, event events.TransactionRecorded) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	return p.writer.WriteMessages(ctx, kafkago.Message{
		Key:   []byte(event.CustomerID),
		Value: data,
	})
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
