// Package kafka publishes domain events to a Kafka broker. Delivery is
// best-effort from the coordinators' point of view: the database transaction
// has already committed when Publish is called.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"shopledger/internal/domain/ledger"
)

// Publisher writes events to Kafka, one topic per event stream.
type Publisher struct {
	writer *kafka.Writer
}

// Compile-time check against the domain contract.
var _ ledger.EventPublisher = (*Publisher)(nil)

// NewPublisher creates a publisher for the given brokers. The topic is taken
// per message, so one writer serves every event stream.
func NewPublisher(brokers []string) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.LeastBytes{},
			WriteTimeout: 5 * time.Second,
			// Topics are created by ops, not by the application.
			AllowAutoTopicCreation: false,
		},
	}
}

// Publish marshals the event and writes it to the topic.
func (p *Publisher) Publish(topic string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	err = p.writer.WriteMessages(
		context.Background(),
		kafka.Message{
			Topic: topic,
			Value: data,
		},
	)
	if err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
