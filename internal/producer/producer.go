// Package producer provides the Kafka producer for the incoming events topic.
package producer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"github.com/ctheara/event-notification-service/internal/events"
	kafkautil "github.com/ctheara/event-notification-service/internal/kafka"
)

// Producer wraps a Kafka writer and publishes ingested events.
type Producer struct {
	writer *kafka.Writer
	topic  string
}

// NewProducer creates a new Kafka producer with the specified brokers and
// topic. The producer is configured for at-least-once delivery with
// synchronous writes.
func NewProducer(brokers, topic string) (*Producer, error) {
	if err := kafkautil.ValidateProducerParams(brokers, topic); err != nil {
		return nil, err
	}

	brokerList := kafkautil.ParseBrokers(brokers)

	slog.Info("Initializing Kafka producer",
		"brokers", brokerList,
		"topic", topic,
	)

	// Hash balancer partitions by message key, so all redeliveries of one
	// event land on the same partition.
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokerList...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		WriteTimeout:           kafkautil.WriteTimeout,
		RequiredAcks:           kafka.RequireOne,
		Async:                  false,
		AllowAutoTopicCreation: true,
	}

	slog.Info("Kafka producer configured",
		"write_timeout", kafkautil.WriteTimeout,
		"required_acks", "RequireOne",
		"async", false,
		"balancer", "Hash (key-based partitioning)",
		"partition_key", "event_id (hashed)",
	)

	return &Producer{
		writer: writer,
		topic:  topic,
	}, nil
}

// Publish serializes an event to JSON and publishes it, keyed by event ID.
// Returns an error if serialization or publishing fails.
func (p *Producer) Publish(ctx context.Context, ev *events.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		slog.Error("Failed to marshal event to JSON",
			"event_id", ev.EventID,
			"event_type", ev.EventType,
			"error", err,
		)
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(ev.EventID),
		Value: payload,
		Headers: []kafka.Header{
			{
				Key:   "event_type",
				Value: []byte(ev.EventType),
			},
			{
				Key:   "severity",
				Value: []byte(ev.Severity),
			},
		},
		Time: ev.ReceivedAt,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		slog.Error("Failed to write message to Kafka",
			"event_id", ev.EventID,
			"topic", p.topic,
			"error", err,
		)
		return fmt.Errorf("failed to write message to Kafka: %w", err)
	}

	slog.Info("Published event",
		"event_id", ev.EventID,
		"event_type", ev.EventType,
		"severity", ev.Severity,
	)

	return nil
}

// Close gracefully closes the Kafka writer and releases resources.
func (p *Producer) Close() error {
	slog.Info("Closing Kafka producer", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		slog.Error("Error closing Kafka producer", "error", err)
		return err
	}
	slog.Info("Kafka producer closed successfully")
	return nil
}
