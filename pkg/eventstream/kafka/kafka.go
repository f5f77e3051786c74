// Package kafka publishes query events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/contractminer/contractminer/pkg/eventstream"
	"github.com/contractminer/contractminer/pkg/logger"
)

// DefaultTopic is used when the config does not name one.
const DefaultTopic = "miner.query.audited"

// Config holds Kafka publisher settings.
type Config struct {
	// Brokers is the bootstrap broker list.
	Brokers []string

	// Topic defaults to DefaultTopic if empty.
	Topic string

	// Logger may be nil.
	Logger *slog.Logger
}

// Publisher implements eventstream.Publisher on a Kafka writer. Events are
// keyed by input hash so all events for one query text land in one
// partition, preserving per-hash ordering.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka-backed publisher.
func NewPublisher(cfg Config) (*Publisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka publisher requires at least one broker")
	}
	topic := cfg.Topic
	if topic == "" {
		topic = DefaultTopic
	}

	writer := &kafkago.Writer{
		Addr:     kafkago.TCP(cfg.Brokers...),
		Topic:    topic,
		Balancer: &kafkago.Hash{},
	}

	return &Publisher{
		writer: writer,
		logger: logger.OrNop(cfg.Logger),
	}, nil
}

// PublishQueryAudited ships one event as a JSON message.
func (p *Publisher) PublishQueryAudited(ctx context.Context, event *eventstream.QueryAuditedEvent) error {
	if event == nil {
		return eventstream.ErrNilQueryEvent
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event %s: %w", event.EventID, err)
	}

	msg := kafkago.Message{
		Key:   []byte(event.InputHash),
		Value: payload,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish event %s: %w", event.EventID, err)
	}

	p.logger.Debug("query event published",
		"event_id", event.EventID,
		"audit_id", event.AuditID,
	)

	return nil
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

var _ eventstream.Publisher = (*Publisher)(nil)
