// Package kafka publishes route-change events so driver apps and
// dashboards can react to adjustments without polling.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"dispatch/internal/core/ports"
)

// DefaultTopic is the topic route-change events are published to when the
// config does not override it.
const DefaultTopic = "dispatch.route-events"

// Config holds the connection settings for the event publisher.
type Config struct {
	Brokers      []string
	Topic        string
	BatchTimeout time.Duration
	WriteTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.Topic == "" {
		c.Topic = DefaultTopic
	}
	if c.BatchTimeout <= 0 {
		c.BatchTimeout = 50 * time.Millisecond
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 5 * time.Second
	}
	return c
}

// messageWriter is the subset of kafka.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// RouteEventPublisher implements ports.RouteEventPublisher on top of a
// Kafka topic. Events are keyed by route ID so all changes for one route
// land on the same partition in order.
type RouteEventPublisher struct {
	writer messageWriter
	topic  string
	logger *slog.Logger
}

// NewRouteEventPublisher creates a publisher with its own writer.
func NewRouteEventPublisher(cfg Config, logger *slog.Logger) *RouteEventPublisher {
	cfg = cfg.withDefaults()

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: cfg.BatchTimeout,
		WriteTimeout: cfg.WriteTimeout,
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	}

	return newRouteEventPublisher(writer, cfg.Topic, logger)
}

func newRouteEventPublisher(writer messageWriter, topic string, logger *slog.Logger) *RouteEventPublisher {
	if logger == nil {
		logger = slog.Default()
	}

	return &RouteEventPublisher{
		writer: writer,
		topic:  topic,
		logger: logger.With("component", "route_event_publisher"),
	}
}

// PublishRouteChanged writes one route-change event. Delivery is at most
// once: a write failure is returned for the caller to log, never retried
// here.
func (p *RouteEventPublisher) PublishRouteChanged(ctx context.Context, event ports.RouteChangedEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal route changed event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.RouteID.String()),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte("route.changed")},
			{Key: "content-type", Value: []byte("application/json")},
		},
		Time: event.OccurredAt,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish to topic %s: %w", p.topic, err)
	}

	p.logger.Debug("route change published",
		"route_id", event.RouteID.String(),
		"changes", len(event.Changes))
	return nil
}

// Close releases the underlying writer.
func (p *RouteEventPublisher) Close() error {
	return p.writer.Close()
}
