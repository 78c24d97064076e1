package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/fire-incident-map/internal/config"
	"github.com/couchcryptid/fire-incident-map/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer produces panel activation events to a Kafka topic.
// It implements page.ActivationSink.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured activation topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaActivationTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireOne,
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, logger: logger}
}

// Publish serializes and writes a single activation event. Events for the
// same city hash to the same partition.
func (w *Writer) Publish(ctx context.Context, event domain.ActivationEvent) error {
	msg, err := serializeToMessage(event)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish activation: %w", err)
	}
	w.logger.Debug("activation published", "city", event.City, "state", event.State, "event_id", event.ID)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals an ActivationEvent into a Kafka message.
func serializeToMessage(event domain.ActivationEvent) (kafkago.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize activation event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(messageKey(event)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "city", Value: []byte(event.City)},
			{Key: "activated_at", Value: []byte(event.ActivatedAt.Format(time.RFC3339))},
		},
	}, nil
}

func messageKey(event domain.ActivationEvent) string {
	return event.City + "|" + event.State
}
