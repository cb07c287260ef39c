// Package kafka publishes readings to a Kafka topic as an alternative to
// writing them to the index store directly.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/moodmap/internal/config"
	"github.com/couchcryptid/moodmap/internal/domain"
)

// Writer produces submissions to a Kafka topic.
// It implements domain.IndexWriter.
type Writer struct {
	writer messageWriter
	logger *slog.Logger
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// NewWriter creates a Kafka producer for the configured submit topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSubmitTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// Submit publishes one submission. Messages are keyed by cell address so
// readings for the same cell stay ordered on one partition.
func (w *Writer) Submit(ctx context.Context, s domain.Submission) error {
	msg, err := serializeToMessage(s, domain.Now())
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return &domain.SubmissionError{Collection: s.Collection, Address: s.Address, Err: err}
	}
	w.logger.Debug("submission published", "collection", s.Collection, "address", s.Address)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a Submission into a Kafka message.
func serializeToMessage(s domain.Submission, at time.Time) (kafkago.Message, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize submission: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(s.Address),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "collection", Value: []byte(s.Collection)},
			{Key: "submitted_at", Value: []byte(at.UTC().Format(time.RFC3339))},
		},
	}, nil
}
