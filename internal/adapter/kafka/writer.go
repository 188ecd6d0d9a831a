package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/couchcryptid/navdata-etl/internal/config"
	"github.com/couchcryptid/navdata-etl/internal/domain"
	"github.com/jonboulle/clockwork"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer publishes one message per procedure to a Kafka topic.
// It implements pipeline.ProcedureLoader.
type Writer struct {
	writer *kafkago.Writer
	clock  clockwork.Clock
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured procedure topic.
// Messages are keyed by TerminalID, so a re-run with the same start id
// replaces earlier procedures on compacted topics.
func NewWriter(cfg *config.Config, clock clockwork.Clock, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, clock: clock, logger: logger}
}

// LoadProcedure serializes and publishes one normalized procedure.
func (w *Writer) LoadProcedure(ctx context.Context, proc domain.Procedure) error {
	msg, err := serializeToMessage(proc, w.clock.Now())
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish procedure %d: %w", proc.TerminalID, err)
	}
	w.logger.Debug("procedure published", "terminal_id", proc.TerminalID, "topic", w.writer.Topic)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage encodes the leg array exactly as the JSON file sink
// does and adds routing headers.
func serializeToMessage(proc domain.Procedure, now time.Time) (kafkago.Message, error) {
	legs := proc.Legs
	if legs == nil {
		legs = []domain.NormalizedLeg{}
	}
	data, err := domain.EncodeJSON(legs)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize procedure %d: %w", proc.TerminalID, err)
	}
	id := strconv.FormatInt(proc.TerminalID, 10)
	return kafkago.Message{
		Key:   []byte(id),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "terminal_id", Value: []byte(id)},
			{Key: "leg_count", Value: []byte(strconv.Itoa(len(proc.Legs)))},
			{Key: "processed_at", Value: []byte(now.UTC().Format(time.RFC3339))},
		},
	}, nil
}
