// Package kafka publishes detected wave events to the sink topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/climate-extremes/internal/climate"
	"github.com/couchcryptid/climate-extremes/internal/pipeline"
)

// Writer produces wave-event messages to a Kafka topic. It implements
// pipeline.EventPublisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured events topic.
func NewWriter(brokers []string, topic string, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// eventMessage is the wire form of one detected wave event.
type eventMessage struct {
	RunID     string         `json:"run_id"`
	Kind      string         `json:"kind"`
	StationID string         `json:"station_id"`
	Start     time.Time      `json:"start"`
	End       time.Time      `json:"end"`
	Duration  int            `json:"duration"`
	Year      int            `json:"year"`
	Season    climate.Season `json:"season"`
}

// PublishEvents serializes and publishes every event of a run in a single
// WriteMessages call.
func (w *Writer) PublishEvents(ctx context.Context, run *pipeline.Run) error {
	if len(run.Events) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(run.Events))
	for i, ev := range run.Events {
		msg, err := serializeToMessage(run, ev)
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	return w.writer.WriteMessages(ctx, msgs...)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals one wave event into a Kafka message keyed by
// station so a station's events stay ordered within a partition.
func serializeToMessage(run *pipeline.Run, ev climate.WaveEvent) (kafkago.Message, error) {
	data, err := json.Marshal(eventMessage{
		RunID:     run.ID,
		Kind:      run.Kind,
		StationID: run.StationID,
		Start:     ev.Start,
		End:       ev.End,
		Duration:  ev.Duration,
		Year:      ev.Year,
		Season:    ev.Season,
	})
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize wave event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(run.StationID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "kind", Value: []byte(run.Kind)},
			{Key: "detected_at", Value: []byte(run.CreatedAt.Format(time.RFC3339))},
		},
	}, nil
}
