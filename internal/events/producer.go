package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	TypeMediaUploaded = "media.uploaded"
	TypeMediaDeleted  = "media.deleted"
)

// MediaEvent announces a change to the media collection so downstream
// consumers (audits, cache invalidation) can react.
type MediaEvent struct {
	Type      string    `json:"type"`
	MediaID   string    `json:"media_id"`
	PublicID  string    `json:"public_id,omitempty"`
	DriveFile string    `json:"drive_file,omitempty"`
	Actor     string    `json:"actor,omitempty"`
	At        time.Time `json:"at"`
}

type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string, topic string) *Producer {
	w := kafka.NewWriter(kafka.WriterConfig{Brokers: brokers, Topic: topic, Balancer: &kafka.LeastBytes{}})
	return &Producer{writer: w}
}

// Publish is best-effort and nil-safe: a service wired without Kafka simply
// skips event emission.
func (p *Producer) Publish(ctx context.Context, ev MediaEvent) error {
	if p == nil || p.writer == nil {
		return nil
	}
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{Key: []byte(ev.MediaID), Value: b, Time: time.Now()})
}

func (p *Producer) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
