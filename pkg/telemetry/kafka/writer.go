// Package kafka forwards stored readings to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"agrisense/entities"
)

// Writer publishes readings keyed by device MAC, so one device's samples
// stay ordered within a partition.
type Writer struct {
	writer *kafkago.Writer
}

func NewWriter(brokers []string, topic string) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		BatchTimeout: 50 * time.Millisecond,
	}
	return &Writer{writer: w}
}

func (w *Writer) Publish(ctx context.Context, r *entities.Reading) error {
	msg, err := serializeToMessage(r)
	if err != nil {
		return err
	}
	return w.writer.WriteMessages(ctx, msg)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

func serializeToMessage(r *entities.Reading) (kafkago.Message, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize reading: %w", err)
	}
	state := ""
	if r.State != nil {
		state = string(*r.State)
	}
	return kafkago.Message{
		Key:   []byte(r.DeviceMAC),
		Value: data,
		Time:  r.CreatedAt,
		Headers: []kafkago.Header{
			{Key: "device_mac", Value: []byte(r.DeviceMAC)},
			{Key: "state", Value: []byte(state)},
			{Key: "created_at", Value: []byte(r.CreatedAt.UTC().Format(time.RFC3339))},
		},
	}, nil
}
