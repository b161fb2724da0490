package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"agrisense/pkg/reading/service"
)

// Message is the part of a broker message the ingestor reads.
type Message interface {
	Topic() string
	Payload() []byte
}

const readingsSuffix = "/readings"

// Ingestor turns messages on <prefix><mac>/readings into stored readings.
type Ingestor struct {
	prefix  string
	svc     service.ReadingService
	timeout time.Duration
}

func NewIngestor(prefix string, svc service.ReadingService) *Ingestor {
	return &Ingestor{prefix: prefix, svc: svc, timeout: 5 * time.Second}
}

// Topic is the wildcard subscription covering every device.
func (i *Ingestor) Topic() string { return i.prefix + "+" + readingsSuffix }

// ParseMAC extracts the device MAC from a readings topic.
func ParseMAC(prefix, topic string) (string, error) {
	rest, ok := strings.CutPrefix(topic, prefix)
	if !ok {
		return "", fmt.Errorf("topic %q outside prefix %q", topic, prefix)
	}
	mac, ok := strings.CutSuffix(rest, readingsSuffix)
	if !ok || mac == "" || strings.Contains(mac, "/") {
		return "", fmt.Errorf("topic %q is not a readings topic", topic)
	}
	return mac, nil
}

// HandleMessage stores one payload. Bad messages are logged and dropped so a
// single device cannot stall the subscription.
func (i *Ingestor) HandleMessage(msg Message) {
	mac, err := ParseMAC(i.prefix, msg.Topic())
	if err != nil {
		slog.Warn("mqtt message dropped", "topic", msg.Topic(), "error", err)
		return
	}
	var in service.ReadingInput
	if err := json.Unmarshal(msg.Payload(), &in); err != nil {
		slog.Warn("mqtt payload dropped", "mac", mac, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), i.timeout)
	defer cancel()
	if _, err := i.svc.Ingest(ctx, mac, in, service.SourceMQTT); err != nil {
		slog.Warn("mqtt reading rejected", "mac", mac, "error", err)
		return
	}
	slog.Debug("mqtt reading stored", "mac", mac)
}

// Start subscribes the ingestor on c.
func (i *Ingestor) Start(c *Client) error {
	return c.Subscribe(i.Topic(), func(m Message) { i.HandleMessage(m) })
}
