// Package mqtt subscribes to device telemetry on an MQTT broker and feeds
// it into reading ingest.
package mqtt

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

type Client struct {
	client paho.Client

	mu   sync.Mutex
	subs map[string]paho.MessageHandler
}

// Connect dials brokerURL (mqtt:// is accepted as tcp://) and re-subscribes
// every topic after a reconnect.
func Connect(brokerURL, clientID string) (*Client, error) {
	c := &Client{subs: map[string]paho.MessageHandler{}}

	url := strings.TrimSpace(brokerURL)
	if strings.HasPrefix(url, "mqtt://") {
		url = "tcp://" + strings.TrimPrefix(url, "mqtt://")
	}
	if strings.TrimSpace(clientID) == "" {
		clientID = "agrisense-" + time.Now().Format("150405.000")
	}

	opts := paho.NewClientOptions()
	opts.AddBroker(url)
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(2 * time.Second)
	opts.SetKeepAlive(30 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		slog.Warn("mqtt connection lost", "error", err)
	}
	opts.OnConnect = func(pc paho.Client) {
		slog.Info("mqtt connected", "broker", url)
		c.mu.Lock()
		defer c.mu.Unlock()
		for topic, h := range c.subs {
			if tok := pc.Subscribe(topic, 1, h); tok.Wait() && tok.Error() != nil {
				slog.Error("mqtt resubscribe failed", "topic", topic, "error", tok.Error())
			}
		}
	}

	c.client = paho.NewClient(opts)
	tok := c.client.Connect()
	if !tok.WaitTimeout(15 * time.Second) {
		return nil, fmt.Errorf("mqtt: connect to %s timed out", url)
	}
	if err := tok.Error(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) Subscribe(topic string, handler func(Message)) error {
	h := func(_ paho.Client, msg paho.Message) { handler(msg) }
	c.mu.Lock()
	c.subs[topic] = h
	c.mu.Unlock()

	tok := c.client.Subscribe(topic, 1, h)
	tok.Wait()
	return tok.Error()
}

func (c *Client) IsConnected() bool { return c != nil && c.client != nil && c.client.IsConnectionOpen() }

func (c *Client) Close() {
	if c == nil || c.client == nil {
		return
	}
	c.client.Disconnect(1000)
}
