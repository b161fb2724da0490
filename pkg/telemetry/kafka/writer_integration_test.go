//go:build integration

package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"agrisense/entities"
)

const testTopic = "test-readings"

func TestWriterPublishesKeyedReading(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	kc, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("agrisense-test"))
	testcontainers.CleanupContainer(t, kc)
	require.NoError(t, err)
	brokers, err := kc.Brokers(ctx)
	require.NoError(t, err)

	conn, err := kafkago.DialContext(ctx, "tcp", brokers[0])
	require.NoError(t, err)
	require.NoError(t, conn.CreateTopics(kafkago.TopicConfig{Topic: testTopic, NumPartitions: 1, ReplicationFactor: 1}))
	_ = conn.Close()

	w := NewWriter(brokers, testTopic)
	defer w.Close()
	r := &entities.Reading{ID: uuid.New(), DeviceMAC: "AA:BB:CC:00:00:02", CreatedAt: time.Now().UTC(), Temperature: -2.5}
	require.NoError(t, w.Publish(ctx, r))

	reader := kafkago.NewReader(kafkago.ReaderConfig{Brokers: brokers, Topic: testTopic, Partition: 0})
	defer reader.Close()
	msg, err := reader.ReadMessage(ctx)
	require.NoError(t, err)

	assert.Equal(t, "AA:BB:CC:00:00:02", string(msg.Key))
	var got entities.Reading
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, r.ID, got.ID)
	assert.Equal(t, -2.5, got.Temperature)
}
