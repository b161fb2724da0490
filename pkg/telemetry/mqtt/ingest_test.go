package mqtt

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agrisense/entities"
	"agrisense/pkg/reading/service"
)

type fakeMsg struct {
	topic   string
	payload string
}

func (m fakeMsg) Topic() string   { return m.topic }
func (m fakeMsg) Payload() []byte { return []byte(m.payload) }

type call struct {
	mac    string
	in     service.ReadingInput
	source string
}

type fakeIngest struct {
	calls []call
	err   error
}

func (f *fakeIngest) Ingest(_ context.Context, mac string, in service.ReadingInput, source string) (*entities.Reading, error) {
	f.calls = append(f.calls, call{mac, in, source})
	if f.err != nil {
		return nil, f.err
	}
	return &entities.Reading{DeviceMAC: mac}, nil
}

func (f *fakeIngest) Recent(context.Context, string, int) ([]entities.Reading, error) {
	return nil, nil
}

const prefix = "agrisense/devices/"

func TestParseMAC(t *testing.T) {
	mac, err := ParseMAC(prefix, "agrisense/devices/AA:BB:CC:00:00:02/readings")
	require.NoError(t, err)
	assert.Equal(t, "AA:BB:CC:00:00:02", mac)

	for _, bad := range []string{
		"other/AA:BB:CC:00:00:02/readings",
		"agrisense/devices/AA:BB:CC:00:00:02/status",
		"agrisense/devices//readings",
		"agrisense/devices/a/b/readings",
	} {
		_, err := ParseMAC(prefix, bad)
		assert.Error(t, err, bad)
	}
}

func TestHandleMessage(t *testing.T) {
	f := &fakeIngest{}
	ing := NewIngestor(prefix, f)
	assert.Equal(t, "agrisense/devices/+/readings", ing.Topic())

	ing.HandleMessage(fakeMsg{prefix + "AA:BB:CC:00:00:02/readings", `{"temperature":-1.25,"battery_value":77,"state":"LOW"}`})
	require.Len(t, f.calls, 1)
	c := f.calls[0]
	assert.Equal(t, "AA:BB:CC:00:00:02", c.mac)
	assert.Equal(t, service.SourceMQTT, c.source)
	require.NotNil(t, c.in.Temperature)
	assert.Equal(t, -1.25, *c.in.Temperature)
	assert.Equal(t, 77, c.in.BatteryValue)
	assert.Equal(t, "LOW", *c.in.State)
}

func TestHandleMessageDropsGarbage(t *testing.T) {
	f := &fakeIngest{}
	ing := NewIngestor(prefix, f)

	ing.HandleMessage(fakeMsg{prefix + "AA:BB:CC:00:00:02/readings", `{"temperature":`})
	ing.HandleMessage(fakeMsg{"elsewhere/readings", `{"temperature":1}`})
	assert.Empty(t, f.calls)

	f.err = errors.New("device not found")
	assert.NotPanics(t, func() {
		ing.HandleMessage(fakeMsg{prefix + "AA:BB:CC:00:00:09/readings", `{"temperature":1}`})
	})
	assert.Len(t, f.calls, 1)
}
