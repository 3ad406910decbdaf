package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/climate-extremes/internal/climate"
	"github.com/couchcryptid/climate-extremes/internal/pipeline"
)

func TestSerializeToMessage(t *testing.T) {
	run := &pipeline.Run{
		ID:        "run-42",
		Kind:      "heat_wave",
		StationID: "LIS001",
		CreatedAt: time.Date(2004, time.January, 15, 12, 0, 0, 0, time.UTC),
	}
	ev := climate.WaveEvent{
		Start:      time.Date(2003, time.July, 28, 0, 0, 0, 0, time.UTC),
		End:        time.Date(2003, time.August, 1, 0, 0, 0, 0, time.UTC),
		Duration:   5,
		Year:       2003,
		Season:     3,
		SeasonYear: 2003,
	}

	msg, err := serializeToMessage(run, ev)
	require.NoError(t, err)

	assert.Equal(t, []byte("LIS001"), msg.Key)

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "heat_wave", headers["kind"])
	assert.Equal(t, "2004-01-15T12:00:00Z", headers["detected_at"])

	var payload eventMessage
	require.NoError(t, json.Unmarshal(msg.Value, &payload))
	assert.Equal(t, "run-42", payload.RunID)
	assert.Equal(t, "heat_wave", payload.Kind)
	assert.Equal(t, "LIS001", payload.StationID)
	assert.Equal(t, ev.Start, payload.Start)
	assert.Equal(t, ev.End, payload.End)
	assert.Equal(t, 5, payload.Duration)
	assert.Equal(t, 2003, payload.Year)
	assert.Equal(t, climate.Season(3), payload.Season)
}

func TestNewWriterConfiguration(t *testing.T) {
	w := NewWriter([]string{"k1:9092", "k2:9092"}, "climate-wave-events", nil)
	t.Cleanup(func() { _ = w.Close() })

	assert.Equal(t, "climate-wave-events", w.writer.Topic)
	assert.Equal(t, "k1:9092,k2:9092", w.writer.Addr.String())
}
