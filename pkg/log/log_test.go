package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		m := map[string]interface{}{}
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestToLogLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		" INFO ":  zerolog.InfoLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"off":     zerolog.Disabled,
		"bogus":   zerolog.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ToLogLevel(in), in)
	}
}

func TestZerologProviderFields(t *testing.T) {
	var buf bytes.Buffer
	p := NewZerologProviderWithWriter(zerolog.DebugLevel, &buf)

	logger := p.GetLoggerWithName("descent").With(ComponentKey, "engine")
	logger.Info("Step completed",
		IterationKey, 3,
		LossKey, 0.25,
		WeightsKey, []float64{0.5},
		"err", errors.New("boom"),
	)

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	line := lines[0]
	assert.Equal(t, "descent", line["logger"])
	assert.Equal(t, "engine", line[ComponentKey])
	assert.Equal(t, "Step completed", line["message"])
	assert.Equal(t, float64(3), line[IterationKey])
	assert.Equal(t, 0.25, line[LossKey])
	assert.Equal(t, "boom", line["err"])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	p := NewZerologProviderWithWriter(zerolog.WarnLevel, &buf)
	l := p.GetLogger()

	l.Debug("hidden")
	l.Info("hidden")
	l.Warn("shown")
	l.Error("shown too")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "warn", lines[0]["level"])
	assert.Equal(t, "error", lines[1]["level"])
}

func TestOddFieldCount(t *testing.T) {
	var buf bytes.Buffer
	p := NewZerologProviderWithWriter(zerolog.InfoLevel, &buf)
	p.GetLogger().Info("odd", "dangling")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "(MISSING)", lines[0]["dangling"])
}

func TestSetupLoggerWithWriter(t *testing.T) {
	var buf bytes.Buffer
	SetupLoggerWithWriter("debug", &buf)
	defer SetupLogger("info")

	GetLoggerWithName("test").Debug("named")
	LogError(errors.New("failure"), "global")
	LogError(nil, "ignored")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "test", lines[0]["logger"])
	assert.Equal(t, "failure", lines[1]["error"])
}
