package logging

import (
	"bytes"
	"encoding/json"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in       string
		expected Level
	}{
		{"debug", DebugLevel},
		{"INFO", InfoLevel},
		{"warning", WarnLevel},
		{"error", ErrorLevel},
		{"off", DisabledLevel},
		{"bogus", InfoLevel},
		{"", InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLevel(tt.in))
		})
	}
}

func TestNewWritesStructuredOutput(t *testing.T) {
	var buf bytes.Buffer
	l := New(&Config{Level: DebugLevel, Output: &buf})

	l.Component("registry").Info().Str("uid", "api::post.post").Msg("attribute added")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "registry", entry["component"])
	assert.Equal(t, "api::post.post", entry["uid"])
	assert.Equal(t, "attribute added", entry["message"])
	assert.Equal(t, "info", entry["level"])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(&Config{Level: WarnLevel, Output: &buf})

	l.Info().Msg("hidden")
	assert.Zero(t, buf.Len())

	l.Warn().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestComponentLoggersKeepTheLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&Config{Level: WarnLevel, Output: &buf}).Component("builder")

	l.Info().Msg("hidden")
	assert.Zero(t, buf.Len())

	l.Warn().Str("modal", "attribute").Msg("unhandled navigation event")
	assert.Contains(t, buf.String(), `"component":"builder"`)
	assert.Contains(t, buf.String(), `"modal":"attribute"`)
}

func TestInitReplacesTheGlobalLogger(t *testing.T) {
	t.Cleanup(func() { Init(&Config{Level: DisabledLevel, Output: io.Discard}) })

	var first, second bytes.Buffer
	Init(&Config{Level: InfoLevel, Output: &first})
	Init(&Config{Level: DebugLevel, Output: &second})

	Debugf("loaded %d entities", 3)
	assert.Zero(t, first.Len())
	assert.Contains(t, second.String(), "loaded 3 entities")
}

func TestNopDiscards(t *testing.T) {
	l := Nop()
	assert.NotPanics(t, func() {
		l.Error().Msg("nothing")
	})
}
