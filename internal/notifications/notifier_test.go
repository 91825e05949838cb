package notifications

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerFanOut(t *testing.T) {
	m := NewManager(DefaultConfig(), nil)
	rec := NewRecorder()
	m.AddChannel(rec)

	var statusBar []string
	m.AddChannel(NewFuncChannel("status_bar", func(n *Notification) {
		statusBar = append(statusBar, n.String())
	}))
	assert.Equal(t, []string{"log", "recorder", "status_bar"}, m.Channels())

	m.Notify(New(LevelDanger, "builder", "Kind change", "relations prevent the change"))

	require.Len(t, rec.All(), 1)
	assert.Equal(t, LevelDanger, rec.Last().Level)
	assert.NotEmpty(t, rec.Last().ID)
	assert.Equal(t, []string{"[danger] Kind change: relations prevent the change"}, statusBar)
}

func TestManagerFiltering(t *testing.T) {
	tests := []struct {
		name   string
		config Config
		level  Level
		want   int
	}{
		{"delivered", Config{Enabled: true, MinLevel: LevelInfo}, LevelInfo, 1},
		{"below threshold", Config{Enabled: true, MinLevel: LevelWarning}, LevelSuccess, 0},
		{"disabled", Config{Enabled: false}, LevelDanger, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager(tt.config, nil)
			rec := NewRecorder()
			m.AddChannel(rec)
			m.Notify(New(tt.level, "test", "", "hello"))
			assert.Len(t, rec.All(), tt.want)
		})
	}
}

func TestDisabledChannelIsSkipped(t *testing.T) {
	m := NewManager(DefaultConfig(), nil)
	calls := 0
	ch := NewFuncChannel("status_bar", func(*Notification) { calls++ })
	require.NoError(t, ch.Configure(map[string]interface{}{"enabled": false}))
	m.AddChannel(ch)

	m.Notify(New(LevelInfo, "test", "", "x"))
	assert.Zero(t, calls)

	m.RemoveChannel("status_bar")
	assert.Equal(t, []string{"log"}, m.Channels())
}

func TestTerminalBell(t *testing.T) {
	var buf bytes.Buffer
	bell := NewTerminalBellChannel(TerminalBellConfig{Enabled: true, MinLevel: LevelWarning})
	bell.out = &buf

	require.NoError(t, bell.Notify(New(LevelInfo, "test", "", "quiet")))
	assert.Empty(t, buf.String())
	require.NoError(t, bell.Notify(New(LevelDanger, "test", "", "loud")))
	assert.Equal(t, "\a", buf.String())
}

func TestRecorderReset(t *testing.T) {
	rec := NewRecorder()
	assert.Nil(t, rec.Last())
	_ = rec.Notify(New(LevelSuccess, "test", "", "saved"))
	rec.Reset()
	assert.Empty(t, rec.All())
	assert.Equal(t, "success", LevelSuccess.String())
}
