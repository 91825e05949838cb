package notifications

import (
	"fmt"
	"io"
	"os"
)

// TerminalBellConfig holds configuration for terminal bell notifications
type TerminalBellConfig struct {
	Enabled  bool  `mapstructure:"enabled" yaml:"enabled"`
	MinLevel Level `mapstructure:"minLevel" yaml:"minLevel"`
}

// TerminalBellChannel rings the terminal bell for severe notifications
type TerminalBellChannel struct {
	config TerminalBellConfig
	out    io.Writer
}

// NewTerminalBellChannel creates a new terminal bell notification channel
func NewTerminalBellChannel(config TerminalBellConfig) *TerminalBellChannel {
	return &TerminalBellChannel{config: config, out: os.Stderr}
}

// Name returns the channel name
func (t *TerminalBellChannel) Name() string {
	return "terminal_bell"
}

// IsEnabled returns whether the channel is enabled
func (t *TerminalBellChannel) IsEnabled() bool {
	return t.config.Enabled
}

// Notify writes the bell character when n is severe enough
func (t *TerminalBellChannel) Notify(n *Notification) error {
	if n.Level < t.config.MinLevel {
		return nil
	}
	_, err := fmt.Fprint(t.out, "\a")
	return err
}

// Configure updates channel configuration
func (t *TerminalBellChannel) Configure(config map[string]interface{}) error {
	if enabled, ok := config["enabled"].(bool); ok {
		t.config.Enabled = enabled
	}
	if minLevel, ok := config["min_level"].(int); ok {
		t.config.MinLevel = Level(minLevel)
	}
	return nil
}
