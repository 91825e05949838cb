// Package notifications delivers builder notifications (commit failures,
// rejected edits, saved schemas) to the log, the status bar and the terminal.
package notifications

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jontk/ctb/internal/logging"
)

// Level is the severity of a notification
type Level int

const (
	// LevelInfo is informational
	LevelInfo Level = iota
	// LevelSuccess confirms a completed action
	LevelSuccess
	// LevelWarning needs attention
	LevelWarning
	// LevelDanger reports a rejected or failed action
	LevelDanger
)

// String returns the level name
func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelSuccess:
		return "success"
	case LevelWarning:
		return "warning"
	case LevelDanger:
		return "danger"
	default:
		return "unknown"
	}
}

// ParseLevel converts a level name to a Level.
func ParseLevel(s string) (Level, bool) {
	for l := LevelInfo; l <= LevelDanger; l++ {
		if l.String() == s {
			return l, true
		}
	}
	return LevelInfo, false
}

// Notification is a message for the user
type Notification struct {
	ID        string
	Level     Level
	Title     string
	Message   string
	Source    string
	Timestamp time.Time
}

// New creates a notification stamped with an id and the current time
func New(level Level, source, title, message string) *Notification {
	return &Notification{
		ID:        uuid.NewString(),
		Level:     level,
		Title:     title,
		Message:   message,
		Source:    source,
		Timestamp: time.Now(),
	}
}

// String renders the notification on one line
func (n *Notification) String() string {
	if n.Title == "" {
		return fmt.Sprintf("[%s] %s", n.Level, n.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", n.Level, n.Title, n.Message)
}

// Notifier accepts notifications
type Notifier interface {
	Notify(n *Notification)
}

// NopNotifier drops every notification
type NopNotifier struct{}

// Notify implements Notifier
func (NopNotifier) Notify(*Notification) {}

// Channel represents a notification delivery channel
type Channel interface {
	// Name returns the channel name
	Name() string

	// IsEnabled returns whether the channel is enabled
	IsEnabled() bool

	// Notify sends a notification through this channel
	Notify(n *Notification) error

	// Configure updates channel configuration
	Configure(config map[string]interface{}) error
}

// Config holds the manager settings
type Config struct {
	Enabled  bool  `mapstructure:"enabled" yaml:"enabled"`
	MinLevel Level `mapstructure:"minLevel" yaml:"minLevel"`

	TerminalBell TerminalBellConfig `mapstructure:"terminalBell" yaml:"terminalBell"`
}

// DefaultConfig returns the default settings
func DefaultConfig() Config {
	return Config{
		Enabled:  true,
		MinLevel: LevelInfo,
		TerminalBell: TerminalBellConfig{
			Enabled:  false,
			MinLevel: LevelDanger,
		},
	}
}

// Manager fans notifications out to its channels
type Manager struct {
	mu       sync.RWMutex
	channels map[string]Channel
	config   Config
	logger   *logging.Logger
}

// NewManager creates a manager with the log channel and, when enabled,
// the terminal bell.
func NewManager(config Config, logger *logging.Logger) *Manager {
	if logger == nil {
		logger = logging.Nop()
	}
	m := &Manager{
		channels: make(map[string]Channel),
		config:   config,
		logger:   logger.Component("notifications"),
	}
	m.channels["log"] = NewLogChannel(m.logger)
	if config.TerminalBell.Enabled {
		m.channels["terminal_bell"] = NewTerminalBellChannel(config.TerminalBell)
	}
	return m
}

// AddChannel registers ch under its name, replacing any channel of that name
func (m *Manager) AddChannel(ch Channel) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.channels[ch.Name()] = ch
}

// RemoveChannel unregisters the channel called name
func (m *Manager) RemoveChannel(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.channels, name)
}

// Channels returns the registered channel names
func (m *Manager) Channels() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.channels))
	for name := range m.channels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Notify sends n through all enabled channels
func (m *Manager) Notify(n *Notification) {
	if n == nil {
		return
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.config.Enabled || n.Level < m.config.MinLevel {
		return
	}

	var wg sync.WaitGroup
	for name, channel := range m.channels {
		if !channel.IsEnabled() {
			continue
		}
		wg.Add(1)
		go func(ch Channel, chName string) {
			defer wg.Done()
			if err := ch.Notify(n); err != nil {
				m.logger.Error().Err(err).Str("channel", chName).Msg("failed to deliver notification")
			}
		}(channel, name)
	}
	wg.Wait()
}
