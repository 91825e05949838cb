package notifications

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/jontk/ctb/internal/logging"
)

// LogChannel writes notifications to the structured log
type LogChannel struct {
	logger  *logging.Logger
	enabled bool
}

// NewLogChannel creates a log channel
func NewLogChannel(logger *logging.Logger) *LogChannel {
	return &LogChannel{logger: logger, enabled: true}
}

// Name returns the channel name
func (l *LogChannel) Name() string { return "log" }

// IsEnabled returns whether the channel is enabled
func (l *LogChannel) IsEnabled() bool { return l.enabled }

// Notify logs the notification at a level matching its severity
func (l *LogChannel) Notify(n *Notification) error {
	var ev *zerolog.Event
	switch n.Level {
	case LevelDanger:
		ev = l.logger.Error()
	case LevelWarning:
		ev = l.logger.Warn()
	default:
		ev = l.logger.Info()
	}
	ev.Str("id", n.ID).
		Str("level", n.Level.String()).
		Str("source", n.Source).
		Str("title", n.Title).
		Msg(n.Message)
	return nil
}

// Configure updates channel configuration
func (l *LogChannel) Configure(config map[string]interface{}) error {
	if enabled, ok := config["enabled"].(bool); ok {
		l.enabled = enabled
	}
	return nil
}

// FuncChannel hands notifications to a function, e.g. the status bar
type FuncChannel struct {
	name    string
	fn      func(n *Notification)
	enabled bool
}

// NewFuncChannel creates a channel calling fn for every notification
func NewFuncChannel(name string, fn func(n *Notification)) *FuncChannel {
	return &FuncChannel{name: name, fn: fn, enabled: true}
}

// Name returns the channel name
func (f *FuncChannel) Name() string { return f.name }

// IsEnabled returns whether the channel is enabled
func (f *FuncChannel) IsEnabled() bool { return f.enabled && f.fn != nil }

// Notify calls the function
func (f *FuncChannel) Notify(n *Notification) error {
	f.fn(n)
	return nil
}

// Configure updates channel configuration
func (f *FuncChannel) Configure(config map[string]interface{}) error {
	if enabled, ok := config["enabled"].(bool); ok {
		f.enabled = enabled
	}
	return nil
}

// Recorder is a channel that keeps every notification it receives.
type Recorder struct {
	mu   sync.Mutex
	seen []*Notification
}

// NewRecorder creates an empty recorder
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Name returns the channel name
func (r *Recorder) Name() string { return "recorder" }

// IsEnabled returns whether the channel is enabled
func (r *Recorder) IsEnabled() bool { return true }

// Notify records n. The error is always nil.
func (r *Recorder) Notify(n *Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, n)
	return nil
}

// Configure is a no-op
func (r *Recorder) Configure(map[string]interface{}) error { return nil }

// All returns the recorded notifications in arrival order
func (r *Recorder) All() []*Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Notification, len(r.seen))
	copy(out, r.seen)
	return out
}

// Last returns the most recent notification or nil
func (r *Recorder) Last() *Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.seen) == 0 {
		return nil
	}
	return r.seen[len(r.seen)-1]
}

// Reset forgets every recorded notification
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = nil
}
