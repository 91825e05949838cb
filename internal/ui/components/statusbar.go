package components

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// StatusBar displays the last builder message and keyboard hints
type StatusBar struct {
	*tview.TextView
	hints         []string
	message       *StatusMessage
	mu            sync.RWMutex
	displayMu     sync.Mutex // Serializes access to tview methods
	onChange      func()
	clearAfterGen uint64
}

// NewStatusBar creates a new status bar component
func NewStatusBar() *StatusBar {
	s := &StatusBar{
		TextView: tview.NewTextView(),
		hints:    []string{},
	}

	s.TextView.
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)

	return s
}

// SetChangedFunc registers fn to run after an expiring message is cleared
// from a background goroutine, e.g. to redraw the application.
func (s *StatusBar) SetChangedFunc(fn func()) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// SetHints sets the keyboard hints to display
func (s *StatusBar) SetHints(hints []string) {
	// an empty slice keeps the previous hints
	if len(hints) > 0 {
		s.mu.Lock()
		s.hints = hints
		s.mu.Unlock()
		s.updateDisplay()
	}
}

// Show displays msg until it expires. A zero duration keeps it until the
// next message.
func (s *StatusBar) Show(msg *StatusMessage) {
	s.mu.Lock()
	s.message = msg
	s.clearAfterGen++
	gen := s.clearAfterGen
	s.mu.Unlock()

	if msg.Duration > 0 {
		time.AfterFunc(msg.Duration, func() {
			s.mu.Lock()
			stale := s.clearAfterGen != gen
			if !stale {
				s.message = nil
			}
			fn := s.onChange
			s.mu.Unlock()
			if stale {
				return
			}
			s.updateDisplay()
			if fn != nil {
				fn()
			}
		})
	}
	s.updateDisplay()
}

// SetMessage sets a plain message with optional expiry
func (s *StatusBar) SetMessage(message string, duration time.Duration) {
	s.Show(NewStatusMessage(message, StatusLevelPlain, duration))
}

// ClearMessage clears the current message
func (s *StatusBar) ClearMessage() {
	s.mu.Lock()
	s.message = nil
	s.clearAfterGen++
	s.mu.Unlock()
	s.updateDisplay()
}

// Success displays a success message
func (s *StatusBar) Success(message string) {
	s.Show(NewStatusMessage(message, StatusLevelSuccess, 3*time.Second))
}

// Error displays an error message
func (s *StatusBar) Error(message string) {
	s.Show(NewStatusMessage(message, StatusLevelError, 5*time.Second))
}

// Warning displays a warning message
func (s *StatusBar) Warning(message string) {
	s.Show(NewStatusMessage(message, StatusLevelWarning, 4*time.Second))
}

// Info displays an info message
func (s *StatusBar) Info(message string) {
	s.Show(NewStatusMessage(message, StatusLevelInfo, 3*time.Second))
}

// updateDisplay updates the status bar display
func (s *StatusBar) updateDisplay() {
	s.mu.RLock()
	msg := s.message
	hints := make([]string, len(s.hints))
	copy(hints, s.hints)
	s.mu.RUnlock()

	var text string
	if msg != nil && !msg.IsExpired() {
		text = msg.Markup()
	} else {
		text = strings.Join(hints, "  ")
	}

	s.displayMu.Lock()
	defer s.displayMu.Unlock()

	// Only update if content has actually changed to prevent flicker
	if s.GetText(false) != text {
		s.SetText(text)
	}
}

// StatusMessage represents a status message with metadata
type StatusMessage struct {
	Text      string
	Level     StatusLevel
	Timestamp time.Time
	Duration  time.Duration
}

// StatusLevel represents the level of a status message
type StatusLevel int

const (
	StatusLevelPlain StatusLevel = iota
	StatusLevelInfo
	StatusLevelSuccess
	StatusLevelWarning
	StatusLevelError
)

// NewStatusMessage creates a new status message
func NewStatusMessage(text string, level StatusLevel, duration time.Duration) *StatusMessage {
	return &StatusMessage{
		Text:      text,
		Level:     level,
		Timestamp: time.Now(),
		Duration:  duration,
	}
}

// IsExpired checks if the message has expired
func (sm *StatusMessage) IsExpired() bool {
	if sm.Duration == 0 {
		return false
	}
	return time.Since(sm.Timestamp) > sm.Duration
}

// GetColor returns the color for this message level
func (sm *StatusMessage) GetColor() tcell.Color {
	switch sm.Level {
	case StatusLevelSuccess:
		return tcell.ColorGreen
	case StatusLevelWarning:
		return tcell.ColorYellow
	case StatusLevelError:
		return tcell.ColorRed
	case StatusLevelInfo:
		return tcell.ColorTeal
	default:
		return tcell.ColorDefault
	}
}

// GetIcon returns the icon for this message level
func (sm *StatusMessage) GetIcon() string {
	switch sm.Level {
	case StatusLevelSuccess:
		return "✓"
	case StatusLevelWarning:
		return "⚠"
	case StatusLevelError:
		return "✗"
	case StatusLevelInfo:
		return "ℹ"
	default:
		return ""
	}
}

// Format formats the message without markup
func (sm *StatusMessage) Format() string {
	if icon := sm.GetIcon(); icon != "" {
		return fmt.Sprintf("%s %s", icon, sm.Text)
	}
	return sm.Text
}

// Markup formats the message with tview color tags
func (sm *StatusMessage) Markup() string {
	color := sm.GetColor()
	text := tview.Escape(sm.Format())
	if color == tcell.ColorDefault {
		return text
	}
	return fmt.Sprintf("[%s]%s[white]", colorName(color), text)
}

func colorName(color tcell.Color) string {
	switch color {
	case tcell.ColorRed:
		return "red"
	case tcell.ColorGreen:
		return "green"
	case tcell.ColorYellow:
		return "yellow"
	case tcell.ColorTeal:
		return "teal"
	default:
		return "white"
	}
}
