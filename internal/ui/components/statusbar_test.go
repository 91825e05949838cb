package components

import (
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestStatusBar_SetHints(t *testing.T) {
	statusBar := NewStatusBar()

	hints := []string{"a Add field", "s Save", "? Help"}
	statusBar.SetHints(hints)

	// Should display hints when no message is present
	text := statusBar.TextView.GetText(false)
	expected := "a Add field  s Save  ? Help"
	if text != expected {
		t.Errorf("Expected hints '%s', got '%s'", expected, text)
	}
}

func TestStatusBar_MessageOverridesHints(t *testing.T) {
	statusBar := NewStatusBar()

	statusBar.SetHints([]string{"a Add field", "s Save"})
	statusBar.Success("Schema saved")

	// Should show message, not hints
	text := statusBar.TextView.GetText(false)
	expected := "[green]✓ Schema saved[white]"
	if text != expected {
		t.Errorf("Expected success message '%s', got '%s'", expected, text)
	}
}

func TestStatusBar_HintsReturnAfterMessageExpires(t *testing.T) {
	statusBar := NewStatusBar()
	cleared := make(chan struct{}, 1)
	statusBar.SetChangedFunc(func() { cleared <- struct{}{} })

	statusBar.SetHints([]string{"a Add field", "s Save"})
	statusBar.SetMessage("Temporary", time.Millisecond)

	select {
	case <-cleared:
	case <-time.After(time.Second):
		t.Fatal("message was not cleared")
	}

	text := statusBar.TextView.GetText(false)
	expected := "a Add field  s Save"
	if text != expected {
		t.Errorf("Expected hints to return after message expires, got '%s'", text)
	}
}

func TestStatusBar_NewMessageOutlivesOldTimer(t *testing.T) {
	statusBar := NewStatusBar()

	statusBar.SetMessage("first", 5*time.Millisecond)
	statusBar.SetMessage("second", 0)
	time.Sleep(20 * time.Millisecond)

	if text := statusBar.TextView.GetText(false); text != "second" {
		t.Errorf("Expected the newer message to stay, got '%s'", text)
	}
}

func TestStatusBar_NoConflictWithMultipleCalls(t *testing.T) {
	statusBar := NewStatusBar()

	for i := 0; i < 10; i++ {
		statusBar.SetHints([]string{fmt.Sprintf("Entity %d", i), "? Help"})
	}

	text := statusBar.TextView.GetText(false)
	expected := "Entity 9  ? Help"
	if text != expected {
		t.Errorf("Expected latest hints, got '%s'", text)
	}

	// Empty hints keep the previous ones
	statusBar.SetHints(nil)
	if text := statusBar.TextView.GetText(false); text != expected {
		t.Errorf("Expected hints to survive an empty update, got '%s'", text)
	}
}

func TestStatusMessage_Markup(t *testing.T) {
	tests := []struct {
		level    StatusLevel
		text     string
		expected string
	}{
		{StatusLevelPlain, "saving", "saving"},
		{StatusLevelInfo, "reloaded", "[teal]ℹ reloaded[white]"},
		{StatusLevelWarning, "unsaved", "[yellow]⚠ unsaved[white]"},
		{StatusLevelError, "failed", "[red]✗ failed[white]"},
		{StatusLevelError, "bad [tag]", "[red]✗ bad [tag[][white]"},
	}

	for _, tt := range tests {
		got := NewStatusMessage(tt.text, tt.level, 0).Markup()
		if got != tt.expected {
			t.Errorf("Markup(%q) = %q, want %q", tt.text, got, tt.expected)
		}
	}
}

func TestHeader(t *testing.T) {
	h := NewHeader("ctb")
	h.SetSchemaPath("/tmp/schema.yaml")
	h.SetUnsaved(2)
	h.SetWatching(true)
	h.SetLocation("Article", "Add field", "Text")

	text := h.Text()
	for _, want := range []string{"ctb", "/tmp/schema.yaml", "● 2 unsaved", "watching", "Article › Add field › Text"} {
		if !strings.Contains(text, want) {
			t.Errorf("header %q does not contain %q", text, want)
		}
	}

	h.SetUnsaved(0)
	if !strings.Contains(h.Text(), "saved") || strings.Contains(h.Text(), "unsaved") {
		t.Errorf("expected a saved header, got %q", h.Text())
	}
}

func TestShortenLeft(t *testing.T) {
	if got := ShortenLeft("short", 10); got != "short" {
		t.Errorf("ShortenLeft kept %q", got)
	}
	got := ShortenLeft("/very/long/path/schema.yaml", 12)
	if got != "…schema.yaml" {
		t.Errorf("ShortenLeft = %q", got)
	}
}
