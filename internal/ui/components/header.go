package components

import (
	"fmt"
	"strings"
	"sync"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/tview"
)

// widest schema path shown before it is shortened from the left
const maxPathWidth = 60

// Header displays the schema file, unsaved changes and the focused entity
type Header struct {
	*tview.TextView
	mu        sync.RWMutex // Protects all header fields
	title     string
	path      string
	unsaved   int
	watching  bool
	current   string
	trail []string
}

// NewHeader creates a new header component
func NewHeader(title string) *Header {
	h := &Header{
		TextView: tview.NewTextView(),
		title:    title,
	}

	h.TextView.
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)

	h.updateDisplay()
	return h
}

// SetSchemaPath sets the schema file shown in the title line
func (h *Header) SetSchemaPath(path string) {
	h.mu.Lock()
	h.path = path
	h.mu.Unlock()
	h.updateDisplay()
}

// SetUnsaved sets the number of entities that differ from the saved file
func (h *Header) SetUnsaved(n int) {
	h.mu.Lock()
	h.unsaved = n
	h.mu.Unlock()
	h.updateDisplay()
}

// SetWatching tells whether the schema file is watched for changes
func (h *Header) SetWatching(on bool) {
	h.mu.Lock()
	h.watching = on
	h.mu.Unlock()
	h.updateDisplay()
}

// SetLocation sets the focused entity and the open modal path, e.g.
// "Article" and ["Add field", "Relation"].
func (h *Header) SetLocation(current string, trail ...string) {
	h.mu.Lock()
	h.current = current
	h.trail = trail
	h.mu.Unlock()
	h.updateDisplay()
}

// Text returns the header content without color tags
func (h *Header) Text() string {
	return h.GetText(true)
}

func (h *Header) updateDisplay() {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var content strings.Builder
	content.WriteString(fmt.Sprintf("[white::b]%s[white::-]", tview.Escape(h.title)))
	if h.path != "" {
		content.WriteString(" | [cyan]")
		content.WriteString(tview.Escape(ShortenLeft(h.path, maxPathWidth)))
		content.WriteString("[white]")
	}
	if h.unsaved > 0 {
		content.WriteString(fmt.Sprintf(" | [yellow]● %d unsaved[white]", h.unsaved))
	} else {
		content.WriteString(" | [green]saved[white]")
	}
	if h.watching {
		content.WriteString(" | watching")
	}
	content.WriteString("\n")

	if h.current != "" {
		content.WriteString("[yellow]")
		content.WriteString(tview.Escape(h.current))
		content.WriteString("[white]")
		for _, part := range h.trail {
			content.WriteString(" › ")
			content.WriteString(tview.Escape(part))
		}
	}

	h.SetText(content.String())
}

// ShortenLeft keeps the last width cells of s, marking the cut with "…".
func ShortenLeft(s string, width int) string {
	over := runewidth.StringWidth(s) - width
	if over <= 0 {
		return s
	}
	return runewidth.TruncateLeft(s, over+runewidth.RuneWidth('…'), "…")
}
