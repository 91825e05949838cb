// Package relations edits the entries connected through a relation
// attribute: connecting, disconnecting and reordering them, with the
// keyboard announcements of the reorder handle, and builds the connect /
// disconnect payload sent when the entry is saved.
package relations

import (
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/jontk/ctb/internal/errors"
	"github.com/jontk/ctb/internal/logging"
	"github.com/jontk/ctb/internal/schema"
)

// Announcements of the keyboard reorder handle.
const (
	TextDescription = "Press spacebar to grab and re-order"
	TextGrabbed     = "%s. Grabbed. Current position in list: %d. Press up and down arrow to change position, Spacebar to drop, Escape to cancel."
	TextMoved       = "%s. New position in list: %d."
	TextDropped     = "%s. Final position in list: %d."
	TextCancelled   = "%s. Re-order cancelled."
)

// ErrDisabled is returned by every change made to a disabled field.
var ErrDisabled = errors.New(errors.ErrorTypeAborted, "relation field is disabled")

// Item is a connected entry.
type Item struct {
	ID     string `json:"id" yaml:"id"`
	Label  string `json:"label" yaml:"label"`
	Status string `json:"status,omitempty" yaml:"status,omitempty"`
	// Key identifies the row while it is edited; it is never sent.
	Key string `json:"-" yaml:"-"`
}

// Field is the relation input of one entry.
type Field struct {
	Name      string
	Attribute schema.Attribute
	Items     []Item
	Disabled  bool
	Hint      string

	loaded  []Item
	grabbed int
	origin  int
	live    string
	logger  *logging.Logger
}

// Option configures a Field
type Option func(*Field)

// WithHint sets the help text shown under the field
func WithHint(hint string) Option {
	return func(f *Field) { f.Hint = hint }
}

// WithDisabled makes the field read-only
func WithDisabled(disabled bool) Option {
	return func(f *Field) { f.Disabled = disabled }
}

// WithLogger sets the logger
func WithLogger(logger *logging.Logger) Option {
	return func(f *Field) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// NewField creates a field holding the entries loaded from the server.
func NewField(name string, attr schema.Attribute, loaded []Item, opts ...Option) *Field {
	f := &Field{
		Name:      name,
		Attribute: attr.Clone(),
		grabbed:   -1,
		logger:    logging.Nop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.logger = f.logger.Component("relations")
	for _, item := range loaded {
		item.Key = uuid.NewString()
		f.Items = append(f.Items, item)
	}
	f.loaded = slices.Clone(f.Items)
	return f
}

// IsSingle reports whether the relation holds at most one entry.
func (f *Field) IsSingle() bool {
	return schema.IsSingleRelation(f.Attribute.Relation())
}

// Label returns the field label with the connected count, as in "tags (3)".
func (f *Field) Label() string {
	if f.IsSingle() || len(f.Items) == 0 {
		return f.Name
	}
	return fmt.Sprintf("%s (%d)", f.Name, len(f.Items))
}

// Description returns the instructions of the reorder handle.
func (f *Field) Description() string { return TextDescription }

// LiveText returns the last announcement.
func (f *Field) LiveText() string { return f.live }

// Grabbed returns the index of the grabbed row or -1.
func (f *Field) Grabbed() int { return f.grabbed }

// Connect adds item. A single relation replaces its entry; an entry that is
// already connected is left where it is.
func (f *Field) Connect(item Item) error {
	if f.Disabled {
		return ErrDisabled
	}
	if item.ID == "" {
		return errors.Invalid("id", "relation entry without id")
	}
	if f.index(item.ID) >= 0 {
		return nil
	}
	item.Key = uuid.NewString()
	if f.IsSingle() {
		f.Items = []Item{item}
	} else {
		f.Items = append(f.Items, item)
	}
	f.release()
	f.logger.Debug().Str("field", f.Name).Str("id", item.ID).Msg("relation connected")
	return nil
}

// Disconnect removes the entry with the given id.
func (f *Field) Disconnect(id string) error {
	if f.Disabled {
		return ErrDisabled
	}
	i := f.index(id)
	if i < 0 {
		return errors.NotFoundf("%s is not connected to %s", id, f.Name)
	}
	f.Items = slices.Delete(f.Items, i, i+1)
	f.release()
	f.logger.Debug().Str("field", f.Name).Str("id", id).Msg("relation disconnected")
	return nil
}

// Move puts the entry at index from at index to.
func (f *Field) Move(from, to int) error {
	if f.Disabled {
		return ErrDisabled
	}
	if !f.valid(from) || !f.valid(to) {
		return errors.Invalidf("cannot move %d to %d in a list of %d", from, to, len(f.Items))
	}
	f.move(from, to)
	f.release()
	return nil
}

func (f *Field) move(from, to int) {
	if from == to {
		return
	}
	item := f.Items[from]
	f.Items = slices.Delete(f.Items, from, from+1)
	f.Items = slices.Insert(f.Items, to, item)
}

// Grab picks up the row at index for keyboard reordering.
func (f *Field) Grab(index int) (string, error) {
	if f.Disabled {
		return "", ErrDisabled
	}
	if !f.valid(index) {
		return "", errors.Invalidf("no row %d in %s", index, f.Name)
	}
	f.grabbed, f.origin = index, index
	return f.announce(TextGrabbed), nil
}

// MoveUp moves the grabbed row one place up. Without a grabbed row, or at
// the top of the list, nothing moves.
func (f *Field) MoveUp() string {
	return f.step(-1)
}

// MoveDown moves the grabbed row one place down.
func (f *Field) MoveDown() string {
	return f.step(1)
}

func (f *Field) step(delta int) string {
	if f.grabbed < 0 {
		return f.live
	}
	to := f.grabbed + delta
	if f.valid(to) {
		f.move(f.grabbed, to)
		f.grabbed = to
	}
	return f.announce(TextMoved)
}

// Drop releases the grabbed row at its current position.
func (f *Field) Drop() string {
	if f.grabbed < 0 {
		return f.live
	}
	text := f.announce(TextDropped)
	f.grabbed = -1
	return text
}

// Cancel puts the grabbed row back where it was grabbed.
func (f *Field) Cancel() string {
	if f.grabbed < 0 {
		return f.live
	}
	f.move(f.grabbed, f.origin)
	f.grabbed = f.origin
	text := f.announce(TextCancelled)
	f.grabbed = -1
	return text
}

func (f *Field) announce(format string) string {
	item := f.Items[f.grabbed]
	if format == TextCancelled {
		f.live = fmt.Sprintf(format, item.Label)
	} else {
		f.live = fmt.Sprintf(format, item.Label, f.grabbed+1)
	}
	return f.live
}

// release drops a grab invalidated by a change of the list.
func (f *Field) release() {
	f.grabbed = -1
}

func (f *Field) index(id string) int {
	return slices.IndexFunc(f.Items, func(it Item) bool { return it.ID == id })
}

func (f *Field) valid(i int) bool {
	return i >= 0 && i < len(f.Items)
}

// IDs returns the connected ids in list order.
func (f *Field) IDs() []string {
	ids := make([]string, len(f.Items))
	for i, it := range f.Items {
		ids[i] = it.ID
	}
	return ids
}

// HasChanges reports whether the list differs from what was loaded.
func (f *Field) HasChanges() bool {
	p := f.Payload()
	return len(p.Connect) > 0 || len(p.Disconnect) > 0
}

// Reset restores the loaded entries.
func (f *Field) Reset() {
	f.Items = slices.Clone(f.loaded)
	f.grabbed = -1
	f.live = ""
}
