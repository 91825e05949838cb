// Package builder drives the schema modal: it routes navigation events,
// seeds and edits the draft, validates it, asks for confirmation when an
// edit breaks other fields and finally commits it to the registry.
package builder

import (
	"strings"
	"sync"
	"sync/atomic"

	"github.com/jontk/ctb/internal/errors"
	"github.com/jontk/ctb/internal/formmodal"
	"github.com/jontk/ctb/internal/guard"
	"github.com/jontk/ctb/internal/logging"
	"github.com/jontk/ctb/internal/navigation"
	"github.com/jontk/ctb/internal/notifications"
	"github.com/jontk/ctb/internal/plugin"
	"github.com/jontk/ctb/internal/schema"
	"github.com/jontk/ctb/internal/validation"
)

var (
	// ErrSubmitInProgress is returned by Submit while another submission
	// is validating.
	ErrSubmitInProgress = errors.New(errors.ErrorTypeBusy, "a submission is already in progress")

	// ErrUnsavedChanges is returned by Close when the draft differs from
	// what was loaded.
	ErrUnsavedChanges = errors.New(errors.ErrorTypeUnsaved, "are you sure? your changes will be lost")
)

// Status is the result kind of a submission
type Status int

const (
	// StatusNoop means nothing happened
	StatusNoop Status = iota
	// StatusCommitted means the registry was changed
	StatusCommitted
	// StatusInvalid means validation failed; Outcome.Errors holds the field errors
	StatusInvalid
	// StatusNeedsConfirmation means the edit breaks other fields; see Outcome.Breakage
	StatusNeedsConfirmation
	// StatusRejected means the change cannot be applied
	StatusRejected
	// StatusAdvanced means the wizard moved to its next step without committing
	StatusAdvanced
)

var statusNames = map[Status]string{
	StatusNoop:              "noop",
	StatusCommitted:         "committed",
	StatusInvalid:           "invalid",
	StatusNeedsConfirmation: "needs_confirmation",
	StatusRejected:          "rejected",
	StatusAdvanced:          "advanced",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unknown"
}

// Outcome describes what a submission did
type Outcome struct {
	Status   Status
	Errors   formmodal.FormErrors
	Breakage *guard.Breakage
	// RedirectUID is the entity to show after a create.
	RedirectUID string
}

type pendingSubmit struct {
	shouldContinue bool
	revision       uint64
}

// Builder owns one modal session over a shared registry
type Builder struct {
	mu       sync.Mutex
	registry *schema.Registry
	nav      *navigation.Navigator
	form     formmodal.State
	seedKey  navigation.SeedKey
	revision uint64
	pending  *pendingSubmit

	submitting atomic.Bool

	reserved validation.ReservedNames
	notifier notifications.Notifier
	fields   *plugin.Registry
	logger   *logging.Logger

	// called between snapshot and validation; tests use it to interleave
	beforeValidate func()
}

// Option configures a Builder
type Option func(*Builder)

// WithReservedNames sets the names refused for models and attributes
func WithReservedNames(r validation.ReservedNames) Option {
	return func(b *Builder) { b.reserved = r }
}

// WithNotifier sets where notifications go
func WithNotifier(n notifications.Notifier) Option {
	return func(b *Builder) {
		if n != nil {
			b.notifier = n
		}
	}
}

// WithCustomFields sets the custom field registry
func WithCustomFields(fields *plugin.Registry) Option {
	return func(b *Builder) {
		if fields != nil {
			b.fields = fields
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *logging.Logger) Option {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// New creates a builder with a closed modal
func New(registry *schema.Registry, opts ...Option) *Builder {
	b := &Builder{
		registry: registry,
		form:     formmodal.InitialState(),
		reserved: validation.DefaultReservedNames(),
		notifier: notifications.NopNotifier{},
		fields:   plugin.NewRegistryWithBuiltins(),
		logger:   logging.Nop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = b.logger.Component("builder")
	b.nav = navigation.NewNavigator(b.logger)
	return b
}

// Registry returns the registry the builder commits to
func (b *Builder) Registry() *schema.Registry {
	return b.registry
}

// CustomFields returns the custom field registry
func (b *Builder) CustomFields() *plugin.Registry {
	return b.fields
}

// State returns a copy of the draft
func (b *Builder) State() formmodal.State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.form.Clone()
}

// Nav returns the wizard state
func (b *Builder) Nav() navigation.State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.nav.State()
}

// Pending returns the registry changes not yet saved
func (b *Builder) Pending() schema.PendingChanges {
	return b.registry.Pending()
}

// AwaitingConfirmation reports whether a submission waits for Confirm or CancelConfirm
func (b *Builder) AwaitingConfirmation() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pending != nil
}

// Form returns the inputs of the open modal
func (b *Builder) Form() (base, advanced []formmodal.Input) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return formmodal.Form(b.nav.State(), b.form)
}

// Navigate applies a navigation event. The draft is reseeded when the
// event changes what the modal edits; step and tab changes keep it.
// Events that do not apply are logged and leave everything unchanged.
func (b *Builder) Navigate(ev navigation.Event) (navigation.State, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.navigate(ev)
}

func (b *Builder) navigate(ev navigation.Event) (navigation.State, error) {
	next, err := b.nav.Dispatch(ev)
	if err != nil {
		return next, err
	}
	b.revision++
	if key := next.SeedKey(); key != b.seedKey {
		b.pending = nil
		b.seedKey = key
		b.form = b.seed(next)
	}
	return next, nil
}

// HandleChange sets the input called name (a dotted path) to value.
func (b *Builder) HandleChange(name string, value any) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.revision++
	b.pending = nil
	nav := b.nav.State()

	var action formmodal.Action = formmodal.OnChange{Keys: strings.Split(name, "."), Value: value}
	if nav.ModalType == navigation.ModalAttribute && nav.AttributeType == schema.TypeRelation {
		switch name {
		case "target":
			target, _ := value.(string)
			action = formmodal.OnChangeRelationTarget{
				Target:            target,
				TargetDisplayName: b.displayName(schema.ModelContentType, target),
				OwnerDisplayName:  b.displayName(nav.ForTarget, nav.TargetUID),
				IsEditing:         nav.IsEditing(),
			}
		case "relation":
			kind, _ := value.(string)
			action = formmodal.OnChangeRelationType{
				RelationType:     kind,
				OwnerDisplayName: b.displayName(nav.ForTarget, nav.TargetUID),
			}
		}
	}
	b.form = formmodal.Reduce(b.form, action)
	b.logger.Debug().Str("action", formmodal.Name(action)).Str("field", name).Msg("draft changed")
}

// Close closes the modal. Unless force is set, a draft with changes is
// kept open and ErrUnsavedChanges is returned.
func (b *Builder) Close(force bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !force && b.nav.State().IsOpen && formmodal.HasChanges(b.form) {
		return ErrUnsavedChanges
	}
	b.closeModal()
	return nil
}

func (b *Builder) closeModal() {
	_, _ = b.navigate(navigation.Close{})
	b.nav.Reset()
	b.pending = nil
	b.form = formmodal.InitialState()
	b.seedKey = navigation.SeedKey{}
}

func (b *Builder) displayName(forTarget schema.ModelType, uid string) string {
	e, err := b.registry.Get(forTarget, uid)
	if err != nil {
		return ""
	}
	return e.DisplayName()
}

func (b *Builder) notify(level notifications.Level, title, message string) {
	b.notifier.Notify(notifications.New(level, "builder", title, message))
}
