// Package app is the interactive content-type builder: an entity list, the
// attributes of the selected entity and the builder modals on top.
package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/jontk/ctb/internal/builder"
	"github.com/jontk/ctb/internal/config"
	"github.com/jontk/ctb/internal/errors"
	"github.com/jontk/ctb/internal/events"
	"github.com/jontk/ctb/internal/logging"
	"github.com/jontk/ctb/internal/notifications"
	"github.com/jontk/ctb/internal/plugin"
	"github.com/jontk/ctb/internal/preferences"
	"github.com/jontk/ctb/internal/schema"
	"github.com/jontk/ctb/internal/ui/components"
)

const (
	pageMain    = "main"
	pageBuilder = "builder"
	pageConfirm = "confirm"
	pageHelp    = "help"
	pagePending = "pending"
)

// Options wires the application to a loaded schema.
type Options struct {
	Config       *config.Config
	Store        *schema.FileStore
	Registry     *schema.Registry
	CustomFields *plugin.Registry
	Notifier     *notifications.Manager
	Logger       *logging.Logger
	// Preferences, when set, restores the last selection and command history
	Preferences *preferences.UserPreferences
}

// App represents the main application
type App struct {
	ctx    context.Context
	cancel context.CancelFunc
	config *config.Config
	logger *logging.Logger

	store    *schema.FileStore
	registry *schema.Registry
	fields   *plugin.Registry
	notifier *notifications.Manager
	prefs    *preferences.UserPreferences
	builder  *builder.Builder
	watcher  *schema.Watcher
	changes  chan events.SchemaEvent

	// UI components
	app        *tview.Application
	pages      *tview.Pages
	header     *components.Header
	statusBar  *components.StatusBar
	entities   *tview.Table
	attributes *tview.Table
	mainLayout *tview.Flex

	// Command line
	cmdLine    *tview.InputField
	cmdVisible bool
	historyPos int

	// rows of the entity table, nil for section headers
	entityRows []*entityRef
	selected   *entityRef
	// form input focused before the modal was last rebuilt
	focusLabel string
	// invalid visibility condition typed in the open form
	conditionErr string

	mu        sync.Mutex
	isRunning bool
	stopOnce  sync.Once
}

// entityRef identifies a row of the entity table
type entityRef struct {
	ForTarget schema.ModelType
	UID       string
}

// New creates a new application instance
func New(ctx context.Context, opts Options) (*App, error) {
	return NewWithScreen(ctx, opts, nil)
}

// NewWithScreen creates a new application instance with an optional screen for testing
func NewWithScreen(ctx context.Context, opts Options, screen tcell.Screen) (*App, error) {
	if opts.Config == nil {
		return nil, errors.Config("config is required")
	}
	if opts.Store == nil || opts.Registry == nil {
		return nil, errors.Config("a schema store and registry are required")
	}
	if opts.CustomFields == nil {
		opts.CustomFields = plugin.NewRegistryWithBuiltins()
	}
	if opts.Logger == nil {
		opts.Logger = logging.GetLogger()
	}
	if opts.Notifier == nil {
		opts.Notifier = notifications.NewManager(opts.Config.Notifier(), opts.Logger)
	}

	appCtx, cancel := context.WithCancel(ctx)

	tv := tview.NewApplication()
	if screen != nil {
		tv.SetScreen(screen)
	}
	tv.EnableMouse(opts.Config.UI.EnableMouse)

	a := &App{
		ctx:      appCtx,
		cancel:   cancel,
		config:   opts.Config,
		logger:   opts.Logger.Component("app"),
		store:    opts.Store,
		registry: opts.Registry,
		fields:   opts.CustomFields,
		notifier: opts.Notifier,
		prefs:    opts.Preferences,
		app:      tv,
		pages:    tview.NewPages(),
		changes:  make(chan events.SchemaEvent, 64),
	}
	a.builder = builder.New(a.registry,
		builder.WithReservedNames(a.config.ReservedNames),
		builder.WithNotifier(a.notifier),
		builder.WithCustomFields(a.fields),
		builder.WithLogger(opts.Logger),
	)

	a.initUI()
	a.setupKeyboardShortcuts()

	a.notifier.AddChannel(notifications.NewFuncChannel("statusbar", a.showNotification))
	a.registry.Bus().Subscribe(events.AllTopics, a.changes)
	go a.forwardChanges()

	if a.config.Watch.Enabled {
		if err := a.startWatcher(); err != nil {
			// editing works without it
			a.logger.Warn().Err(err).Msg("Failed to watch the schema file")
		}
	}

	a.restoreSelection()
	a.refresh()
	return a, nil
}

// Run starts the application
func (a *App) Run() error {
	a.mu.Lock()
	a.isRunning = true
	a.mu.Unlock()

	a.app.SetRoot(a.pages, true)
	a.app.SetFocus(a.entities)

	// Run will block until Stop is called
	return a.app.Run()
}

// Stop gracefully stops the application
func (a *App) Stop() {
	a.stopOnce.Do(func() {
		a.mu.Lock()
		a.isRunning = false
		a.mu.Unlock()

		if a.watcher != nil {
			_ = a.watcher.Close()
		}
		a.registry.Bus().Unsubscribe(events.AllTopics, a.changes)
		a.notifier.RemoveChannel("statusbar")
		if a.prefs != nil {
			if err := a.prefs.Save(); err != nil {
				a.logger.Warn().Err(err).Str("path", a.prefs.Path()).Msg("Failed to save preferences")
			}
		}
		a.app.Stop()
		a.cancel()
	})
}

// running reports whether the event loop owns the widgets
func (a *App) running() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.isRunning
}

// update runs fn on the event loop and redraws; before Run it calls fn directly.
func (a *App) update(fn func()) {
	if !a.running() {
		fn()
		return
	}
	a.app.QueueUpdateDraw(fn)
}

// forwardChanges refreshes the views after every committed registry change.
// Before Run the callers refresh synchronously.
func (a *App) forwardChanges() {
	for {
		select {
		case <-a.ctx.Done():
			return
		case ev := <-a.changes:
			a.logger.Debug().Str("kind", string(ev.Kind)).Str("uid", ev.UID).Msg("schema changed")
			if a.running() {
				a.app.QueueUpdateDraw(a.refresh)
			}
		}
	}
}

func (a *App) startWatcher() error {
	w, err := schema.NewWatcher(a.store, a.registry, a.logger)
	if err != nil {
		return err
	}
	w.OnReload = func(err error) {
		a.update(func() {
			if err != nil {
				a.statusBar.Error(fmt.Sprintf("Reload of %s failed: %v", a.store.Path(), err))
				return
			}
			a.statusBar.Info("Schema reloaded from disk")
		})
	}
	if err := w.Start(a.ctx); err != nil {
		_ = w.Close()
		return err
	}
	a.watcher = w
	a.header.SetWatching(true)
	return nil
}

// showNotification mirrors builder notifications in the status bar
func (a *App) showNotification(n *notifications.Notification) {
	text := n.Title
	if n.Message != "" {
		text += ": " + n.Message
	}
	switch n.Level {
	case notifications.LevelDanger:
		a.statusBar.Error(text)
	case notifications.LevelWarning:
		a.statusBar.Warning(text)
	case notifications.LevelSuccess:
		a.statusBar.Success(text)
	default:
		a.statusBar.Info(text)
	}
}

// ShowModal displays a modal dialog over the main interface
func (a *App) ShowModal(name string, modal tview.Primitive) {
	a.pages.AddPage(name, modal, true, true)
	a.app.SetFocus(modal)
}

// HideModal removes a modal dialog
func (a *App) HideModal(name string) {
	if !a.pages.HasPage(name) {
		return
	}
	a.pages.RemovePage(name)
	if front, p := a.pages.GetFrontPage(); front != pageMain && p != nil {
		a.app.SetFocus(p)
		return
	}
	a.app.SetFocus(a.entities)
}

// IsModalOpen checks if a modal dialog is open
func (a *App) IsModalOpen() bool {
	return a.pages.GetPageCount() > 1
}

// GetModalName returns the name of the currently open modal, if any
func (a *App) GetModalName() string {
	name, _ := a.pages.GetFrontPage()
	if name == pageMain {
		return ""
	}
	return name
}

// GetBuilder returns the builder behind the modals (for testing)
func (a *App) GetBuilder() *builder.Builder {
	return a.builder
}

// IsCmdVisible returns whether the command line is visible
func (a *App) IsCmdVisible() bool {
	return a.cmdVisible
}
