package schema

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jontk/ctb/internal/logging"
)

const reloadDelay = 150 * time.Millisecond

// Watcher reloads a registry when its schema file changes on disk.
// Reloads are skipped while the registry holds unsaved changes.
type Watcher struct {
	store    *FileStore
	registry *Registry
	watcher  *fsnotify.Watcher
	logger   *logging.Logger

	// OnReload is called after each reload attempt; err is nil on success.
	OnReload func(err error)

	mu     sync.Mutex
	timer  *time.Timer
	cancel context.CancelFunc
	done   chan struct{}
}

// NewWatcher creates a watcher for store's file. Call Start to begin.
func NewWatcher(store *FileStore, registry *Registry, logger *logging.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Watcher{
		store:    store,
		registry: registry,
		watcher:  fw,
		logger:   logger.Component("watcher"),
		done:     make(chan struct{}),
	}, nil
}

// Start watches the directory holding the schema file. Saves replace the
// file through a rename, so the directory is watched rather than the file.
func (w *Watcher) Start(ctx context.Context) error {
	dir := filepath.Dir(w.store.Path())
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	go w.run(ctx)
	return nil
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.done)
	target := filepath.Clean(w.store.Path())

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			w.schedule(ctx)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn().Err(err).Msg("schema watcher error")

		case <-ctx.Done():
			return
		}
	}
}

// schedule coalesces bursts of events from a single save into one reload.
func (w *Watcher) schedule(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(reloadDelay, func() {
		if ctx.Err() != nil {
			return
		}
		w.reload(ctx)
	})
}

func (w *Watcher) reload(ctx context.Context) {
	var err error
	if w.registry.HasPendingChanges() {
		w.logger.Warn().Str("path", w.store.Path()).Msg("schema file changed on disk; keeping unsaved changes")
		err = fmt.Errorf("schema file changed on disk while there are unsaved changes")
	} else {
		err = LoadInto(ctx, w.store, w.registry)
		if err != nil {
			w.logger.Error().Err(err).Msg("failed to reload schema file")
		} else {
			w.logger.Info().Str("path", w.store.Path()).Msg("schema reloaded")
		}
	}
	if w.OnReload != nil {
		w.OnReload(err)
	}
}

// Close stops the watcher
func (w *Watcher) Close() error {
	if w.cancel != nil {
		w.cancel()
	}
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	err := w.watcher.Close()
	if w.cancel != nil {
		<-w.done
	}
	return err
}
