package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jontk/ctb/internal/builder"
	"github.com/jontk/ctb/internal/config"
	"github.com/jontk/ctb/internal/logging"
	"github.com/jontk/ctb/internal/notifications"
	"github.com/jontk/ctb/internal/plugin"
	"github.com/jontk/ctb/internal/schema"
)

type sessionOptions struct {
	// noConsole keeps log output off the terminal
	noConsole bool
}

// session is everything a command needs to read and change the schema
type session struct {
	cfg      *config.Config
	store    *schema.FileStore
	registry *schema.Registry
	fields   *plugin.Registry
	notifier *notifications.Manager
	logger   *logging.Logger
}

// loadConfig reads the configuration named by --config and applies --schema
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadWithPath(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if schemaFile != "" {
		// relative to the working directory, not the config file
		abs, err := filepath.Abs(schemaFile)
		if err != nil {
			return nil, err
		}
		cfg.SchemaFile = abs
	}
	if debugMode {
		cfg.Log.Level = "debug"
	}
	return cfg, nil
}

// openSession loads the configuration and the schema file
func openSession(ctx context.Context, cmd *cobra.Command, opts sessionOptions) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	lc := cfg.Logging()
	if opts.noConsole {
		lc.Console = false
		if !lc.File {
			lc.Output = io.Discard
		}
	}
	logging.Init(lc)
	logger := logging.GetLogger()

	s := &session{
		cfg:      cfg,
		store:    schema.NewFileStore(cfg.ResolveSchemaFile()),
		fields:   plugin.NewRegistryWithBuiltins(),
		notifier: notifications.NewManager(cfg.Notifier(), logger),
		logger:   logger,
	}
	s.registry = schema.NewRegistry(schema.WithLogger(logger))
	s.notifier.AddChannel(notifications.NewLogChannel(logger.Component("notifications")))

	if !opts.noConsole {
		errOut := cmd.ErrOrStderr()
		s.notifier.AddChannel(notifications.NewFuncChannel("cli", func(n *notifications.Notification) {
			if n.Level >= notifications.LevelWarning {
				fmt.Fprintf(errOut, "%s %s: %s\n", levelIcon(n.Level), n.Title, n.Message)
			}
		}))
	}

	if err := schema.LoadInto(ctx, s.store, s.registry); err != nil {
		return nil, fmt.Errorf("failed to load schema %s: %w", s.store.Path(), err)
	}
	logger.Debug().Str("schema", s.store.Path()).Msg("schema loaded")
	return s, nil
}

// builder returns a builder over the session registry
func (s *session) builder() *builder.Builder {
	return builder.New(s.registry,
		builder.WithReservedNames(s.cfg.ReservedNames),
		builder.WithNotifier(s.notifier),
		builder.WithCustomFields(s.fields),
		builder.WithLogger(s.logger),
	)
}

// save writes the registry back when something changed
func (s *session) save(ctx context.Context) error {
	if !s.registry.HasPendingChanges() {
		return nil
	}
	pending := s.registry.Pending()
	if err := schema.SaveFrom(ctx, s.store, s.registry); err != nil {
		return fmt.Errorf("failed to save schema: %w", err)
	}
	s.logger.Info().
		Strs("added", pending.Added).
		Strs("changed", pending.Changed).
		Strs("deleted", pending.Deleted).
		Str("schema", s.store.Path()).
		Msg("schema saved")
	return nil
}

func levelIcon(level notifications.Level) string {
	switch level {
	case notifications.LevelDanger:
		return "❌"
	case notifications.LevelWarning:
		return "⚠️ "
	case notifications.LevelSuccess:
		return "✅"
	}
	return "ℹ️ "
}
