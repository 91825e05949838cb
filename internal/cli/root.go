package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jontk/ctb/internal/app"
	"github.com/jontk/ctb/internal/config"
	"github.com/jontk/ctb/internal/logging"
	"github.com/jontk/ctb/internal/preferences"
)

const (
	appName = "ctb - Content-Type Builder"
)

var (
	cfgFile     string
	schemaFile  string
	debugMode   bool
	showVersion bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ctb",
	Short: "Terminal builder for content types and components",
	Long: `ctb edits the content model of a headless CMS: collection and single
types, reusable components and their attributes.

The model lives in a YAML schema file. Every change goes through the same
validation as the interactive builder, so the file always stays consistent.

Features:
• Interactive terminal builder with forms for every attribute type
• Two-way relations kept in sync on both sides
• Components and dynamic zones, created inline or reused
• Confirmation before edits that break conditional fields
• Scriptable commands for CI and automation`,

	Example: `  ctb                                   # Launch the interactive builder
  ctb init                              # Run the configuration wizard
  ctb content-type create Article       # Create a collection type
  ctb attribute add api::article.article string title --set required=true
  ctb validate                          # Check the schema file`,

	SilenceUsage: true,
	RunE:         runRoot,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.ctb/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&schemaFile, "schema", "", "schema file (overrides schemaFile from the config)")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "enable debug logging")

	// Local flags
	rootCmd.Flags().BoolVarP(&showVersion, "version", "v", false, "show version information")
}

// runRoot executes the interactive builder
func runRoot(cmd *cobra.Command, args []string) error {
	if showVersion {
		return runVersion(cmd, args)
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) || !term.IsTerminal(int(os.Stdin.Fd())) {
		return fmt.Errorf("the interactive builder needs a terminal; use the subcommands (see %s --help) in scripts",
			cmd.Root().CommandPath())
	}

	// Create root context with cancellation
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	// The terminal belongs to the UI, so nothing may log to the console.
	s, err := openSession(ctx, cmd, sessionOptions{noConsole: true})
	if err != nil {
		return err
	}

	prefs, err := preferences.NewUserPreferences(filepath.Join(config.Dir(), preferences.FileName))
	if err != nil {
		logging.Warnf("Ignoring saved UI state: %v", err)
	}

	tui, err := app.New(ctx, app.Options{
		Config:       s.cfg,
		Store:        s.store,
		Registry:     s.registry,
		CustomFields: s.fields,
		Notifier:     s.notifier,
		Logger:       logging.GetLogger(),
		Preferences:  prefs,
	})
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- tui.Run()
	}()

	select {
	case sig := <-sigChan:
		logging.Infof("Received signal: %v. Shutting down...", sig)
		tui.Stop()
		<-errChan
	case err := <-errChan:
		tui.Stop()
		if err != nil {
			return fmt.Errorf("application error: %w", err)
		}
	}

	logging.Info("ctb shutdown complete")
	return nil
}
