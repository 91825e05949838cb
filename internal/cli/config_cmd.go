package cli

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/spf13/cobra"

	"github.com/jontk/ctb/internal/config"
	"github.com/jontk/ctb/internal/fileperms"
	"github.com/jontk/ctb/internal/security"
)

// configCmd represents the config command group
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management commands",
	Long: `Manage the ctb configuration file.

Configuration is read from, in order of precedence:
1. Command-line flags (--config, --schema, --debug)
2. Environment variables (CTB_LOG_LEVEL, CTB_SCHEMAFILE, ...)
3. ~/.ctb/config.yaml or ~/.config/ctb/config.yaml
4. Built-in defaults`,
}

// configShowCmd represents the config show command
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

// configValidateCmd represents the config validate command
var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file",
	Long: `Validate the ctb configuration.

This command checks:
• The schema file location and permissions
• Reserved names
• Log level and log file directory
• Notification settings

With --fix, problems that have a safe default are corrected and written
back to the configuration file.`,
	Args: cobra.NoArgs,
	RunE: runConfigValidate,
}

// configPathCmd represents the config path command
var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file in use",
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
}

// configEditCmd represents the config edit command
var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit the configuration file",
	Long: `Open the ctb configuration file in $EDITOR.

If no configuration file exists, one is created from the default template.`,
	Args: cobra.NoArgs,
	RunE: runConfigEdit,
}

var (
	validateFix     bool
	validateVerbose bool
)

func init() {
	configValidateCmd.Flags().BoolVar(&validateFix, "fix", false, "apply automatic fixes and save the result")
	configValidateCmd.Flags().BoolVarP(&validateVerbose, "verbose", "V", false, "show impacts and fixed values")

	configCmd.AddCommand(configShowCmd, configValidateCmd, configPathCmd, configEditCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	source := cfg.Source()
	if source == "" {
		source = "(defaults and environment)"
	}
	fmt.Fprintf(out, "Config file: %s\n", source)
	fmt.Fprintf(out, "Schema file: %s\n\n", cfg.ResolveSchemaFile())

	values := cfg.Values()
	t := newTable("KEY", "VALUE", "SOURCE")
	for _, field := range config.Fields() {
		origin := "default"
		if !cmp.Equal(values[field.Key], field.Default, cmpopts.EquateEmpty()) {
			origin = "set"
		}
		t.add(field.Key, formatValue(values[field.Key]), origin)
	}
	t.render(out)
	return nil
}

func formatValue(v interface{}) string {
	switch v := v.(type) {
	case []string:
		if len(v) == 0 {
			return "[]"
		}
		return fmt.Sprintf("%v", v)
	case string:
		if v == "" {
			return `""`
		}
		return v
	}
	return fmt.Sprintf("%v", v)
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	result := config.ValidateAndFix(cfg, validateFix)
	config.PrintValidationResult(cmd.OutOrStdout(), result, validateVerbose)

	if validateFix && len(result.Fixes) > 0 {
		path := cfg.Source()
		if path == "" {
			path = config.DefaultPath()
		}
		if err := cfg.SaveToFile(path); err != nil {
			return fmt.Errorf("failed to save fixed configuration: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\n💾 Saved %s\n", path)
	}

	if !result.Valid {
		return fmt.Errorf("configuration validation failed with %d error(s)", len(result.Errors))
	}
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	path := cfg.Source()
	if path == "" {
		path = config.DefaultPath()
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

func runConfigEdit(cmd *cobra.Command, args []string) error {
	path := cfgFile
	if path == "" {
		path = config.DefaultPath()
	}

	if err := security.EnsureDir(filepath.Dir(path), fileperms.ConfigDir); err != nil {
		return err
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		tm := config.NewTemplateManager()
		if err := tm.SaveTemplateAsConfig("default", nil, path); err != nil {
			return fmt.Errorf("failed to create default config: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created default configuration at: %s\n", path)
	}

	editor, editorArgs := security.SplitEditor(os.Getenv("EDITOR"))
	if editor == "" {
		editor = defaultEditor()
	}
	resolved, err := security.ValidateAndResolveCommand(editor, "editor")
	if err != nil {
		return fmt.Errorf("invalid editor command %q: %w", editor, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Opening %s in %s...\n", path, filepath.Base(resolved))

	// nolint:gosec // G204: editor path is validated via security.ValidateAndResolveCommand
	execCmd := exec.CommandContext(cmd.Context(), resolved, append(editorArgs, path)...)
	execCmd.Stdin = os.Stdin
	execCmd.Stdout = os.Stdout
	execCmd.Stderr = os.Stderr
	if err := execCmd.Run(); err != nil {
		return err
	}

	// report problems right away rather than on the next start
	if _, err := config.LoadWithPath(path); err != nil {
		return fmt.Errorf("edited configuration does not load: %w", err)
	}
	return nil
}

func defaultEditor() string {
	for _, editor := range []string{"vim", "nano", "emacs", "vi"} {
		if _, err := exec.LookPath(editor); err == nil {
			return editor
		}
	}
	return "vi"
}
