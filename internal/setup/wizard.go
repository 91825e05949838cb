// Package setup implements the first-run wizard behind `ctb init`.
package setup

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/jontk/ctb/internal/config"
	"github.com/jontk/ctb/internal/logging"
	"github.com/jontk/ctb/internal/schema"
)

// Options controls a wizard run
type Options struct {
	// ConfigPath is where the configuration is written; defaults to config.DefaultPath().
	ConfigPath string
	// Template seeds the answers; defaults to "default".
	Template string
	// Force overwrites an existing configuration without asking.
	Force bool
	// NonInteractive writes the template as is.
	NonInteractive bool

	In  io.Reader
	Out io.Writer
}

// Wizard guides users through initial ctb configuration
type Wizard struct {
	scanner   *bufio.Scanner
	out       io.Writer
	opts      Options
	config    *config.Config
	templates *config.TemplateManager
}

// WizardStep represents a step in the setup process
type WizardStep struct {
	Name        string
	Description string
	Handler     func(*Wizard) error
	Required    bool
}

// Result reports what a run wrote
type Result struct {
	ConfigPath    string
	SchemaFile    string
	SchemaCreated bool
	Cancelled     bool
}

// NewWizard creates a new setup wizard
func NewWizard(opts Options) *Wizard {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.ConfigPath == "" {
		opts.ConfigPath = config.DefaultPath()
	}
	if opts.Template == "" {
		opts.Template = "default"
	}
	// A piped stdin cannot answer questions.
	if f, ok := opts.In.(*os.File); ok && !term.IsTerminal(int(f.Fd())) {
		opts.NonInteractive = true
	}
	return &Wizard{
		scanner:   bufio.NewScanner(opts.In),
		out:       opts.Out,
		opts:      opts,
		templates: config.NewTemplateManager(),
	}
}

// Run executes the complete setup wizard
func (w *Wizard) Run(ctx context.Context) (*Result, error) {
	result := &Result{ConfigPath: w.opts.ConfigPath}

	if w.configExists() && !w.opts.Force {
		if w.opts.NonInteractive || !w.confirmOverwrite() {
			fmt.Fprintf(w.out, "Setup cancelled. %s already exists, use --force to replace it.\n", w.opts.ConfigPath)
			result.Cancelled = true
			return result, nil
		}
	}

	if w.opts.NonInteractive {
		if err := w.templates.SaveTemplateAsConfig(w.opts.Template, nil, w.opts.ConfigPath); err != nil {
			return nil, err
		}
		logging.Infof("Wrote %s from template %s", w.opts.ConfigPath, w.opts.Template)
	} else {
		if err := w.seed(); err != nil {
			return nil, err
		}
		w.printWelcome()
		if err := w.runSteps(); err != nil {
			return nil, err
		}
		if err := w.config.SaveToFile(w.opts.ConfigPath); err != nil {
			return nil, fmt.Errorf("failed to save configuration: %w", err)
		}
	}
	fmt.Fprintf(w.out, "\n   💾 Configuration saved to: %s\n", w.opts.ConfigPath)

	// Reload so the schema path resolves against the written file.
	cfg, err := config.LoadWithPath(w.opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	result.SchemaFile = cfg.SchemaFile

	created, err := w.ensureSchema(ctx, cfg.SchemaFile)
	if err != nil {
		return nil, err
	}
	result.SchemaCreated = created
	if created {
		fmt.Fprintf(w.out, "   📄 Empty schema created at: %s\n", cfg.SchemaFile)
	}

	w.printCompletion()
	return result, nil
}

// seed starts the answers from the selected template
func (w *Wizard) seed() error {
	text, err := w.templates.GenerateConfig(w.opts.Template, nil)
	if err != nil {
		return err
	}
	cfg := config.DefaultConfig()
	if err := yaml.Unmarshal([]byte(text), cfg); err != nil {
		return fmt.Errorf("template %s is not valid YAML: %w", w.opts.Template, err)
	}
	w.config = cfg
	return nil
}

func (w *Wizard) runSteps() error {
	steps := []WizardStep{
		{
			Name:        "Schema",
			Description: "Where content types and components are stored",
			Handler:     (*Wizard).setupSchema,
			Required:    true,
		},
		{
			Name:        "Reserved Names",
			Description: "Attribute names the builder must refuse",
			Handler:     (*Wizard).setupReservedNames,
			Required:    false,
		},
		{
			Name:        "Logging",
			Description: "Log level and file",
			Handler:     (*Wizard).setupLogging,
			Required:    false,
		},
		{
			Name:        "Interface",
			Description: "Mouse, confirmations and file watching",
			Handler:     (*Wizard).setupInterface,
			Required:    false,
		},
	}

	for i, step := range steps {
		fmt.Fprintf(w.out, "\n%s Step %d: %s %s\n",
			w.getStepIcon(i+1), i+1, step.Name,
			w.getRequiredIndicator(step.Required))
		fmt.Fprintf(w.out, "   %s\n\n", step.Description)

		if !step.Required {
			if !w.confirm(fmt.Sprintf("Configure %s?", step.Name), false) {
				fmt.Fprintf(w.out, "   ⏭️  Skipping %s\n", step.Name)
				continue
			}
		}

		if err := step.Handler(w); err != nil {
			return fmt.Errorf("setup step '%s' failed: %w", step.Name, err)
		}

		fmt.Fprintf(w.out, "   ✅ %s completed\n", step.Name)
	}
	return nil
}

func (w *Wizard) printWelcome() {
	fmt.Fprintf(w.out, `
╔══════════════════════════════════════════════════════════════╗
║                    🧱 Welcome to ctb! 🧱                     ║
║                                                              ║
║  This wizard writes your configuration and an empty schema   ║
║  so you can start modelling content types and components.    ║
╚══════════════════════════════════════════════════════════════╝
`)
}

func (w *Wizard) setupSchema() error {
	path := w.prompt("Schema file (relative paths follow the config file)", w.config.SchemaFile)
	if strings.TrimSpace(path) == "" {
		path = config.DefaultSchemaFile
	}
	w.config.SchemaFile = path
	return nil
}

func (w *Wizard) setupReservedNames() error {
	fmt.Fprintf(w.out, "   Already reserved: %s\n", strings.Join(w.config.ReservedNames.Attributes, ", "))
	extra := w.prompt("Additional attribute names (comma separated)", "")
	for _, name := range strings.Split(extra, ",") {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" || slices.Contains(w.config.ReservedNames.Attributes, name) {
			continue
		}
		w.config.ReservedNames.Attributes = append(w.config.ReservedNames.Attributes, name)
	}
	return nil
}

func (w *Wizard) setupLogging() error {
	w.config.Log.Level = w.promptChoice("Log level", config.LogLevels, w.config.Log.Level)
	w.config.Log.File = w.prompt("Log file (\"-\" disables file logging)", w.config.Log.File)
	if w.config.Log.File == "-" {
		w.config.Log.File = ""
	}
	return nil
}

func (w *Wizard) setupInterface() error {
	w.config.UI.EnableMouse = w.confirm("Enable mouse support?", w.config.UI.EnableMouse)
	w.config.UI.ConfirmOnClose = w.confirm("Ask before discarding unsaved changes?", w.config.UI.ConfirmOnClose)
	w.config.Watch.Enabled = w.confirm("Reload the schema when the file changes?", w.config.Watch.Enabled)
	w.config.Notifications.TerminalBell = w.confirm("Ring the terminal bell on errors?", w.config.Notifications.TerminalBell)
	return nil
}

// ensureSchema writes an empty schema document when none exists yet
func (w *Wizard) ensureSchema(ctx context.Context, path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}
	store := schema.NewFileStore(path)
	if err := store.Save(ctx, schema.NewRegistry().Snapshot()); err != nil {
		return false, err
	}
	return true, nil
}

// Helper methods

// prompt asks for user input with a default value
func (w *Wizard) prompt(question, defaultValue string) string {
	if defaultValue != "" {
		fmt.Fprintf(w.out, "   %s [%s]: ", question, defaultValue)
	} else {
		fmt.Fprintf(w.out, "   %s: ", question)
	}

	w.scanner.Scan()
	input := strings.TrimSpace(w.scanner.Text())

	if input == "" && defaultValue != "" {
		return defaultValue
	}
	return input
}

// promptChoice prompts for a choice from a list of options. Running out
// of input selects the default.
func (w *Wizard) promptChoice(question string, choices []string, defaultChoice string) string {
	for attempt := 0; attempt < 3; attempt++ {
		choice := w.prompt(question, defaultChoice)
		if slices.Contains(choices, choice) {
			return choice
		}
		fmt.Fprintf(w.out, "   ❌ Invalid choice. Please select one of: %s\n", strings.Join(choices, ", "))
	}
	return defaultChoice
}

// confirm asks for yes/no confirmation
func (w *Wizard) confirm(question string, defaultYes bool) bool {
	defaultStr := "y/N"
	if defaultYes {
		defaultStr = "Y/n"
	}

	answer := w.prompt(fmt.Sprintf("%s (%s)", question, defaultStr), "")
	answer = strings.ToLower(strings.TrimSpace(answer))

	if answer == "" {
		return defaultYes
	}

	return answer == "y" || answer == "yes"
}

func (w *Wizard) configExists() bool {
	_, err := os.Stat(w.opts.ConfigPath)
	return err == nil
}

func (w *Wizard) confirmOverwrite() bool {
	fmt.Fprintln(w.out, "⚠️  Existing configuration found.")
	return w.confirm("Would you like to overwrite it?", false)
}

func (w *Wizard) printCompletion() {
	fmt.Fprintf(w.out, `
🎉 Setup complete! Next steps:

   ctb                           open the builder
   ctb content-type create Post  create a collection type
   ctb schema list               list content types and components
   ctb config show               review the configuration
`)
}

func (w *Wizard) getStepIcon(step int) string {
	icons := []string{"📄", "🚫", "📋", "🖥️"}
	if step > 0 && step <= len(icons) {
		return icons[step-1]
	}
	return "📝"
}

func (w *Wizard) getRequiredIndicator(required bool) string {
	if required {
		return "(required)"
	}
	return "(optional)"
}
