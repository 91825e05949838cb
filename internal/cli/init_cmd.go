package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jontk/ctb/internal/config"
	"github.com/jontk/ctb/internal/setup"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:     "init",
	Aliases: []string{"setup"},
	Short:   "Create a configuration file with the setup wizard",
	Long: `Launch the setup wizard to configure ctb for first-time use.

The wizard will guide you through:
• 📄 The schema file location
• 🚫 Reserved attribute names
• 📝 Logging
• 🖥️  Interface and notification settings

An empty schema file is created when none exists yet. Without a terminal, or
with --non-interactive, the chosen template is written as is.`,
	Example: `  ctb init                              # Run the interactive wizard
  ctb init --template team              # Start from the team template
  ctb init --non-interactive --template ci --path ./ctb.yaml
  ctb init --list-templates`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

// initFlags holds the flags for the init command
type initFlags struct {
	template       string
	force          bool
	nonInteractive bool
	listTemplates  bool
	path           string
}

var initFlagValues initFlags

func init() {
	initCmd.Flags().StringVarP(&initFlagValues.template, "template", "t", "default", "configuration template to start from")
	initCmd.Flags().BoolVar(&initFlagValues.force, "force", false, "overwrite an existing configuration")
	initCmd.Flags().BoolVar(&initFlagValues.nonInteractive, "non-interactive", false, "write the template without asking questions")
	initCmd.Flags().BoolVar(&initFlagValues.listTemplates, "list-templates", false, "list the available templates")
	initCmd.Flags().StringVar(&initFlagValues.path, "path", "", "where to write the configuration (default is --config or $HOME/.ctb/config.yaml)")

	rootCmd.AddCommand(initCmd)
}

// runInit executes the init command
func runInit(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if initFlagValues.listTemplates {
		t := newTable("TEMPLATE", "DESCRIPTION")
		for _, tmpl := range config.NewTemplateManager().ListTemplates() {
			t.add(tmpl.Name, tmpl.Description)
		}
		t.render(out)
		return nil
	}

	path := initFlagValues.path
	if path == "" {
		path = cfgFile
	}

	wizard := setup.NewWizard(setup.Options{
		ConfigPath:     path,
		Template:       initFlagValues.template,
		Force:          initFlagValues.force,
		NonInteractive: initFlagValues.nonInteractive,
		In:             cmd.InOrStdin(),
		Out:            out,
	})
	result, err := wizard.Run(cmd.Context())
	if err != nil {
		return err
	}
	if !result.Cancelled {
		fmt.Fprintln(out, "\nRun 'ctb' to start the builder.")
	}
	return nil
}
