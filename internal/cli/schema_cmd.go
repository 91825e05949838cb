package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jontk/ctb/internal/export"
	"github.com/jontk/ctb/internal/schema"
)

// schemaCmd represents the schema command group
var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Inspect the content model",
	Long: `List and display content types and components from the schema file.

Entities that differ from the saved file are never shown here: every
command saves its changes before returning.`,
}

var schemaListCmd = &cobra.Command{
	Use:   "list",
	Short: "List content types and components",
	Example: `  ctb schema list
  ctb schema list --components`,
	Args: cobra.NoArgs,
	RunE: runSchemaList,
}

var schemaShowCmd = &cobra.Command{
	Use:   "show <uid>",
	Short: "Show the attributes of a content type or component",
	Example: `  ctb schema show api::article.article
  ctb schema show shared.seo --yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runSchemaShow,
}

var schemaExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the content model as a table",
	Long: `Export every attribute of every content type and component, or with
--entities one row per entity, as text, JSON, CSV, Markdown or HTML.

Without --output the table is written to standard output.`,
	Example: `  ctb schema export --format md --output docs/content-model.md
  ctb schema export --entities --format csv`,
	Args: cobra.NoArgs,
	RunE: runSchemaExport,
}

var (
	listContentTypes bool
	listComponents   bool
	showYAML         bool

	exportFormat   string
	exportOutput   string
	exportEntities bool
)

func init() {
	schemaListCmd.Flags().BoolVar(&listContentTypes, "content-types", false, "only list content types")
	schemaListCmd.Flags().BoolVar(&listComponents, "components", false, "only list components")
	schemaShowCmd.Flags().BoolVar(&showYAML, "yaml", false, "print the definition as YAML")
	schemaExportCmd.Flags().StringVarP(&exportFormat, "format", "f", "txt", "txt, json, csv, md or html")
	schemaExportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "file to write instead of standard output")
	schemaExportCmd.Flags().BoolVar(&exportEntities, "entities", false, "one row per entity instead of per attribute")

	schemaCmd.AddCommand(schemaListCmd)
	schemaCmd.AddCommand(schemaShowCmd)
	schemaCmd.AddCommand(schemaExportCmd)
	rootCmd.AddCommand(schemaCmd)
}

func runSchemaList(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd.Context(), cmd, sessionOptions{})
	if err != nil {
		return err
	}

	both := listContentTypes == listComponents
	t := newTable("UID", "NAME", "TYPE", "ATTRIBUTES")
	if both || listContentTypes {
		for _, e := range s.registry.SortedContentTypes() {
			t.add(e.UID, e.DisplayName(), schema.Humanize(string(e.Kind)), strconv.Itoa(len(e.Attributes)))
		}
	}
	if both || listComponents {
		for _, e := range s.registry.SortedComponents() {
			t.add(e.UID, e.DisplayName(), "Component ("+e.Category+")", strconv.Itoa(len(e.Attributes)))
		}
	}

	if len(t.rows) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No entities in %s\n", s.store.Path())
		return nil
	}
	t.render(cmd.OutOrStdout())
	return nil
}

func runSchemaShow(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd.Context(), cmd, sessionOptions{})
	if err != nil {
		return err
	}

	forTarget, err := resolveTarget(s.registry, args[0])
	if err != nil {
		return err
	}
	entity, err := s.registry.Get(forTarget, args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if showYAML {
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(entity); err != nil {
			return err
		}
		return enc.Close()
	}

	fmt.Fprintf(out, "%s (%s)\n", entity.DisplayName(), entity.UID)
	if forTarget == schema.ModelContentType {
		fmt.Fprintf(out, "Kind: %s  Draft & publish: %v\n", schema.Humanize(string(entity.Kind)), entity.Options.DraftAndPublish)
	} else {
		fmt.Fprintf(out, "Category: %s\n", entity.Category)
	}
	fmt.Fprintln(out)

	if len(entity.Attributes) == 0 {
		fmt.Fprintln(out, "No attributes yet.")
		return nil
	}
	t := newTable("NAME", "TYPE", "DETAILS")
	for _, attr := range entity.Attributes {
		t.add(attr.Name(), schema.Humanize(attr.Type()), attr.Summary())
	}
	t.render(out)
	return nil
}

func runSchemaExport(cmd *cobra.Command, args []string) error {
	format, err := export.ParseFormat(exportFormat)
	if err != nil {
		return err
	}
	s, err := openSession(cmd.Context(), cmd, sessionOptions{})
	if err != nil {
		return err
	}

	td := export.AttributesTableData(s.registry.Snapshot())
	if exportEntities {
		td = export.EntitiesTableData(s.registry.Snapshot())
	}
	if exportOutput == "" {
		return export.Write(cmd.OutOrStdout(), td, format)
	}

	result, err := export.NewTableExporter("").Export(td, format, exportOutput)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✅ Exported %d rows to %s\n", len(td.Rows), result.FilePath)
	return nil
}

// resolveTarget finds whether uid is a content type or a component
func resolveTarget(r *schema.Registry, uid string) (schema.ModelType, error) {
	switch {
	case r.Exists(schema.ModelContentType, uid):
		return schema.ModelContentType, nil
	case r.Exists(schema.ModelComponent, uid):
		return schema.ModelComponent, nil
	}
	return "", fmt.Errorf("no content type or component with uid %q (see ctb schema list)", uid)
}
