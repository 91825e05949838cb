package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jontk/ctb/internal/builder"
	"github.com/jontk/ctb/internal/navigation"
	"github.com/jontk/ctb/internal/schema"
)

// attributeCmd represents the attribute command group
var attributeCmd = &cobra.Command{
	Use:     "attribute",
	Aliases: []string{"attr"},
	Short:   "Add, edit and delete attributes",
	Long: `Add, edit and delete the attributes of a content type or component.

Attribute options are passed as --set key=value pairs using the same names
as the schema file, e.g. required=true, maxLength=80, enum=a,b,c or
target=api::author.author. Nested keys use dots: componentToCreate.icon=star.`,
}

var attributeAddCmd = &cobra.Command{
	Use:   "add <uid> <type> <name>",
	Short: "Add an attribute",
	Long: `Add an attribute to a content type or component.

<type> is an attribute type (text, number, relation, component, dynamiczone,
...) or the uid of a custom field such as plugin::color-picker.color.`,
	Example: `  ctb attribute add api::article.article text title --set required=true
  ctb attribute add api::article.article enumeration status --set enum=draft,published
  ctb attribute add api::article.article text note --visible-when status==draft
  ctb attribute add api::article.article relation author --set relation=manyToOne --set target=api::author.author
  ctb attribute add api::article.article component seo --component shared.seo
  ctb attribute add api::article.article component hero --create-component Hero --category sections
  ctb attribute add api::article.article dynamiczone blocks --set components=shared.seo,shared.quote
  ctb attribute add api::article.article plugin::color-picker.color accent`,
	Args: cobra.ExactArgs(3),
	RunE: runAttributeAdd,
}

var attributeEditCmd = &cobra.Command{
	Use:   "edit <uid> <name>",
	Short: "Edit an attribute",
	Long: `Edit an attribute. Renaming a field, or removing enumeration values,
that other fields' visibility conditions refer to breaks those conditions:
the command prints the affected fields and only applies the change with
--confirm.`,
	Example: `  ctb attribute edit api::article.article title --set maxLength=120
  ctb attribute edit api::article.article status --rename state --confirm`,
	Args: cobra.ExactArgs(2),
	RunE: runAttributeEdit,
}

var attributeDeleteCmd = &cobra.Command{
	Use:   "delete <uid> <name>",
	Short: "Delete an attribute (and the inverse side of a relation)",
	Args:  cobra.ExactArgs(2),
	RunE:  runAttributeDelete,
}

var attributeAddComponentsCmd = &cobra.Command{
	Use:   "add-components <uid> <dynamic-zone> <component>...",
	Short: "Add existing components to a dynamic zone",
	Args:  cobra.MinimumNArgs(3),
	RunE:  runAttributeAddComponents,
}

var (
	attrSets            []string
	attrVisibleWhen     string
	attrClearCondition  bool
	attrRename          string
	attrConfirm         bool
	attrComponent       string
	attrCreateComponent string
	attrCategory        string
	attrRepeatable      bool
)

func init() {
	for _, c := range []*cobra.Command{attributeAddCmd, attributeEditCmd} {
		c.Flags().StringArrayVar(&attrSets, "set", nil, "attribute option as key=value (repeatable)")
		c.Flags().StringVar(&attrVisibleWhen, "visible-when", "", "show the field only when another field matches, e.g. status==draft")
	}

	attributeAddCmd.Flags().StringVar(&attrComponent, "component", "", "existing component used by a component attribute")
	attributeAddCmd.Flags().StringVar(&attrCreateComponent, "create-component", "", "display name of a component to create for a component attribute")
	attributeAddCmd.Flags().StringVar(&attrCategory, "category", "", "category of the component to create")
	attributeAddCmd.Flags().BoolVar(&attrRepeatable, "repeatable", false, "allow several instances of the component")

	attributeEditCmd.Flags().StringVar(&attrRename, "rename", "", "new attribute name")
	attributeEditCmd.Flags().BoolVar(&attrClearCondition, "clear-condition", false, "remove the visibility condition")
	attributeEditCmd.Flags().BoolVar(&attrConfirm, "confirm", false, "apply edits that break other fields' conditions")

	attributeCmd.AddCommand(attributeAddCmd, attributeEditCmd, attributeDeleteCmd, attributeAddComponentsCmd)
	rootCmd.AddCommand(attributeCmd)
}

func runAttributeAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := openSession(ctx, cmd, sessionOptions{})
	if err != nil {
		return err
	}
	uid, attrType, name := args[0], args[1], args[2]
	forTarget, err := resolveTarget(s.registry, uid)
	if err != nil {
		return err
	}

	b := s.builder()
	if err := navigate(b, navigation.OpenChooseAttribute{ForTarget: forTarget, TargetUID: uid}); err != nil {
		return err
	}

	if strings.Contains(attrType, "::") {
		cf, err := s.fields.Get(attrType)
		if err != nil {
			return err
		}
		if err := navigate(b, navigation.SelectCustomField{CustomFieldUID: cf.UID(), AttributeType: cf.Type}); err != nil {
			return err
		}
	} else if err := navigate(b, navigation.SelectField{AttributeType: attrType}); err != nil {
		return err
	}

	stderr := cmd.ErrOrStderr()
	switch attrType {
	case schema.TypeComponent:
		err = addComponentAttribute(ctx, cmd, b, name)
	case schema.TypeDynamicZone:
		err = addDynamicZone(ctx, cmd, b, name)
	default:
		if err = fillDraft(b, name); err == nil {
			_, err = submitDraft(ctx, stderr, b, false)
		}
	}
	if err != nil {
		return err
	}

	if err := s.save(ctx); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✅ Added %s to %s\n", name, uid)
	return nil
}

// fillDraft applies the --set pairs, then the name, so a relation target
// does not overwrite the name it derives.
func fillDraft(b *builder.Builder, name string) error {
	if err := applySets(b, attrSets); err != nil {
		return err
	}
	if name != "" {
		b.HandleChange("name", name)
	}
	if attrVisibleWhen != "" {
		cond, err := parseCondition(attrVisibleWhen)
		if err != nil {
			return err
		}
		b.HandleChange("conditions", cond)
	}
	return nil
}

// addComponentAttribute walks the two-step component form: step one picks
// or creates the component, step two names the field.
func addComponentAttribute(ctx context.Context, cmd *cobra.Command, b *builder.Builder, name string) error {
	stderr := cmd.ErrOrStderr()
	switch {
	case attrComponent != "" && attrCreateComponent != "":
		return fmt.Errorf("use either --component or --create-component")
	case attrComponent != "":
		b.HandleChange("createComponent", false)
	case attrCreateComponent != "":
		b.HandleChange("componentToCreate.displayName", attrCreateComponent)
		b.HandleChange("componentToCreate.category", attrCategory)
	default:
		return fmt.Errorf("a component attribute needs --component or --create-component")
	}

	out, err := submitDraft(ctx, stderr, b, false)
	if err != nil {
		return err
	}
	if out.Status != builder.StatusAdvanced {
		return fmt.Errorf("component form did not reach its second step (%s)", out.Status)
	}

	if attrComponent != "" {
		b.HandleChange("component", attrComponent)
	}
	b.HandleChange("repeatable", attrRepeatable)
	if err := fillDraft(b, name); err != nil {
		return err
	}
	out, err = submitDraft(ctx, stderr, b, false)
	if err != nil {
		return err
	}
	if out.RedirectUID != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "✅ Created component %s\n", out.RedirectUID)
	}
	return nil
}

// addDynamicZone names the zone, then fills it with --set components=...
func addDynamicZone(ctx context.Context, cmd *cobra.Command, b *builder.Builder, name string) error {
	var components any
	b.HandleChange("name", name)
	for _, kv := range attrSets {
		key, value, err := parseSet(kv)
		if err != nil {
			return err
		}
		if key == "components" {
			components = value
			continue
		}
		b.HandleChange(key, value)
	}
	if _, err := submitDraft(ctx, cmd.ErrOrStderr(), b, false); err != nil {
		return err
	}

	if components == nil {
		// the zone stays empty
		return b.Close(true)
	}
	b.HandleChange("createComponent", false)
	b.HandleChange("components", components)
	_, err := submitDraft(ctx, cmd.ErrOrStderr(), b, false)
	return err
}

func runAttributeEdit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := openSession(ctx, cmd, sessionOptions{})
	if err != nil {
		return err
	}
	uid, name := args[0], args[1]
	forTarget, err := resolveTarget(s.registry, uid)
	if err != nil {
		return err
	}
	entity, err := s.registry.Get(forTarget, uid)
	if err != nil {
		return err
	}
	attr, _ := entity.Attribute(name)
	if attr == nil {
		return fmt.Errorf("%s has no attribute %q", uid, name)
	}

	b := s.builder()
	var ev navigation.Event = navigation.OpenEditField{
		ForTarget: forTarget, TargetUID: uid, AttributeName: name, AttributeType: attr.Type(),
	}
	if cf := attr.CustomField(); cf != "" {
		ev = navigation.OpenEditCustomField{
			ForTarget: forTarget, TargetUID: uid, AttributeName: name, AttributeType: attr.Type(), CustomFieldUID: cf,
		}
	}
	if err := navigate(b, ev); err != nil {
		return err
	}

	if err := fillDraft(b, attrRename); err != nil {
		return err
	}
	if attrClearCondition {
		b.HandleChange("conditions", nil)
	}

	if _, err := submitDraft(ctx, cmd.ErrOrStderr(), b, attrConfirm); err != nil {
		return err
	}
	if err := s.save(ctx); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✅ Updated %s on %s\n", name, uid)
	return nil
}

func runAttributeDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := openSession(ctx, cmd, sessionOptions{})
	if err != nil {
		return err
	}
	forTarget, err := resolveTarget(s.registry, args[0])
	if err != nil {
		return err
	}
	if err := s.registry.DeleteAttribute(forTarget, args[0], args[1]); err != nil {
		return err
	}
	if err := s.save(ctx); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "🗑️  Deleted %s from %s\n", args[1], args[0])
	return nil
}

func runAttributeAddComponents(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := openSession(ctx, cmd, sessionOptions{})
	if err != nil {
		return err
	}
	uid, zone := args[0], args[1]
	forTarget, err := resolveTarget(s.registry, uid)
	if err != nil {
		return err
	}

	b := s.builder()
	if err := navigate(b, navigation.OpenAddComponentsToDZ{ForTarget: forTarget, TargetUID: uid, DynamicZoneTarget: zone}); err != nil {
		return err
	}
	b.HandleChange("createComponent", false)
	b.HandleChange("components", args[2:])
	if _, err := submitDraft(ctx, cmd.ErrOrStderr(), b, false); err != nil {
		return err
	}
	if err := s.save(ctx); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✅ Added %s to %s.%s\n", strings.Join(args[2:], ", "), uid, zone)
	return nil
}
