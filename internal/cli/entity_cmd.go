package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jontk/ctb/internal/navigation"
	"github.com/jontk/ctb/internal/schema"
)

// contentTypeCmd represents the content-type command group
var contentTypeCmd = &cobra.Command{
	Use:     "content-type",
	Aliases: []string{"ct"},
	Short:   "Create, edit and delete content types",
}

var contentTypeCreateCmd = &cobra.Command{
	Use:   "create <display-name>",
	Short: "Create a collection or single type",
	Example: `  ctb content-type create Article
  ctb content-type create "Home Page" --single --no-draft-and-publish`,
	Args: cobra.ExactArgs(1),
	RunE: runContentTypeCreate,
}

var contentTypeEditCmd = &cobra.Command{
	Use:   "edit <uid>",
	Short: "Change the settings of a content type",
	Long: `Change the display name, kind or draft & publish option of a content type.

Switching between collection and single type is refused while the content
type has relations other than oneWay or manyWay.`,
	Example: `  ctb content-type edit api::article.article --display-name Post
  ctb content-type edit api::home-page.home-page --kind collectionType`,
	Args: cobra.ExactArgs(1),
	RunE: runContentTypeEdit,
}

var contentTypeDeleteCmd = &cobra.Command{
	Use:   "delete <uid>",
	Short: "Delete a content type and the relations pointing at it",
	Args:  cobra.ExactArgs(1),
	RunE:  runContentTypeDelete,
}

// componentCmd represents the component command group
var componentCmd = &cobra.Command{
	Use:   "component",
	Short: "Create, edit and delete components",
}

var componentCreateCmd = &cobra.Command{
	Use:     "create <display-name>",
	Short:   "Create a component",
	Example: `  ctb component create Seo --category shared --icon search`,
	Args:    cobra.ExactArgs(1),
	RunE:    runComponentCreate,
}

var componentEditCmd = &cobra.Command{
	Use:   "edit <uid>",
	Short: "Change the display name or icon of a component",
	Long: `Change the display name or icon of a component. A component that was
never saved is renamed along with its display name.`,
	Args: cobra.ExactArgs(1),
	RunE: runComponentEdit,
}

var componentDeleteCmd = &cobra.Command{
	Use:   "delete <uid>",
	Short: "Delete a component and every attribute using it",
	Args:  cobra.ExactArgs(1),
	RunE:  runComponentDelete,
}

var (
	ctSingle            bool
	ctNoDraftAndPublish bool
	ctSingularName      string
	ctPluralName        string
	ctDisplayName       string
	ctKind              string
	ctDraftAndPublish   string

	componentCategory string
	componentIcon     string
	componentName     string
)

func init() {
	contentTypeCreateCmd.Flags().BoolVar(&ctSingle, "single", false, "create a single type")
	contentTypeCreateCmd.Flags().BoolVar(&ctNoDraftAndPublish, "no-draft-and-publish", false, "disable draft & publish")
	contentTypeCreateCmd.Flags().StringVar(&ctSingularName, "singular", "", "API singular name (default: derived from the display name)")
	contentTypeCreateCmd.Flags().StringVar(&ctPluralName, "plural", "", "API plural name (default: singular name + s)")

	contentTypeEditCmd.Flags().StringVar(&ctDisplayName, "display-name", "", "new display name")
	contentTypeEditCmd.Flags().StringVar(&ctKind, "kind", "", "collectionType or singleType")
	contentTypeEditCmd.Flags().StringVar(&ctDraftAndPublish, "draft-and-publish", "", "true or false")

	componentCreateCmd.Flags().StringVar(&componentCategory, "category", "", "component category (required)")
	componentCreateCmd.Flags().StringVar(&componentIcon, "icon", "", "icon name")
	_ = componentCreateCmd.MarkFlagRequired("category")

	componentEditCmd.Flags().StringVar(&componentName, "display-name", "", "new display name")
	componentEditCmd.Flags().StringVar(&componentIcon, "icon", "", "icon name")

	contentTypeCmd.AddCommand(contentTypeCreateCmd, contentTypeEditCmd, contentTypeDeleteCmd)
	componentCmd.AddCommand(componentCreateCmd, componentEditCmd, componentDeleteCmd)
	rootCmd.AddCommand(contentTypeCmd, componentCmd)
}

func runContentTypeCreate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := openSession(ctx, cmd, sessionOptions{})
	if err != nil {
		return err
	}

	kind := schema.KindCollection
	if ctSingle {
		kind = schema.KindSingle
	}
	singular := ctSingularName
	if singular == "" {
		singular = schema.Slugify(args[0])
	}
	plural := ctPluralName
	if plural == "" {
		plural = singular + "s"
	}

	b := s.builder()
	if err := navigate(b, navigation.OpenCreateSchema{ModalType: navigation.ModalContentType, Kind: kind}); err != nil {
		return err
	}
	b.HandleChange("displayName", args[0])
	b.HandleChange("singularName", singular)
	b.HandleChange("pluralName", plural)
	b.HandleChange("draftAndPublish", !ctNoDraftAndPublish)

	out, err := submitDraft(ctx, cmd.ErrOrStderr(), b, false)
	if err != nil {
		return err
	}
	if err := s.save(ctx); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✅ Created %s %s\n", strings.ToLower(schema.Humanize(string(kind))), out.RedirectUID)
	return nil
}

func runContentTypeEdit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := openSession(ctx, cmd, sessionOptions{})
	if err != nil {
		return err
	}
	current, err := s.registry.ContentType(args[0])
	if err != nil {
		return err
	}

	b := s.builder()
	ev := navigation.OpenEditSchema{ModalType: navigation.ModalContentType, TargetUID: current.UID, Kind: current.Kind}
	if err := navigate(b, ev); err != nil {
		return err
	}
	if ctDisplayName != "" {
		b.HandleChange("displayName", ctDisplayName)
	}
	if ctKind != "" {
		b.HandleChange("kind", ctKind)
	}
	if ctDraftAndPublish != "" {
		_, value, err := parseSet("draftAndPublish=" + ctDraftAndPublish)
		if err != nil {
			return err
		}
		b.HandleChange("draftAndPublish", value)
	}

	if _, err := submitDraft(ctx, cmd.ErrOrStderr(), b, false); err != nil {
		return err
	}
	if err := s.save(ctx); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✅ Updated %s\n", current.UID)
	return nil
}

func runContentTypeDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := openSession(ctx, cmd, sessionOptions{})
	if err != nil {
		return err
	}
	if err := s.registry.DeleteContentType(args[0]); err != nil {
		return err
	}
	if err := s.save(ctx); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "🗑️  Deleted %s\n", args[0])
	return nil
}

func runComponentCreate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := openSession(ctx, cmd, sessionOptions{})
	if err != nil {
		return err
	}

	b := s.builder()
	if err := navigate(b, navigation.OpenCreateSchema{ModalType: navigation.ModalComponent}); err != nil {
		return err
	}
	b.HandleChange("displayName", args[0])
	b.HandleChange("category", componentCategory)
	if componentIcon != "" {
		b.HandleChange("icon", componentIcon)
	}

	out, err := submitDraft(ctx, cmd.ErrOrStderr(), b, false)
	if err != nil {
		return err
	}
	if err := s.save(ctx); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✅ Created component %s\n", out.RedirectUID)
	return nil
}

func runComponentEdit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := openSession(ctx, cmd, sessionOptions{})
	if err != nil {
		return err
	}
	if _, err := s.registry.Component(args[0]); err != nil {
		return err
	}

	b := s.builder()
	if err := navigate(b, navigation.OpenEditSchema{ModalType: navigation.ModalComponent, TargetUID: args[0]}); err != nil {
		return err
	}
	if componentName != "" {
		b.HandleChange("displayName", componentName)
	}
	if cmd.Flags().Changed("icon") {
		b.HandleChange("icon", componentIcon)
	}

	out, err := submitDraft(ctx, cmd.ErrOrStderr(), b, false)
	if err != nil {
		return err
	}
	if err := s.save(ctx); err != nil {
		return err
	}
	uid := args[0]
	if out.RedirectUID != "" {
		uid = out.RedirectUID
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✅ Updated component %s\n", uid)
	return nil
}

func runComponentDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := openSession(ctx, cmd, sessionOptions{})
	if err != nil {
		return err
	}
	if err := s.registry.DeleteComponent(args[0]); err != nil {
		return err
	}
	if err := s.save(ctx); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "🗑️  Deleted component %s\n", args[0])
	return nil
}
