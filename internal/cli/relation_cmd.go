package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jontk/ctb/internal/errors"
	"github.com/jontk/ctb/internal/relations"
	"github.com/jontk/ctb/internal/schema"
)

// relationCmd represents the relation command group
var relationCmd = &cobra.Command{
	Use:   "relation",
	Short: "Preview relation edits on content entries",
	Long: `Work out what a relation field of a content entry sends when it is saved.

Entries are read from the --entries file, a YAML map from target uid to a
list of {id, label, status}:

  api::author.author:
    - id: "1"
      label: Ada Lovelace`,
}

var relationSearchCmd = &cobra.Command{
	Use:     "search <uid> <attribute>",
	Short:   "List the entries a relation field can still connect",
	Example: `  ctb relation search api::article.article writer --entries entries.yaml --search ada`,
	Args:    cobra.ExactArgs(2),
	RunE:    runRelationSearch,
}

var relationPayloadCmd = &cobra.Command{
	Use:   "payload <uid> <attribute>",
	Short: "Print the connect/disconnect payload of a relation edit",
	Long: `Start from the entries given with --loaded, apply --disconnect, --connect
and --move in that order, and print the JSON payload that saves the change.
Positions given to --move start at 1.`,
	Example: `  ctb relation payload api::article.article tags --entries entries.yaml \
    --loaded 1,2,3 --disconnect 2 --connect 7 --move 3:1`,
	Args: cobra.ExactArgs(2),
	RunE: runRelationPayload,
}

var (
	relEntries    string
	relSearch     string
	relPage       int
	relLoaded     []string
	relConnect    []string
	relDisconnect []string
	relMoves      []string
)

func init() {
	for _, c := range []*cobra.Command{relationSearchCmd, relationPayloadCmd} {
		c.Flags().StringVar(&relEntries, "entries", "", "YAML file with the entries of each target (required)")
		c.Flags().StringSliceVar(&relLoaded, "loaded", nil, "ids connected when the entry was loaded, in order")
		_ = c.MarkFlagRequired("entries")
	}
	relationSearchCmd.Flags().StringVar(&relSearch, "search", "", "only entries whose label contains this text")
	relationSearchCmd.Flags().IntVar(&relPage, "page", 1, "result page")
	relationPayloadCmd.Flags().StringSliceVar(&relConnect, "connect", nil, "ids to connect")
	relationPayloadCmd.Flags().StringSliceVar(&relDisconnect, "disconnect", nil, "ids to disconnect")
	relationPayloadCmd.Flags().StringSliceVar(&relMoves, "move", nil, "from:to positions to reorder")

	relationCmd.AddCommand(relationSearchCmd, relationPayloadCmd)
	rootCmd.AddCommand(relationCmd)
}

// openRelationField loads the relation attribute named by args and the
// entries file, and connects the --loaded entries
func openRelationField(cmd *cobra.Command, args []string) (*relations.Field, *relations.MemorySource, error) {
	s, err := openSession(cmd.Context(), cmd, sessionOptions{})
	if err != nil {
		return nil, nil, err
	}
	forTarget, err := resolveTarget(s.registry, args[0])
	if err != nil {
		return nil, nil, err
	}
	entity, err := s.registry.Get(forTarget, args[0])
	if err != nil {
		return nil, nil, err
	}
	attr, _ := entity.Attribute(args[1])
	if attr == nil {
		return nil, nil, errors.NotFoundf("%s has no attribute %q", entity.UID, args[1])
	}
	if attr.Type() != schema.TypeRelation {
		return nil, nil, errors.Invalidf("%s.%s is a %s field, not a relation", entity.UID, args[1], attr.Type())
	}

	f, err := os.Open(relEntries)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	src, err := relations.ReadEntries(f)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", relEntries, err)
	}

	loaded, err := lookupEntries(src, attr.Target(), relLoaded)
	if err != nil {
		return nil, nil, err
	}
	return relations.NewField(attr.Name(), attr, loaded, relations.WithLogger(s.logger)), src, nil
}

func lookupEntries(src *relations.MemorySource, target string, ids []string) ([]relations.Item, error) {
	items := make([]relations.Item, 0, len(ids))
	for _, id := range ids {
		item, ok := src.Lookup(target, id)
		if !ok {
			return nil, errors.NotFoundf("no entry %s of %s in %s", id, target, relEntries)
		}
		items = append(items, item)
	}
	return items, nil
}

func runRelationSearch(cmd *cobra.Command, args []string) error {
	field, src, err := openRelationField(cmd, args)
	if err != nil {
		return err
	}
	page, err := field.Available(cmd.Context(), src, relSearch, relPage)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(page.Items) == 0 {
		fmt.Fprintf(out, "No entries of %s left to connect to %s\n", field.Attribute.Target(), field.Label())
		return nil
	}
	t := newTable("ID", "LABEL", "STATUS")
	for _, it := range page.Items {
		t.add(it.ID, it.Label, it.Status)
	}
	t.render(out)
	fmt.Fprintf(out, "\nPage %d of %d (%d entries)\n", page.Page, page.PageCount, page.Total)
	return nil
}

func runRelationPayload(cmd *cobra.Command, args []string) error {
	field, src, err := openRelationField(cmd, args)
	if err != nil {
		return err
	}

	for _, id := range relDisconnect {
		if err := field.Disconnect(id); err != nil {
			return err
		}
	}
	connect, err := lookupEntries(src, field.Attribute.Target(), relConnect)
	if err != nil {
		return err
	}
	for _, item := range connect {
		if err := field.Connect(item); err != nil {
			return err
		}
	}
	for _, mv := range relMoves {
		from, to, err := parseMove(mv)
		if err != nil {
			return err
		}
		if err := field.Move(from-1, to-1); err != nil {
			return err
		}
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(field.Payload())
}

// parseMove splits "3:1" into its two positions
func parseMove(s string) (int, int, error) {
	a, b, ok := strings.Cut(s, ":")
	from, errFrom := strconv.Atoi(a)
	to, errTo := strconv.Atoi(b)
	if !ok || errFrom != nil || errTo != nil {
		return 0, 0, errors.Invalidf("--move expects from:to, got %q", s)
	}
	return from, to, nil
}
