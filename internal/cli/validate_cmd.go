package cli

import (
	"context"
	"fmt"
	"runtime"
	"slices"
	"sort"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jontk/ctb/internal/config"
	"github.com/jontk/ctb/internal/schema"
	"github.com/jontk/ctb/internal/validation"
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration and the schema file",
	Long: `Validate the configuration, then run every attribute of the schema file
through the same checks the builder applies when the attribute is saved.

Dangling references (relations to missing content types, components that
no longer exist) are reported as well. The command exits non-zero when any
problem is found, which makes it suitable for CI.`,
	Example: `  ctb validate
  ctb validate --schema content/schema.yaml`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

// problem is one finding of the schema check
type problem struct {
	uid     string
	field   string
	message string
}

func runValidate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	s, err := openSession(ctx, cmd, sessionOptions{})
	if err != nil {
		return err
	}

	result := config.ValidateAndFix(s.cfg, false)
	config.PrintValidationResult(out, result, false)

	problems, err := checkSchema(ctx, s)
	if err != nil {
		return err
	}

	fmt.Fprintln(out)
	if len(problems) == 0 {
		fmt.Fprintf(out, "✅ Schema %s is valid (%d content types, %d components)\n",
			s.store.Path(), len(s.registry.ContentTypeUIDs()), len(s.registry.ComponentUIDs()))
	} else {
		fmt.Fprintf(out, "❌ Schema %s has %d problem(s):\n", s.store.Path(), len(problems))
		for _, p := range problems {
			fmt.Fprintf(out, "   • %s.%s: %s\n", p.uid, p.field, p.message)
		}
	}

	if !result.Valid || len(problems) > 0 {
		return fmt.Errorf("validation failed: %d configuration error(s), %d schema problem(s)",
			len(result.Errors), len(problems))
	}
	return nil
}

// checkSchema validates every entity concurrently and returns the
// findings sorted by uid and attribute.
func checkSchema(ctx context.Context, s *session) ([]problem, error) {
	entities := append(s.registry.SortedContentTypes(), s.registry.SortedComponents()...)

	var (
		mu       sync.Mutex
		problems []problem
	)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for _, entity := range entities {
		eg.Go(func() error {
			found, err := checkEntity(egCtx, s, entity)
			if err != nil {
				return err
			}
			mu.Lock()
			problems = append(problems, found...)
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(problems, func(i, j int) bool {
		if problems[i].uid != problems[j].uid {
			return problems[i].uid < problems[j].uid
		}
		return problems[i].field < problems[j].field
	})
	return problems, nil
}

func checkEntity(ctx context.Context, s *session, entity *schema.EntitySchema) ([]problem, error) {
	var found []problem
	report := func(field, msg string) {
		found = append(found, problem{uid: entity.UID, field: field, message: msg})
	}

	for _, attr := range entity.Attributes {
		name := attr.Name()

		var v validation.Validator
		if uid := attr.CustomField(); uid != "" {
			params := validation.CustomFieldParams{Entity: entity, Reserved: s.cfg.ReservedNames, InitialName: name}
			cf, err := s.fields.Get(uid)
			if err != nil {
				report(name, fmt.Sprintf("unknown custom field %s", uid))
			} else {
				params.Field = &cf
			}
			v = validation.CustomField(params)
		} else {
			params := validation.AttributeParams{
				Entity:        entity,
				AttributeType: attr.Type(),
				Reserved:      s.cfg.ReservedNames,
				InitialName:   name,
			}
			if attr.Type() == schema.TypeRelation {
				params.TakenTargetAttributes = takenByTarget(s.registry, attr)
			}
			v = validation.Attribute(params)
		}

		errs, err := v.Validate(ctx, attr)
		if err != nil {
			return nil, err
		}
		keys := make([]string, 0, len(errs))
		for key := range errs {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			report(name, fmt.Sprintf("%s: %s", key, errs[key]))
		}

		for _, msg := range danglingReferences(s.registry, attr) {
			report(name, msg)
		}
	}
	return found, nil
}

// takenByTarget lists the target's attribute names except the relation's own inverse
func takenByTarget(r *schema.Registry, attr schema.Attribute) []string {
	target, err := r.ContentType(attr.Target())
	if err != nil {
		return nil
	}
	own := attr.TargetAttribute()
	return slices.DeleteFunc(target.AttributeNames(), func(n string) bool { return n == own })
}

func danglingReferences(r *schema.Registry, attr schema.Attribute) []string {
	var msgs []string
	switch attr.Type() {
	case schema.TypeRelation:
		if t := attr.Target(); t != "" && !r.Exists(schema.ModelContentType, t) {
			msgs = append(msgs, fmt.Sprintf("relation target %s does not exist", t))
		}
	case schema.TypeComponent:
		if c := attr.Component(); c != "" && !r.Exists(schema.ModelComponent, c) {
			msgs = append(msgs, fmt.Sprintf("component %s does not exist", c))
		}
	case schema.TypeDynamicZone:
		for _, c := range attr.Components() {
			if !r.Exists(schema.ModelComponent, c) {
				msgs = append(msgs, fmt.Sprintf("dynamic zone component %s does not exist", c))
			}
		}
	}
	return msgs
}
