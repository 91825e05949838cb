// Package validation checks builder drafts before they are committed to the
// schema registry. Every validator reports all failing fields at once.
package validation

import (
	"context"
	"regexp"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/jontk/ctb/internal/formmodal"
	"github.com/jontk/ctb/internal/schema"
)

// Error messages stored in FormErrors
const (
	MsgRequired          = "This value is required"
	MsgUnique            = "This value must be unique"
	MsgReserved          = "This name is reserved"
	MsgIdentifier        = "Must start with a letter and contain only letters, digits and underscores"
	MsgKebabCase         = "Must be kebab-case (e.g. blog-post)"
	MsgDifferentNames    = "Singular and plural names must differ"
	MsgCategory          = "Only letters, digits, spaces, dashes and underscores are allowed"
	MsgNumber            = "Must be a number"
	MsgPositive          = "Must be a positive number"
	MsgMinGreaterMax     = "Must be lower than the maximum"
	MsgRegex             = "Invalid regular expression"
	MsgEnumEmpty         = "At least one value is required"
	MsgEnumDuplicate     = "Values must be unique"
	MsgEnumValue         = "Values must start with a letter"
	MsgDefaultNotInEnum  = "The default value must be one of the values"
	MsgKind              = "Must be collectionType or singleType"
	MsgRelationKind      = "Unknown relation type"
	MsgComponentRelation = "Components can only hold one-way relations"
	MsgTargetAttribute   = "This name is already used on the target"
	MsgSelfRelation      = "Must differ from the field name on a self relation"
	MsgTargetField       = "Must be a text field of the same schema"
)

var (
	identifierPattern = regexp.MustCompile(`^[A-Za-z][_0-9A-Za-z]*$`)
	kebabPattern      = regexp.MustCompile(`^[a-z][a-z0-9]*(?:-[a-z0-9]+)*$`)
	categoryPattern   = regexp.MustCompile(`^[A-Za-z0-9 _-]+$`)
)

// Validator validates a draft. The error is only non-nil when ctx is done.
type Validator interface {
	Validate(ctx context.Context, data map[string]any) (formmodal.FormErrors, error)
}

// Rule checks one field of the draft and returns an error message or "".
type Rule struct {
	Field string
	Check func(data schema.Attribute) string
}

// FieldCheck validates the whole draft and returns errors keyed by field.
type FieldCheck func(data map[string]any) map[string]string

// Schema is a list of rule groups. Groups run concurrently; within the
// merged result the first error reported for a field wins, in group then
// rule order. Field checks run after the groups.
type Schema struct {
	groups [][]Rule
	checks []FieldCheck
}

// NewSchema creates a Schema from rule groups
func NewSchema(groups ...[]Rule) *Schema {
	return &Schema{groups: groups}
}

// WithCheck returns a copy of s with an extra whole-draft check.
func (s *Schema) WithCheck(check FieldCheck) *Schema {
	return &Schema{
		groups: slices.Clone(s.groups),
		checks: append(slices.Clone(s.checks), check),
	}
}

// Validate runs every rule and returns the collected errors. A nil map
// means the draft is valid.
func (s *Schema) Validate(ctx context.Context, data map[string]any) (formmodal.FormErrors, error) {
	attr := schema.Attribute(data)
	results := make([]formmodal.FormErrors, len(s.groups)+len(s.checks))

	eg, egCtx := errgroup.WithContext(ctx)
	for i, group := range s.groups {
		eg.Go(func() error {
			errs := formmodal.FormErrors{}
			for _, rule := range group {
				if err := egCtx.Err(); err != nil {
					return err
				}
				if _, seen := errs[rule.Field]; seen {
					continue
				}
				if msg := rule.Check(attr); msg != "" {
					errs[rule.Field] = msg
				}
			}
			results[i] = errs
			return nil
		})
	}
	for i, check := range s.checks {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			errs := formmodal.FormErrors{}
			for field, msg := range check(schema.CloneValue(data).(map[string]any)) {
				if msg != "" {
					errs[field] = msg
				}
			}
			results[len(s.groups)+i] = errs
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var merged formmodal.FormErrors
	for _, errs := range results {
		for field, msg := range errs {
			if merged == nil {
				merged = formmodal.FormErrors{}
			}
			if _, seen := merged[field]; !seen {
				merged[field] = msg
			}
		}
	}
	return merged, nil
}

// ReservedNames are names the builder refuses for models and attributes.
type ReservedNames struct {
	Models     []string `mapstructure:"models" yaml:"models"`
	Attributes []string `mapstructure:"attributes" yaml:"attributes"`
}

// DefaultReservedNames returns the built-in reserved names
func DefaultReservedNames() ReservedNames {
	return ReservedNames{
		Models: []string{"boolean", "date", "date-time", "time", "upload", "document", "then"},
		Attributes: []string{
			"id", "document_id", "created_at", "updated_at", "published_at",
			"created_by", "updated_by", "locale", "localizations", "meta", "__component",
		},
	}
}

// IsReservedModel reports whether name collides with a reserved model name.
func (r ReservedNames) IsReservedModel(name string) bool {
	return containsFold(r.Models, schema.Slugify(name))
}

// IsReservedAttribute reports whether name collides with a reserved attribute name.
func (r ReservedNames) IsReservedAttribute(name string) bool {
	return containsFold(r.Attributes, name) || containsFold(r.Attributes, schema.SnakeCase(name))
}

func containsFold(list []string, s string) bool {
	if s == "" {
		return false
	}
	for _, item := range list {
		if strings.EqualFold(item, s) {
			return true
		}
	}
	return false
}

func required(field string) Rule {
	return Rule{Field: field, Check: func(d schema.Attribute) string {
		if strings.TrimSpace(d.String(field)) == "" {
			return MsgRequired
		}
		return ""
	}}
}

func matches(field string, re *regexp.Regexp, msg string) Rule {
	return Rule{Field: field, Check: func(d schema.Attribute) string {
		if v := d.String(field); v != "" && !re.MatchString(v) {
			return msg
		}
		return ""
	}}
}

// present reports whether key holds a non-empty value.
func present(d schema.Attribute, key string) bool {
	switch v := d[key].(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(v) != ""
	}
	return true
}
