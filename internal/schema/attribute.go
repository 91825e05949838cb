package schema

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Attribute types understood by the builder.
const (
	TypeString      = "string"
	TypeText        = "text"
	TypeRichText    = "richtext"
	TypeBlocks      = "blocks"
	TypeEmail       = "email"
	TypePassword    = "password"
	TypeUID         = "uid"
	TypeInteger     = "integer"
	TypeBigInteger  = "biginteger"
	TypeDecimal     = "decimal"
	TypeFloat       = "float"
	TypeNumber      = "number"
	TypeDate        = "date"
	TypeDateTime    = "datetime"
	TypeTime        = "time"
	TypeBoolean     = "boolean"
	TypeEnumeration = "enumeration"
	TypeJSON        = "json"
	TypeMedia       = "media"
	TypeRelation    = "relation"
	TypeComponent   = "component"
	TypeDynamicZone = "dynamiczone"
)

// Relation kinds.
const (
	RelationOneWay      = "oneWay"
	RelationManyWay     = "manyWay"
	RelationOneToOne    = "oneToOne"
	RelationOneToMany   = "oneToMany"
	RelationManyToOne   = "manyToOne"
	RelationManyToMany  = "manyToMany"
	RelationMorphToMany = "morphToMany"
)

var inverseRelations = map[string]string{
	RelationOneToOne:   RelationOneToOne,
	RelationOneToMany:  RelationManyToOne,
	RelationManyToOne:  RelationOneToMany,
	RelationManyToMany: RelationManyToMany,
}

// RelationKinds lists every relation kind in picker order.
func RelationKinds() []string {
	return []string{
		RelationOneWay,
		RelationOneToOne,
		RelationOneToMany,
		RelationManyToOne,
		RelationManyToMany,
		RelationManyWay,
		RelationMorphToMany,
	}
}

// IsRelationKind reports whether kind is a known relation kind.
func IsRelationKind(kind string) bool {
	for _, k := range RelationKinds() {
		if k == kind {
			return true
		}
	}
	return false
}

// InverseRelation returns the relation kind seen from the target side.
// One-way kinds have no inverse.
func InverseRelation(kind string) (string, bool) {
	inv, ok := inverseRelations[kind]
	return inv, ok
}

// IsBidirectional reports whether kind carries a field on the target side.
func IsBidirectional(kind string) bool {
	_, ok := inverseRelations[kind]
	return ok
}

// IsSingleRelation reports whether kind holds at most one related entry.
func IsSingleRelation(kind string) bool {
	switch kind {
	case RelationOneWay, RelationOneToOne, RelationManyToOne:
		return true
	}
	return false
}

// Attribute is a schema attribute (or an in-progress draft of one).
// Keys follow the stored schema shape: name, type, enum, min, max,
// relation, target, targetAttribute, component, components, conditions...
type Attribute map[string]any

// Name returns the attribute name
func (a Attribute) Name() string { return a.String("name") }

// Type returns the attribute type
func (a Attribute) Type() string { return a.String("type") }

// Relation returns the relation kind for relation attributes
func (a Attribute) Relation() string { return a.String("relation") }

// Target returns the relation target uid
func (a Attribute) Target() string { return a.String("target") }

// TargetAttribute returns the name of the inverse field on the target
func (a Attribute) TargetAttribute() string { return a.String("targetAttribute") }

// Component returns the component uid of a component attribute
func (a Attribute) Component() string { return a.String("component") }

// CustomField returns the custom field uid, if any
func (a Attribute) CustomField() string { return a.String("customField") }

// Components returns the component uids of a dynamic zone
func (a Attribute) Components() []string { return toStrings(a["components"]) }

// Enum returns the allowed values of an enumeration
func (a Attribute) Enum() []string { return toStrings(a["enum"]) }

// String returns the value at key when it is a string.
func (a Attribute) String(key string) string {
	if s, ok := a[key].(string); ok {
		return s
	}
	return ""
}

// Bool returns the value at key when it is a bool.
func (a Attribute) Bool(key string) bool {
	b, _ := a[key].(bool)
	return b
}

// Number returns the numeric value at key. Strings holding a number are
// accepted because form input arrives as text.
func (a Attribute) Number(key string) (float64, bool) {
	return toFloat(a[key])
}

// Clone returns a deep copy.
func (a Attribute) Clone() Attribute {
	if a == nil {
		return nil
	}
	return Attribute(cloneMap(a))
}

// VisibleCondition returns the parsed conditions.visible expression.
func (a Attribute) VisibleCondition() (Condition, bool) {
	conditions := asMap(a["conditions"])
	if conditions == nil {
		return Condition{}, false
	}
	return ParseCondition(conditions["visible"])
}

// Merge applies patch on top of a copy of a. A nil value in patch removes
// the key.
func (a Attribute) Merge(patch Attribute) Attribute {
	out := a.Clone()
	if out == nil {
		out = Attribute{}
	}
	for k, v := range patch {
		if v == nil {
			delete(out, k)
			continue
		}
		out[k] = cloneValue(v)
	}
	return out
}

// Compact returns a copy without nil values.
func (a Attribute) Compact() Attribute {
	out := make(Attribute, len(a))
	for k, v := range a {
		if v != nil {
			out[k] = cloneValue(v)
		}
	}
	return out
}

// Condition is a single JSON-logic comparison against another field:
// {op: [{var: Var}, Value]}.
type Condition struct {
	Op    string
	Var   string
	Value any
}

// ParseCondition parses a JSON-logic expression of the form
// {"==": [{"var": "status"}, "draft"]}.
func ParseCondition(expr any) (Condition, bool) {
	m := asMap(expr)
	if len(m) != 1 {
		return Condition{}, false
	}
	for op, args := range m {
		list, ok := args.([]any)
		if !ok || len(list) != 2 {
			return Condition{}, false
		}
		ref := asMap(list[0])
		name, ok := ref["var"].(string)
		if !ok || name == "" {
			return Condition{}, false
		}
		return Condition{Op: op, Var: name, Value: list[1]}, true
	}
	return Condition{}, false
}

// Expression renders c back into its JSON-logic form.
func (c Condition) Expression() map[string]any {
	return map[string]any{
		c.Op: []any{map[string]any{"var": c.Var}, cloneValue(c.Value)},
	}
}

// Values returns the comparison values as strings. A list value (as used
// by "in") yields every element.
func (c Condition) Values() []string {
	switch v := c.Value.(type) {
	case nil:
		return nil
	case []any, []string:
		return toStrings(v)
	default:
		return []string{fmt.Sprint(v)}
	}
}

// VisibleWhen builds a conditions object for a visibility rule.
func VisibleWhen(op, field string, value any) map[string]any {
	return map[string]any{
		"visible": Condition{Op: op, Var: field, Value: value}.Expression(),
	}
}

var visibleWhenPattern = regexp.MustCompile(`^\s*([A-Za-z_][A-Za-z0-9_]*)\s*(==|!=)\s*(.*?)\s*$`)

// ParseVisibleWhen turns "status==draft" into a conditions object. Values
// that parse as booleans are stored as booleans.
func ParseVisibleWhen(expr string) (map[string]any, bool) {
	m := visibleWhenPattern.FindStringSubmatch(expr)
	if m == nil {
		return nil, false
	}
	var value any = m[3]
	if b, err := strconv.ParseBool(m[3]); err == nil {
		value = b
	}
	return VisibleWhen(m[2], m[1], value), true
}

// String formats the condition the way ParseVisibleWhen reads it.
func (c Condition) String() string {
	return fmt.Sprintf("%s%s%v", c.Var, c.Op, c.Value)
}

// AttributeNames returns the names of attrs in order.
func AttributeNames(attrs []Attribute) []string {
	names := make([]string, 0, len(attrs))
	for _, a := range attrs {
		names = append(names, a.Name())
	}
	return names
}

func toStrings(v any) []string {
	switch list := v.(type) {
	case []string:
		out := make([]string, len(list))
		copy(out, list)
		return out
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if item == nil {
				continue
			}
			out = append(out, fmt.Sprint(item))
		}
		return out
	case string:
		if list == "" {
			return nil
		}
		return []string{list}
	}
	return nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

func asMap(v any) map[string]any {
	switch m := v.(type) {
	case map[string]any:
		return m
	case Attribute:
		return m
	}
	return nil
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return cloneMap(val)
	case Attribute:
		return Attribute(cloneMap(val))
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		out := make([]string, len(val))
		copy(out, val)
		return out
	case []Attribute:
		out := make([]Attribute, len(val))
		for i, item := range val {
			out[i] = item.Clone()
		}
		return out
	}
	return v
}

// CloneValue deep-copies maps and slices found in schema payloads.
func CloneValue(v any) any { return cloneValue(v) }

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
