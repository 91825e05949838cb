package validation

import (
	"regexp"
	"slices"
	"strings"

	"github.com/jontk/ctb/internal/plugin"
	"github.com/jontk/ctb/internal/schema"
)

var enumValuePattern = regexp.MustCompile(`^\p{L}`)

// AttributeParams is the context of an attribute form.
type AttributeParams struct {
	// Entity owns the attribute.
	Entity *schema.EntitySchema
	// AttributeType is the type picked in the wizard. The draft's own type
	// takes precedence when set.
	AttributeType string
	Reserved      ReservedNames
	// TakenTargetAttributes are the attribute names of the relation target,
	// without the attribute's current inverse field on edit.
	TakenTargetAttributes []string
	// InitialName is the name of the attribute being edited.
	InitialName string
}

// Attribute returns the validator of the attribute form.
func Attribute(p AttributeParams) *Schema {
	return NewSchema(nameRules(p), boundRules(), typeRules(p))
}

// CustomFieldParams is the context of a custom field form.
type CustomFieldParams struct {
	Entity      *schema.EntitySchema
	Reserved    ReservedNames
	InitialName string
	Field       *plugin.CustomField
}

// CustomField returns the validator of a custom field form. The field's
// own validator runs as an extra group.
func CustomField(p CustomFieldParams) *Schema {
	attr := AttributeParams{Entity: p.Entity, Reserved: p.Reserved, InitialName: p.InitialName}
	if p.Field != nil {
		attr.AttributeType = p.Field.Type
	}
	s := NewSchema(nameRules(attr), boundRules())
	if p.Field == nil || p.Field.Validator == nil {
		return s
	}
	return s.WithCheck(FieldCheck(p.Field.Validator))
}

func nameRules(p AttributeParams) []Rule {
	return []Rule{
		required("name"),
		matches("name", identifierPattern, MsgIdentifier),
		{Field: "name", Check: func(d schema.Attribute) string {
			if p.Reserved.IsReservedAttribute(d.Name()) {
				return MsgReserved
			}
			return ""
		}},
		{Field: "name", Check: func(d schema.Attribute) string {
			if p.Entity == nil {
				return ""
			}
			name := d.Name()
			for _, existing := range p.Entity.AttributeNames() {
				if existing == p.InitialName && p.InitialName != "" {
					continue
				}
				if strings.EqualFold(existing, name) {
					return MsgUnique
				}
			}
			return ""
		}},
	}
}

func boundRules() []Rule {
	return []Rule{
		number("min", false),
		number("max", false),
		number("minLength", true),
		number("maxLength", true),
		lowerBound("min", "max"),
		lowerBound("minLength", "maxLength"),
		{Field: "regex", Check: func(d schema.Attribute) string {
			if re := d.String("regex"); re != "" {
				if _, err := regexp.Compile(re); err != nil {
					return MsgRegex
				}
			}
			return ""
		}},
	}
}

func number(field string, positive bool) Rule {
	return Rule{Field: field, Check: func(d schema.Attribute) string {
		if !present(d, field) {
			return ""
		}
		n, ok := d.Number(field)
		switch {
		case !ok:
			return MsgNumber
		case positive && n < 0:
			return MsgPositive
		}
		return ""
	}}
}

// lowerBound reports the error on the lower bound.
func lowerBound(lower, upper string) Rule {
	return Rule{Field: lower, Check: func(d schema.Attribute) string {
		lo, okLo := d.Number(lower)
		hi, okHi := d.Number(upper)
		if okLo && okHi && lo > hi {
			return MsgMinGreaterMax
		}
		return ""
	}}
}

func typeRules(p AttributeParams) []Rule {
	attrType := func(d schema.Attribute) string {
		if t := d.Type(); t != "" {
			return t
		}
		return p.AttributeType
	}
	when := func(t string, r Rule) Rule {
		check := r.Check
		r.Check = func(d schema.Attribute) string {
			if attrType(d) != t {
				return ""
			}
			return check(d)
		}
		return r
	}

	return []Rule{
		when(schema.TypeEnumeration, Rule{Field: "enum", Check: func(d schema.Attribute) string {
			values := d.Enum()
			if len(values) == 0 {
				return MsgEnumEmpty
			}
			seen := map[string]bool{}
			for _, v := range values {
				v = strings.TrimSpace(v)
				if !enumValuePattern.MatchString(v) {
					return MsgEnumValue
				}
				if seen[v] {
					return MsgEnumDuplicate
				}
				seen[v] = true
			}
			return ""
		}}),
		when(schema.TypeEnumeration, Rule{Field: "default", Check: func(d schema.Attribute) string {
			def := d.String("default")
			if def != "" && !slices.Contains(d.Enum(), def) {
				return MsgDefaultNotInEnum
			}
			return ""
		}}),
		when(schema.TypeEnumeration, matches("enumName", identifierPattern, MsgIdentifier)),

		when(schema.TypeRelation, required("target")),
		when(schema.TypeRelation, Rule{Field: "relation", Check: func(d schema.Attribute) string {
			rel := d.Relation()
			if !schema.IsRelationKind(rel) {
				return MsgRelationKind
			}
			if p.Entity != nil && p.Entity.ModelType == schema.ModelComponent &&
				rel != schema.RelationOneWay && rel != schema.RelationManyWay {
				return MsgComponentRelation
			}
			return ""
		}}),
		when(schema.TypeRelation, Rule{Field: "targetAttribute", Check: func(d schema.Attribute) string {
			if !schema.IsBidirectional(d.Relation()) {
				return ""
			}
			ta := d.TargetAttribute()
			switch {
			case strings.TrimSpace(ta) == "":
				return MsgRequired
			case !identifierPattern.MatchString(ta):
				return MsgIdentifier
			case p.Reserved.IsReservedAttribute(ta):
				return MsgReserved
			case slices.Contains(p.TakenTargetAttributes, ta):
				return MsgTargetAttribute
			case p.Entity != nil && d.Target() == p.Entity.UID && ta == d.Name():
				return MsgSelfRelation
			}
			return ""
		}}),

		when(schema.TypeComponent, required("component")),

		when(schema.TypeUID, Rule{Field: "targetField", Check: func(d schema.Attribute) string {
			field := d.String("targetField")
			if field == "" || p.Entity == nil {
				return ""
			}
			target, _ := p.Entity.Attribute(field)
			if target == nil || (target.Type() != schema.TypeString && target.Type() != schema.TypeText) {
				return MsgTargetField
			}
			return ""
		}}),
	}
}
