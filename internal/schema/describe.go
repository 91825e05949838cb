package schema

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Humanize turns identifiers such as collectionType or UNCHANGED into
// "Collection Type" and "Unchanged".
func Humanize(s string) string {
	var b strings.Builder
	prevLower := false
	for _, r := range s {
		if unicode.IsUpper(r) && prevLower {
			b.WriteRune(' ')
		}
		prevLower = unicode.IsLower(r)
		if r == '_' || r == '-' {
			r = ' '
		}
		b.WriteRune(r)
	}
	return cases.Title(language.English).String(strings.ToLower(b.String()))
}

// Summary describes the attribute's target, values and flags in one line,
// e.g. "manyToOne → api::author.author.articles, required".
func (a Attribute) Summary() string {
	var parts []string
	switch a.Type() {
	case TypeRelation:
		rel := a.Relation() + " → " + a.Target()
		if inverse := a.TargetAttribute(); inverse != "" {
			rel += "." + inverse
		}
		parts = append(parts, rel)
	case TypeComponent:
		c := a.Component()
		if a.Bool("repeatable") {
			c += " (repeatable)"
		}
		parts = append(parts, c)
	case TypeDynamicZone:
		parts = append(parts, strings.Join(a.Components(), ", "))
	case TypeEnumeration:
		parts = append(parts, strings.Join(a.Enum(), " | "))
	}
	if cf := a.CustomField(); cf != "" {
		parts = append(parts, cf)
	}
	if a.Bool("required") {
		parts = append(parts, "required")
	}
	if a.Bool("unique") {
		parts = append(parts, "unique")
	}
	if cond, ok := a.VisibleCondition(); ok {
		parts = append(parts, fmt.Sprintf("visible when %s %s %v", cond.Var, cond.Op, cond.Value))
	}
	return strings.Join(parts, ", ")
}
