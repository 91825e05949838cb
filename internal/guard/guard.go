// Package guard detects attribute edits that would break the visibility
// conditions of other attributes in the same schema.
package guard

import (
	"fmt"
	"slices"
	"strings"

	"github.com/jontk/ctb/internal/schema"
)

// Reason says why dependents break.
type Reason string

const (
	// ReasonRename is reported when the referenced attribute is renamed.
	ReasonRename Reason = "rename"
	// ReasonEnum is reported when enum values compared by conditions are
	// removed or changed.
	ReasonEnum Reason = "enum"
)

// Breakage describes the conditions an edit would break.
type Breakage struct {
	Field         string
	NewName       string
	Reason        Reason
	Dependents    []string
	RemovedValues []string
}

// Check compares the attribute before and after an edit against the
// conditions declared by its siblings. It returns nil when nothing breaks.
func Check(initial, modified schema.Attribute, siblings []schema.Attribute) *Breakage {
	field := initial.Name()
	if field == "" {
		return nil
	}

	type dependent struct {
		name string
		cond schema.Condition
	}
	var deps []dependent
	for _, s := range siblings {
		if s.Name() == field {
			continue
		}
		if cond, ok := s.VisibleCondition(); ok && cond.Var == field {
			deps = append(deps, dependent{name: s.Name(), cond: cond})
		}
	}
	if len(deps) == 0 {
		return nil
	}

	if newName := modified.Name(); newName != field {
		b := &Breakage{Field: field, NewName: newName, Reason: ReasonRename}
		for _, d := range deps {
			b.Dependents = append(b.Dependents, d.name)
		}
		return b
	}

	removed := removedValues(initial, modified)
	if len(removed) == 0 {
		return nil
	}
	b := &Breakage{Field: field, Reason: ReasonEnum, RemovedValues: removed}
	for _, d := range deps {
		if slices.ContainsFunc(d.cond.Values(), func(v string) bool { return slices.Contains(removed, v) }) {
			b.Dependents = append(b.Dependents, d.name)
		}
	}
	if len(b.Dependents) == 0 {
		return nil
	}
	return b
}

// removedValues lists the enum values of initial that modified no longer
// has. Changing the type away from enumeration removes every value.
func removedValues(initial, modified schema.Attribute) []string {
	if initial.Type() != schema.TypeEnumeration {
		return nil
	}
	var kept []string
	if modified.Type() == schema.TypeEnumeration {
		kept = modified.Enum()
	}
	var removed []string
	for _, v := range initial.Enum() {
		if !slices.Contains(kept, v) {
			removed = append(removed, v)
		}
	}
	return removed
}

// Message renders the confirmation prompt.
func (b *Breakage) Message() string {
	if b == nil {
		return ""
	}
	fields := strings.Join(b.Dependents, ", ")
	if b.Reason == ReasonEnum {
		return fmt.Sprintf("The following fields have conditions that depend on this field: %s. "+
			"Changing or removing the enum values %s will break these conditions. Do you want to proceed?",
			fields, strings.Join(b.RemovedValues, ", "))
	}
	return fmt.Sprintf("The following fields have conditions that depend on this field: %s. "+
		"Renaming it will break these conditions. Do you want to proceed?", fields)
}

// Error lets a Breakage travel as an error through the CLI.
func (b *Breakage) Error() string {
	return fmt.Sprintf("editing %q breaks the conditions of %s", b.Field, strings.Join(b.Dependents, ", "))
}
