package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttributeAccessors(t *testing.T) {
	a := Attribute{
		"name":       "tags",
		"type":       TypeEnumeration,
		"enum":       []any{"a", "b"},
		"max":        "10",
		"components": []string{"shared.seo"},
	}

	assert.Equal(t, "tags", a.Name())
	assert.Equal(t, TypeEnumeration, a.Type())
	assert.Equal(t, []string{"a", "b"}, a.Enum())
	assert.Equal(t, []string{"shared.seo"}, a.Components())

	n, ok := a.Number("max")
	require.True(t, ok)
	assert.Equal(t, 10.0, n)

	_, ok = a.Number("min")
	assert.False(t, ok)
}

func TestAttributeCloneIsDeep(t *testing.T) {
	a := Attribute{
		"name":       "note",
		"enum":       []string{"x"},
		"conditions": VisibleWhen("==", "status", "draft"),
	}
	c := a.Clone()

	c["enum"].([]string)[0] = "y"
	c["conditions"].(map[string]any)["visible"] = nil

	assert.Equal(t, []string{"x"}, a.Enum())
	_, ok := a.VisibleCondition()
	assert.True(t, ok)
}

func TestAttributeMerge(t *testing.T) {
	base := Attribute{"name": "title", "type": TypeString, "minLength": 3, "regex": "^a"}
	merged := base.Merge(Attribute{"name": "heading", "regex": nil})

	assert.Equal(t, Attribute{"name": "heading", "type": TypeString, "minLength": 3}, merged)
	assert.Equal(t, "^a", base["regex"], "merge must not touch the receiver")
}

func TestParseCondition(t *testing.T) {
	tests := []struct {
		name   string
		expr   any
		ok     bool
		want   Condition
		values []string
	}{
		{
			name:   "equality",
			expr:   map[string]any{"==": []any{map[string]any{"var": "status"}, "draft"}},
			ok:     true,
			want:   Condition{Op: "==", Var: "status", Value: "draft"},
			values: []string{"draft"},
		},
		{
			name:   "in list",
			expr:   map[string]any{"in": []any{map[string]any{"var": "kind"}, []any{"a", "b"}}},
			ok:     true,
			want:   Condition{Op: "in", Var: "kind", Value: []any{"a", "b"}},
			values: []string{"a", "b"},
		},
		{
			name: "missing var",
			expr: map[string]any{"==": []any{map[string]any{}, "x"}},
		},
		{
			name: "two operators",
			expr: map[string]any{"==": []any{}, "!=": []any{}},
		},
		{
			name: "not a map",
			expr: "status",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseCondition(tt.expr)
			assert.Equal(t, tt.ok, ok)
			if !tt.ok {
				return
			}
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.values, got.Values())
		})
	}
}

func TestVisibleWhenRoundTrip(t *testing.T) {
	a := Attribute{"name": "note", "conditions": VisibleWhen("!=", "status", "published")}

	c, ok := a.VisibleCondition()
	require.True(t, ok)
	assert.Equal(t, "status", c.Var)
	assert.Equal(t, "!=", c.Op)
	assert.Equal(t, []string{"published"}, c.Values())
}

func TestRelationHelpers(t *testing.T) {
	inv, ok := InverseRelation(RelationOneToMany)
	require.True(t, ok)
	assert.Equal(t, RelationManyToOne, inv)

	_, ok = InverseRelation(RelationOneWay)
	assert.False(t, ok)

	assert.True(t, IsBidirectional(RelationManyToMany))
	assert.False(t, IsBidirectional(RelationManyWay))
	assert.True(t, IsSingleRelation(RelationManyToOne))
	assert.False(t, IsSingleRelation(RelationOneToMany))
	assert.True(t, IsRelationKind(RelationMorphToMany))
	assert.False(t, IsRelationKind("sideways"))
}
