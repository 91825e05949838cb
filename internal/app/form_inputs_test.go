package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jontk/ctb/internal/formmodal"
	"github.com/jontk/ctb/internal/navigation"
	"github.com/jontk/ctb/internal/schema"
)

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitList(" a, ,b ,"))
	assert.Equal(t, []string{}, splitList(""))
}

func TestValueString(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"string", "draft", "draft"},
		{"bool", true, "true"},
		{"strings", []string{"a", "b"}, "a, b"},
		{"any list", []any{"a", 1}, "a, 1"},
		{"number", 42, "42"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, valueString(tt.in))
		})
	}
}

func TestChoiceIndex(t *testing.T) {
	choices := []choice{{"None", ""}, {"true", true}, {"false", false}}
	assert.Equal(t, 1, choiceIndex(choices, true))
	assert.Equal(t, 2, choiceIndex(choices, false))
	assert.Equal(t, 0, choiceIndex(choices, nil), "nil matches the empty option")
	assert.Equal(t, -1, choiceIndex(choices, "maybe"))
}

func TestCompleteLast(t *testing.T) {
	candidates := []string{"shared.seo", "shared.quote", "sections.hero"}

	tests := []struct {
		name string
		text string
		want []string
	}{
		{"first item", "sha", []string{"shared.quote", "shared.seo"}},
		{"after a comma", "shared.seo, sec", []string{"shared.seo, sections.hero"}},
		{"skips chosen items", "shared.seo, shared", []string{"shared.seo, shared.quote"}},
		{"complete item", "sections.hero", nil},
		{"nothing typed", "shared.seo, ", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, completeLast(tt.text, candidates))
		})
	}
}

func TestConditionInput(t *testing.T) {
	cond, err := parseConditionInput("status == draft")
	require.NoError(t, err)
	assert.Equal(t, "status==draft", conditionText(cond))

	cond, err = parseConditionInput("featured!=true")
	require.NoError(t, err)
	assert.Equal(t, "featured!=true", conditionText(cond))

	cond, err = parseConditionInput("  ")
	require.NoError(t, err)
	assert.Nil(t, cond, "empty text clears the condition")
	assert.Equal(t, "", conditionText(nil))

	_, err = parseConditionInput("status is draft")
	assert.Error(t, err)
}

func TestTabsLine(t *testing.T) {
	assert.Equal(t, "[::bu]Basic settings[::-]", tabsLine(navigation.TabBasic, false, nil))
	assert.Equal(t,
		"Basic settings  |  [::bu]Advanced settings [red](2)[-][::-]",
		tabsLine(navigation.TabAdvanced, true, map[navigation.Tab]int{navigation.TabAdvanced: 2}))
}

func TestErrorLines(t *testing.T) {
	inputs := []formmodal.Input{
		{Name: "name", Label: "Name"},
		{Name: "min", Label: "Minimum value"},
	}
	errs := formmodal.FormErrors{
		"min":     "must be lower than max",
		"name":    "is required",
		"unknown": "oops",
	}
	assert.Equal(t,
		"[red]✗ Name: is required[-]\n"+
			"[red]✗ Minimum value: must be lower than max[-]\n"+
			"[red]✗ unknown: oops[-]\n"+
			"[red]✗ bad condition[-]",
		errorLines(errs, inputs, "bad condition"))
	assert.Empty(t, errorLines(nil, inputs, ""))
}

func TestPickerItems(t *testing.T) {
	a := newTestApp(t, testConfig())

	items := a.pickerItems(navigation.State{ForTarget: schema.ModelContentType, TargetUID: article})
	require.NotEmpty(t, items)
	assert.Equal(t, "Text", items[0].label)
	assert.Equal(t, 'a', items[0].shortcut)
	assert.Equal(t, navigation.SelectField{AttributeType: schema.TypeText}, items[0].event)

	var custom []string
	for _, item := range items {
		if ev, ok := item.event.(navigation.SelectCustomField); ok {
			custom = append(custom, ev.CustomFieldUID)
		}
	}
	assert.NotEmpty(t, custom, "builtin custom fields are offered")

	for _, item := range a.pickerItems(navigation.State{ForTarget: schema.ModelComponent, TargetUID: "shared.seo"}) {
		assert.NotEqual(t, schema.TypeDynamicZone, eventType(item.event), "components cannot hold dynamic zones")
	}
}

func TestChoicesFor(t *testing.T) {
	a := newTestApp(t, testConfig())
	nav := navigation.State{ForTarget: schema.ModelComponent, TargetUID: "shared.seo"}

	comps := a.choicesFor(nav, formmodal.Input{Name: "component", Kind: formmodal.InputComponent})
	require.Len(t, comps, 1, "a component cannot contain itself")
	assert.Equal(t, "sections.hero", comps[0].value)

	targets := a.choicesFor(nav, formmodal.Input{Name: "target", Kind: formmodal.InputTarget})
	require.Len(t, targets, 2)
	assert.Equal(t, "Article (api::article.article)", targets[0].label)

	nav = navigation.State{ForTarget: schema.ModelContentType, TargetUID: article, AttributeType: schema.TypeBoolean}
	defaults := a.choicesFor(nav, formmodal.Input{Name: "default", Kind: formmodal.InputSelect, Options: []string{"true", "false"}})
	assert.Equal(t, []choice{{"None", ""}, {"true", true}, {"false", false}}, defaults)

	fields := a.choicesFor(nav, formmodal.Input{Name: "targetField", Kind: formmodal.InputSelect})
	assert.Equal(t, []choice{{"None", ""}, {"title", "title"}}, fields)
}
