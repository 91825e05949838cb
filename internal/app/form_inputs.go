package app

import (
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/rivo/tview"

	"github.com/jontk/ctb/internal/formmodal"
	"github.com/jontk/ctb/internal/navigation"
	"github.com/jontk/ctb/internal/schema"
	"github.com/jontk/ctb/internal/ui/styles"
)

const fieldWidth = 40

// choice is one option of a drop-down
type choice struct {
	label string
	value any
}

// pickerItem is one row of the attribute picker
type pickerItem struct {
	label       string
	description string
	shortcut    rune
	event       navigation.Event
}

var typeDescriptions = map[string]string{
	schema.TypeText:        "Small or long text like title or description",
	schema.TypeEmail:       "Email field with format validation",
	schema.TypeRichText:    "A rich text editor with formatting options",
	schema.TypeBlocks:      "Rich text stored as JSON blocks",
	schema.TypePassword:    "Password field with encryption",
	schema.TypeNumber:      "Numbers (integer, float, decimal)",
	schema.TypeEnumeration: "List of values, then pick one",
	schema.TypeDate:        "A date picker with hours, minutes and seconds",
	schema.TypeMedia:       "Files like images and videos",
	schema.TypeBoolean:     "Yes or no, 1 or 0, true or false",
	schema.TypeJSON:        "Data in JSON format",
	schema.TypeRelation:    "Refers to a collection type",
	schema.TypeUID:         "Unique identifier",
	schema.TypeComponent:   "Group of fields that you can repeat or reuse",
	schema.TypeDynamicZone: "Dynamically pick components when editing content",
}

// pickerItems lists the attribute types the target accepts, then the custom fields
func (a *App) pickerItems(nav navigation.State) []pickerItem {
	nested := nav.ForTarget == schema.ModelComponent &&
		slices.Contains(a.registry.NestedComponents(), nav.TargetUID)

	var items []pickerItem
	for _, t := range formmodal.PickerTypes(nav.ForTarget, nested) {
		items = append(items, pickerItem{
			label:       schema.Humanize(t),
			description: typeDescriptions[t],
			event:       navigation.SelectField{AttributeType: t},
		})
	}
	for _, cf := range a.fields.List() {
		items = append(items, pickerItem{
			label:       cf.DisplayLabel(),
			description: "Custom field " + cf.UID(),
			event:       navigation.SelectCustomField{CustomFieldUID: cf.UID(), AttributeType: cf.Type},
		})
	}
	for i := range items {
		if i < 26 {
			items[i].shortcut = rune('a' + i)
		}
	}
	return items
}

// addInput adds the widget rendering in to form. Every edit goes through
// HandleChange; widgets whose value can change the form rebuild it.
func (a *App) addInput(form *tview.Form, nav navigation.State, st formmodal.State, in formmodal.Input) {
	value := st.Get(in.Name)
	label := in.Label

	switch in.Kind {
	case formmodal.InputCheckbox:
		checked, _ := value.(bool)
		form.AddCheckbox(label, checked, func(checked bool) {
			a.builder.HandleChange(in.Name, checked)
			a.rerender(label)
		})

	case formmodal.InputSelect, formmodal.InputTarget, formmodal.InputComponent:
		choices := a.choicesFor(nav, in)
		labels := make([]string, len(choices))
		for i, c := range choices {
			labels[i] = c.label
		}
		dd := styles.DropDown(tview.NewDropDown()).
			SetLabel(label).
			SetOptions(labels, nil).
			SetCurrentOption(choiceIndex(choices, value))
		dd.SetSelectedFunc(func(_ string, idx int) {
			if idx < 0 || idx >= len(choices) {
				return
			}
			if valueString(choices[idx].value) == valueString(a.builder.State().Get(in.Name)) {
				return
			}
			a.builder.HandleChange(in.Name, choices[idx].value)
			a.rerender(label)
		})
		form.AddFormItem(dd)

	case formmodal.InputEnum:
		text := strings.Join(schema.Attribute(st.ModifiedData).Enum(), "\n")
		form.AddTextArea(label, text, fieldWidth, 5, 0, func(text string) {
			a.builder.HandleChange(in.Name, text)
		})

	case formmodal.InputTextArea:
		form.AddTextArea(label, valueString(value), fieldWidth, 4, 0, func(text string) {
			a.builder.HandleChange(in.Name, text)
		})

	case formmodal.InputMulti, formmodal.InputComponents:
		candidates := in.Options
		if in.Kind == formmodal.InputComponents {
			candidates = a.registry.ComponentUIDs()
		}
		field := a.newField(label, strings.Join(listValue(value), ", "), func(text string) {
			a.builder.HandleChange(in.Name, splitList(text))
		})
		field.SetAutocompleteFunc(func(text string) []string { return completeLast(text, candidates) })
		form.AddFormItem(field)

	case formmodal.InputConditions:
		field := a.newField(label, conditionText(value), func(text string) {
			cond, err := parseConditionInput(text)
			if err != nil {
				a.conditionErr = err.Error()
				return
			}
			a.conditionErr = ""
			a.builder.HandleChange(in.Name, cond)
		})
		field.SetPlaceholder("e.g. status==draft")
		form.AddFormItem(field)

	case formmodal.InputNumber:
		field := a.newField(label, valueString(value), func(text string) {
			a.builder.HandleChange(in.Name, formmodal.ParseNumber(text))
		})
		field.SetAcceptanceFunc(func(text string, _ rune) bool {
			return strings.Trim(text, "-.0123456789") == ""
		})
		form.AddFormItem(field)

	case formmodal.InputCategory:
		field := a.newField(label, valueString(value), func(text string) {
			a.builder.HandleChange(in.Name, text)
		})
		categories := a.registry.Categories()
		field.SetAutocompleteFunc(func(text string) []string { return completeLast(text, categories) })
		form.AddFormItem(field)

	default:
		form.AddFormItem(a.newField(label, valueString(value), func(text string) {
			a.builder.HandleChange(in.Name, text)
		}))
	}
}

func (a *App) newField(label, text string, changed func(string)) *tview.InputField {
	field := styles.InputField(tview.NewInputField()).
		SetLabel(label).
		SetFieldWidth(fieldWidth).
		SetText(text)
	field.SetChangedFunc(changed)
	return field
}

// choicesFor returns the options of a drop-down input
func (a *App) choicesFor(nav navigation.State, in formmodal.Input) []choice {
	var out []choice
	switch {
	case in.Kind == formmodal.InputTarget:
		for _, e := range a.registry.AllowedRelationTargets() {
			out = append(out, choice{label: fmt.Sprintf("%s (%s)", e.DisplayName(), e.UID), value: e.UID})
		}

	case in.Kind == formmodal.InputComponent:
		for _, e := range a.registry.SortedComponents() {
			if nav.ForTarget == schema.ModelComponent && e.UID == nav.TargetUID {
				continue
			}
			out = append(out, choice{label: fmt.Sprintf("%s › %s", e.Category, e.DisplayName()), value: e.UID})
		}

	case in.Name == "targetField":
		out = append(out, choice{label: "None", value: ""})
		if e, err := a.registry.Get(nav.ForTarget, nav.TargetUID); err == nil {
			for _, attr := range e.Attributes {
				if t := attr.Type(); t == schema.TypeString || t == schema.TypeText {
					out = append(out, choice{label: attr.Name(), value: attr.Name()})
				}
			}
		}

	case in.Name == "default":
		out = append(out, choice{label: "None", value: ""})
		for _, o := range in.Options {
			var v any = o
			if nav.AttributeType == schema.TypeBoolean {
				v, _ = strconv.ParseBool(o)
			}
			out = append(out, choice{label: o, value: v})
		}

	default:
		for _, o := range in.Options {
			out = append(out, choice{label: o, value: o})
		}
	}
	return out
}

// choiceIndex returns the option matching value, or -1
func choiceIndex(choices []choice, value any) int {
	current := valueString(value)
	for i, c := range choices {
		if valueString(c.value) == current {
			return i
		}
	}
	return -1
}

// valueString renders a draft value in an input field
func valueString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case []string, []any:
		return strings.Join(listValue(val), ", ")
	default:
		return fmt.Sprint(val)
	}
}

// listValue converts a list value to strings
func listValue(v any) []string {
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			out = append(out, fmt.Sprint(item))
		}
		return out
	case string:
		return splitList(list)
	}
	return nil
}

// splitList parses a comma separated list, dropping empty items
func splitList(text string) []string {
	out := []string{}
	for _, item := range strings.Split(text, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// completeLast completes the last item of a comma separated list
func completeLast(text string, candidates []string) []string {
	head, last := "", text
	if i := strings.LastIndex(text, ","); i >= 0 {
		head, last = text[:i+1]+" ", text[i+1:]
	}
	last = strings.TrimSpace(last)
	if last == "" {
		return nil
	}
	taken := splitList(head)

	var out []string
	for _, c := range candidates {
		if strings.HasPrefix(c, last) && c != last && !slices.Contains(taken, c) {
			out = append(out, strings.TrimLeft(head, " ")+c)
		}
	}
	sort.Strings(out)
	return out
}

// conditionText shows a visibility condition as field==value
func conditionText(v any) string {
	if v == nil {
		return ""
	}
	cond, ok := schema.Attribute{"conditions": v}.VisibleCondition()
	if !ok {
		return ""
	}
	return cond.String()
}

// parseConditionInput reads a field==value condition; empty text clears it
func parseConditionInput(text string) (any, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	cond, ok := schema.ParseVisibleWhen(text)
	if !ok {
		return nil, fmt.Errorf("visibility condition must look like field==value or field!=value")
	}
	return cond, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
