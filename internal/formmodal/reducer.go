// Package formmodal holds the draft being edited in the builder modal and
// the pure reducer that evolves it.
package formmodal

import (
	"reflect"
	"strings"

	"github.com/jontk/ctb/internal/schema"
)

// FormErrors maps a dotted field path to its error message.
type FormErrors map[string]string

// Clone returns a copy of e
func (e FormErrors) Clone() FormErrors {
	out := make(FormErrors, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// State is the reducer state. Reduce never mutates a State it receives.
type State struct {
	FormErrors                           FormErrors
	InitialData                          map[string]any
	ModifiedData                         map[string]any
	ComponentToCreate                    map[string]any
	IsCreatingComponentWhileAddingAField bool
}

// InitialState returns an empty state
func InitialState() State {
	return State{
		FormErrors:        FormErrors{},
		InitialData:       map[string]any{},
		ModifiedData:      map[string]any{},
		ComponentToCreate: map[string]any{},
	}
}

// Clone returns a deep copy of s
func (s State) Clone() State {
	return State{
		FormErrors:                           s.FormErrors.Clone(),
		InitialData:                          cloneData(s.InitialData),
		ModifiedData:                         cloneData(s.ModifiedData),
		ComponentToCreate:                    cloneData(s.ComponentToCreate),
		IsCreatingComponentWhileAddingAField: s.IsCreatingComponentWhileAddingAField,
	}
}

// Get returns the value at a dotted path in the modified data.
func (s State) Get(path string) any {
	return getIn(s.ModifiedData, strings.Split(path, "."))
}

// HasChanges reports whether the draft differs from what was loaded.
func HasChanges(s State) bool {
	return !reflect.DeepEqual(normalize(s.InitialData), normalize(s.ModifiedData))
}

// Fields whose empty-string input is stored as nil.
var nullableOnEmpty = map[string]bool{
	"enumName":  true,
	"max":       true,
	"min":       true,
	"maxLength": true,
	"minLength": true,
	"regex":     true,
	"default":   true,
}

// Errors on the key are cleared together with the errors on the value.
var pairedErrors = map[string]string{
	"max":       "min",
	"maxLength": "minLength",
}

// Reduce applies action to a copy of state.
func Reduce(state State, action Action) State {
	next := state.Clone()

	switch a := action.(type) {
	case SetDataToEdit:
		data := cloneData(a.Data)
		next.InitialData = data
		next.ModifiedData = cloneData(data)

	case OnChange:
		if len(a.Keys) == 0 {
			return next
		}
		last := a.Keys[len(a.Keys)-1]
		value := a.Value
		switch {
		case nullableOnEmpty[last] && value == "":
			value = nil
		case last == "enum":
			value = normalizeEnum(value)
		}

		prefix := strings.Join(a.Keys[:len(a.Keys)-1], ".")
		delete(next.FormErrors, strings.Join(a.Keys, "."))
		if paired, ok := pairedErrors[last]; ok {
			delete(next.FormErrors, joinPath(prefix, paired))
		}
		next.ModifiedData = setIn(next.ModifiedData, a.Keys, value)

	case SetErrors:
		next.FormErrors = a.Errors.Clone()

	case ResetProps:
		return InitialState()

	case SetAttributeDataSchema:
		data := attributeSeed(a)
		next.InitialData = data
		next.ModifiedData = cloneData(data)

	case SetCustomFieldDataSchema:
		var data map[string]any
		if a.IsEditing {
			data = cloneData(a.ModifiedDataToSetForEditing)
		} else {
			data = map[string]any{"type": a.Type, "customField": a.CustomFieldUID}
			for k, v := range a.Defaults {
				data[k] = schema.CloneValue(v)
			}
		}
		next.InitialData = data
		next.ModifiedData = cloneData(data)

	case SetDynamicZoneDataSchema:
		data := cloneData(a.AttributeToEdit)
		next.InitialData = data
		next.ModifiedData = cloneData(data)

	case ResetPropsAndSetFormForAddingAnExistingCompo:
		next = InitialState()
		next.ModifiedData = map[string]any{
			"type":       schema.TypeComponent,
			"repeatable": true,
		}

	case ResetPropsAndSaveCurrentData:
		toCreate := asMap(next.ModifiedData["componentToCreate"])
		creating, _ := next.ModifiedData["createComponent"].(bool)
		displayName, _ := toCreate["displayName"].(string)
		category, _ := toCreate["category"].(string)

		next = InitialState()
		next.ComponentToCreate = cloneData(toCreate)
		next.IsCreatingComponentWhileAddingAField = creating
		next.ModifiedData = map[string]any{
			"name":       schema.SnakeCase(displayName),
			"type":       schema.TypeComponent,
			"repeatable": false,
			"component":  schema.CreateComponentUID(displayName, category),
		}

	case ResetPropsAndSetTheFormForAddingACompoToADz:
		dz := cloneData(next.ModifiedData)
		dz["createComponent"] = true
		dz["componentToCreate"] = map[string]any{"type": schema.TypeComponent}
		next = InitialState()
		next.ModifiedData = dz

	case OnChangeRelationTarget:
		next.ModifiedData["target"] = a.Target
		if ta, ok := next.ModifiedData["targetAttribute"].(string); ok && ta != "" && !a.IsEditing {
			next.ModifiedData["targetAttribute"] = schema.SnakeCase(a.OwnerDisplayName)
		}
		if !a.IsEditing {
			next.ModifiedData["name"] = schema.SnakeCase(a.TargetDisplayName)
		}

	case OnChangeRelationType:
		next.ModifiedData["relation"] = a.RelationType
		if schema.IsBidirectional(a.RelationType) {
			if ta, _ := next.ModifiedData["targetAttribute"].(string); ta == "" {
				next.ModifiedData["targetAttribute"] = schema.SnakeCase(a.OwnerDisplayName)
			}
		} else {
			next.ModifiedData["targetAttribute"] = nil
		}
	}

	return next
}

func attributeSeed(a SetAttributeDataSchema) map[string]any {
	if a.IsEditing {
		return cloneData(a.ModifiedDataToSetForEditing)
	}

	switch a.AttributeType {
	case schema.TypeComponent:
		if a.Step == 1 {
			return map[string]any{
				"type":              schema.TypeComponent,
				"createComponent":   true,
				"componentToCreate": map[string]any{"type": schema.TypeComponent},
			}
		}
		return map[string]any{"type": schema.TypeComponent, "repeatable": true}
	case schema.TypeDynamicZone:
		return map[string]any{"type": schema.TypeDynamicZone, "components": []string{}}
	case schema.TypeText:
		return map[string]any{"type": schema.TypeString}
	case schema.TypeNumber:
		return map[string]any{"type": schema.TypeInteger}
	case schema.TypeDate:
		return map[string]any{"type": schema.TypeDate}
	case schema.TypeMedia:
		return map[string]any{
			"type":         schema.TypeMedia,
			"multiple":     true,
			"allowedTypes": []string{"images", "files", "videos", "audios"},
		}
	case schema.TypeEnumeration:
		return map[string]any{"type": schema.TypeEnumeration, "enum": []string{}}
	case schema.TypeRelation:
		target := a.TargetUID
		if target == "" {
			target = a.UID
		}
		return map[string]any{
			"name":            schema.SnakeCase(a.NameToSetForRelation),
			"relation":        schema.RelationOneToOne,
			"targetAttribute": nil,
			"target":          target,
			"type":            schema.TypeRelation,
		}
	}
	return map[string]any{"type": a.AttributeType}
}

// normalizeEnum turns the enum input into a list. A string holds one value
// per line, as typed in the enum textarea.
func normalizeEnum(v any) []string {
	switch val := v.(type) {
	case nil:
		return []string{}
	case string:
		if val == "" {
			return []string{}
		}
		return strings.Split(val, "\n")
	case []string:
		out := make([]string, len(val))
		copy(out, val)
		return out
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return []string{}
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

func getIn(data map[string]any, keys []string) any {
	var cur any = data
	for _, k := range keys {
		m := asMap(cur)
		if m == nil {
			return nil
		}
		cur = m[k]
	}
	return cur
}

// setIn returns data with value stored at keys, creating maps on the way.
// data is expected to be a private copy.
func setIn(data map[string]any, keys []string, value any) map[string]any {
	if data == nil {
		data = map[string]any{}
	}
	if len(keys) == 1 {
		data[keys[0]] = value
		return data
	}
	child := asMap(data[keys[0]])
	if child == nil {
		child = map[string]any{}
	}
	data[keys[0]] = setIn(child, keys[1:], value)
	return data
}

func asMap(v any) map[string]any {
	switch m := v.(type) {
	case map[string]any:
		return m
	case schema.Attribute:
		return m
	}
	return nil
}

func cloneData(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	out, _ := schema.CloneValue(m).(map[string]any)
	return out
}

// normalize makes typed and untyped slices compare equal.
func normalize(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			if item == nil {
				continue
			}
			out[k] = normalize(item)
		}
		return out
	case schema.Attribute:
		return normalize(map[string]any(val))
	case []string:
		out := make([]any, len(val))
		for i, s := range val {
			out[i] = s
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalize(item)
		}
		return out
	}
	return v
}
