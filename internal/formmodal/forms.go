package formmodal

import (
	"strconv"
	"strings"

	"github.com/jontk/ctb/internal/navigation"
	"github.com/jontk/ctb/internal/schema"
)

// InputKind tells a front end which widget renders an input.
type InputKind string

const (
	InputText       InputKind = "text"
	InputTextArea   InputKind = "textarea"
	InputNumber     InputKind = "number"
	InputCheckbox   InputKind = "checkbox"
	InputSelect     InputKind = "select"
	InputMulti      InputKind = "multiselect"
	InputEnum       InputKind = "enum"
	InputTarget     InputKind = "relationTarget"
	InputComponent  InputKind = "component"
	InputComponents InputKind = "components"
	InputCategory   InputKind = "category"
	InputIcon       InputKind = "icon"
	InputConditions InputKind = "conditions"
)

// ParseNumber converts the text of a number input. Integers become int,
// matching what yaml.v3 decodes, and decimals float64; anything else is returned as typed so validation
// reports it, and "" stays "" for the reducer to clear.
func ParseNumber(text string) any {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	if n, err := strconv.ParseInt(text, 10, 0); err == nil {
		return int(n)
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil {
		return f
	}
	return text
}

// Input describes one form field. Name is the dotted path handed to OnChange.
type Input struct {
	Name    string
	Label   string
	Kind    InputKind
	Options []string
}

// PickerTypes lists the attribute types offered by the picker.
func PickerTypes(forTarget schema.ModelType, nestedComponent bool) []string {
	all := []string{
		schema.TypeText, schema.TypeEmail, schema.TypeRichText, schema.TypeBlocks,
		schema.TypePassword, schema.TypeNumber, schema.TypeEnumeration, schema.TypeDate,
		schema.TypeMedia, schema.TypeBoolean, schema.TypeJSON, schema.TypeRelation,
		schema.TypeUID, schema.TypeComponent, schema.TypeDynamicZone,
	}
	if forTarget != schema.ModelComponent {
		return all
	}
	out := make([]string, 0, len(all))
	for _, t := range all {
		if t == schema.TypeDynamicZone || (nestedComponent && t == schema.TypeComponent) {
			continue
		}
		out = append(out, t)
	}
	return out
}

var (
	nameInput       = Input{Name: "name", Label: "Name", Kind: InputText}
	requiredInput   = Input{Name: "required", Label: "Required field", Kind: InputCheckbox}
	privateInput    = Input{Name: "private", Label: "Private field", Kind: InputCheckbox}
	uniqueInput     = Input{Name: "unique", Label: "Unique field", Kind: InputCheckbox}
	defaultInput    = Input{Name: "default", Label: "Default value", Kind: InputText}
	minLengthInput  = Input{Name: "minLength", Label: "Minimum length", Kind: InputNumber}
	maxLengthInput  = Input{Name: "maxLength", Label: "Maximum length", Kind: InputNumber}
	minInput        = Input{Name: "min", Label: "Minimum value", Kind: InputNumber}
	maxInput        = Input{Name: "max", Label: "Maximum value", Kind: InputNumber}
	regexInput      = Input{Name: "regex", Label: "RegExp pattern", Kind: InputText}
	conditionsInput = Input{Name: "conditions", Label: "Visibility condition", Kind: InputConditions}
)

func componentToCreateInputs(prefix string) []Input {
	return []Input{
		{Name: prefix + "displayName", Label: "Display name", Kind: InputText},
		{Name: prefix + "category", Label: "Category", Kind: InputCategory},
		{Name: prefix + "icon", Label: "Icon", Kind: InputIcon},
	}
}

// Form returns the basic and advanced inputs of the modal described by nav
// for the current draft.
func Form(nav navigation.State, st State) (base, advanced []Input) {
	data := st.ModifiedData
	switch nav.ModalType {
	case navigation.ModalContentType:
		base = []Input{
			{Name: "displayName", Label: "Display name", Kind: InputText},
			{Name: "singularName", Label: "API ID (singular)", Kind: InputText},
			{Name: "pluralName", Label: "API ID (plural)", Kind: InputText},
		}
		if nav.IsEditing() {
			base = append(base, Input{
				Name: "kind", Label: "Type", Kind: InputSelect,
				Options: []string{string(schema.KindCollection), string(schema.KindSingle)},
			})
		}
		advanced = []Input{{Name: "draftAndPublish", Label: "Draft & publish", Kind: InputCheckbox}}
		return base, advanced

	case navigation.ModalComponent:
		return componentToCreateInputs(""), nil

	case navigation.ModalAddComponentToDynamicZone:
		base = []Input{{Name: "createComponent", Label: "Create a new component", Kind: InputCheckbox}}
		if creating, _ := data["createComponent"].(bool); creating {
			return append(base, componentToCreateInputs("componentToCreate.")...), nil
		}
		return append(base, Input{Name: "components", Label: "Components", Kind: InputComponents}), nil

	case navigation.ModalCustomField:
		base = []Input{nameInput}
		advanced = append(typeAdvanced(nav.AttributeType, data), conditionsInput)
		return base, advanced

	case navigation.ModalAttribute:
		return attributeForm(nav, st)
	}
	return nil, nil
}

func attributeForm(nav navigation.State, st State) (base, advanced []Input) {
	data := st.ModifiedData
	attrType := nav.AttributeType
	if t, _ := data["type"].(string); t != "" && attrType != schema.TypeRelation {
		attrType = t
	}

	switch nav.AttributeType {
	case schema.TypeComponent:
		if nav.Step == 1 {
			base = []Input{{Name: "createComponent", Label: "Create a new component", Kind: InputCheckbox}}
			if creating, _ := data["createComponent"].(bool); creating {
				base = append(base, componentToCreateInputs("componentToCreate.")...)
			}
			return base, nil
		}
		base = []Input{nameInput}
		if !st.IsCreatingComponentWhileAddingAField {
			base = append(base, Input{Name: "component", Label: "Component", Kind: InputComponent})
		}
		base = append(base, Input{Name: "repeatable", Label: "Repeatable component", Kind: InputCheckbox})
		advanced = []Input{requiredInput, privateInput}
		if repeatable, _ := data["repeatable"].(bool); repeatable {
			advanced = append(advanced, minInput, maxInput)
		}
		return base, append(advanced, conditionsInput)

	case schema.TypeDynamicZone:
		return []Input{nameInput}, []Input{requiredInput, minInput, maxInput}

	case schema.TypeRelation:
		base = []Input{
			nameInput,
			{Name: "relation", Label: "Relation", Kind: InputSelect, Options: schema.RelationKinds()},
			{Name: "target", Label: "Target", Kind: InputTarget},
		}
		if rel, _ := data["relation"].(string); schema.IsBidirectional(rel) {
			base = append(base, Input{Name: "targetAttribute", Label: "Field name on the target", Kind: InputText})
		}
		return base, []Input{privateInput, conditionsInput}
	}

	base = []Input{nameInput}
	switch attrType {
	case schema.TypeString, schema.TypeText:
		base = append(base, Input{Name: "type", Label: "Type", Kind: InputSelect,
			Options: []string{schema.TypeString, schema.TypeText}})
	case schema.TypeInteger, schema.TypeBigInteger, schema.TypeDecimal, schema.TypeFloat:
		base = append(base, Input{Name: "type", Label: "Number format", Kind: InputSelect,
			Options: []string{schema.TypeInteger, schema.TypeBigInteger, schema.TypeDecimal, schema.TypeFloat}})
	case schema.TypeDate, schema.TypeDateTime, schema.TypeTime:
		base = append(base, Input{Name: "type", Label: "Date format", Kind: InputSelect,
			Options: []string{schema.TypeDate, schema.TypeDateTime, schema.TypeTime}})
	case schema.TypeEnumeration:
		base = append(base, Input{Name: "enum", Label: "Values (one per line)", Kind: InputEnum})
	case schema.TypeMedia:
		base = append(base, Input{Name: "multiple", Label: "Multiple media", Kind: InputCheckbox})
	case schema.TypeUID:
		base = append(base, Input{Name: "targetField", Label: "Attached field", Kind: InputSelect})
	}
	return base, append(typeAdvanced(attrType, data), conditionsInput)
}

func typeAdvanced(attrType string, data map[string]any) []Input {
	switch attrType {
	case schema.TypeString, schema.TypeText, schema.TypeUID:
		return []Input{defaultInput, regexInput, requiredInput, uniqueInput, privateInput, maxLengthInput, minLengthInput}
	case schema.TypeEmail:
		return []Input{defaultInput, requiredInput, uniqueInput, privateInput, maxLengthInput, minLengthInput}
	case schema.TypePassword:
		return []Input{defaultInput, requiredInput, privateInput, maxLengthInput, minLengthInput}
	case schema.TypeRichText:
		return []Input{defaultInput, requiredInput, privateInput, maxLengthInput, minLengthInput}
	case schema.TypeInteger, schema.TypeBigInteger, schema.TypeDecimal, schema.TypeFloat:
		return []Input{defaultInput, requiredInput, uniqueInput, privateInput, maxInput, minInput}
	case schema.TypeDate, schema.TypeDateTime, schema.TypeTime:
		return []Input{defaultInput, requiredInput, uniqueInput, privateInput}
	case schema.TypeBoolean:
		return []Input{
			{Name: "default", Label: "Default value", Kind: InputSelect, Options: []string{"true", "false"}},
			requiredInput, privateInput,
		}
	case schema.TypeEnumeration:
		return []Input{
			{Name: "default", Label: "Default value", Kind: InputSelect, Options: schema.Attribute(data).Enum()},
			{Name: "enumName", Label: "Name override for GraphQL", Kind: InputText},
			requiredInput, privateInput,
		}
	case schema.TypeMedia:
		return []Input{
			{Name: "allowedTypes", Label: "Allowed types", Kind: InputMulti,
				Options: []string{"images", "videos", "audios", "files"}},
			requiredInput, privateInput,
		}
	}
	return []Input{requiredInput, privateInput}
}

// TabErrors counts errors per tab. Errors on paths no input claims are
// counted on the basic tab.
func TabErrors(errs FormErrors, base, advanced []Input) map[navigation.Tab]int {
	out := map[navigation.Tab]int{}
	for path := range errs {
		switch {
		case claims(advanced, path):
			out[navigation.TabAdvanced]++
		default:
			out[navigation.TabBasic]++
		}
	}
	return out
}

func claims(inputs []Input, path string) bool {
	for _, in := range inputs {
		if in.Name == path || strings.HasPrefix(path, in.Name+".") {
			return true
		}
	}
	return false
}
