package formmodal

// Action is a reducer input. The concrete types below are the only actions.
type Action interface {
	actionName() string
}

// SetDataToEdit loads data as both the initial and the modified draft.
type SetDataToEdit struct {
	Data map[string]any
}

// OnChange sets Value at the dotted path Keys.
type OnChange struct {
	Keys  []string
	Value any
}

// SetErrors replaces the form errors wholesale.
type SetErrors struct {
	Errors FormErrors
}

// ResetProps returns to the initial state.
type ResetProps struct{}

// SetAttributeDataSchema seeds the draft for an attribute modal.
type SetAttributeDataSchema struct {
	AttributeType               string
	IsEditing                   bool
	ModifiedDataToSetForEditing map[string]any
	// NameToSetForRelation and TargetUID describe the first allowed
	// relation target; UID is the entity owning the attribute.
	NameToSetForRelation string
	TargetUID            string
	Step                 int
	UID                  string
}

// SetCustomFieldDataSchema seeds the draft for a custom field modal.
type SetCustomFieldDataSchema struct {
	IsEditing                   bool
	ModifiedDataToSetForEditing map[string]any
	CustomFieldUID              string
	Type                        string
	Defaults                    map[string]any
	UID                         string
}

// SetDynamicZoneDataSchema seeds the draft of the add-components-to-zone modal.
type SetDynamicZoneDataSchema struct {
	AttributeToEdit map[string]any
}

// ResetPropsAndSetFormForAddingAnExistingCompo prepares step 2 when an
// existing component is attached.
type ResetPropsAndSetFormForAddingAnExistingCompo struct {
	UID string
}

// ResetPropsAndSaveCurrentData keeps the component being created inline
// and prepares step 2.
type ResetPropsAndSaveCurrentData struct {
	UID string
}

// ResetPropsAndSetTheFormForAddingACompoToADz keeps the new dynamic zone
// and switches the draft to component creation.
type ResetPropsAndSetTheFormForAddingACompoToADz struct{}

// OnChangeRelationTarget points a relation draft at another content type.
type OnChangeRelationTarget struct {
	Target            string
	TargetDisplayName string
	OwnerDisplayName  string
	IsEditing         bool
}

// OnChangeRelationType changes the relation kind of a relation draft.
type OnChangeRelationType struct {
	RelationType     string
	OwnerDisplayName string
}

func (SetDataToEdit) actionName() string            { return "setDataToEdit" }
func (OnChange) actionName() string                 { return "onChange" }
func (SetErrors) actionName() string                { return "setErrors" }
func (ResetProps) actionName() string               { return "resetProps" }
func (SetAttributeDataSchema) actionName() string   { return "setAttributeDataSchema" }
func (SetCustomFieldDataSchema) actionName() string { return "setCustomFieldDataSchema" }
func (SetDynamicZoneDataSchema) actionName() string { return "setDynamicZoneDataSchema" }
func (ResetPropsAndSetFormForAddingAnExistingCompo) actionName() string {
	return "resetPropsAndSetFormForAddingAnExistingCompo"
}
func (ResetPropsAndSaveCurrentData) actionName() string { return "resetPropsAndSaveCurrentData" }
func (ResetPropsAndSetTheFormForAddingACompoToADz) actionName() string {
	return "resetPropsAndSetTheFormForAddingACompoToADz"
}
func (OnChangeRelationTarget) actionName() string { return "onChangeRelationTarget" }
func (OnChangeRelationType) actionName() string   { return "onChangeRelationType" }

// Name returns the action's name for logging.
func Name(a Action) string {
	if a == nil {
		return ""
	}
	return a.actionName()
}
