package navigation

import (
	"github.com/jontk/ctb/internal/schema"
)

// Event is a user navigation event.
type Event interface {
	eventName() string
}

// OpenChooseAttribute opens the attribute picker for a target.
type OpenChooseAttribute struct {
	ForTarget schema.ModelType
	TargetUID string
}

// SelectField picks an attribute type in the picker.
type SelectField struct {
	AttributeType string
}

// SelectCustomField picks a custom field in the picker. AttributeType is
// the custom field's underlying type.
type SelectCustomField struct {
	CustomFieldUID string
	AttributeType  string
}

// OpenEditField opens the edit form of an existing attribute.
type OpenEditField struct {
	ForTarget     schema.ModelType
	TargetUID     string
	AttributeName string
	AttributeType string
}

// OpenEditCustomField opens the edit form of an existing custom field attribute.
type OpenEditCustomField struct {
	ForTarget      schema.ModelType
	TargetUID      string
	AttributeName  string
	AttributeType  string
	CustomFieldUID string
}

// OpenCreateSchema opens the content type or component creation form.
type OpenCreateSchema struct {
	ModalType ModalType
	Kind      schema.Kind
}

// OpenEditSchema opens the settings form of a content type or component.
type OpenEditSchema struct {
	ModalType ModalType
	TargetUID string
	Kind      schema.Kind
}

// OpenAddComponentsToDZ opens the add-components form of a dynamic zone.
type OpenAddComponentsToDZ struct {
	ForTarget         schema.ModelType
	TargetUID         string
	DynamicZoneTarget string
}

// NavigateToCreateComponentStep2 moves the component flow to its second step.
type NavigateToCreateComponentStep2 struct{}

// NavigateToAddCompoToDZ moves from a freshly named dynamic zone to its
// add-components form.
type NavigateToAddCompoToDZ struct {
	DynamicZoneTarget string
}

// SetActiveTab switches between the basic and advanced tabs.
type SetActiveTab struct {
	Tab Tab
}

// Back returns to the attribute picker.
type Back struct{}

// Close closes the modal.
type Close struct{}

func (OpenChooseAttribute) eventName() string            { return "openChooseAttribute" }
func (SelectField) eventName() string                    { return "selectField" }
func (SelectCustomField) eventName() string              { return "selectCustomField" }
func (OpenEditField) eventName() string                  { return "openEditField" }
func (OpenEditCustomField) eventName() string            { return "openEditCustomField" }
func (OpenCreateSchema) eventName() string               { return "openCreateSchema" }
func (OpenEditSchema) eventName() string                 { return "openEditSchema" }
func (OpenAddComponentsToDZ) eventName() string          { return "openAddComponentsToDZ" }
func (NavigateToCreateComponentStep2) eventName() string { return "navigateToCreateComponentStep2" }
func (NavigateToAddCompoToDZ) eventName() string         { return "navigateToAddCompoToDZ" }
func (SetActiveTab) eventName() string                   { return "setActiveTab" }
func (Back) eventName() string                           { return "back" }
func (Close) eventName() string                          { return "close" }

// EventName returns the event's name for logging.
func EventName(ev Event) string {
	if ev == nil {
		return ""
	}
	return ev.eventName()
}

// Transition returns the state after ev. Events that do not apply to s
// return an error matching ErrUnhandledTransition and s unchanged.
func Transition(s State, ev Event) (State, error) {
	switch e := ev.(type) {
	case OpenChooseAttribute:
		if !e.ForTarget.Valid() || e.TargetUID == "" {
			return s, unhandled(s, ev)
		}
		return State{
			IsOpen:     true,
			ModalType:  ModalChooseAttribute,
			ActionType: ActionCreate,
			ForTarget:  e.ForTarget,
			TargetUID:  e.TargetUID,
			ActiveTab:  TabBasic,
			ID:         newID(),
		}, nil

	case SelectField:
		if !s.IsOpen || s.ModalType != ModalChooseAttribute || e.AttributeType == "" {
			return s, unhandled(s, ev)
		}
		next := s
		next.ModalType = ModalAttribute
		next.ActionType = ActionCreate
		next.AttributeType = e.AttributeType
		next.AttributeName = ""
		next.Step = 0
		if e.AttributeType == schema.TypeComponent {
			next.Step = 1
		}
		next.ActiveTab = TabBasic
		next.ShowBackLink = true
		return next, nil

	case SelectCustomField:
		if !s.IsOpen || s.ModalType != ModalChooseAttribute || e.CustomFieldUID == "" {
			return s, unhandled(s, ev)
		}
		next := s
		next.ModalType = ModalCustomField
		next.ActionType = ActionCreate
		next.AttributeType = e.AttributeType
		next.CustomFieldUID = e.CustomFieldUID
		next.ActiveTab = TabBasic
		next.ShowBackLink = true
		return next, nil

	case OpenEditField:
		if !e.ForTarget.Valid() || e.TargetUID == "" || e.AttributeName == "" {
			return s, unhandled(s, ev)
		}
		step := 0
		if e.AttributeType == schema.TypeComponent {
			step = 2
		}
		return State{
			IsOpen:        true,
			ModalType:     ModalAttribute,
			ActionType:    ActionEdit,
			ForTarget:     e.ForTarget,
			TargetUID:     e.TargetUID,
			AttributeName: e.AttributeName,
			AttributeType: e.AttributeType,
			Step:          step,
			ActiveTab:     TabBasic,
			ID:            newID(),
		}, nil

	case OpenEditCustomField:
		if !e.ForTarget.Valid() || e.TargetUID == "" || e.AttributeName == "" || e.CustomFieldUID == "" {
			return s, unhandled(s, ev)
		}
		return State{
			IsOpen:         true,
			ModalType:      ModalCustomField,
			ActionType:     ActionEdit,
			ForTarget:      e.ForTarget,
			TargetUID:      e.TargetUID,
			AttributeName:  e.AttributeName,
			AttributeType:  e.AttributeType,
			CustomFieldUID: e.CustomFieldUID,
			ActiveTab:      TabBasic,
			ID:             newID(),
		}, nil

	case OpenCreateSchema:
		forTarget, ok := schemaTarget(e.ModalType)
		if !ok {
			return s, unhandled(s, ev)
		}
		kind := e.Kind
		if forTarget == schema.ModelContentType && kind == "" {
			kind = schema.KindCollection
		}
		return State{
			IsOpen:     true,
			ModalType:  e.ModalType,
			ActionType: ActionCreate,
			ForTarget:  forTarget,
			Kind:       kind,
			ActiveTab:  TabBasic,
			ID:         newID(),
		}, nil

	case OpenEditSchema:
		forTarget, ok := schemaTarget(e.ModalType)
		if !ok || e.TargetUID == "" {
			return s, unhandled(s, ev)
		}
		return State{
			IsOpen:     true,
			ModalType:  e.ModalType,
			ActionType: ActionEdit,
			ForTarget:  forTarget,
			TargetUID:  e.TargetUID,
			Kind:       e.Kind,
			ActiveTab:  TabBasic,
			ID:         newID(),
		}, nil

	case OpenAddComponentsToDZ:
		if !e.ForTarget.Valid() || e.TargetUID == "" || e.DynamicZoneTarget == "" {
			return s, unhandled(s, ev)
		}
		return State{
			IsOpen:            true,
			ModalType:         ModalAddComponentToDynamicZone,
			ActionType:        ActionEdit,
			ForTarget:         e.ForTarget,
			TargetUID:         e.TargetUID,
			DynamicZoneTarget: e.DynamicZoneTarget,
			Step:              1,
			ActiveTab:         TabBasic,
			ID:                newID(),
		}, nil

	case NavigateToCreateComponentStep2:
		if !s.IsOpen || s.ModalType != ModalAttribute || s.AttributeType != schema.TypeComponent || s.Step != 1 {
			return s, unhandled(s, ev)
		}
		next := s
		next.Step = 2
		next.ActiveTab = TabBasic
		return next, nil

	case NavigateToAddCompoToDZ:
		if !s.IsOpen || s.ModalType != ModalAttribute || s.AttributeType != schema.TypeDynamicZone || e.DynamicZoneTarget == "" {
			return s, unhandled(s, ev)
		}
		next := s
		next.ModalType = ModalAddComponentToDynamicZone
		next.ActionType = ActionEdit
		next.AttributeType = ""
		next.AttributeName = ""
		next.DynamicZoneTarget = e.DynamicZoneTarget
		next.Step = 1
		next.ActiveTab = TabBasic
		next.ShowBackLink = false
		return next, nil

	case SetActiveTab:
		if !s.IsOpen || (e.Tab != TabBasic && e.Tab != TabAdvanced) {
			return s, unhandled(s, ev)
		}
		next := s
		next.ActiveTab = e.Tab
		return next, nil

	case Back:
		if !s.IsOpen || !s.ShowBackLink {
			return s, unhandled(s, ev)
		}
		return Transition(s, OpenChooseAttribute{ForTarget: s.ForTarget, TargetUID: s.TargetUID})

	case Close:
		return State{}, nil
	}

	return s, unhandled(s, ev)
}

func schemaTarget(m ModalType) (schema.ModelType, bool) {
	switch m {
	case ModalContentType:
		return schema.ModelContentType, true
	case ModalComponent:
		return schema.ModelComponent, true
	}
	return "", false
}
