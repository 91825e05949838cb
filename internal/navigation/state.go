// Package navigation decides which builder modal and step is shown.
// Transition is a pure function; Navigator adds history and logging.
package navigation

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/jontk/ctb/internal/errors"
	"github.com/jontk/ctb/internal/schema"
)

// ModalType names a builder modal view.
type ModalType string

const (
	ModalNone                      ModalType = ""
	ModalChooseAttribute           ModalType = "chooseAttribute"
	ModalAttribute                 ModalType = "attribute"
	ModalCustomField               ModalType = "customField"
	ModalContentType               ModalType = "contentType"
	ModalComponent                 ModalType = "component"
	ModalAddComponentToDynamicZone ModalType = "addComponentToDynamicZone"
)

// ActionType tells whether the modal creates or edits.
type ActionType string

const (
	ActionCreate ActionType = "create"
	ActionEdit   ActionType = "edit"
)

// Tab is a form tab.
type Tab string

const (
	TabBasic    Tab = "basic"
	TabAdvanced Tab = "advanced"
)

// State is the wizard position.
type State struct {
	IsOpen            bool
	ModalType         ModalType
	ActionType        ActionType
	ForTarget         schema.ModelType
	TargetUID         string
	AttributeType     string
	AttributeName     string
	CustomFieldUID    string
	DynamicZoneTarget string
	Kind              schema.Kind
	// Step is 1 or 2 in the component flows and the dynamic zone modal, 0 elsewhere.
	Step         int
	ActiveTab    Tab
	ShowBackLink bool
	// ID identifies one modal instance; it changes whenever a modal opens.
	ID string
}

// IsCreating reports whether the modal creates something
func (s State) IsCreating() bool { return s.ActionType == ActionCreate }

// IsEditing reports whether the modal edits something
func (s State) IsEditing() bool { return s.ActionType == ActionEdit }

// SeedKey captures the fields whose change reseeds the draft. Step and
// tab changes deliberately keep the draft.
type SeedKey struct {
	ActionType        ActionType
	AttributeName     string
	AttributeType     string
	DynamicZoneTarget string
	ForTarget         schema.ModelType
	IsOpen            bool
	ModalType         ModalType
	ID                string
}

// SeedKey returns the reseed dependencies of s
func (s State) SeedKey() SeedKey {
	return SeedKey{
		ActionType:        s.ActionType,
		AttributeName:     s.AttributeName,
		AttributeType:     s.AttributeType,
		DynamicZoneTarget: s.DynamicZoneTarget,
		ForTarget:         s.ForTarget,
		IsOpen:            s.IsOpen,
		ModalType:         s.ModalType,
		ID:                s.ID,
	}
}

func (s State) String() string {
	if !s.IsOpen {
		return "closed"
	}
	out := fmt.Sprintf("%s/%s", s.ModalType, s.ActionType)
	if s.AttributeType != "" {
		out += " type=" + s.AttributeType
	}
	if s.Step > 0 {
		out += fmt.Sprintf(" step=%d", s.Step)
	}
	if s.TargetUID != "" {
		out += " target=" + s.TargetUID
	}
	return out
}

// ErrUnhandledTransition matches every error returned for an event that
// makes no sense in the current state.
var ErrUnhandledTransition = errors.New(errors.ErrorTypeUnhandled, "unhandled wizard transition")

func unhandled(s State, ev Event) error {
	return errors.Unhandled("%s is not handled in %s", ev.eventName(), s)
}

func newID() string {
	return uuid.NewString()
}
