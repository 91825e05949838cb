package builder

import (
	"context"
	"slices"

	"github.com/jontk/ctb/internal/formmodal"
	"github.com/jontk/ctb/internal/guard"
	"github.com/jontk/ctb/internal/navigation"
	"github.com/jontk/ctb/internal/schema"
	"github.com/jontk/ctb/internal/validation"
)

// Submit validates the draft and commits it. With shouldContinue a
// successful attribute commit returns to the attribute picker instead of
// closing the modal. Only context cancellation and registry failures are
// returned as errors; everything else is reported through the Outcome.
func (b *Builder) Submit(ctx context.Context, shouldContinue bool) (Outcome, error) {
	if !b.submitting.CompareAndSwap(false, true) {
		return Outcome{}, ErrSubmitInProgress
	}
	defer b.submitting.Store(false)

	b.mu.Lock()
	nav := b.nav.State()
	form := b.form.Clone()
	revision := b.revision
	b.pending = nil
	b.mu.Unlock()

	if !nav.IsOpen || nav.ModalType == navigation.ModalChooseAttribute {
		return Outcome{Status: StatusNoop}, nil
	}

	if b.beforeValidate != nil {
		b.beforeValidate()
	}
	v, data := b.validatorFor(nav, form)
	var errs formmodal.FormErrors
	if v != nil {
		var err error
		if errs, err = v.Validate(ctx, data); err != nil {
			return Outcome{}, err
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.revision != revision {
		b.logger.Warn().Str("state", nav.String()).Msg("draft changed during validation, submission dropped")
		return Outcome{Status: StatusNoop}, nil
	}
	if len(errs) > 0 {
		b.form = formmodal.Reduce(b.form, formmodal.SetErrors{Errors: errs})
		b.logger.Debug().Int("errors", len(errs)).Str("state", nav.String()).Msg("draft is invalid")
		return Outcome{Status: StatusInvalid, Errors: errs}, nil
	}
	b.form = formmodal.Reduce(b.form, formmodal.SetErrors{Errors: formmodal.FormErrors{}})

	if br := b.checkBreakage(nav, b.form); br != nil {
		b.pending = &pendingSubmit{shouldContinue: shouldContinue, revision: b.revision}
		b.logger.Info().Str("field", br.Field).Strs("dependents", br.Dependents).Msg("edit breaks visibility conditions")
		return Outcome{Status: StatusNeedsConfirmation, Breakage: br}, nil
	}
	return b.commit(nav, shouldContinue)
}

// Confirm commits the submission that is waiting for confirmation.
func (b *Builder) Confirm(ctx context.Context) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	p := b.pending
	b.pending = nil
	if p == nil || p.revision != b.revision {
		return Outcome{Status: StatusNoop}, nil
	}
	return b.commit(b.nav.State(), p.shouldContinue)
}

// CancelConfirm drops the submission waiting for confirmation. The draft
// stays as it is.
func (b *Builder) CancelConfirm() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending = nil
}

func (b *Builder) checkBreakage(nav navigation.State, form formmodal.State) *guard.Breakage {
	if !nav.IsEditing() {
		return nil
	}
	if nav.ModalType != navigation.ModalAttribute && nav.ModalType != navigation.ModalCustomField {
		return nil
	}
	entity, err := b.registry.Get(nav.ForTarget, nav.TargetUID)
	if err != nil {
		return nil
	}
	initial := schema.Attribute(form.InitialData)
	return guard.Check(initial, schema.Attribute(form.ModifiedData), entity.Siblings(initial.Name()))
}

func creatingComponentFromView(form formmodal.State) bool {
	creating, _ := form.ModifiedData["createComponent"].(bool)
	return creating || form.IsCreatingComponentWhileAddingAField
}

// validatorFor picks the validator of the open modal and the data it
// checks. A nil validator means the draft needs no validation.
func (b *Builder) validatorFor(nav navigation.State, form formmodal.State) (validation.Validator, map[string]any) {
	data := form.ModifiedData
	fromView := creatingComponentFromView(form)
	if fromView && nav.Step == 1 {
		data, _ = form.ModifiedData["componentToCreate"].(map[string]any)
		if data == nil {
			data = map[string]any{}
		}
	}
	entity, _ := b.registry.Get(nav.ForTarget, nav.TargetUID)
	initial := schema.Attribute(form.InitialData)

	newComponent := func() validation.Validator {
		return validation.Component(validation.ComponentParams{
			ExistingUIDs: b.registry.ComponentUIDs(),
			Reserved:     b.reserved,
		})
	}

	switch {
	case nav.ModalType == navigation.ModalContentType:
		return validation.ContentType(validation.ContentTypeParams{
			ExistingUIDs: b.registry.ContentTypeUIDs(),
			IsEditing:    nav.IsEditing(),
			CurrentUID:   nav.TargetUID,
			Reserved:     b.reserved,
			ContentTypes: b.registry.SortedContentTypes(),
		}), data

	case nav.ModalType == navigation.ModalComponent:
		return validation.Component(validation.ComponentParams{
			ExistingUIDs: b.registry.ComponentUIDs(),
			IsEditing:    nav.IsEditing(),
			CurrentUID:   nav.TargetUID,
			Reserved:     b.reserved,
		}), data

	case nav.ModalType == navigation.ModalCustomField:
		params := validation.CustomFieldParams{Entity: entity, Reserved: b.reserved, InitialName: initial.Name()}
		if cf, err := b.fields.Get(nav.CustomFieldUID); err == nil {
			params.Field = &cf
		}
		return validation.CustomField(params), data

	case nav.ModalType == navigation.ModalAttribute && nav.AttributeType == schema.TypeComponent && fromView && nav.Step == 1:
		return newComponent(), data

	case nav.ModalType == navigation.ModalAttribute && nav.Step != 1:
		attrType := schema.Attribute(data).Type()
		if nav.AttributeType == schema.TypeRelation {
			attrType = schema.TypeRelation
		}
		params := validation.AttributeParams{
			Entity:        entity,
			AttributeType: attrType,
			Reserved:      b.reserved,
			InitialName:   initial.Name(),
		}
		if attrType == schema.TypeRelation {
			params.TakenTargetAttributes = b.takenTargetAttributes(nav, form)
		}
		return validation.Attribute(params), data

	case nav.Step == 1 && fromView:
		return newComponent(), data
	}
	return nil, data
}

// takenTargetAttributes lists the attribute names of the relation target.
// On edit the relation's own inverse field is left out.
func (b *Builder) takenTargetAttributes(nav navigation.State, form formmodal.State) []string {
	target := schema.Attribute(form.ModifiedData).Target()
	e, err := b.registry.ContentType(target)
	if err != nil {
		return nil
	}
	names := e.AttributeNames()
	if nav.IsEditing() {
		own := schema.Attribute(form.InitialData).TargetAttribute()
		names = slices.DeleteFunc(names, func(n string) bool { return n == own })
	}
	return names
}
