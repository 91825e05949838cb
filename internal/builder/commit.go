package builder

import (
	"fmt"

	"github.com/jontk/ctb/internal/errors"
	"github.com/jontk/ctb/internal/formmodal"
	"github.com/jontk/ctb/internal/navigation"
	"github.com/jontk/ctb/internal/notifications"
	"github.com/jontk/ctb/internal/schema"
)

// commit applies the validated draft. Callers hold b.mu.
func (b *Builder) commit(nav navigation.State, shouldContinue bool) (Outcome, error) {
	data := schema.Attribute(b.form.ModifiedData)
	initialName := schema.Attribute(b.form.InitialData).Name()
	fromView := creatingComponentFromView(b.form)

	switch nav.ModalType {
	case navigation.ModalContentType:
		if nav.IsCreating() {
			return b.createContentType(nav, data)
		}
		return b.updateContentType(nav, data)

	case navigation.ModalComponent:
		if nav.IsCreating() {
			return b.createComponent(data)
		}
		return b.updateComponent(nav, data)

	case navigation.ModalCustomField:
		attr := data.Clone()
		attr["customField"] = nav.CustomFieldUID
		var err error
		if nav.IsEditing() {
			err = b.registry.EditCustomFieldAttribute(nav.ForTarget, nav.TargetUID, initialName, attr)
		} else {
			err = b.registry.AddCustomFieldAttribute(nav.ForTarget, nav.TargetUID, attr)
		}
		if err != nil {
			return b.failed(err)
		}
		return b.afterAttribute(nav, nav.ForTarget, nav.TargetUID, shouldContinue), nil

	case navigation.ModalAttribute:
		switch {
		case nav.AttributeType == schema.TypeDynamicZone:
			if err := b.saveAttribute(nav, initialName, data); err != nil {
				return b.failed(err)
			}
			if !nav.IsCreating() {
				b.closeModal()
				return Outcome{Status: StatusCommitted}, nil
			}
			// navigating reseeds the draft as the zone's add-components form
			if _, err := b.navigate(navigation.NavigateToAddCompoToDZ{DynamicZoneTarget: data.Name()}); err != nil {
				return b.unhandled(nav, err), nil
			}
			return Outcome{Status: StatusCommitted}, nil

		case nav.AttributeType != schema.TypeComponent:
			if err := b.saveAttribute(nav, initialName, data); err != nil {
				return b.failed(err)
			}
			return b.afterAttribute(nav, nav.ForTarget, nav.TargetUID, shouldContinue), nil

		case nav.Step == 1 && !fromView:
			// an existing component is attached; step 2 names the field
			if _, err := b.navigate(navigation.NavigateToCreateComponentStep2{}); err != nil {
				return b.unhandled(nav, err), nil
			}
			b.form = formmodal.Reduce(b.form, formmodal.ResetPropsAndSetFormForAddingAnExistingCompo{UID: nav.TargetUID})
			return Outcome{Status: StatusAdvanced}, nil

		case nav.Step == 1:
			// the component to create is kept in the draft until step 2
			b.form = formmodal.Reduce(b.form, formmodal.ResetPropsAndSaveCurrentData{UID: nav.TargetUID})
			if _, err := b.navigate(navigation.NavigateToCreateComponentStep2{}); err != nil {
				return b.unhandled(nav, err), nil
			}
			return Outcome{Status: StatusAdvanced}, nil

		case !fromView:
			attr := data.Clone()
			if nav.IsEditing() {
				if _, ok := attr["conditions"]; !ok {
					attr["conditions"] = nil
				}
			}
			if err := b.saveAttribute(nav, initialName, attr); err != nil {
				return b.failed(err)
			}
			return b.afterAttribute(nav, nav.ForTarget, nav.TargetUID, shouldContinue), nil

		default:
			componentUID, err := b.createInlineComponent(b.form.ComponentToCreate, func(uid string) error {
				attr := data.Clone()
				attr["component"] = uid
				return b.registry.AddAttribute(nav.ForTarget, nav.TargetUID, attr)
			})
			if err != nil {
				return b.failed(err)
			}
			out := b.afterAttribute(nav, schema.ModelComponent, componentUID, shouldContinue)
			out.RedirectUID = componentUID
			return out, nil
		}

	case navigation.ModalAddComponentToDynamicZone:
		if nav.Step != 1 {
			break
		}
		if fromView {
			toCreate, _ := data["componentToCreate"].(map[string]any)
			componentUID, err := b.createInlineComponent(toCreate, func(uid string) error {
				return b.registry.AddCreatedComponentToDynamicZone(nav.ForTarget, nav.TargetUID, nav.DynamicZoneTarget, []string{uid})
			})
			if err != nil {
				return b.failed(err)
			}
			if _, err := b.navigate(navigation.OpenChooseAttribute{ForTarget: schema.ModelComponent, TargetUID: componentUID}); err != nil {
				return b.unhandled(nav, err), nil
			}
			return Outcome{Status: StatusCommitted, RedirectUID: componentUID}, nil
		}
		if err := b.registry.ChangeDynamicZoneComponents(nav.ForTarget, nav.TargetUID, nav.DynamicZoneTarget, data.Components()); err != nil {
			return b.failed(err)
		}
		b.closeModal()
		return Outcome{Status: StatusCommitted}, nil
	}

	return b.unhandled(nav, errors.Unhandled("no submit handler for %s", nav)), nil
}

func (b *Builder) createContentType(nav navigation.State, data schema.Attribute) (Outcome, error) {
	uid := schema.CreateUID(data.String("displayName"))
	kind := nav.Kind
	if k := schema.Kind(data.String("kind")); k.Valid() {
		kind = k
	}
	err := b.registry.CreateSchema(uid, schema.ContentTypeData{
		DisplayName:     data.String("displayName"),
		SingularName:    data.String("singularName"),
		PluralName:      data.String("pluralName"),
		Kind:            kind,
		DraftAndPublish: data.Bool("draftAndPublish"),
		PluginOptions:   asMap(data["pluginOptions"]),
	})
	if err != nil {
		return b.failed(err)
	}
	b.closeModal()
	b.notify(notifications.LevelSuccess, "Content type created", uid)
	return Outcome{Status: StatusCommitted, RedirectUID: uid}, nil
}

func (b *Builder) updateContentType(nav navigation.State, data schema.Attribute) (Outcome, error) {
	current, err := b.registry.ContentType(nav.TargetUID)
	if err != nil {
		return b.failed(err)
	}
	kind := schema.Kind(data.String("kind"))
	if kind != "" && kind != current.Kind && current.HasBidirectionalRelations() {
		b.notify(notifications.LevelDanger, "Kind change refused",
			fmt.Sprintf("%s has relations other than oneWay or manyWay and cannot become a %s", current.DisplayName(), kind))
		return Outcome{Status: StatusRejected}, nil
	}

	// the modal closes before the update, as a failure is reported as a notification
	b.closeModal()
	err = b.registry.UpdateSchema(nav.TargetUID, schema.ContentTypeData{
		DisplayName:     data.String("displayName"),
		Kind:            kind,
		DraftAndPublish: data.Bool("draftAndPublish"),
		PluginOptions:   asMap(data["pluginOptions"]),
	})
	if err != nil {
		return b.failed(err)
	}
	return Outcome{Status: StatusCommitted}, nil
}

func (b *Builder) createComponent(data schema.Attribute) (Outcome, error) {
	category := data.String("category")
	uid := schema.CreateComponentUID(data.String("displayName"), category)
	err := b.registry.CreateComponentSchema(uid, category, schema.ComponentData{
		DisplayName: data.String("displayName"),
		Icon:        data.String("icon"),
	})
	if err != nil {
		return b.failed(err)
	}
	b.closeModal()
	b.notify(notifications.LevelSuccess, "Component created", uid)
	return Outcome{Status: StatusCommitted, RedirectUID: uid}, nil
}

func (b *Builder) updateComponent(nav navigation.State, data schema.Attribute) (Outcome, error) {
	current, err := b.registry.Component(nav.TargetUID)
	if err != nil {
		return b.failed(err)
	}
	err = b.registry.UpdateComponentSchema(nav.TargetUID, schema.ComponentData{
		DisplayName: data.String("displayName"),
		Icon:        data.String("icon"),
	})
	if err != nil {
		return b.failed(err)
	}

	out := Outcome{Status: StatusCommitted}
	if current.Status == schema.StatusNew {
		newUID := schema.CreateComponentUID(data.String("displayName"), data.String("category"))
		if err := b.registry.UpdateComponentUID(nav.TargetUID, newUID); err != nil {
			b.closeModal()
			return b.failed(err)
		}
		out.RedirectUID = newUID
	}
	b.closeModal()
	return out, nil
}

// createInlineComponent creates the component described by toCreate and
// runs attach. When attach fails the component is removed again so no
// orphan is left behind.
func (b *Builder) createInlineComponent(toCreate map[string]any, attach func(uid string) error) (string, error) {
	c := schema.Attribute(toCreate)
	category := c.String("category")
	uid := schema.CreateComponentUID(c.String("displayName"), category)

	err := b.registry.CreateComponentSchema(uid, category, schema.ComponentData{
		DisplayName: c.String("displayName"),
		Icon:        c.String("icon"),
	})
	if err != nil {
		return "", err
	}
	if err := attach(uid); err != nil {
		if rollback := b.registry.DeleteComponent(uid); rollback != nil {
			b.logger.Error().Err(rollback).Str("uid", uid).Msg("failed to remove component after attach error")
		}
		return "", err
	}
	return uid, nil
}

func (b *Builder) saveAttribute(nav navigation.State, initialName string, attr schema.Attribute) error {
	if nav.IsEditing() {
		return b.registry.EditAttribute(nav.ForTarget, nav.TargetUID, initialName, attr)
	}
	return b.registry.AddAttribute(nav.ForTarget, nav.TargetUID, attr)
}

// afterAttribute returns to the picker of forTarget/uid or closes the modal.
func (b *Builder) afterAttribute(nav navigation.State, forTarget schema.ModelType, uid string, shouldContinue bool) Outcome {
	if !shouldContinue {
		b.closeModal()
		return Outcome{Status: StatusCommitted}
	}
	if _, err := b.navigate(navigation.OpenChooseAttribute{ForTarget: forTarget, TargetUID: uid}); err != nil {
		b.logger.Warn().Err(err).Str("state", nav.String()).Msg("could not return to the picker")
		b.closeModal()
	}
	return Outcome{Status: StatusCommitted}
}

// failed reports a registry error to the user. There is no retry.
func (b *Builder) failed(err error) (Outcome, error) {
	b.logger.Error().Err(err).Msg("schema commit failed")
	b.notify(notifications.LevelDanger, "Schema update failed", err.Error())
	return Outcome{Status: StatusRejected}, err
}

func (b *Builder) unhandled(nav navigation.State, err error) Outcome {
	b.logger.Error().Err(err).Str("state", nav.String()).Msg("this case is not handled")
	return Outcome{Status: StatusNoop}
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
