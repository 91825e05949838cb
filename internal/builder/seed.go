package builder

import (
	"github.com/jontk/ctb/internal/formmodal"
	"github.com/jontk/ctb/internal/navigation"
	"github.com/jontk/ctb/internal/schema"
)

// seed returns the initial draft of the modal described by nav.
func (b *Builder) seed(nav navigation.State) formmodal.State {
	st := formmodal.InitialState()
	if !nav.IsOpen {
		return st
	}

	var entity *schema.EntitySchema
	if nav.TargetUID != "" {
		entity, _ = b.registry.Get(nav.ForTarget, nav.TargetUID)
	}

	switch {
	case nav.ModalType == navigation.ModalContentType && nav.IsCreating():
		st = formmodal.Reduce(st, formmodal.SetDataToEdit{Data: map[string]any{
			"draftAndPublish": true,
		}})

	case nav.ModalType == navigation.ModalContentType && entity != nil:
		data := map[string]any{
			"displayName":     entity.Info.DisplayName,
			"draftAndPublish": entity.Options.DraftAndPublish,
			"kind":            string(entity.Kind),
			"pluralName":      entity.Info.PluralName,
			"singularName":    entity.Info.SingularName,
		}
		if entity.PluginOptions != nil {
			data["pluginOptions"] = schema.CloneValue(entity.PluginOptions)
		}
		st = formmodal.Reduce(st, formmodal.SetDataToEdit{Data: data})

	case nav.ModalType == navigation.ModalComponent && nav.IsEditing() && entity != nil:
		st = formmodal.Reduce(st, formmodal.SetDataToEdit{Data: map[string]any{
			"displayName": entity.Info.DisplayName,
			"category":    entity.Category,
			"icon":        entity.Info.Icon,
		}})

	case nav.ModalType == navigation.ModalAddComponentToDynamicZone && nav.IsEditing():
		dz := schema.Attribute{}
		if entity != nil {
			if found, _ := entity.Attribute(nav.DynamicZoneTarget); found != nil {
				dz = found.Clone()
			}
		}
		dz["components"] = []string{}
		dz["name"] = nav.DynamicZoneTarget
		dz["createComponent"] = false
		dz["componentToCreate"] = map[string]any{"type": schema.TypeComponent}
		st = formmodal.Reduce(st, formmodal.SetDynamicZoneDataSchema{AttributeToEdit: dz})
	}

	if nav.AttributeType == "" {
		return st
	}

	toEdit := schema.Attribute{}
	if entity != nil && nav.AttributeName != "" {
		if found, _ := entity.Attribute(nav.AttributeName); found != nil {
			toEdit = found.Clone()
		}
	}
	toEdit["name"] = nav.AttributeName
	if nav.AttributeType == schema.TypeComponent && nav.IsEditing() && !toEdit.Bool("repeatable") {
		toEdit["repeatable"] = false
	}

	uid := nav.TargetUID
	if nav.ModalType == navigation.ModalCustomField {
		action := formmodal.SetCustomFieldDataSchema{
			IsEditing:                   nav.IsEditing(),
			ModifiedDataToSetForEditing: toEdit,
			CustomFieldUID:              nav.CustomFieldUID,
			UID:                         uid,
		}
		if cf, err := b.fields.Get(nav.CustomFieldUID); err == nil {
			action.Type = cf.Type
			action.Defaults = cf.Defaults
		}
		return formmodal.Reduce(st, action)
	}

	action := formmodal.SetAttributeDataSchema{
		AttributeType:               nav.AttributeType,
		IsEditing:                   nav.IsEditing(),
		ModifiedDataToSetForEditing: toEdit,
		Step:                        nav.Step,
		UID:                         uid,
	}
	if targets := b.registry.AllowedRelationTargets(); len(targets) > 0 {
		action.NameToSetForRelation = targets[0].DisplayName()
		action.TargetUID = targets[0].UID
	}
	return formmodal.Reduce(st, action)
}
