package validation

import (
	"slices"

	"github.com/jontk/ctb/internal/schema"
)

// ContentTypeParams is the context of a content type form.
type ContentTypeParams struct {
	// ExistingUIDs are the uids of every content type in the registry.
	ExistingUIDs []string
	IsEditing    bool
	CurrentUID   string
	Reserved     ReservedNames
	// ContentTypes are used to keep singular and plural names unique.
	ContentTypes []*schema.EntitySchema
}

// ContentType returns the validator of the content type form.
func ContentType(p ContentTypeParams) *Schema {
	// names taken by other content types
	taken := map[string]bool{}
	for _, ct := range p.ContentTypes {
		if p.IsEditing && ct.UID == p.CurrentUID {
			continue
		}
		taken[ct.Info.SingularName] = true
		taken[ct.Info.PluralName] = true
	}

	apiName := func(field string) []Rule {
		return []Rule{
			required(field),
			matches(field, kebabPattern, MsgKebabCase),
			{Field: field, Check: func(d schema.Attribute) string {
				if p.Reserved.IsReservedModel(d.String(field)) {
					return MsgReserved
				}
				return ""
			}},
			{Field: field, Check: func(d schema.Attribute) string {
				if taken[d.String(field)] {
					return MsgUnique
				}
				return ""
			}},
		}
	}

	displayName := []Rule{
		required("displayName"),
		{Field: "displayName", Check: func(d schema.Attribute) string {
			if p.Reserved.IsReservedModel(d.String("displayName")) {
				return MsgReserved
			}
			return ""
		}},
		{Field: "displayName", Check: func(d schema.Attribute) string {
			uid := schema.CreateUID(d.String("displayName"))
			if p.IsEditing && uid == p.CurrentUID {
				return ""
			}
			if slices.Contains(p.ExistingUIDs, uid) {
				return MsgUnique
			}
			return ""
		}},
	}

	names := append(apiName("singularName"), apiName("pluralName")...)
	names = append(names, Rule{Field: "pluralName", Check: func(d schema.Attribute) string {
		if s := d.String("singularName"); s != "" && s == d.String("pluralName") {
			return MsgDifferentNames
		}
		return ""
	}})

	kind := []Rule{{Field: "kind", Check: func(d schema.Attribute) string {
		if k := d.String("kind"); k != "" && !schema.Kind(k).Valid() {
			return MsgKind
		}
		return ""
	}}}

	return NewSchema(displayName, names, kind)
}

// ComponentParams is the context of a component form.
type ComponentParams struct {
	// ExistingUIDs are the uids of every component in the registry.
	ExistingUIDs []string
	IsEditing    bool
	CurrentUID   string
	Reserved     ReservedNames
}

// Component returns the validator of the component form, also used for the
// componentToCreate sub-form of inline component creation.
func Component(p ComponentParams) *Schema {
	displayName := []Rule{
		required("displayName"),
		{Field: "displayName", Check: func(d schema.Attribute) string {
			if p.Reserved.IsReservedModel(d.String("displayName")) {
				return MsgReserved
			}
			return ""
		}},
		{Field: "displayName", Check: func(d schema.Attribute) string {
			if !present(d, "category") {
				return ""
			}
			uid := schema.CreateComponentUID(d.String("displayName"), d.String("category"))
			if p.IsEditing && uid == p.CurrentUID {
				return ""
			}
			if slices.Contains(p.ExistingUIDs, uid) {
				return MsgUnique
			}
			return ""
		}},
	}
	category := []Rule{
		required("category"),
		matches("category", categoryPattern, MsgCategory),
	}
	return NewSchema(displayName, category)
}
