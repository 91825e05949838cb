// Package plugin keeps the custom fields that plugins add to the attribute picker.
package plugin

import (
	"regexp"

	"github.com/jontk/ctb/internal/schema"
)

// Validator returns extra field errors for a custom field draft.
type Validator func(data map[string]any) map[string]string

// CustomField is an attribute type contributed by a plugin. It is stored
// as its underlying Type with a customField key naming the field.
type CustomField struct {
	Name     string
	PluginID string
	Type     string
	Label    string
	// Defaults are applied to new drafts.
	Defaults  map[string]any
	Validator Validator
}

// UID returns the field's identifier: plugin::<plugin>.<name>, or
// global::<name> for fields without a plugin.
func (c CustomField) UID() string {
	if c.PluginID == "" {
		return "global::" + c.Name
	}
	return "plugin::" + c.PluginID + "." + c.Name
}

// DisplayLabel returns the label shown in the picker
func (c CustomField) DisplayLabel() string {
	if c.Label != "" {
		return c.Label
	}
	return c.Name
}

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Builtins returns the custom fields shipped with ctb.
func Builtins() []CustomField {
	return []CustomField{
		{
			Name:     "color",
			PluginID: "color-picker",
			Type:     schema.TypeString,
			Label:    "Color",
			Defaults: map[string]any{"regex": "^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$"},
			Validator: func(data map[string]any) map[string]string {
				def, ok := data["default"].(string)
				if !ok || def == "" || hexColor.MatchString(def) {
					return nil
				}
				return map[string]string{"default": "must be a hex color such as #ff8800"}
			},
		},
	}
}
