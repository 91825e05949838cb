package config

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// ConfigField represents a configuration field with metadata
//
//nolint:revive // exported name kept for readability at call sites
type ConfigField struct {
	Key         string      `json:"key"`
	Label       string      `json:"label"`
	Description string      `json:"description"`
	Type        FieldType   `json:"type"`
	Default     interface{} `json:"default"`
	Options     []string    `json:"options,omitempty"` // For select types
	Group       string      `json:"group"`
}

// FieldType represents the type of a configuration field
type FieldType string

const (
	FieldTypeString FieldType = "string"
	FieldTypeInt    FieldType = "int"
	FieldTypeBool   FieldType = "bool"
	FieldTypeSelect FieldType = "select"
	FieldTypeArray  FieldType = "array"
)

// LogLevels lists the accepted log.level values
var LogLevels = []string{"debug", "info", "warn", "error", "off"}

// NotificationLevels lists the accepted notifications.minLevel values
var NotificationLevels = []string{"info", "success", "warning", "danger"}

// Fields returns every configuration key with its metadata, in display order
func Fields() []ConfigField {
	d := DefaultConfig()
	return []ConfigField{
		{
			Key:         "schemaFile",
			Label:       "Schema File",
			Description: "YAML document holding content types and components",
			Type:        FieldTypeString,
			Default:     d.SchemaFile,
			Group:       "general",
		},
		{
			Key:         "reservedNames.models",
			Label:       "Reserved Model Names",
			Description: "Names refused for content types and components",
			Type:        FieldTypeArray,
			Default:     d.ReservedNames.Models,
			Group:       "general",
		},
		{
			Key:         "reservedNames.attributes",
			Label:       "Reserved Attribute Names",
			Description: "Names refused for attributes",
			Type:        FieldTypeArray,
			Default:     d.ReservedNames.Attributes,
			Group:       "general",
		},
		{
			Key:         "log.level",
			Label:       "Log Level",
			Description: "Minimum level written to the log",
			Type:        FieldTypeSelect,
			Default:     d.Log.Level,
			Options:     LogLevels,
			Group:       "log",
		},
		{
			Key:         "log.file",
			Label:       "Log File",
			Description: "Rotated log file; empty disables file logging",
			Type:        FieldTypeString,
			Default:     d.Log.File,
			Group:       "log",
		},
		{
			Key:         "log.console",
			Label:       "Console Logging",
			Description: "Also log to stderr (never while the TUI runs)",
			Type:        FieldTypeBool,
			Default:     d.Log.Console,
			Group:       "log",
		},
		{
			Key:         "log.maxSize",
			Label:       "Log Size",
			Description: "Megabytes before the log file is rotated",
			Type:        FieldTypeInt,
			Default:     d.Log.MaxSize,
			Group:       "log",
		},
		{
			Key:         "ui.enableMouse",
			Label:       "Enable Mouse",
			Description: "Allow mouse interaction in the terminal UI",
			Type:        FieldTypeBool,
			Default:     d.UI.EnableMouse,
			Group:       "ui",
		},
		{
			Key:         "ui.confirmOnClose",
			Label:       "Confirm On Close",
			Description: "Ask before closing a form with unsaved changes",
			Type:        FieldTypeBool,
			Default:     d.UI.ConfirmOnClose,
			Group:       "ui",
		},
		{
			Key:         "watch.enabled",
			Label:       "Watch Schema",
			Description: "Reload the schema when the file changes on disk",
			Type:        FieldTypeBool,
			Default:     d.Watch.Enabled,
			Group:       "watch",
		},
		{
			Key:         "notifications.enabled",
			Label:       "Notifications",
			Description: "Show builder notifications",
			Type:        FieldTypeBool,
			Default:     d.Notifications.Enabled,
			Group:       "notifications",
		},
		{
			Key:         "notifications.minLevel",
			Label:       "Notification Level",
			Description: "Minimum level of the notifications shown",
			Type:        FieldTypeSelect,
			Default:     d.Notifications.MinLevel,
			Options:     NotificationLevels,
			Group:       "notifications",
		},
		{
			Key:         "notifications.terminalBell",
			Label:       "Terminal Bell",
			Description: "Ring the terminal bell on danger notifications",
			Type:        FieldTypeBool,
			Default:     d.Notifications.TerminalBell,
			Group:       "notifications",
		},
	}
}

// FieldByKey finds a configuration field by its key
func FieldByKey(key string) *ConfigField {
	for _, field := range Fields() {
		if field.Key == key {
			return &field
		}
	}
	return nil
}

// ValidateField checks value against the field's type
func (cf *ConfigField) ValidateField(value interface{}) error {
	switch cf.Type {
	case FieldTypeInt:
		switch v := value.(type) {
		case int:
			return nil
		case string:
			if _, err := strconv.Atoi(v); err != nil {
				return fmt.Errorf("%s must be a whole number", cf.Label)
			}
			return nil
		}
		return fmt.Errorf("%s must be a whole number", cf.Label)

	case FieldTypeBool:
		switch v := value.(type) {
		case bool:
			return nil
		case string:
			if _, err := strconv.ParseBool(v); err != nil {
				return fmt.Errorf("%s must be true or false", cf.Label)
			}
			return nil
		}
		return fmt.Errorf("%s must be true or false", cf.Label)

	case FieldTypeSelect:
		str, ok := value.(string)
		if !ok {
			return fmt.Errorf("%s must be a string", cf.Label)
		}
		for _, option := range cf.Options {
			if str == option {
				return nil
			}
		}
		return fmt.Errorf("%s must be one of: %s", cf.Label, strings.Join(cf.Options, ", "))

	case FieldTypeArray:
		if reflect.ValueOf(value).Kind() != reflect.Slice {
			return fmt.Errorf("%s must be an array", cf.Label)
		}
		return nil
	}

	if _, ok := value.(string); !ok {
		return fmt.Errorf("%s must be a string", cf.Label)
	}
	return nil
}

// Values flattens the configuration to the keys listed by Fields
func (c *Config) Values() map[string]interface{} {
	return map[string]interface{}{
		"schemaFile":                 c.SchemaFile,
		"reservedNames.models":       c.ReservedNames.Models,
		"reservedNames.attributes":   c.ReservedNames.Attributes,
		"log.level":                  c.Log.Level,
		"log.file":                   c.Log.File,
		"log.console":                c.Log.Console,
		"log.maxSize":                c.Log.MaxSize,
		"ui.enableMouse":             c.UI.EnableMouse,
		"ui.confirmOnClose":          c.UI.ConfirmOnClose,
		"watch.enabled":              c.Watch.Enabled,
		"notifications.enabled":      c.Notifications.Enabled,
		"notifications.minLevel":     c.Notifications.MinLevel,
		"notifications.terminalBell": c.Notifications.TerminalBell,
	}
}
