package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/jontk/ctb/internal/fileperms"
	"github.com/jontk/ctb/internal/logging"
	"github.com/jontk/ctb/internal/schema"
)

// ValidationError represents a configuration error
type ValidationError struct {
	Field       string
	Message     string
	Suggestion  string
	AutoFixable bool
}

// ValidationWarning represents a configuration warning
type ValidationWarning struct {
	Field   string
	Message string
	Impact  string
}

// ValidationFix represents an automatic fix that can be applied
type ValidationFix struct {
	Field       string
	Description string
	OldValue    interface{}
	NewValue    interface{}
	Applied     bool
}

// ValidationResult represents the result of configuration validation
type ValidationResult struct {
	Valid    bool
	Errors   []ValidationError
	Warnings []ValidationWarning
	Fixes    []ValidationFix
}

// Validator validates and fixes ctb configuration
type Validator struct {
	config  *Config
	result  *ValidationResult
	autoFix bool
}

// NewConfigValidator creates a new configuration validator
func NewConfigValidator(config *Config, autoFix bool) *Validator {
	return &Validator{
		config:  config,
		autoFix: autoFix,
		result: &ValidationResult{
			Valid:    true,
			Errors:   []ValidationError{},
			Warnings: []ValidationWarning{},
			Fixes:    []ValidationFix{},
		},
	}
}

// Validate performs comprehensive configuration validation
func (v *Validator) Validate() *ValidationResult {
	logging.Debugf("Starting configuration validation (autoFix: %v)", v.autoFix)

	if v.config == nil {
		v.addError("config", "Configuration is nil", "Run `ctb init`", false)
		v.result.Valid = false
		return v.result
	}

	v.validateSchemaFile()
	v.validateReservedNames()
	v.validateLogging()
	v.validateNotifications()
	v.validateConfigFile()

	v.result.Valid = len(v.result.Errors) == 0

	logging.Debugf("Configuration validation completed: valid=%v, errors=%d, warnings=%d, fixes=%d",
		v.result.Valid, len(v.result.Errors), len(v.result.Warnings), len(v.result.Fixes))

	return v.result
}

// validateSchemaFile checks the schema document path
func (v *Validator) validateSchemaFile() {
	if strings.TrimSpace(v.config.SchemaFile) == "" {
		v.fix("schemaFile", "Missing schema file", "", DefaultSchemaFile)
		return
	}

	path := v.config.ResolveSchemaFile()
	if ext := strings.ToLower(filepath.Ext(path)); ext != ".yaml" && ext != ".yml" {
		v.addWarning("schemaFile",
			fmt.Sprintf("Schema file %s does not have a .yaml extension", path),
			"The file is still read as YAML")
	}

	info, err := os.Stat(path)
	switch {
	case os.IsNotExist(err):
		if !v.directoryExists(filepath.Dir(path)) {
			v.addError("schemaFile",
				fmt.Sprintf("Directory of schema file %s does not exist", path),
				"Create the directory or change schemaFile", false)
			return
		}
		v.addWarning("schemaFile",
			fmt.Sprintf("Schema file %s does not exist yet", path),
			"It is created on the first save")
	case err != nil:
		v.addError("schemaFile", fmt.Sprintf("Cannot read schema file: %v", err), "Check the file permissions", false)
	case info.IsDir():
		v.addError("schemaFile", fmt.Sprintf("%s is a directory", path), "Point schemaFile at a YAML file", false)
	case fileperms.HasWorldWrite(info.Mode()):
		v.addWarning("schemaFile",
			fmt.Sprintf("Schema file %s is world-writable", path),
			"Anyone on this machine can change your content model")
	}
}

// validateReservedNames checks the reserved name lists
func (v *Validator) validateReservedNames() {
	check := func(field string, names []string, normalize func(string) string) {
		seen := make(map[string]bool, len(names))
		var cleaned []string
		for _, name := range names {
			key := normalize(strings.TrimSpace(name))
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			cleaned = append(cleaned, key)
		}
		if !slices.Equal(cleaned, names) {
			v.fix(field, "Reserved names contain blanks, duplicates or unnormalized entries", names, cleaned)
		}
	}

	check("reservedNames.models", v.config.ReservedNames.Models, schema.Slugify)
	check("reservedNames.attributes", v.config.ReservedNames.Attributes, strings.ToLower)

	if len(v.config.ReservedNames.Attributes) == 0 {
		v.addWarning("reservedNames.attributes", "No reserved attribute names",
			"Attributes may collide with fields the server manages, such as id")
	}
}

// validateLogging checks the log settings
func (v *Validator) validateLogging() {
	if !slices.Contains(LogLevels, strings.ToLower(v.config.Log.Level)) {
		v.fix("log.level", fmt.Sprintf("Unknown log level %q", v.config.Log.Level), v.config.Log.Level, "info")
	}
	if v.config.Log.MaxSize < 0 {
		v.fix("log.maxSize", "Negative log size", v.config.Log.MaxSize, 10)
	}
	if v.config.Log.File != "" {
		dir := filepath.Dir(os.ExpandEnv(v.config.Log.File))
		if !v.directoryExists(dir) {
			v.addWarning("log.file",
				fmt.Sprintf("Log directory %s does not exist", dir),
				"It is created when the first log line is written")
		}
	}
}

// validateNotifications checks the notification settings
func (v *Validator) validateNotifications() {
	if !slices.Contains(NotificationLevels, v.config.Notifications.MinLevel) {
		v.fix("notifications.minLevel",
			fmt.Sprintf("Unknown notification level %q", v.config.Notifications.MinLevel),
			v.config.Notifications.MinLevel, "info")
	}
	if !v.config.Notifications.Enabled && v.config.Notifications.TerminalBell {
		v.addWarning("notifications.terminalBell", "Terminal bell is on but notifications are disabled",
			"The bell never rings")
	}
}

// validateConfigFile checks the permissions of the file the config came from
func (v *Validator) validateConfigFile() {
	if v.config.source == "" {
		return
	}
	info, err := os.Stat(v.config.source)
	if err != nil {
		return
	}
	if fileperms.HasWorldAccess(info.Mode()) {
		v.addWarning("config",
			fmt.Sprintf("Config file %s is readable by everyone (%s)", v.config.source, info.Mode().Perm()),
			fmt.Sprintf("Consider chmod %o", fileperms.ConfigFile))
	}
}

// addError adds a validation error
func (v *Validator) addError(field, message, suggestion string, autoFixable bool) {
	v.result.Errors = append(v.result.Errors, ValidationError{
		Field:       field,
		Message:     message,
		Suggestion:  suggestion,
		AutoFixable: autoFixable,
	})
}

// addWarning adds a validation warning
func (v *Validator) addWarning(field, message, impact string) {
	v.result.Warnings = append(v.result.Warnings, ValidationWarning{
		Field:   field,
		Message: message,
		Impact:  impact,
	})
}

// fix records a fix and applies it when autoFix is set
func (v *Validator) fix(field, description string, oldValue, newValue interface{}) {
	fix := ValidationFix{
		Field:       field,
		Description: description,
		OldValue:    oldValue,
		NewValue:    newValue,
		Applied:     false,
	}

	if v.autoFix {
		v.applyFix(field, newValue)
		fix.Applied = true
	}

	v.result.Fixes = append(v.result.Fixes, fix)
}

// applyFix applies a fix to the configuration
func (v *Validator) applyFix(field string, newValue interface{}) {
	switch field {
	case "schemaFile":
		v.config.SchemaFile = newValue.(string)
	case "reservedNames.models":
		v.config.ReservedNames.Models, _ = newValue.([]string)
	case "reservedNames.attributes":
		v.config.ReservedNames.Attributes, _ = newValue.([]string)
	case "log.level":
		v.config.Log.Level = newValue.(string)
	case "log.maxSize":
		v.config.Log.MaxSize = newValue.(int)
	case "notifications.minLevel":
		v.config.Notifications.MinLevel = newValue.(string)
	}
}

// directoryExists checks if a directory exists
func (v *Validator) directoryExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// ValidateAndFix validates configuration and optionally applies fixes
func ValidateAndFix(config *Config, autoFix bool) *ValidationResult {
	validator := NewConfigValidator(config, autoFix)
	return validator.Validate()
}

// PrintValidationResult writes a formatted validation result to w
func PrintValidationResult(w io.Writer, result *ValidationResult, verbose bool) {
	printValidationStatus(w, result.Valid)
	printErrorsSection(w, result.Errors)
	printWarningsSection(w, result.Warnings, verbose)
	printFixesSection(w, result.Fixes, verbose)
	printFinalMessage(w, result)
}

func printValidationStatus(w io.Writer, valid bool) {
	if valid {
		fmt.Fprintf(w, "✅ Configuration is valid\n")
	} else {
		fmt.Fprintf(w, "❌ Configuration has issues\n")
	}
}

func printErrorsSection(w io.Writer, errors []ValidationError) {
	if len(errors) == 0 {
		return
	}

	fmt.Fprintf(w, "\n🚨 Errors (%d):\n", len(errors))
	for _, err := range errors {
		fmt.Fprintf(w, "   • [%s] %s\n", err.Field, err.Message)
		if err.Suggestion != "" {
			fmt.Fprintf(w, "     💡 %s\n", err.Suggestion)
		}
	}
}

func printWarningsSection(w io.Writer, warnings []ValidationWarning, verbose bool) {
	if len(warnings) == 0 {
		return
	}

	fmt.Fprintf(w, "\n⚠️  Warnings (%d):\n", len(warnings))
	for _, warn := range warnings {
		fmt.Fprintf(w, "   • [%s] %s\n", warn.Field, warn.Message)
		if warn.Impact != "" && verbose {
			fmt.Fprintf(w, "     📄 Impact: %s\n", warn.Impact)
		}
	}
}

func printFixesSection(w io.Writer, fixes []ValidationFix, verbose bool) {
	if len(fixes) == 0 {
		return
	}

	fmt.Fprintf(w, "\n🔧 Fixes (%d):\n", len(fixes))
	for _, fix := range fixes {
		status := "available"
		if fix.Applied {
			status = "applied"
		}
		fmt.Fprintf(w, "   • [%s] %s (%s)\n", fix.Field, fix.Description, status)
		if verbose {
			fmt.Fprintf(w, "     📝 %v → %v\n", fix.OldValue, fix.NewValue)
		}
	}
}

func printFinalMessage(w io.Writer, result *ValidationResult) {
	if result.Valid && len(result.Warnings) == 0 && len(result.Fixes) == 0 {
		fmt.Fprintf(w, "\n🎉 Configuration is perfect!\n")
	}
}
