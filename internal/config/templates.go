package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jontk/ctb/internal/fileperms"
)

// ConfigTemplate represents a configuration template
//
//nolint:revive // exported name kept for readability at call sites
type ConfigTemplate struct {
	Name        string
	Description string
	Template    string
	Variables   map[string]string
}

// TemplateManager manages configuration templates
type TemplateManager struct {
	templates map[string]*ConfigTemplate
}

// NewTemplateManager creates a new template manager
func NewTemplateManager() *TemplateManager {
	tm := &TemplateManager{
		templates: make(map[string]*ConfigTemplate),
	}
	tm.loadBuiltinTemplates()
	return tm
}

// loadBuiltinTemplates loads built-in configuration templates
func (tm *TemplateManager) loadBuiltinTemplates() {
	tm.templates["default"] = &ConfigTemplate{
		Name:        "default",
		Description: "Single developer editing a local schema",
		Template: `# ctb configuration
schemaFile: {{.SCHEMA_FILE}}

log:
  level: info
  file: {{.LOG_FILE}}

ui:
  enableMouse: true
  confirmOnClose: true

watch:
  enabled: true

notifications:
  enabled: true
  minLevel: info
`,
		Variables: map[string]string{
			"SCHEMA_FILE": DefaultSchemaFile,
			"LOG_FILE":    filepath.Join(os.TempDir(), "ctb.log"),
		},
	}

	tm.templates["team"] = &ConfigTemplate{
		Name:        "team",
		Description: "Schema checked into a shared repository, reloaded on pull",
		Template: `# ctb configuration for a shared schema
schemaFile: {{.SCHEMA_FILE}}

reservedNames:
  attributes: [id, document_id, created_at, updated_at, published_at, created_by, updated_by, locale, localizations, meta, __component, {{.EXTRA_ATTRIBUTE}}]

log:
  level: info
  file: {{.LOG_FILE}}

ui:
  confirmOnClose: true

watch:
  enabled: true

notifications:
  enabled: true
  minLevel: success
  terminalBell: true
`,
		Variables: map[string]string{
			"SCHEMA_FILE":     "content/schema.yaml",
			"LOG_FILE":        filepath.Join(os.TempDir(), "ctb.log"),
			"EXTRA_ATTRIBUTE": "tenant",
		},
	}

	tm.templates["ci"] = &ConfigTemplate{
		Name:        "ci",
		Description: "Non-interactive validation in CI pipelines",
		Template: `# ctb configuration for CI
schemaFile: {{.SCHEMA_FILE}}

log:
  level: warn
  file: ""
  console: true

ui:
  enableMouse: false
  confirmOnClose: false

watch:
  enabled: false

notifications:
  enabled: true
  minLevel: warning
`,
		Variables: map[string]string{
			"SCHEMA_FILE": DefaultSchemaFile,
		},
	}
}

// GetTemplate returns a template by name
func (tm *TemplateManager) GetTemplate(name string) (*ConfigTemplate, bool) {
	template, exists := tm.templates[name]
	return template, exists
}

// ListTemplates returns all available templates sorted by name
func (tm *TemplateManager) ListTemplates() []*ConfigTemplate {
	templates := make([]*ConfigTemplate, 0, len(tm.templates))
	for _, template := range tm.templates {
		templates = append(templates, template)
	}
	sort.Slice(templates, func(i, j int) bool { return templates[i].Name < templates[j].Name })
	return templates
}

// GenerateConfig generates a configuration from a template
func (tm *TemplateManager) GenerateConfig(templateName string, variables map[string]string) (string, error) {
	template, exists := tm.templates[templateName]
	if !exists {
		return "", fmt.Errorf("template '%s' not found", templateName)
	}

	// Merge template variables with provided variables
	allVars := make(map[string]string)
	for k, v := range template.Variables {
		allVars[k] = v
	}
	for k, v := range variables {
		allVars[k] = v
	}

	config := template.Template
	for key, value := range allVars {
		placeholder := "{{." + key + "}}"
		config = strings.ReplaceAll(config, placeholder, value)
	}

	if i := strings.Index(config, "{{."); i >= 0 {
		end := strings.Index(config[i:], "}}")
		if end < 0 {
			end = len(config) - i
		}
		return "", fmt.Errorf("template '%s' has no value for %s", templateName, config[i:i+end+2])
	}
	return config, nil
}

// SaveTemplateAsConfig saves a generated template as a configuration file
func (tm *TemplateManager) SaveTemplateAsConfig(templateName string, variables map[string]string, configPath string) error {
	config, err := tm.GenerateConfig(templateName, variables)
	if err != nil {
		return fmt.Errorf("failed to generate config from template: %w", err)
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, fileperms.ConfigDir); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(config), fileperms.ConfigFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
