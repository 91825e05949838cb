package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ctberrors "github.com/jontk/ctb/internal/errors"
	"github.com/jontk/ctb/internal/fileperms"
	"github.com/jontk/ctb/internal/logging"
	"github.com/jontk/ctb/internal/notifications"
)

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, key := range []string{"CTB_SCHEMAFILE", "CTB_LOG_LEVEL", "CTB_WATCH_ENABLED", "CTB_NOTIFICATIONS_MINLEVEL"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	return home
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	d := DefaultConfig()
	assert.Empty(t, cfg.Source())
	assert.Equal(t, DefaultSchemaFile, cfg.SchemaFile)
	assert.Equal(t, d.ReservedNames, cfg.ReservedNames)
	assert.Equal(t, d.Log, cfg.Log)
	assert.Equal(t, d.UI, cfg.UI)
	assert.True(t, cfg.Watch.Enabled)
	assert.Equal(t, d.Notifications, cfg.Notifications)
}

func TestEnvironmentOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("CTB_LOG_LEVEL", "debug")
	t.Setenv("CTB_WATCH_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.False(t, cfg.Watch.Enabled)
}

func TestLoadWithYAMLFile(t *testing.T) {
	isolate(t)
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
schemaFile: models/schema.yaml

reservedNames:
  models: [invoice]
  attributes: [id, tenant]

log:
  level: warn
  console: true
  maxSize: 50

ui:
  enableMouse: false

watch:
  enabled: false

notifications:
  minLevel: warning
  terminalBell: true
`
	require.NoError(t, os.WriteFile(configPath, []byte(yamlContent), 0o600))

	cfg, err := LoadWithPath(configPath)
	require.NoError(t, err)

	assert.Equal(t, configPath, cfg.Source())
	assert.Equal(t, filepath.Join(tmpDir, "models", "schema.yaml"), cfg.SchemaFile)
	assert.Equal(t, []string{"invoice"}, cfg.ReservedNames.Models)
	assert.Equal(t, []string{"id", "tenant"}, cfg.ReservedNames.Attributes)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.True(t, cfg.Log.Console)
	assert.Equal(t, 50, cfg.Log.MaxSize)
	assert.False(t, cfg.UI.EnableMouse)
	assert.True(t, cfg.UI.ConfirmOnClose, "unset keys keep their defaults")
	assert.False(t, cfg.Watch.Enabled)
	assert.Equal(t, "warning", cfg.Notifications.MinLevel)
	assert.True(t, cfg.Notifications.TerminalBell)
}

func TestLoadInvalidYAML(t *testing.T) {
	isolate(t)
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("log: [unclosed"), 0o600))

	_, err := LoadWithPath(configPath)
	require.Error(t, err)
	assert.True(t, ctberrors.IsType(err, ctberrors.ErrorTypeConfiguration))
	assert.Contains(t, err.Error(), configPath)
}

func TestResolveSchemaFile(t *testing.T) {
	home := isolate(t)
	t.Setenv("CTB_TEST_ROOT", "/srv/content")

	tests := []struct {
		name       string
		schemaFile string
		source     string
		want       string
	}{
		{"empty falls back to default", "", "", DefaultSchemaFile},
		{"relative without source", "schema.yaml", "", "schema.yaml"},
		{"relative to config file", "schema.yaml", "/etc/ctb/config.yaml", "/etc/ctb/schema.yaml"},
		{"absolute", "/data/schema.yaml", "/etc/ctb/config.yaml", "/data/schema.yaml"},
		{"environment", "$CTB_TEST_ROOT/schema.yaml", "", "/srv/content/schema.yaml"},
		{"home", "~/schema.yaml", "/etc/ctb/config.yaml", filepath.Join(home, "schema.yaml")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{SchemaFile: tt.schemaFile, source: tt.source}
			assert.Equal(t, tt.want, cfg.ResolveSchemaFile())
		})
	}
}

func TestSaveToFile(t *testing.T) {
	isolate(t)
	dir := filepath.Join(t.TempDir(), "nested")
	path := filepath.Join(dir, "config.yaml")

	cfg := DefaultConfig()
	cfg.Log.Level = "debug"
	cfg.UI.EnableMouse = false
	cfg.Notifications.MinLevel = "danger"
	cfg.ReservedNames.Models = []string{"invoice"}
	require.NoError(t, cfg.SaveToFile(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, fileperms.ConfigFile, info.Mode().Perm())

	loaded, err := LoadWithPath(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, DefaultSchemaFile), loaded.SchemaFile)
	assert.Equal(t, "debug", loaded.Log.Level)
	assert.False(t, loaded.UI.EnableMouse)
	assert.Equal(t, "danger", loaded.Notifications.MinLevel)
	assert.Equal(t, []string{"invoice"}, loaded.ReservedNames.Models)
	assert.Equal(t, cfg.ReservedNames.Attributes, loaded.ReservedNames.Attributes)
}

func TestLogging(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Log.Level = "warn"
	cfg.Log.MaxSize = 25

	lc := cfg.Logging()
	assert.Equal(t, logging.WarnLevel, lc.Level)
	assert.True(t, lc.File)
	assert.Equal(t, cfg.Log.File, lc.Filename)
	assert.Equal(t, 25, lc.MaxSize)

	cfg.Log.File = ""
	assert.False(t, cfg.Logging().File)
}

func TestNotifier(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Notifications.MinLevel = "warning"
	cfg.Notifications.TerminalBell = true

	nc := cfg.Notifier()
	assert.True(t, nc.Enabled)
	assert.Equal(t, notifications.LevelWarning, nc.MinLevel)
	assert.True(t, nc.TerminalBell.Enabled)

	cfg.Notifications.MinLevel = "loud"
	assert.Equal(t, notifications.LevelInfo, cfg.Notifier().MinLevel)
}

func TestFields(t *testing.T) {
	fields := Fields()
	values := DefaultConfig().Values()
	require.Len(t, values, len(fields))

	for _, field := range fields {
		t.Run(field.Key, func(t *testing.T) {
			value, ok := values[field.Key]
			require.True(t, ok)
			assert.Equal(t, field.Default, value)
			assert.NoError(t, field.ValidateField(value))
		})
	}

	assert.Nil(t, FieldByKey("contexts"))
}

func TestValidateField(t *testing.T) {
	tests := []struct {
		key     string
		value   interface{}
		wantErr bool
	}{
		{"log.maxSize", 5, false},
		{"log.maxSize", "12", false},
		{"log.maxSize", "big", true},
		{"watch.enabled", "true", false},
		{"watch.enabled", "yes please", true},
		{"log.level", "debug", false},
		{"log.level", "trace", true},
		{"notifications.minLevel", 3, true},
		{"reservedNames.models", []string{"a"}, false},
		{"reservedNames.models", "a", true},
		{"schemaFile", 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			field := FieldByKey(tt.key)
			require.NotNil(t, field)
			err := field.ValidateField(tt.value)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTemplates(t *testing.T) {
	isolate(t)
	tm := NewTemplateManager()

	names := make([]string, 0)
	for _, tpl := range tm.ListTemplates() {
		names = append(names, tpl.Name)
	}
	assert.Equal(t, []string{"ci", "default", "team"}, names)

	_, err := tm.GenerateConfig("cluster", nil)
	assert.Error(t, err)

	t.Run("overrides variables", func(t *testing.T) {
		out, err := tm.GenerateConfig("team", map[string]string{"EXTRA_ATTRIBUTE": "org"})
		require.NoError(t, err)
		assert.Contains(t, out, "__component, org]")
		assert.NotContains(t, out, "{{.")
	})

	for _, tpl := range tm.ListTemplates() {
		t.Run(tpl.Name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, tm.SaveTemplateAsConfig(tpl.Name, nil, path))

			cfg, err := LoadWithPath(path)
			require.NoError(t, err)

			result := ValidateAndFix(cfg, false)
			assert.Empty(t, result.Fixes)
		})
	}
}

func TestTemplateMissingVariable(t *testing.T) {
	tm := NewTemplateManager()
	tm.templates["broken"] = &ConfigTemplate{Name: "broken", Template: "schemaFile: {{.NOWHERE}}\n"}

	_, err := tm.GenerateConfig("broken", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "{{.NOWHERE}}")
}

func TestValidator(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "schema.yaml")
	require.NoError(t, os.WriteFile(existing, []byte("contentTypes: {}\n"), fileperms.SchemaFile))

	base := func() *Config {
		cfg := DefaultConfig()
		cfg.SchemaFile = existing
		cfg.Log.File = filepath.Join(dir, "ctb.log")
		return cfg
	}

	t.Run("clean", func(t *testing.T) {
		result := ValidateAndFix(base(), false)
		assert.True(t, result.Valid)
		assert.Empty(t, result.Errors)
		assert.Empty(t, result.Warnings)
		assert.Empty(t, result.Fixes)
	})

	t.Run("nil config", func(t *testing.T) {
		result := ValidateAndFix(nil, false)
		assert.False(t, result.Valid)
		require.Len(t, result.Errors, 1)
	})

	t.Run("fixes applied", func(t *testing.T) {
		cfg := base()
		cfg.SchemaFile = ""
		cfg.Log.Level = "verbose"
		cfg.Log.MaxSize = -1
		cfg.Notifications.MinLevel = "loud"
		cfg.ReservedNames.Models = []string{"Blog Post", "blog-post", " "}
		cfg.ReservedNames.Attributes = []string{"ID", "id", "Tenant"}

		result := ValidateAndFix(cfg, true)
		assert.Len(t, result.Fixes, 6)
		for _, fix := range result.Fixes {
			assert.True(t, fix.Applied, fix.Field)
		}
		assert.Equal(t, DefaultSchemaFile, cfg.SchemaFile)
		assert.Equal(t, "info", cfg.Log.Level)
		assert.Equal(t, 10, cfg.Log.MaxSize)
		assert.Equal(t, "info", cfg.Notifications.MinLevel)
		assert.Equal(t, []string{"blog-post"}, cfg.ReservedNames.Models)
		assert.Equal(t, []string{"id", "tenant"}, cfg.ReservedNames.Attributes)
	})

	t.Run("fixes only reported", func(t *testing.T) {
		cfg := base()
		cfg.Log.Level = "verbose"

		result := ValidateAndFix(cfg, false)
		require.Len(t, result.Fixes, 1)
		assert.False(t, result.Fixes[0].Applied)
		assert.Equal(t, "verbose", cfg.Log.Level)
	})

	t.Run("schema file problems", func(t *testing.T) {
		tests := []struct {
			name       string
			schemaFile string
			wantErrors int
			wantWarn   int
		}{
			{"missing file", filepath.Join(dir, "later.yaml"), 0, 1},
			{"missing directory", filepath.Join(dir, "nope", "schema.yaml"), 1, 0},
			{"directory", dir, 1, 1},
			{"json extension", filepath.Join(dir, "schema.json"), 0, 2},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				cfg := base()
				cfg.SchemaFile = tt.schemaFile
				result := ValidateAndFix(cfg, false)
				assert.Len(t, result.Errors, tt.wantErrors)
				assert.Len(t, result.Warnings, tt.wantWarn)
				assert.Equal(t, tt.wantErrors == 0, result.Valid)
			})
		}
	})

	t.Run("world writable schema", func(t *testing.T) {
		path := filepath.Join(dir, "open.yaml")
		require.NoError(t, os.WriteFile(path, nil, 0o600))
		require.NoError(t, os.Chmod(path, 0o666))

		cfg := base()
		cfg.SchemaFile = path
		result := ValidateAndFix(cfg, false)
		require.Len(t, result.Warnings, 1)
		assert.Equal(t, "schemaFile", result.Warnings[0].Field)
	})

	t.Run("bell without notifications", func(t *testing.T) {
		cfg := base()
		cfg.Notifications.Enabled = false
		cfg.Notifications.TerminalBell = true
		result := ValidateAndFix(cfg, false)
		require.Len(t, result.Warnings, 1)
		assert.Equal(t, "notifications.terminalBell", result.Warnings[0].Field)
	})
}

func TestPrintValidationResult(t *testing.T) {
	var buf bytes.Buffer
	PrintValidationResult(&buf, &ValidationResult{Valid: true}, false)
	assert.Contains(t, buf.String(), "Configuration is perfect")

	buf.Reset()
	PrintValidationResult(&buf, &ValidationResult{
		Errors: []ValidationError{{Field: "schemaFile", Message: "gone", Suggestion: "create it"}},
		Fixes:  []ValidationFix{{Field: "log.level", Description: "Unknown", OldValue: "x", NewValue: "info", Applied: true}},
	}, true)
	out := buf.String()
	assert.Contains(t, out, "Configuration has issues")
	assert.Contains(t, out, "[schemaFile] gone")
	assert.Contains(t, out, "create it")
	assert.Contains(t, out, "(applied)")
	assert.Contains(t, out, "x → info")
}
