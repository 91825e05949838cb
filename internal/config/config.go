// Package config provides configuration loading, validation, and management.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	ctberrors "github.com/jontk/ctb/internal/errors"
	"github.com/jontk/ctb/internal/fileperms"
	"github.com/jontk/ctb/internal/logging"
	"github.com/jontk/ctb/internal/notifications"
	"github.com/jontk/ctb/internal/validation"
)

// DefaultSchemaFile is the schema document used when none is configured
const DefaultSchemaFile = "schema.yaml"

// Config represents the application configuration
type Config struct {
	SchemaFile    string                   `mapstructure:"schemaFile" yaml:"schemaFile"`
	ReservedNames validation.ReservedNames `mapstructure:"reservedNames" yaml:"reservedNames"`
	Log           LogConfig                `mapstructure:"log" yaml:"log"`
	UI            UIConfig                 `mapstructure:"ui" yaml:"ui"`
	Watch         WatchConfig              `mapstructure:"watch" yaml:"watch"`
	Notifications NotificationsConfig      `mapstructure:"notifications" yaml:"notifications"`

	// path of the file the config was read from, empty for defaults
	source string
}

// LogConfig holds logging settings
type LogConfig struct {
	Level   string `mapstructure:"level" yaml:"level"`
	File    string `mapstructure:"file" yaml:"file"`
	Console bool   `mapstructure:"console" yaml:"console"`
	MaxSize int    `mapstructure:"maxSize" yaml:"maxSize"`
}

// UIConfig holds UI-related settings
type UIConfig struct {
	EnableMouse    bool `mapstructure:"enableMouse" yaml:"enableMouse"`
	ConfirmOnClose bool `mapstructure:"confirmOnClose" yaml:"confirmOnClose"`
}

// WatchConfig controls reloading the schema when the file changes on disk
type WatchConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

// NotificationsConfig holds notification settings
type NotificationsConfig struct {
	Enabled      bool   `mapstructure:"enabled" yaml:"enabled"`
	MinLevel     string `mapstructure:"minLevel" yaml:"minLevel"`
	TerminalBell bool   `mapstructure:"terminalBell" yaml:"terminalBell"`
}

// DefaultConfig returns a configuration with sensible defaults
// NOTE: These values must match setDefaults() to ensure consistent behavior
func DefaultConfig() *Config {
	return &Config{
		SchemaFile:    DefaultSchemaFile,
		ReservedNames: validation.DefaultReservedNames(),
		Log: LogConfig{
			Level:   "info",
			File:    filepath.Join(os.TempDir(), "ctb.log"),
			Console: false,
			MaxSize: 10,
		},
		UI: UIConfig{
			EnableMouse:    true,
			ConfirmOnClose: true,
		},
		Watch: WatchConfig{Enabled: true},
		Notifications: NotificationsConfig{
			Enabled:      true,
			MinLevel:     "info",
			TerminalBell: false,
		},
	}
}

// Dir returns the per-user configuration directory
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.Getenv("HOME")
	}
	return filepath.Join(home, ".ctb")
}

// DefaultPath returns where `ctb init` writes the configuration
func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// Load reads configuration from file and environment
func Load() (*Config, error) {
	return LoadWithPath("")
}

// LoadWithPath reads configuration from a specific file path
func LoadWithPath(configPath string) (*Config, error) {
	v := viper.New()

	// Set config file details
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// Config search paths
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath(Dir())
		v.AddConfigPath("/etc/ctb")
	}

	// Environment variable support: CTB_SCHEMAFILE, CTB_LOG_LEVEL, ...
	v.SetEnvPrefix("CTB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// If config file not found, use defaults and environment
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(err, &notFoundErr) {
			return nil, ctberrors.ConfigLoad(configSource(v, configPath), err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, ctberrors.ConfigLoad(configSource(v, configPath), err)
	}
	cfg.source = v.ConfigFileUsed()
	cfg.SchemaFile = cfg.ResolveSchemaFile()
	return cfg, nil
}

// configSource names the file a load error came from
func configSource(v *viper.Viper, configPath string) string {
	if used := v.ConfigFileUsed(); used != "" {
		return used
	}
	if configPath != "" {
		return configPath
	}
	return "(defaults and environment)"
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("schemaFile", d.SchemaFile)
	v.SetDefault("reservedNames.models", d.ReservedNames.Models)
	v.SetDefault("reservedNames.attributes", d.ReservedNames.Attributes)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("log.console", d.Log.Console)
	v.SetDefault("log.maxSize", d.Log.MaxSize)

	v.SetDefault("ui.enableMouse", d.UI.EnableMouse)
	v.SetDefault("ui.confirmOnClose", d.UI.ConfirmOnClose)

	v.SetDefault("watch.enabled", d.Watch.Enabled)

	v.SetDefault("notifications.enabled", d.Notifications.Enabled)
	v.SetDefault("notifications.minLevel", d.Notifications.MinLevel)
	v.SetDefault("notifications.terminalBell", d.Notifications.TerminalBell)
}

// Source returns the file the configuration was read from, or "" when
// only defaults and environment were used.
func (c *Config) Source() string {
	return c.source
}

// ResolveSchemaFile expands environment variables in the schema path. A
// relative path is taken relative to the config file's directory.
func (c *Config) ResolveSchemaFile() string {
	path := os.ExpandEnv(c.SchemaFile)
	if path == "" {
		path = DefaultSchemaFile
	}
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}
	if !filepath.IsAbs(path) && c.source != "" {
		path = filepath.Join(filepath.Dir(c.source), path)
	}
	return path
}

// Logging converts the log settings to a logger configuration
func (c *Config) Logging() *logging.Config {
	lc := logging.DefaultConfig()
	lc.Level = logging.ParseLevel(c.Log.Level)
	lc.Console = c.Log.Console
	lc.File = c.Log.File != ""
	if c.Log.File != "" {
		lc.Filename = os.ExpandEnv(c.Log.File)
	}
	if c.Log.MaxSize > 0 {
		lc.MaxSize = c.Log.MaxSize
	}
	return lc
}

// Notifier converts the notification settings to a manager configuration
func (c *Config) Notifier() notifications.Config {
	nc := notifications.DefaultConfig()
	nc.Enabled = c.Notifications.Enabled
	if level, ok := notifications.ParseLevel(c.Notifications.MinLevel); ok {
		nc.MinLevel = level
	}
	nc.TerminalBell.Enabled = c.Notifications.TerminalBell
	return nc
}

// SaveToFile saves the configuration to a file
func (c *Config) SaveToFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), fileperms.ConfigDir); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	v := viper.New()
	v.Set("schemaFile", c.SchemaFile)
	v.Set("reservedNames.models", c.ReservedNames.Models)
	v.Set("reservedNames.attributes", c.ReservedNames.Attributes)
	v.Set("log", c.Log)
	v.Set("ui", c.UI)
	v.Set("watch", c.Watch)
	v.Set("notifications", c.Notifications)

	if err := v.WriteConfigAs(path); err != nil {
		return err
	}
	return os.Chmod(path, fileperms.ConfigFile)
}
