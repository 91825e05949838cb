// Package preferences remembers interactive session state between runs:
// the entity last selected in each schema file and the command history.
package preferences

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jontk/ctb/internal/fileperms"
	"github.com/jontk/ctb/internal/security"
)

// MaxHistory bounds the remembered command history
const MaxHistory = 50

// FileName is the state file kept next to the configuration
const FileName = "state.yaml"

// UserPreferences is the persisted session state
type UserPreferences struct {
	mu        *sync.RWMutex
	path      string
	Schemas   map[string]SchemaPrefs `yaml:"schemas"`
	History   []string               `yaml:"history"`
	lastSaved time.Time
	dirty     bool
}

// SchemaPrefs is what is remembered per schema file
type SchemaPrefs struct {
	LastTarget string    `yaml:"lastTarget"` // contentType or component
	LastEntity string    `yaml:"lastEntity"`
	UpdatedAt  time.Time `yaml:"updatedAt"`
}

// NewUserPreferences creates a preferences manager backed by path, loading
// it when it exists
func NewUserPreferences(path string) (*UserPreferences, error) {
	up := &UserPreferences{
		mu:      &sync.RWMutex{},
		path:    path,
		Schemas: make(map[string]SchemaPrefs),
	}
	if err := up.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load preferences: %w", err)
	}
	return up, nil
}

// Path returns the state file
func (up *UserPreferences) Path() string {
	return up.path
}

// Load loads preferences from disk
func (up *UserPreferences) Load() error {
	up.mu.Lock()
	defer up.mu.Unlock()

	data, err := os.ReadFile(up.path)
	if err != nil {
		return err
	}

	var prefs UserPreferences
	if err := yaml.Unmarshal(data, &prefs); err != nil {
		return fmt.Errorf("failed to parse preferences: %w", err)
	}

	for k, v := range prefs.Schemas {
		up.Schemas[k] = v
	}
	up.History = trimHistory(prefs.History)
	up.dirty = false
	return nil
}

// Save writes preferences to disk when they changed since the last load or save
func (up *UserPreferences) Save() error {
	up.mu.Lock()
	defer up.mu.Unlock()

	if !up.dirty {
		return nil
	}
	return up.saveWithoutLock()
}

// LastEntity returns the entity last selected in the schema file at schemaPath
func (up *UserPreferences) LastEntity(schemaPath string) (SchemaPrefs, bool) {
	up.mu.RLock()
	defer up.mu.RUnlock()

	p, ok := up.Schemas[key(schemaPath)]
	return p, ok && p.LastEntity != ""
}

// SetLastEntity records the selected entity of a schema file
func (up *UserPreferences) SetLastEntity(schemaPath, target, uid string) {
	up.mu.Lock()
	defer up.mu.Unlock()

	k := key(schemaPath)
	if p := up.Schemas[k]; p.LastTarget == target && p.LastEntity == uid {
		return
	}
	up.Schemas[k] = SchemaPrefs{LastTarget: target, LastEntity: uid, UpdatedAt: time.Now()}
	up.dirty = true
}

// AddHistory appends a command line, skipping repeats of the last one
func (up *UserPreferences) AddHistory(command string) {
	up.mu.Lock()
	defer up.mu.Unlock()

	if command == "" || (len(up.History) > 0 && up.History[len(up.History)-1] == command) {
		return
	}
	up.History = trimHistory(append(up.History, command))
	up.dirty = true
}

// GetHistory returns the command history, oldest first
func (up *UserPreferences) GetHistory() []string {
	up.mu.RLock()
	defer up.mu.RUnlock()

	out := make([]string, len(up.History))
	copy(out, up.History)
	return out
}

// Reset forgets everything and removes the state file
func (up *UserPreferences) Reset() error {
	up.mu.Lock()
	defer up.mu.Unlock()

	up.Schemas = make(map[string]SchemaPrefs)
	up.History = nil
	up.dirty = false
	if err := os.Remove(up.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove preferences: %w", err)
	}
	return nil
}

// saveWithoutLock saves preferences to disk without acquiring locks
func (up *UserPreferences) saveWithoutLock() error {
	if err := security.EnsureDir(filepath.Dir(up.path), fileperms.ConfigDir); err != nil {
		return err
	}

	data, err := yaml.Marshal(up)
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}

	// Write to temp file first
	tempFile := up.path + ".tmp"
	if err := os.WriteFile(tempFile, data, fileperms.ConfigFile); err != nil {
		return fmt.Errorf("failed to write preferences: %w", err)
	}

	// Rename to actual file
	if err := os.Rename(tempFile, up.path); err != nil {
		_ = os.Remove(tempFile)
		return fmt.Errorf("failed to save preferences: %w", err)
	}

	up.lastSaved = time.Now()
	up.dirty = false
	return nil
}

// key identifies a schema file independently of how its path was spelled
func key(schemaPath string) string {
	if abs, err := filepath.Abs(schemaPath); err == nil {
		return abs
	}
	return filepath.Clean(schemaPath)
}

func trimHistory(h []string) []string {
	if len(h) > MaxHistory {
		return append([]string(nil), h[len(h)-MaxHistory:]...)
	}
	return h
}
