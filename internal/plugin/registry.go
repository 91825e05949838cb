package plugin

import (
	"fmt"
	"regexp"
	"sort"
	"sync"

	"github.com/jontk/ctb/internal/schema"
)

var namePattern = regexp.MustCompile(`^[A-Za-z][_A-Za-z0-9-]*$`)

// Attribute types a custom field cannot be built on.
var forbiddenTypes = map[string]bool{
	schema.TypeRelation:    true,
	schema.TypeComponent:   true,
	schema.TypeDynamicZone: true,
	schema.TypeMedia:       true,
}

// Registry holds the custom fields contributed by plugins
type Registry struct {
	mu       sync.RWMutex
	fields   map[string]CustomField
	metadata map[string]Metadata
}

// Metadata contains bookkeeping about a registration
type Metadata struct {
	LoadOrder int
	Source    string // "builtin" or "config"
}

// NewRegistry creates an empty custom field registry
func NewRegistry() *Registry {
	return &Registry{
		fields:   make(map[string]CustomField),
		metadata: make(map[string]Metadata),
	}
}

// NewRegistryWithBuiltins returns a registry holding the bundled custom fields
func NewRegistryWithBuiltins() *Registry {
	r := NewRegistry()
	for _, cf := range Builtins() {
		if err := r.register(cf, "builtin"); err != nil {
			panic(err)
		}
	}
	return r
}

// Register adds a custom field
func (r *Registry) Register(cf CustomField) error {
	return r.register(cf, "config")
}

func (r *Registry) register(cf CustomField, source string) error {
	if err := validateCustomField(cf); err != nil {
		return fmt.Errorf("invalid custom field: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	uid := cf.UID()
	if _, exists := r.fields[uid]; exists {
		return fmt.Errorf("custom field %s already registered", uid)
	}
	r.fields[uid] = cf
	r.metadata[uid] = Metadata{LoadOrder: len(r.fields), Source: source}
	return nil
}

func validateCustomField(cf CustomField) error {
	if !namePattern.MatchString(cf.Name) {
		return fmt.Errorf("name %q must start with a letter and contain only letters, digits, dashes and underscores", cf.Name)
	}
	if cf.PluginID != "" && !namePattern.MatchString(cf.PluginID) {
		return fmt.Errorf("plugin id %q is not valid", cf.PluginID)
	}
	if cf.Type == "" {
		return fmt.Errorf("custom field %s has no type", cf.Name)
	}
	if forbiddenTypes[cf.Type] {
		return fmt.Errorf("custom field %s cannot use type %s", cf.Name, cf.Type)
	}
	return nil
}

// Unregister removes a custom field
func (r *Registry) Unregister(uid string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.fields[uid]; !exists {
		return fmt.Errorf("custom field %s not found", uid)
	}
	delete(r.fields, uid)
	delete(r.metadata, uid)
	return nil
}

// Get retrieves a custom field by uid
func (r *Registry) Get(uid string) (CustomField, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cf, exists := r.fields[uid]
	if !exists {
		return CustomField{}, fmt.Errorf("custom field %s not found", uid)
	}
	return cf, nil
}

// List returns all custom fields in registration order
func (r *Registry) List() []CustomField {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fields := make([]CustomField, 0, len(r.fields))
	for _, cf := range r.fields {
		fields = append(fields, cf)
	}
	sort.Slice(fields, func(i, j int) bool {
		return r.metadata[fields[i].UID()].LoadOrder < r.metadata[fields[j].UID()].LoadOrder
	})
	return fields
}
