// Package schema holds the working copy of content-type and component
// schemas and the commit operations that are the only way to change them.
package schema

import "strings"

// ModelType distinguishes content types from components. It doubles as
// the "forTarget" of attribute operations.
type ModelType string

const (
	ModelContentType ModelType = "contentType"
	ModelComponent   ModelType = "component"
)

// Valid reports whether m is a known model type
func (m ModelType) Valid() bool {
	return m == ModelContentType || m == ModelComponent
}

// Kind is the multiplicity of a content type.
type Kind string

const (
	KindCollection Kind = "collectionType"
	KindSingle     Kind = "singleType"
)

// Valid reports whether k is a known kind
func (k Kind) Valid() bool {
	return k == KindCollection || k == KindSingle
}

// Status tracks whether an entity differs from the last persisted state.
type Status string

const (
	StatusNew       Status = "NEW"
	StatusChanged   Status = "CHANGED"
	StatusUnchanged Status = "UNCHANGED"
)

// Info is the human-facing metadata of an entity
type Info struct {
	DisplayName  string `yaml:"displayName"`
	SingularName string `yaml:"singularName,omitempty"`
	PluralName   string `yaml:"pluralName,omitempty"`
	Description  string `yaml:"description,omitempty"`
	Icon         string `yaml:"icon,omitempty"`
}

// Options holds content-type options
type Options struct {
	DraftAndPublish bool `yaml:"draftAndPublish"`
}

// EntitySchema is a content type or a component.
type EntitySchema struct {
	UID           string         `yaml:"uid"`
	ModelType     ModelType      `yaml:"modelType"`
	Kind          Kind           `yaml:"kind,omitempty"`
	Category      string         `yaml:"category,omitempty"`
	Info          Info           `yaml:"info"`
	Options       Options        `yaml:"options,omitempty"`
	PluginOptions map[string]any `yaml:"pluginOptions,omitempty"`
	Attributes    []Attribute    `yaml:"attributes"`
	Status        Status         `yaml:"-"`
}

// Clone returns a deep copy of e
func (e *EntitySchema) Clone() *EntitySchema {
	if e == nil {
		return nil
	}
	out := *e
	if e.PluginOptions != nil {
		out.PluginOptions = cloneMap(e.PluginOptions)
	}
	out.Attributes = make([]Attribute, len(e.Attributes))
	for i, a := range e.Attributes {
		out.Attributes[i] = a.Clone()
	}
	return &out
}

// Attribute returns the attribute called name and its index, or -1.
func (e *EntitySchema) Attribute(name string) (Attribute, int) {
	for i, a := range e.Attributes {
		if a.Name() == name {
			return a, i
		}
	}
	return nil, -1
}

// AttributeNames returns the attribute names in declaration order
func (e *EntitySchema) AttributeNames() []string {
	return AttributeNames(e.Attributes)
}

// Siblings returns every attribute except the one called name.
func (e *EntitySchema) Siblings(name string) []Attribute {
	out := make([]Attribute, 0, len(e.Attributes))
	for _, a := range e.Attributes {
		if a.Name() != name {
			out = append(out, a)
		}
	}
	return out
}

// HasBidirectionalRelations reports whether any relation attribute uses a
// kind other than oneWay/manyWay. Such relations prevent a kind change.
func (e *EntitySchema) HasBidirectionalRelations() bool {
	for _, a := range e.Attributes {
		if a.Type() != TypeRelation {
			continue
		}
		if r := a.Relation(); r != RelationOneWay && r != RelationManyWay {
			return true
		}
	}
	return false
}

// DisplayName falls back to the uid when no display name is set
func (e *EntitySchema) DisplayName() string {
	if e.Info.DisplayName != "" {
		return e.Info.DisplayName
	}
	return e.UID
}

// IsPluginType reports whether the content type belongs to a plugin or the admin.
func (e *EntitySchema) IsPluginType() bool {
	return strings.HasPrefix(e.UID, "plugin::") || strings.HasPrefix(e.UID, "admin::")
}

// ContentTypeData is the payload of CreateSchema and UpdateSchema.
type ContentTypeData struct {
	DisplayName     string
	SingularName    string
	PluralName      string
	Kind            Kind
	DraftAndPublish bool
	PluginOptions   map[string]any
}

// ComponentData is the payload of CreateComponentSchema and UpdateComponentSchema.
type ComponentData struct {
	DisplayName string
	Icon        string
}

// Snapshot is the full registry content at one point in time.
type Snapshot struct {
	Version      string          `yaml:"version"`
	ContentTypes []*EntitySchema `yaml:"contentTypes"`
	Components   []*EntitySchema `yaml:"components"`
}
