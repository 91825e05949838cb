package schema

import (
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/jontk/ctb/internal/errors"
	"github.com/jontk/ctb/internal/events"
	"github.com/jontk/ctb/internal/logging"
	"github.com/jontk/ctb/internal/version"
)

// Registry is the in-memory working copy of every content type and
// component. All mutations go through the commit operations below; each
// one replaces the affected entity definitions atomically.
type Registry struct {
	mu           sync.RWMutex
	contentTypes map[string]*EntitySchema
	components   map[string]*EntitySchema
	deleted      map[string]ModelType
	version      string

	bus    *events.Bus
	logger *logging.Logger
}

// Option configures a Registry
type Option func(*Registry)

// WithBus publishes commit events on bus
func WithBus(bus *events.Bus) Option {
	return func(r *Registry) { r.bus = bus }
}

// WithLogger sets the registry logger
func WithLogger(logger *logging.Logger) Option {
	return func(r *Registry) { r.logger = logger }
}

// NewRegistry creates an empty registry
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		contentTypes: make(map[string]*EntitySchema),
		components:   make(map[string]*EntitySchema),
		deleted:      make(map[string]ModelType),
		version:      version.SchemaFormat,
		bus:          events.NewBus(),
		logger:       logging.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.Component("registry")
	return r
}

// Bus returns the event bus commits are published on
func (r *Registry) Bus() *events.Bus {
	return r.bus
}

// txn collects cloned entities touched by one commit. Nothing is visible
// to readers until apply runs.
type txn struct {
	r       *Registry
	touched map[ModelType]map[string]*EntitySchema
	removed map[string]ModelType
	events  []events.SchemaEvent
}

func (r *Registry) update(fn func(tx *txn) error) error {
	r.mu.Lock()
	tx := &txn{
		r: r,
		touched: map[ModelType]map[string]*EntitySchema{
			ModelContentType: {},
			ModelComponent:   {},
		},
		removed: make(map[string]ModelType),
	}
	if err := fn(tx); err != nil {
		r.mu.Unlock()
		return err
	}
	tx.apply()
	r.mu.Unlock()

	for _, ev := range tx.events {
		r.bus.Publish(ev)
	}
	return nil
}

func (r *Registry) base(forTarget ModelType) map[string]*EntitySchema {
	if forTarget == ModelComponent {
		return r.components
	}
	return r.contentTypes
}

func (tx *txn) apply() {
	for forTarget, entities := range tx.touched {
		base := tx.r.base(forTarget)
		for uid, e := range entities {
			if e == nil {
				delete(base, uid)
				continue
			}
			base[uid] = e
		}
	}
	for uid, forTarget := range tx.removed {
		tx.r.deleted[uid] = forTarget
	}
}

// peek returns the current (possibly touched) entity without cloning it.
func (tx *txn) peek(forTarget ModelType, uid string) *EntitySchema {
	if e, ok := tx.touched[forTarget][uid]; ok {
		return e
	}
	return tx.r.base(forTarget)[uid]
}

func (tx *txn) exists(forTarget ModelType, uid string) bool {
	return tx.peek(forTarget, uid) != nil
}

// entity returns a mutable clone of the entity, marking it changed.
func (tx *txn) entity(forTarget ModelType, uid string) (*EntitySchema, error) {
	if !forTarget.Valid() {
		return nil, errors.Invalid("forTarget", string(forTarget))
	}
	if e, ok := tx.touched[forTarget][uid]; ok {
		if e == nil {
			return nil, errors.NotFoundf("%s %s not found", forTarget, uid)
		}
		return e, nil
	}
	orig, ok := tx.r.base(forTarget)[uid]
	if !ok {
		return nil, errors.NotFoundf("%s %s not found", forTarget, uid)
	}
	e := orig.Clone()
	if e.Status == StatusUnchanged || e.Status == "" {
		e.Status = StatusChanged
	}
	tx.touched[forTarget][uid] = e
	return e, nil
}

func (tx *txn) put(e *EntitySchema) {
	tx.touched[e.ModelType][e.UID] = e
	delete(tx.removed, e.UID)
}

func (tx *txn) remove(forTarget ModelType, uid string) {
	prev := tx.peek(forTarget, uid)
	tx.touched[forTarget][uid] = nil
	if prev != nil && prev.Status != StatusNew {
		tx.removed[uid] = forTarget
	}
}

func (tx *txn) uids(forTarget ModelType) []string {
	seen := make(map[string]bool)
	for uid := range tx.r.base(forTarget) {
		seen[uid] = true
	}
	for uid := range tx.touched[forTarget] {
		seen[uid] = true
	}
	out := make([]string, 0, len(seen))
	for _, uid := range sortedKeys(seen) {
		if tx.exists(forTarget, uid) {
			out = append(out, uid)
		}
	}
	return out
}

func (tx *txn) emit(kind events.Kind, forTarget ModelType, uid, attribute string) {
	topic := events.TopicContentType
	if forTarget == ModelComponent {
		topic = events.TopicComponent
	}
	tx.events = append(tx.events, events.SchemaEvent{
		Kind:      kind,
		Topic:     topic,
		UID:       uid,
		Attribute: attribute,
	})
}

// addInverse creates the field on the target side of a bidirectional relation.
func (tx *txn) addInverse(sourceUID string, a Attribute) error {
	if a.Type() != TypeRelation || !IsBidirectional(a.Relation()) || a.TargetAttribute() == "" {
		return nil
	}
	target, err := tx.entity(ModelContentType, a.Target())
	if err != nil {
		return err
	}
	if _, idx := target.Attribute(a.TargetAttribute()); idx >= 0 {
		return errors.Conflictf("%s already has an attribute named %s", target.UID, a.TargetAttribute())
	}
	inverse, _ := InverseRelation(a.Relation())
	target.Attributes = append(target.Attributes, Attribute{
		"name":            a.TargetAttribute(),
		"type":            TypeRelation,
		"relation":        inverse,
		"target":          sourceUID,
		"targetAttribute": a.Name(),
	})
	return nil
}

func (tx *txn) removeInverse(sourceUID string, a Attribute) error {
	if a.Type() != TypeRelation || !IsBidirectional(a.Relation()) || a.TargetAttribute() == "" {
		return nil
	}
	if !tx.exists(ModelContentType, a.Target()) {
		return nil
	}
	target, err := tx.entity(ModelContentType, a.Target())
	if err != nil {
		return err
	}
	for i, attr := range target.Attributes {
		if attr.Name() == a.TargetAttribute() && attr.Target() == sourceUID {
			target.Attributes = append(target.Attributes[:i], target.Attributes[i+1:]...)
			break
		}
	}
	return nil
}

// rewriteComponentRefs points every component and dynamic-zone reference
// to old at replacement, or drops it when replacement is empty.
func (tx *txn) rewriteComponentRefs(old, replacement string) error {
	for _, forTarget := range []ModelType{ModelContentType, ModelComponent} {
		for _, uid := range tx.uids(forTarget) {
			if !referencesComponent(tx.peek(forTarget, uid), old) {
				continue
			}
			e, err := tx.entity(forTarget, uid)
			if err != nil {
				return err
			}
			kept := e.Attributes[:0]
			for _, a := range e.Attributes {
				switch a.Type() {
				case TypeComponent:
					if a.Component() == old {
						if replacement == "" {
							continue
						}
						a["component"] = replacement
					}
				case TypeDynamicZone:
					var comps []string
					for _, c := range a.Components() {
						switch {
						case c != old:
							comps = append(comps, c)
						case replacement != "":
							comps = append(comps, replacement)
						}
					}
					if comps == nil {
						comps = []string{}
					}
					a["components"] = comps
				}
				kept = append(kept, a)
			}
			e.Attributes = kept
		}
	}
	return nil
}

func referencesComponent(e *EntitySchema, uid string) bool {
	for _, a := range e.Attributes {
		if a.Type() == TypeComponent && a.Component() == uid {
			return true
		}
		if a.Type() == TypeDynamicZone {
			for _, c := range a.Components() {
				if c == uid {
					return true
				}
			}
		}
	}
	return false
}

// AddAttribute appends attr to the target entity. Bidirectional relations
// on content types also get their inverse field on the target type.
func (r *Registry) AddAttribute(forTarget ModelType, targetUID string, attr Attribute) error {
	return r.addAttribute(forTarget, targetUID, attr, false)
}

// AddCustomFieldAttribute is AddAttribute for attributes backed by a custom field.
func (r *Registry) AddCustomFieldAttribute(forTarget ModelType, targetUID string, attr Attribute) error {
	return r.addAttribute(forTarget, targetUID, attr, true)
}

func (r *Registry) addAttribute(forTarget ModelType, targetUID string, attr Attribute, custom bool) error {
	op := "addAttribute"
	if custom {
		op = "addCustomFieldAttribute"
	}
	err := r.update(func(tx *txn) error {
		a := attr.Compact()
		if a.Name() == "" {
			return errors.Invalid("name", "attribute name is required")
		}
		if custom && a.CustomField() == "" {
			return errors.Invalid("customField", "custom field uid is required")
		}
		e, err := tx.entity(forTarget, targetUID)
		if err != nil {
			return err
		}
		if _, idx := e.Attribute(a.Name()); idx >= 0 {
			return errors.Conflictf("%s already has an attribute named %s", targetUID, a.Name())
		}
		e.Attributes = append(e.Attributes, a)
		if forTarget == ModelContentType {
			if err := tx.addInverse(targetUID, a); err != nil {
				return err
			}
		}
		tx.emit(events.AttributeAdded, forTarget, targetUID, a.Name())
		return nil
	})
	if err != nil {
		return errors.SchemaCommit(op, targetUID, err)
	}
	r.logger.Debug().Str("uid", targetUID).Str("attribute", attr.Name()).Msg("attribute added")
	return nil
}

// EditAttribute replaces the attribute called oldName, keeping its
// position. Keys missing from patch keep their previous value; keys set to
// nil are removed. Visibility conditions of sibling attributes are left
// as they are.
func (r *Registry) EditAttribute(forTarget ModelType, targetUID, oldName string, patch Attribute) error {
	return r.editAttribute(forTarget, targetUID, oldName, patch, false)
}

// EditCustomFieldAttribute is EditAttribute for custom field attributes.
func (r *Registry) EditCustomFieldAttribute(forTarget ModelType, targetUID, oldName string, patch Attribute) error {
	return r.editAttribute(forTarget, targetUID, oldName, patch, true)
}

func (r *Registry) editAttribute(forTarget ModelType, targetUID, oldName string, patch Attribute, custom bool) error {
	op := "editAttribute"
	if custom {
		op = "editCustomFieldAttribute"
	}
	var newName string
	err := r.update(func(tx *txn) error {
		e, err := tx.entity(forTarget, targetUID)
		if err != nil {
			return err
		}
		old, idx := e.Attribute(oldName)
		if idx < 0 {
			return errors.NotFoundf("attribute %s not found on %s", oldName, targetUID)
		}
		merged := old.Merge(patch)
		newName = merged.Name()
		if newName == "" {
			return errors.Invalid("name", "attribute name is required")
		}
		if custom && merged.CustomField() == "" {
			return errors.Invalid("customField", "custom field uid is required")
		}
		if newName != oldName {
			if _, dup := e.Attribute(newName); dup >= 0 {
				return errors.Conflictf("%s already has an attribute named %s", targetUID, newName)
			}
		}

		if forTarget == ModelContentType {
			if err := tx.removeInverse(targetUID, old); err != nil {
				return err
			}
			// a self relation may have shifted the slice
			_, idx = e.Attribute(oldName)
		}
		e.Attributes[idx] = merged
		if forTarget == ModelContentType {
			if err := tx.addInverse(targetUID, merged); err != nil {
				return err
			}
		}
		tx.emit(events.AttributeEdited, forTarget, targetUID, newName)
		return nil
	})
	if err != nil {
		return errors.SchemaCommit(op, targetUID, err)
	}
	r.logger.Debug().Str("uid", targetUID).Str("from", oldName).Str("to", newName).Msg("attribute edited")
	return nil
}

// DeleteAttribute removes an attribute and the inverse side of its relation.
func (r *Registry) DeleteAttribute(forTarget ModelType, targetUID, name string) error {
	err := r.update(func(tx *txn) error {
		e, err := tx.entity(forTarget, targetUID)
		if err != nil {
			return err
		}
		old, idx := e.Attribute(name)
		if idx < 0 {
			return errors.NotFoundf("attribute %s not found on %s", name, targetUID)
		}
		if forTarget == ModelContentType {
			if err := tx.removeInverse(targetUID, old); err != nil {
				return err
			}
			_, idx = e.Attribute(name)
		}
		e.Attributes = append(e.Attributes[:idx], e.Attributes[idx+1:]...)
		tx.emit(events.AttributeDeleted, forTarget, targetUID, name)
		return nil
	})
	if err != nil {
		return errors.SchemaCommit("deleteAttribute", targetUID, err)
	}
	return nil
}

// CreateSchema adds a new content type.
func (r *Registry) CreateSchema(uid string, data ContentTypeData) error {
	err := r.update(func(tx *txn) error {
		if uid == "" {
			return errors.Invalid("uid", "content type uid is required")
		}
		if tx.exists(ModelContentType, uid) {
			return errors.Conflictf("content type %s already exists", uid)
		}
		kind := data.Kind
		if kind == "" {
			kind = KindCollection
		}
		if !kind.Valid() {
			return errors.Invalid("kind", string(kind))
		}
		e := &EntitySchema{
			UID:       uid,
			ModelType: ModelContentType,
			Kind:      kind,
			Info: Info{
				DisplayName:  data.DisplayName,
				SingularName: data.SingularName,
				PluralName:   data.PluralName,
			},
			Options:    Options{DraftAndPublish: data.DraftAndPublish},
			Attributes: []Attribute{},
			Status:     StatusNew,
		}
		if data.PluginOptions != nil {
			e.PluginOptions = cloneMap(data.PluginOptions)
		}
		tx.put(e)
		tx.emit(events.ContentTypeCreated, ModelContentType, uid, "")
		return nil
	})
	if err != nil {
		return errors.SchemaCommit("createSchema", uid, err)
	}
	r.logger.Info().Str("uid", uid).Msg("content type created")
	return nil
}

// UpdateSchema changes a content type's display name, kind, draft and
// publish option and plugin options. A kind change is refused while the
// type holds relations other than oneWay/manyWay.
func (r *Registry) UpdateSchema(uid string, data ContentTypeData) error {
	err := r.update(func(tx *txn) error {
		e, err := tx.entity(ModelContentType, uid)
		if err != nil {
			return err
		}
		if data.Kind != "" && data.Kind != e.Kind {
			if !data.Kind.Valid() {
				return errors.Invalid("kind", string(data.Kind))
			}
			if e.HasBidirectionalRelations() {
				return errors.Conflictf("cannot change %s to %s while it has bidirectional relations", uid, data.Kind)
			}
			e.Kind = data.Kind
		}
		if data.DisplayName != "" {
			e.Info.DisplayName = data.DisplayName
		}
		e.Options.DraftAndPublish = data.DraftAndPublish
		if data.PluginOptions != nil {
			e.PluginOptions = cloneMap(data.PluginOptions)
		}
		tx.emit(events.ContentTypeUpdated, ModelContentType, uid, "")
		return nil
	})
	if err != nil {
		return errors.SchemaCommit("updateSchema", uid, err)
	}
	return nil
}

// CreateComponentSchema adds a new component.
func (r *Registry) CreateComponentSchema(uid, category string, data ComponentData) error {
	err := r.update(func(tx *txn) error {
		if uid == "" {
			return errors.Invalid("uid", "component uid is required")
		}
		if category == "" {
			return errors.Invalid("category", "component category is required")
		}
		if tx.exists(ModelComponent, uid) {
			return errors.Conflictf("component %s already exists", uid)
		}
		tx.put(&EntitySchema{
			UID:        uid,
			ModelType:  ModelComponent,
			Category:   category,
			Info:       Info{DisplayName: data.DisplayName, Icon: data.Icon},
			Attributes: []Attribute{},
			Status:     StatusNew,
		})
		tx.emit(events.ComponentCreated, ModelComponent, uid, "")
		return nil
	})
	if err != nil {
		return errors.SchemaCommit("createComponentSchema", uid, err)
	}
	r.logger.Info().Str("uid", uid).Msg("component created")
	return nil
}

// UpdateComponentSchema changes a component's display name and icon.
func (r *Registry) UpdateComponentSchema(uid string, data ComponentData) error {
	err := r.update(func(tx *txn) error {
		e, err := tx.entity(ModelComponent, uid)
		if err != nil {
			return err
		}
		if data.DisplayName != "" {
			e.Info.DisplayName = data.DisplayName
		}
		e.Info.Icon = data.Icon
		tx.emit(events.ComponentUpdated, ModelComponent, uid, "")
		return nil
	})
	if err != nil {
		return errors.SchemaCommit("updateComponentSchema", uid, err)
	}
	return nil
}

// UpdateComponentUID renames a component that has not been persisted yet
// and rewrites every reference to it.
func (r *Registry) UpdateComponentUID(oldUID, newUID string) error {
	if oldUID == newUID {
		return nil
	}
	err := r.update(func(tx *txn) error {
		e, err := tx.entity(ModelComponent, oldUID)
		if err != nil {
			return err
		}
		if e.Status != StatusNew {
			return errors.Conflictf("component %s is already saved; its uid cannot change", oldUID)
		}
		if tx.exists(ModelComponent, newUID) {
			return errors.Conflictf("component %s already exists", newUID)
		}
		tx.remove(ModelComponent, oldUID)
		e.UID = newUID
		if category, _ := SplitComponentUID(newUID); category != "" {
			e.Category = category
		}
		tx.put(e)
		if err := tx.rewriteComponentRefs(oldUID, newUID); err != nil {
			return err
		}
		tx.emit(events.ComponentRenamed, ModelComponent, newUID, "")
		return nil
	})
	if err != nil {
		return errors.SchemaCommit("updateComponentUid", oldUID, err)
	}
	return nil
}

// DeleteComponent removes a component together with every component
// attribute and dynamic-zone entry that points at it.
func (r *Registry) DeleteComponent(uid string) error {
	err := r.update(func(tx *txn) error {
		if !tx.exists(ModelComponent, uid) {
			return errors.NotFoundf("component %s not found", uid)
		}
		tx.remove(ModelComponent, uid)
		if err := tx.rewriteComponentRefs(uid, ""); err != nil {
			return err
		}
		tx.emit(events.ComponentDeleted, ModelComponent, uid, "")
		return nil
	})
	if err != nil {
		return errors.SchemaCommit("deleteComponent", uid, err)
	}
	r.logger.Info().Str("uid", uid).Msg("component deleted")
	return nil
}

// DeleteContentType removes a content type and every relation targeting it.
func (r *Registry) DeleteContentType(uid string) error {
	err := r.update(func(tx *txn) error {
		if !tx.exists(ModelContentType, uid) {
			return errors.NotFoundf("content type %s not found", uid)
		}
		tx.remove(ModelContentType, uid)
		for _, forTarget := range []ModelType{ModelContentType, ModelComponent} {
			for _, other := range tx.uids(forTarget) {
				if !targetsContentType(tx.peek(forTarget, other), uid) {
					continue
				}
				e, err := tx.entity(forTarget, other)
				if err != nil {
					return err
				}
				kept := e.Attributes[:0]
				for _, a := range e.Attributes {
					if a.Type() == TypeRelation && a.Target() == uid {
						continue
					}
					kept = append(kept, a)
				}
				e.Attributes = kept
			}
		}
		tx.emit(events.ContentTypeDeleted, ModelContentType, uid, "")
		return nil
	})
	if err != nil {
		return errors.SchemaCommit("deleteContentType", uid, err)
	}
	r.logger.Info().Str("uid", uid).Msg("content type deleted")
	return nil
}

func targetsContentType(e *EntitySchema, uid string) bool {
	for _, a := range e.Attributes {
		if a.Type() == TypeRelation && a.Target() == uid {
			return true
		}
	}
	return false
}

// ChangeDynamicZoneComponents adds components to a dynamic zone. Components
// already in the zone are kept and not duplicated.
func (r *Registry) ChangeDynamicZoneComponents(forTarget ModelType, targetUID, dzName string, components []string) error {
	if err := r.appendToDynamicZone(forTarget, targetUID, dzName, components); err != nil {
		return errors.SchemaCommit("changeDynamicZoneComponents", targetUID, err)
	}
	return nil
}

// AddCreatedComponentToDynamicZone appends freshly created components to a
// dynamic zone, keeping the ones already there.
func (r *Registry) AddCreatedComponentToDynamicZone(forTarget ModelType, targetUID, dzName string, components []string) error {
	if err := r.appendToDynamicZone(forTarget, targetUID, dzName, components); err != nil {
		return errors.SchemaCommit("addCreatedComponentToDynamicZone", targetUID, err)
	}
	return nil
}

func (r *Registry) appendToDynamicZone(forTarget ModelType, targetUID, dzName string, components []string) error {
	return r.update(func(tx *txn) error {
		e, err := tx.entity(forTarget, targetUID)
		if err != nil {
			return err
		}
		a, idx := e.Attribute(dzName)
		if idx < 0 {
			return errors.NotFoundf("dynamic zone %s not found on %s", dzName, targetUID)
		}
		if a.Type() != TypeDynamicZone {
			return errors.Invalidf("%s is a %s attribute, not a dynamic zone", dzName, a.Type())
		}
		current := a.Components()
		seen := make(map[string]bool, len(current))
		for _, c := range current {
			seen[c] = true
		}
		for _, c := range components {
			if seen[c] {
				continue
			}
			if !tx.exists(ModelComponent, c) {
				return errors.NotFoundf("component %s not found", c)
			}
			seen[c] = true
			current = append(current, c)
		}
		if current == nil {
			current = []string{}
		}
		a["components"] = current
		tx.emit(events.DynamicZoneChanged, forTarget, targetUID, dzName)
		return nil
	})
}

// Get returns a copy of the entity identified by forTarget and uid.
func (r *Registry) Get(forTarget ModelType, uid string) (*EntitySchema, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.base(forTarget)[uid]
	if !ok {
		return nil, errors.NotFoundf("%s %s not found", forTarget, uid)
	}
	return e.Clone(), nil
}

// ContentType returns a copy of a content type
func (r *Registry) ContentType(uid string) (*EntitySchema, error) {
	return r.Get(ModelContentType, uid)
}

// Component returns a copy of a component
func (r *Registry) Component(uid string) (*EntitySchema, error) {
	return r.Get(ModelComponent, uid)
}

// Exists reports whether the entity exists
func (r *Registry) Exists(forTarget ModelType, uid string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.base(forTarget)[uid]
	return ok
}

// ContentTypeUIDs returns every content type uid, sorted
func (r *Registry) ContentTypeUIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.contentTypes)
}

// ComponentUIDs returns every component uid, sorted
func (r *Registry) ComponentUIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.components)
}

// SortedContentTypes returns copies of every content type ordered by display name.
func (r *Registry) SortedContentTypes() []*EntitySchema {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*EntitySchema, 0, len(r.contentTypes))
	for _, e := range r.contentTypes {
		out = append(out, e.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := strings.ToLower(out[i].DisplayName()), strings.ToLower(out[j].DisplayName())
		if a == b {
			return out[i].UID < out[j].UID
		}
		return a < b
	})
	return out
}

// SortedComponents returns copies of every component ordered by category then display name.
func (r *Registry) SortedComponents() []*EntitySchema {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*EntitySchema, 0, len(r.components))
	for _, e := range r.components {
		out = append(out, e.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return strings.ToLower(out[i].DisplayName()) < strings.ToLower(out[j].DisplayName())
	})
	return out
}

// Categories returns the distinct component categories, sorted
func (r *Registry) Categories() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	for _, e := range r.components {
		if e.Category != "" {
			seen[e.Category] = true
		}
	}
	return sortedKeys(seen)
}

// AllowedRelationTargets lists the content types a relation may point at.
// Admin types are excluded; plugin types only when their builder plugin
// options mark them visible.
func (r *Registry) AllowedRelationTargets() []*EntitySchema {
	var out []*EntitySchema
	for _, e := range r.SortedContentTypes() {
		if strings.HasPrefix(e.UID, "admin::") {
			continue
		}
		if strings.HasPrefix(e.UID, "plugin::") && !visibleInBuilder(e) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func visibleInBuilder(e *EntitySchema) bool {
	opts := asMap(e.PluginOptions["content-type-builder"])
	visible, _ := opts["visible"].(bool)
	return visible
}

// NestedComponents returns the uids of components used inside other
// components. Those cannot receive component attributes themselves.
func (r *Registry) NestedComponents() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	for _, e := range r.components {
		for _, a := range e.Attributes {
			if a.Type() == TypeComponent && a.Component() != "" {
				seen[a.Component()] = true
			}
		}
	}
	return sortedKeys(seen)
}

// PendingChanges summarises what differs from the last load or save.
type PendingChanges struct {
	Added   []string
	Changed []string
	Deleted []string
}

// Empty reports whether nothing is pending
func (p PendingChanges) Empty() bool {
	return len(p.Added) == 0 && len(p.Changed) == 0 && len(p.Deleted) == 0
}

// Count returns the number of pending entities
func (p PendingChanges) Count() int {
	return len(p.Added) + len(p.Changed) + len(p.Deleted)
}

// Has reports whether uid was added or changed
func (p PendingChanges) Has(uid string) bool {
	return slices.Contains(p.Added, uid) || slices.Contains(p.Changed, uid)
}

// Pending returns the entities added, changed and deleted since the last load or save.
func (r *Registry) Pending() PendingChanges {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var p PendingChanges
	for _, m := range []map[string]*EntitySchema{r.contentTypes, r.components} {
		for _, uid := range sortedKeys(m) {
			switch m[uid].Status {
			case StatusNew:
				p.Added = append(p.Added, uid)
			case StatusChanged:
				p.Changed = append(p.Changed, uid)
			}
		}
	}
	p.Deleted = sortedKeys(r.deleted)
	return p
}

// HasPendingChanges reports whether the registry differs from its last load or save
func (r *Registry) HasPendingChanges() bool {
	return !r.Pending().Empty()
}

// Snapshot returns a deep copy of the registry content, sorted by uid.
func (r *Registry) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s := Snapshot{
		Version:      r.version,
		ContentTypes: make([]*EntitySchema, 0, len(r.contentTypes)),
		Components:   make([]*EntitySchema, 0, len(r.components)),
	}
	for _, uid := range sortedKeys(r.contentTypes) {
		s.ContentTypes = append(s.ContentTypes, r.contentTypes[uid].Clone())
	}
	for _, uid := range sortedKeys(r.components) {
		s.Components = append(s.Components, r.components[uid].Clone())
	}
	return s
}

// Load replaces the registry content with s. Every entity is marked unchanged.
func (r *Registry) Load(s Snapshot) error {
	contentTypes := make(map[string]*EntitySchema, len(s.ContentTypes))
	components := make(map[string]*EntitySchema, len(s.Components))

	for _, e := range s.ContentTypes {
		if e == nil || e.UID == "" {
			return errors.Invalid("contentTypes", "entry without uid")
		}
		if _, dup := contentTypes[e.UID]; dup {
			return errors.Conflictf("content type %s is defined twice", e.UID)
		}
		c := e.Clone()
		c.ModelType = ModelContentType
		if c.Kind == "" {
			c.Kind = KindCollection
		}
		c.Status = StatusUnchanged
		contentTypes[c.UID] = c
	}
	for _, e := range s.Components {
		if e == nil || e.UID == "" {
			return errors.Invalid("components", "entry without uid")
		}
		if _, dup := components[e.UID]; dup {
			return errors.Conflictf("component %s is defined twice", e.UID)
		}
		c := e.Clone()
		c.ModelType = ModelComponent
		if c.Category == "" {
			c.Category, _ = SplitComponentUID(c.UID)
		}
		c.Status = StatusUnchanged
		components[c.UID] = c
	}

	r.mu.Lock()
	r.contentTypes = contentTypes
	r.components = components
	r.deleted = make(map[string]ModelType)
	if s.Version != "" {
		r.version = s.Version
	}
	r.mu.Unlock()

	r.bus.Publish(events.SchemaEvent{Kind: events.RegistryReloaded, Topic: events.AllTopics})
	r.logger.Debug().Int("contentTypes", len(contentTypes)).Int("components", len(components)).Msg("registry loaded")
	return nil
}

// MarkSaved records that the current content has been persisted.
func (r *Registry) MarkSaved() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, m := range []map[string]*EntitySchema{r.contentTypes, r.components} {
		for _, e := range m {
			e.Status = StatusUnchanged
		}
	}
	r.deleted = make(map[string]ModelType)
}
