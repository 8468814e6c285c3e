package guard

import (
	"strings"
	"sync"
)

// Entry pairs a locked attribute name with its reaction policy, in
// declaration order.
type Entry struct {
	Attribute string
	Spec      Spec
}

// Registry holds the per-type lock declarations. Types are identified
// by name (the host record's TypeName); Go has no type hierarchy, so
// inheritance is an explicit Derive call made wherever the host's
// type-registration step fires.
//
// Declarations normally happen in single-threaded startup code, but the
// registry is safe for concurrent use: mutation is lock-protected and
// readers receive copies.
type Registry struct {
	mu    sync.RWMutex
	types map[string]*typeEntry
}

type typeEntry struct {
	order []string // insertion order, ancestor entries first
	specs map[string]Spec
}

func (t *typeEntry) set(name string, spec Spec) {
	if _, exists := t.specs[name]; !exists {
		t.order = append(t.order, name)
	}
	t.specs[name] = spec
}

func (t *typeEntry) clone() *typeEntry {
	c := &typeEntry{
		order: make([]string, len(t.order)),
		specs: make(map[string]Spec, len(t.specs)),
	}
	copy(c.order, t.order)
	for k, v := range t.specs {
		c.specs[k] = v
	}
	return c
}

// DefaultRegistry is the process-wide registry used by hosts that do
// not manage their own.
var DefaultRegistry = NewRegistry()

// NewRegistry creates an empty lock registry.
func NewRegistry() *Registry {
	return &Registry{types: make(map[string]*typeEntry)}
}

// entryFor returns the typeEntry for a type name, creating it lazily.
// Caller must hold the write lock.
func (r *Registry) entryFor(typeName string) *typeEntry {
	te, ok := r.types[typeName]
	if !ok {
		te = &typeEntry{specs: make(map[string]Spec)}
		r.types[typeName] = te
	}
	return te
}

// Lock declares the given attributes as locked on the given type. Later
// declarations for the same attribute name overwrite its policy. The
// default policy appends a validation error with DefaultMessage.
//
// Lock fails with a ConfigurationError if the attribute list is empty
// or contains a blank name, if the message is blank, or if ModeCustom
// is selected without a callback.
func (r *Registry) Lock(typeName string, attributes []string, opts ...LockOption) error {
	spec := Spec{Message: DefaultMessage, Mode: ModeError}
	for _, opt := range opts {
		opt(&spec)
	}

	if len(attributes) == 0 {
		return &ConfigurationError{Reason: "no attributes given"}
	}
	if strings.TrimSpace(spec.Message) == "" {
		return &ConfigurationError{Reason: "message must not be blank"}
	}
	if spec.Mode == ModeCustom && spec.Callback == nil {
		return &ConfigurationError{Reason: "custom mode requires a callback"}
	}
	for _, name := range attributes {
		if strings.TrimSpace(name) == "" {
			return &ConfigurationError{Reason: "attribute name must not be blank"}
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	te := r.entryFor(typeName)
	for _, name := range attributes {
		te.set(name, spec)
	}
	return nil
}

// Derive initializes childType's declarations as a snapshot of
// parentType's current declarations. The copy happens once, at the
// moment Derive is called: later declarations on the parent do not
// propagate to the child, and later declarations on the child do not
// propagate back or to siblings. Declarations already present on the
// child are preserved and keep their position.
func (r *Registry) Derive(childType, parentType string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	parent, ok := r.types[parentType]
	if !ok || len(parent.order) == 0 {
		// Nothing to inherit; the child participates lazily like any
		// other type.
		return
	}

	snapshot := parent.clone()
	if existing, ok := r.types[childType]; ok {
		for _, name := range existing.order {
			snapshot.set(name, existing.specs[name])
		}
	}
	r.types[childType] = snapshot
}

// LockedAttributeNames returns the locked attribute names declared on
// (or inherited by) the given type, deduplicated, in declaration order
// with inherited entries first.
func (r *Registry) LockedAttributeNames(typeName string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	te, ok := r.types[typeName]
	if !ok {
		return nil
	}
	names := make([]string, len(te.order))
	copy(names, te.order)
	return names
}

// SpecFor returns the reaction policy for an attribute on a type, and
// whether one is declared.
func (r *Registry) SpecFor(typeName, attribute string) (Spec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	te, ok := r.types[typeName]
	if !ok {
		return Spec{}, false
	}
	spec, ok := te.specs[attribute]
	return spec, ok
}

// Entries returns an ordered snapshot of the effective declarations for
// a type. The snapshot is independent of later registry mutation, so
// evaluation observes a consistent view.
func (r *Registry) Entries(typeName string) []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	te, ok := r.types[typeName]
	if !ok {
		return nil
	}
	entries := make([]Entry, 0, len(te.order))
	for _, name := range te.order {
		entries = append(entries, Entry{Attribute: name, Spec: te.specs[name]})
	}
	return entries
}

// Types returns the names of all types with at least one declaration.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	return names
}
