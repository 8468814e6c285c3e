// Package memrecord provides an in-memory record framework implementing
// the capability contract the guard expects from a host: lifecycle
// state, change tracking against the last persisted snapshot, validation
// errors, and validation hooks. It backs the module's own tests and the
// demo tooling, and doubles as a reference integration for real hosts.
package memrecord

import (
	"log/slog"
	"reflect"
	"sort"

	"github.com/google/uuid"

	"github.com/c360studio/attrlock/guard"
	"github.com/c360studio/attrlock/record"
)

// Attributes is a named attribute/value map.
type Attributes map[string]any

func (a Attributes) clone() Attributes {
	if a == nil {
		return nil
	}
	c := make(Attributes, len(a))
	for k, v := range a {
		c[k] = v
	}
	return c
}

// Record is an in-memory record. It embeds guard.Unlocker, so locked
// attributes can be unlocked per instance, and tracks changes as the
// difference between its current attributes and the snapshot taken at
// the last successful save. A record with no snapshot is new.
type Record struct {
	guard.Unlocker

	id        string
	typeName  string
	attrs     Attributes
	persisted Attributes
	logger    *slog.Logger

	errs record.Errors
}

// Compile-time contract assertions.
var (
	_ record.Record     = (*Record)(nil)
	_ record.Unlockable = (*Record)(nil)
	_ record.Warner     = (*Record)(nil)
)

// New creates a new, unpersisted record of the given type.
func New(typeName string, attrs Attributes) *Record {
	return &Record{
		id:       uuid.New().String(),
		typeName: typeName,
		attrs:    attrs.clone(),
	}
}

// Set assigns an attribute value.
func (r *Record) Set(name string, value any) {
	if r.attrs == nil {
		r.attrs = make(Attributes)
	}
	r.attrs[name] = value
}

// Get returns an attribute value and whether it is present.
func (r *Record) Get(name string) (any, bool) {
	v, ok := r.attrs[name]
	return v, ok
}

// IsNewRecord reports whether the record has ever been saved.
func (r *Record) IsNewRecord() bool {
	return r.persisted == nil
}

// ChangedAttributeNames returns the names whose value differs from the
// last persisted snapshot, sorted for determinism. For a new record
// every attribute counts as changed.
func (r *Record) ChangedAttributeNames() []string {
	changed := make(map[string]struct{})
	for name, value := range r.attrs {
		old, ok := r.persisted[name]
		if !ok || !reflect.DeepEqual(old, value) {
			changed[name] = struct{}{}
		}
	}
	for name := range r.persisted {
		if _, ok := r.attrs[name]; !ok {
			changed[name] = struct{}{}
		}
	}

	names := make([]string, 0, len(changed))
	for name := range changed {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TypeName returns the model type name used for registry lookup.
func (r *Record) TypeName() string {
	return r.typeName
}

// ID returns the record's identifier.
func (r *Record) ID() any {
	return r.id
}

// AddValidationError records a validation failure against an attribute.
func (r *Record) AddValidationError(attribute, message string) {
	r.errs.Add(attribute, message)
}

// ValidationErrors returns the errors collected by the last validation
// pass.
func (r *Record) ValidationErrors() record.Errors {
	return r.errs
}

// ResetValidationErrors clears collected errors before a new pass.
func (r *Record) ResetValidationErrors() {
	r.errs = nil
}

// SetLogger attaches a logger, exposed to the guard's warn reaction.
func (r *Record) SetLogger(logger *slog.Logger) {
	r.logger = logger
}

// Logger returns the record's logger, or nil when none is attached.
func (r *Record) Logger() *slog.Logger {
	return r.logger
}

// markPersisted snapshots the current attributes as the persisted state.
func (r *Record) markPersisted() {
	r.persisted = r.attrs.clone()
	if r.persisted == nil {
		r.persisted = make(Attributes)
	}
}
