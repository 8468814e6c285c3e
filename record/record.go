// Package record defines the capability contract the attribute-lock
// guard requires from a host record type. The guard never depends on a
// concrete persistence framework; it discovers capabilities on the
// record value through these interfaces, asserting the optional ones
// individually the way net/http discovers http.Flusher.
package record

import "log/slog"

// Lifecycle reports whether a record has ever been persisted. The guard
// only protects attributes of already-persisted records; new records
// are exempt. This capability is mandatory.
type Lifecycle interface {
	// IsNewRecord returns true if the record has no persisted state yet.
	IsNewRecord() bool
}

// ChangeTracker reports which attributes differ from the last persisted
// snapshot. This capability is mandatory for evaluation.
type ChangeTracker interface {
	// ChangedAttributeNames returns the names of attributes whose value
	// differs from the last persisted state.
	ChangedAttributeNames() []string
}

// Identity provides the type name and id used in diagnostic text and
// for registry lookup. Records without it fall back to reflection-based
// naming, which defeats per-type lock declarations, so hosts should
// implement it.
type Identity interface {
	// TypeName returns the model type name the record belongs to.
	TypeName() string

	// ID returns a printable identifier for diagnostics.
	ID() any
}

// ErrorSink collects validation errors keyed by attribute name. Required
// for the default (error-adding) reaction mode.
type ErrorSink interface {
	AddValidationError(attribute, message string)
}

// Warner exposes a logging capability for the warn reaction mode.
// Optional; a nil logger or a missing Warner falls back to the
// evaluator's diagnostic sink.
type Warner interface {
	Logger() *slog.Logger
}

// Unlockable reports per-instance unlock state. Optional; records that
// do not implement it are treated as having no attributes unlocked.
// guard.Unlocker provides an embeddable implementation.
type Unlockable interface {
	AttributeUnlocked(name string) bool
}

// Record is the full contract a host record satisfies to participate in
// guard evaluation without capability fallbacks.
type Record interface {
	Lifecycle
	ChangeTracker
	Identity
	ErrorSink
}
