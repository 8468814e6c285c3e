package guard

import (
	"log/slog"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/c360studio/attrlock/record"
)

// Observer receives guard evaluation events. Implementations must be
// safe for concurrent use and must not block: they run inline in the
// validation path.
type Observer interface {
	// RecordEvaluated fires once per evaluation of a persisted record
	// whose type has lock declarations.
	RecordEvaluated(typeName string)

	// LockViolation fires once per locked-and-changed-and-not-unlocked
	// attribute, before its reaction is applied.
	LockViolation(typeName, attribute string, mode Mode)
}

// Evaluator runs the lock check during a host's validation pass. The
// registry is held behind an atomic pointer so a reloaded configuration
// can be swapped in while validations are running.
type Evaluator struct {
	registry atomic.Pointer[Registry]
	logger   *slog.Logger

	obsMu     sync.RWMutex
	observers []Observer
}

// NewEvaluator creates an evaluator over the given registry. The logger
// is the fallback diagnostic sink for warn reactions on records that
// expose no logger of their own; nil means slog.Default().
func NewEvaluator(reg *Registry, logger *slog.Logger) *Evaluator {
	if reg == nil {
		reg = NewRegistry()
	}
	if logger == nil {
		logger = slog.Default()
	}
	e := &Evaluator{logger: logger}
	e.registry.Store(reg)
	return e
}

// Registry returns the registry currently consulted by evaluations.
func (e *Evaluator) Registry() *Registry {
	return e.registry.Load()
}

// SetRegistry swaps the registry. In-flight evaluations keep the
// snapshot they started with.
func (e *Evaluator) SetRegistry(reg *Registry) {
	if reg == nil {
		reg = NewRegistry()
	}
	e.registry.Store(reg)
}

// AddObserver registers an observer for evaluation events.
func (e *Evaluator) AddObserver(o Observer) {
	if o == nil {
		return
	}
	e.obsMu.Lock()
	defer e.obsMu.Unlock()
	e.observers = append(e.observers, o)
}

// CheckCapabilities verifies at integration time that a record exposes
// the capabilities evaluation will need, so that a miswired host fails
// loudly when it registers the guard rather than deep inside a
// validation pass.
func (e *Evaluator) CheckCapabilities(rec any) error {
	if _, ok := rec.(record.Lifecycle); !ok {
		return &MisuseError{Capability: "lifecycle state"}
	}
	if _, ok := rec.(record.ChangeTracker); !ok {
		return &MisuseError{Capability: "change tracking"}
	}
	return nil
}

// Evaluate runs the lock check once for a validation pass.
//
// New (never persisted) records pass unconditionally: locks protect
// existing data, not initial construction. For persisted records each
// effective declaration is checked in registry order; attributes that
// are unchanged or currently unlocked are skipped, and the remaining
// ones fire their declared reaction. Validation errors are attached to
// the record, not returned; the returned error is non-nil only for a
// fatal reaction (LockedAttributeError, which short-circuits the pass)
// or a missing host capability (MisuseError).
func (e *Evaluator) Evaluate(rec any) error {
	lc, ok := rec.(record.Lifecycle)
	if !ok {
		return &MisuseError{Capability: "lifecycle state"}
	}
	if lc.IsNewRecord() {
		return nil
	}

	ct, ok := rec.(record.ChangeTracker)
	if !ok {
		return &MisuseError{Capability: "change tracking"}
	}

	typeName, id := identityOf(rec)
	entries := e.Registry().Entries(typeName)
	if len(entries) == 0 {
		return nil
	}

	e.notifyEvaluated(typeName)

	changed := make(map[string]struct{})
	for _, name := range ct.ChangedAttributeNames() {
		changed[name] = struct{}{}
	}
	if len(changed) == 0 {
		return nil
	}

	var unlockable record.Unlockable
	if u, ok := rec.(record.Unlockable); ok {
		unlockable = u
	}

	for _, entry := range entries {
		if _, ok := changed[entry.Attribute]; !ok {
			continue
		}
		if unlockable != nil && unlockable.AttributeUnlocked(entry.Attribute) {
			continue
		}

		e.notifyViolation(typeName, entry.Attribute, entry.Spec.Mode)

		switch entry.Spec.Mode {
		case ModeError:
			sink, ok := rec.(record.ErrorSink)
			if !ok {
				return &MisuseError{Capability: "validation error"}
			}
			sink.AddValidationError(entry.Attribute, entry.Spec.Message)

		case ModeWarn:
			e.warnLogger(rec).Warn(violationText(entry.Attribute, typeName, id))

		case ModeFatal:
			return &LockedAttributeError{
				TypeName:  typeName,
				Attribute: entry.Attribute,
				ID:        id,
			}

		case ModeCustom:
			entry.Spec.Callback(rec, entry.Attribute)
		}
	}

	return nil
}

// AttributeLocked reports whether an attribute is effectively locked for
// the given record right now: declared locked on its type and not
// currently unlocked on the instance.
func (e *Evaluator) AttributeLocked(rec any, attribute string) bool {
	typeName, _ := identityOf(rec)
	if _, ok := e.Registry().SpecFor(typeName, attribute); !ok {
		return false
	}
	if u, ok := rec.(record.Unlockable); ok && u.AttributeUnlocked(attribute) {
		return false
	}
	return true
}

func (e *Evaluator) warnLogger(rec any) *slog.Logger {
	if w, ok := rec.(record.Warner); ok {
		if l := w.Logger(); l != nil {
			return l
		}
	}
	return e.logger
}

func (e *Evaluator) notifyEvaluated(typeName string) {
	e.obsMu.RLock()
	defer e.obsMu.RUnlock()
	for _, o := range e.observers {
		o.RecordEvaluated(typeName)
	}
}

func (e *Evaluator) notifyViolation(typeName, attribute string, mode Mode) {
	e.obsMu.RLock()
	defer e.obsMu.RUnlock()
	for _, o := range e.observers {
		o.LockViolation(typeName, attribute, mode)
	}
}

// identityOf resolves the type name and id used for registry lookup and
// diagnostics. Records without the Identity capability get a
// reflection-derived type name and an unknown id.
func identityOf(rec any) (typeName string, id any) {
	if ident, ok := rec.(record.Identity); ok {
		return ident.TypeName(), ident.ID()
	}
	t := reflect.TypeOf(rec)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "unknown", "unknown"
	}
	name := t.Name()
	if name == "" {
		name = strings.TrimLeft(t.String(), "*")
	}
	return name, "unknown"
}
