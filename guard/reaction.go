// Package guard implements the attribute-lock registry, per-instance
// unlock scopes, and the validation-time evaluator that reacts to
// changes of locked attributes on persisted records.
package guard

// Mode selects the reaction applied when a locked attribute of a
// persisted record has been changed without being unlocked. The mode is
// decided once at declaration time.
type Mode int

const (
	// ModeError appends a validation error keyed by the attribute.
	// This is the default and the only recoverable reaction.
	ModeError Mode = iota

	// ModeWarn emits a diagnostic warning and lets validation succeed.
	ModeWarn

	// ModeFatal aborts the validation pass with a LockedAttributeError.
	ModeFatal

	// ModeCustom invokes a caller-supplied callback which is solely
	// responsible for any side effect.
	ModeCustom
)

// String returns the configuration name of the mode.
func (m Mode) String() string {
	switch m {
	case ModeError:
		return "error"
	case ModeWarn:
		return "warn"
	case ModeFatal:
		return "fatal"
	case ModeCustom:
		return "custom"
	default:
		return "unknown"
	}
}

// ParseMode converts a configuration string into a Mode. ModeCustom is
// not parseable: callbacks cannot be expressed declaratively.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "error":
		return ModeError, nil
	case "warn":
		return ModeWarn, nil
	case "fatal":
		return ModeFatal, nil
	default:
		return ModeError, &ConfigurationError{Reason: "unknown reaction mode: " + s}
	}
}

// DefaultMessage is the validation message used when a lock declaration
// does not supply one.
const DefaultMessage = "is locked and cannot be changed"

// Callback is the custom reaction hook. It receives the record under
// validation and the violating attribute name, and is fully responsible
// for any side effect such as adding its own validation error. Its
// return value, if any, is not interpreted by the evaluator.
type Callback func(rec any, attribute string)

// Spec is the reaction policy stored per locked attribute.
type Spec struct {
	// Message is the validation message for ModeError.
	Message string

	// Mode selects the reaction variant.
	Mode Mode

	// Callback is set only for ModeCustom.
	Callback Callback
}

// LockOption customizes a lock declaration.
type LockOption func(*Spec)

// WithMessage overrides the validation message for the declaration.
func WithMessage(message string) LockOption {
	return func(s *Spec) { s.Message = message }
}

// WithMode sets the reaction mode for the declaration.
func WithMode(mode Mode) LockOption {
	return func(s *Spec) { s.Mode = mode }
}

// WithCallback sets a custom reaction callback and implies ModeCustom.
func WithCallback(cb Callback) LockOption {
	return func(s *Spec) {
		s.Mode = ModeCustom
		s.Callback = cb
	}
}
