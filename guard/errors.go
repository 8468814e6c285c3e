package guard

import "fmt"

// ConfigurationError reports invalid declaration input: an empty
// attribute list, a blank attribute name or message, or a custom mode
// without a callback. It indicates a programming mistake and is never
// retried.
type ConfigurationError struct {
	Reason string
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	return "lock declaration: " + e.Reason
}

// MisuseError reports a host record that is missing a capability the
// guard requires. It indicates an integration error, not a runtime data
// problem.
type MisuseError struct {
	Capability string
}

// Error implements the error interface.
func (e *MisuseError) Error() string {
	return fmt.Sprintf("guard requires %s capability", e.Capability)
}

// LockedAttributeError is the fatal reaction outcome. It propagates out
// of the validation call and is intentionally not downgraded to a
// validation failure, so callers relying on "locked means impossible"
// get an abort rather than a silently invalid record.
type LockedAttributeError struct {
	TypeName  string
	Attribute string
	ID        any
}

// Error implements the error interface. The text matches the warn
// diagnostic for the same violation.
func (e *LockedAttributeError) Error() string {
	return violationText(e.Attribute, e.TypeName, e.ID)
}

func violationText(attribute, typeName string, id any) string {
	return fmt.Sprintf("Changed locked attribute %s on %s with id %v", attribute, typeName, id)
}
