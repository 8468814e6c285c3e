// Package audit publishes lock-violation events for external audit
// trails. Publishing is best-effort: failures are logged, never surfaced
// into the validation path.
package audit

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/c360studio/attrlock/guard"
)

// ViolationSubject is the subject violation events are published on.
const ViolationSubject = "attrlock.audit.violation"

// Event is the wire format for a lock violation.
type Event struct {
	TypeName  string    `json:"type_name"`
	Attribute string    `json:"attribute"`
	Mode      string    `json:"mode"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher sends violation events to NATS. It implements
// guard.Observer. A nil connection degrades to a no-op so hosts can wire
// the publisher unconditionally and enable it by configuration.
type Publisher struct {
	conn    *nats.Conn
	subject string
	logger  *slog.Logger
}

// Interface guard.
var _ guard.Observer = (*Publisher)(nil)

// NewPublisher creates a violation publisher. An empty subject uses
// ViolationSubject; a nil logger uses slog.Default().
func NewPublisher(conn *nats.Conn, subject string, logger *slog.Logger) *Publisher {
	if subject == "" {
		subject = ViolationSubject
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{conn: conn, subject: subject, logger: logger}
}

// RecordEvaluated implements guard.Observer. Evaluations are not
// audited, only violations.
func (p *Publisher) RecordEvaluated(string) {}

// LockViolation implements guard.Observer.
func (p *Publisher) LockViolation(typeName, attribute string, mode guard.Mode) {
	if p.conn == nil {
		return // Skip publishing if no NATS connection (graceful degradation)
	}

	data, err := json.Marshal(Event{
		TypeName:  typeName,
		Attribute: attribute,
		Mode:      mode.String(),
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		p.logger.Error("Failed to marshal audit event", "error", err)
		return
	}

	if err := p.conn.Publish(p.subject, data); err != nil {
		p.logger.Warn("Failed to publish audit event",
			"subject", p.subject,
			"type", typeName,
			"attribute", attribute,
			"error", err)
	}
}
