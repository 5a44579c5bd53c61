// Package notify publishes build lifecycle events to a NATS subject so CI
// and tooling can react to bundle outcomes. The publisher is optional: a
// nil publisher accepts events and drops them.
package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/RobLoach/duo/internal/errors"
	"github.com/RobLoach/duo/internal/logfields"
	"github.com/RobLoach/duo/internal/retry"
)

// Build statuses carried by events.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// BuildEvent describes one finished entry build.
type BuildEvent struct {
	BuildID    string    `json:"build_id"`
	Entry      string    `json:"entry"`
	Status     string    `json:"status"`
	DurationMS int64     `json:"duration_ms"`
	Error      string    `json:"error,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// Publisher sends build events over a NATS connection.
type Publisher struct {
	conn    *nats.Conn
	subject string
	log     *slog.Logger
}

// connectPolicy rides out a broker that is still coming up alongside the
// build, without stalling startup for long.
var connectPolicy = retry.NewPolicy(retry.ModeFixed, 500*time.Millisecond, 500*time.Millisecond, 2)

// Connect establishes the broker connection. An unreachable broker is a
// fatal configuration problem: asking for notifications and silently not
// getting them would be worse.
func Connect(ctx context.Context, url, subject string, log *slog.Logger) (*Publisher, error) {
	var conn *nats.Conn
	err := connectPolicy.Do(ctx, func() error {
		var cerr error
		conn, cerr = nats.Connect(url, nats.Name("duo"))
		return cerr
	})
	if err != nil {
		return nil, errors.NotifyError(url, err)
	}
	log.Debug("notify connected", logfields.Subject(subject))
	return &Publisher{conn: conn, subject: subject, log: log}, nil
}

// Publish sends one build event. A nil publisher drops it.
func (p *Publisher) Publish(event *BuildEvent) error {
	if p == nil {
		return nil
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, errors.CategoryNotify, errors.SeverityWarning, "cannot encode build event")
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		return errors.Wrap(err, errors.CategoryNotify, errors.SeverityWarning, "cannot publish build event")
	}

	p.log.Debug("published build event",
		logfields.Subject(p.subject),
		logfields.BuildID(event.BuildID),
		logfields.Entry(event.Entry))
	return nil
}

// Close flushes pending events and drops the connection. Safe on nil.
func (p *Publisher) Close() {
	if p == nil || p.conn == nil {
		return
	}
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
	}
}
