// Package audit persists the Engine's audit stream. Auditor.Events()
// produces observability records, never correctness-critical state, so a
// Sink may lag or drop; consumers that need the full history should read
// SQLiteSink.LastSequence on startup and treat any gap as expected.
package audit

import (
	"context"

	"github.com/barterforge/engine-core/internal/engine"
)

// Sink durably records audit events as they are produced.
type Sink interface {
	Write(ctx context.Context, event engine.AuditEvent) error
	Close() error
}

// Run drains events into sink until the channel closes, logging (via the
// caller-supplied onError, if non-nil) rather than stopping on a single
// write failure — a transient write error must not take down the reducer
// goroutine feeding events.
func Run(ctx context.Context, sink Sink, events <-chan engine.AuditEvent, onError func(engine.AuditEvent, error)) {
	for event := range events {
		if err := sink.Write(ctx, event); err != nil && onError != nil {
			onError(event, err)
		}
	}
}
