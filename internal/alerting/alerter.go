// Package alerting pushes operator notifications for the engine's notable
// transitions: startup and shutdown, risk safe-mode changes, venue
// connectivity drops, and unrecoverable dispatch errors. Alerts are
// advisory; the audit stream, not the alert stream, is the system of
// record.
package alerting

import (
	"context"
	"fmt"
	"strings"
)

// Severity ranks how urgently an operator should look at an alert.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityHigh
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityWarning:
		return "WARNING"
	case SeverityHigh:
		return "HIGH"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// Marker returns the symbol prefixed to rendered alert text on channels
// that support it.
func (s Severity) Marker() string {
	switch s {
	case SeverityWarning:
		return "⚠️"
	case SeverityHigh:
		return "🔴"
	case SeverityCritical:
		return "🚨"
	default:
		return "ℹ️"
	}
}

// Alerter delivers one alert to one destination.
type Alerter interface {
	// Alert sends message at severity. fields are alternating key/value
	// pairs appended as structured detail; a trailing key with no value
	// is dropped.
	Alert(ctx context.Context, severity Severity, message string, fields ...any) error
	// Name identifies the destination in delivery-failure logs.
	Name() string
}

// Event names the engine transitions a deployment can subscribe alerts
// to via the alerting config's events list.
type Event string

const (
	// EventEngineStarted fires once the reducer loop is running.
	EventEngineStarted Event = "startup"
	// EventEngineStopped fires after the final shutdown audit, whatever
	// the cause.
	EventEngineStopped Event = "shutdown"
	// EventUnrecoverable fires when an action output forces the engine
	// down (terminated or missing execution channel).
	EventUnrecoverable Event = "unrecoverable_error"
	// EventSafeModeEntered fires when the risk manager trips its drawdown
	// kill switch and starts refusing every open.
	EventSafeModeEntered Event = "safe_mode_entered"
	// EventSafeModeExited fires when equity recovers under the limit.
	EventSafeModeExited Event = "safe_mode_exited"
	// EventRiskRefusal fires when the risk manager refuses an algo-pass
	// order.
	EventRiskRefusal Event = "risk_refusal"
	// EventVenueReconnecting fires on a market or account stream
	// reconnect notice.
	EventVenueReconnecting Event = "venue_reconnecting"
	// EventVenueRecovered fires when the first live item after a
	// reconnect notice heals the stream.
	EventVenueRecovered Event = "venue_recovered"
	// EventRunSummary carries the position/PnL digest sent when the engine
	// stops.
	EventRunSummary Event = "run_summary"
)

// DefaultSeverity maps an event to the severity it is sent at.
func DefaultSeverity(event Event) Severity {
	switch event {
	case EventUnrecoverable:
		return SeverityCritical
	case EventSafeModeEntered:
		return SeverityHigh
	case EventSafeModeExited, EventVenueReconnecting, EventRiskRefusal:
		return SeverityWarning
	default:
		return SeverityInfo
	}
}

// RenderFields renders alternating key/value pairs one per line for
// channels that deliver free text rather than structured records.
func RenderFields(fields ...any) string {
	var b strings.Builder
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "- %s: %v", key, fields[i+1])
	}
	return b.String()
}
