package engine

import (
	"log/slog"
	"time"

	"github.com/barterforge/engine-core/internal/feed"
	"github.com/barterforge/engine-core/internal/types"
)

// AuditKind is the closed sum of what one audit record can carry.
type AuditKind interface {
	isAuditKind()
}

// SnapshotAudit is the very first audit emitted on startup: a full view of
// the engine's initial state, before any event has been processed.
type SnapshotAudit struct {
	Trading      types.TradingState
	Connectivity map[string]ConnectivitySnapshot
	Assets       map[string]AssetSnapshot
	Instruments  map[string]InstrumentSnapshot
}

func (SnapshotAudit) isAuditKind() {}

// ConnectivitySnapshot is the audited view of one venue's connectivity.
type ConnectivitySnapshot struct {
	Market  string
	Account string
}

// AssetSnapshot is the audited view of one asset's balance.
type AssetSnapshot struct {
	Total     string
	Available string
	Sequence  uint64
}

// InstrumentSnapshot is the audited view of one instrument's position and
// open-order count.
type InstrumentSnapshot struct {
	PositionQuantity string
	AvgPrice         string
	OpenOrders       int
}

// ProcessAudit is emitted for an event that produced no action output
// (e.g. an account-stream Reconnecting notice, or a non-dispatching account/market item
// while trading is disabled).
type ProcessAudit struct {
	Event feed.EngineEvent
}

func (ProcessAudit) isAuditKind() {}

// ProcessWithOutputAudit is emitted for an event whose processing produced
// an action output: a command result, a trading-state transition, an
// on-disconnect dispatch, and/or an algo pass result.
type ProcessWithOutputAudit struct {
	Event  feed.EngineEvent
	Output StepOutput
}

func (ProcessWithOutputAudit) isAuditKind() {}

// ShutdownWithOutputAudit is the final audit: the reducer is terminating,
// carrying whatever output (if any) the terminating step produced.
type ShutdownWithOutputAudit struct {
	Reason ShutdownAudit
	Output StepOutput
}

func (ShutdownWithOutputAudit) isAuditKind() {}

// ShutdownAudit is the closed sum of reasons the engine stopped.
type ShutdownAudit interface {
	isShutdownAudit()
}

// ShutdownFeedEnded: the input feed was exhausted.
type ShutdownFeedEnded struct{}

func (ShutdownFeedEnded) isShutdownAudit() {}

// ShutdownCommanded: an explicit Shutdown event was processed.
type ShutdownCommanded struct {
	Event feed.EngineEvent
}

func (ShutdownCommanded) isShutdownAudit() {}

// ShutdownError: an action output was unrecoverable.
type ShutdownError struct {
	Event   feed.EngineEvent
	Reasons []types.EngineError
}

func (ShutdownError) isShutdownAudit() {}

// AuditEvent is one durable record of a single reducer step.
type AuditEvent struct {
	ID   uint64
	Time time.Time
	Kind AuditKind
}

// Auditor assigns a monotonic sequence id and a clock-stamped time to every
// AuditKind, then pushes the resulting AuditEvent onto a drop-tolerant
// outbound channel: audits are for observability, never for correctness, so
// a slow consumer causes the oldest buffered audit to be dropped rather
// than stalling the reducer.
type Auditor struct {
	sequence uint64
	clock    func() time.Time
	out      chan AuditEvent
	logger   *slog.Logger
}

// NewAuditor constructs an Auditor emitting onto a channel of the given
// capacity. clock defaults to time.Now if nil.
func NewAuditor(capacity int, clock func() time.Time, logger *slog.Logger) *Auditor {
	if clock == nil {
		clock = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Auditor{
		clock:  clock,
		out:    make(chan AuditEvent, capacity),
		logger: logger,
	}
}

// Events returns the outbound audit channel for consumers to range over.
func (a *Auditor) Events() <-chan AuditEvent {
	return a.out
}

// Build assigns the next sequence id and current clock time to kind and
// pushes it onto the outbound channel. If the channel is full, the oldest
// queued audit is dropped to make room; the send never blocks the reducer.
func (a *Auditor) Build(kind AuditKind) AuditEvent {
	a.sequence++
	event := AuditEvent{ID: a.sequence, Time: a.clock(), Kind: kind}

	select {
	case a.out <- event:
	default:
		select {
		case <-a.out:
			a.logger.Warn("audit channel full, dropping oldest audit")
		default:
		}
		select {
		case a.out <- event:
		default:
			a.logger.Warn("audit channel full, dropping this audit", "id", event.ID)
		}
	}

	return event
}

// Close closes the outbound audit channel. Call once the reducer has
// emitted its final ShutdownWithOutputAudit.
func (a *Auditor) Close() {
	close(a.out)
}
