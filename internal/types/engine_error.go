package types

import "fmt"

// EngineError is the taxonomy: every error the reducer or
// its dispatcher can produce is either Recoverable (logged, processing
// continues) or Unrecoverable (the engine shuts down). Errors are values,
// not panics — they are surfaced in SendRequestsOutput.Errors and audited.
type EngineError interface {
	error
	IsUnrecoverable() bool
}

// ExecutionChannelUnhealthyError: a send attempt transient-failed
// (backpressure). Recoverable — the request is reported as errored for
// this instrument but the engine continues.
type ExecutionChannelUnhealthyError struct {
	Venue  ExchangeId
	Detail string
}

func (e *ExecutionChannelUnhealthyError) Error() string {
	return fmt.Sprintf("execution channel for %s unhealthy: %s", e.Venue, e.Detail)
}
func (e *ExecutionChannelUnhealthyError) IsUnrecoverable() bool { return false }

// RiskRefusedError carries a textual refusal reason on a risk-refused
// order. Never fatal.
type RiskRefusedError struct {
	Reason string
}

func (e *RiskRefusedError) Error() string         { return "risk refused: " + e.Reason }
func (e *RiskRefusedError) IsUnrecoverable() bool { return false }

// ExecutionChannelTerminatedError: the per-venue channel is closed; the
// engine can no longer instruct that venue. Unrecoverable.
type ExecutionChannelTerminatedError struct {
	Venue  ExchangeId
	Detail string
}

func (e *ExecutionChannelTerminatedError) Error() string {
	return fmt.Sprintf("execution channel for %s terminated: %s", e.Venue, e.Detail)
}
func (e *ExecutionChannelTerminatedError) IsUnrecoverable() bool { return true }

// MissingExecutionChannelError: a command or dispatch referenced a venue
// with no registered execution channel. Unrecoverable.
type MissingExecutionChannelError struct {
	Venue ExchangeId
}

func (e *MissingExecutionChannelError) Error() string {
	return fmt.Sprintf("missing execution channel for venue %s", e.Venue)
}
func (e *MissingExecutionChannelError) IsUnrecoverable() bool { return true }

// StateInvariantViolatedError signals a reconciliation detected an
// impossible local state. Used sparingly; prefer logging and self-heal
// where safe. Unrecoverable.
type StateInvariantViolatedError struct {
	Detail string
}

func (e *StateInvariantViolatedError) Error() string {
	return "state invariant violated: " + e.Detail
}
func (e *StateInvariantViolatedError) IsUnrecoverable() bool { return true }

// IsUnrecoverable reports whether err is an EngineError classified
// Unrecoverable. Non-EngineError values are treated as recoverable (they
// cannot shut down the engine).
func IsUnrecoverable(err error) bool {
	ee, ok := err.(EngineError)
	return ok && ee.IsUnrecoverable()
}
