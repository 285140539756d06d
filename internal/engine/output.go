package engine

import (
	"github.com/barterforge/engine-core/internal/execution"
	"github.com/barterforge/engine-core/internal/types"
)

// unrecoverableChecker is satisfied by every action output type that can
// carry a dispatcher error; the reducer uses it to decide whether to shut
// down after a step.
type unrecoverableChecker interface {
	IsUnrecoverable() bool
	unrecoverableReasons() []types.EngineError
}

// TradingStateTransition is the output of the TradingState processor.
type TradingStateTransition struct {
	Prev    types.TradingState
	Current types.TradingState
}

func (TradingStateTransition) IsUnrecoverable() bool                     { return false }
func (TradingStateTransition) unrecoverableReasons() []types.EngineError { return nil }

// GenerateAlgoOrdersOutput is the output of one algo pass: strategy
// proposed cancels/opens, risk approved a subset of each, and the approved
// subset was dispatched.
type GenerateAlgoOrdersOutput struct {
	Cancels        execution.SendRequestsOutput[execution.CancelOrderRequest]
	CancelsRefused []RefusedCancel
	Opens          execution.SendRequestsOutput[execution.OpenOrderRequest]
	OpensRefused   []RefusedOpen
}

func (o GenerateAlgoOrdersOutput) IsUnrecoverable() bool {
	return o.Cancels.IsUnrecoverable() || o.Opens.IsUnrecoverable()
}

func (o GenerateAlgoOrdersOutput) unrecoverableReasons() []types.EngineError {
	var reasons []types.EngineError
	for _, e := range o.Cancels.Errors {
		if ee, ok := e.Err.(types.EngineError); ok && ee.IsUnrecoverable() {
			reasons = append(reasons, ee)
		}
	}
	for _, e := range o.Opens.Errors {
		if ee, ok := e.Err.(types.EngineError); ok && ee.IsUnrecoverable() {
			reasons = append(reasons, ee)
		}
	}
	return reasons
}

// OnDisconnectOutput is the output of the market-data Reconnecting hook:
// dispatched like an algo pass output, but never risk-checked.
type OnDisconnectOutput struct {
	Cancels execution.SendRequestsOutput[execution.CancelOrderRequest]
	Opens   execution.SendRequestsOutput[execution.OpenOrderRequest]
}

func (o OnDisconnectOutput) IsUnrecoverable() bool {
	return o.Cancels.IsUnrecoverable() || o.Opens.IsUnrecoverable()
}

func (o OnDisconnectOutput) unrecoverableReasons() []types.EngineError {
	var reasons []types.EngineError
	for _, e := range o.Cancels.Errors {
		if ee, ok := e.Err.(types.EngineError); ok && ee.IsUnrecoverable() {
			reasons = append(reasons, ee)
		}
	}
	for _, e := range o.Opens.Errors {
		if ee, ok := e.Err.(types.EngineError); ok && ee.IsUnrecoverable() {
			reasons = append(reasons, ee)
		}
	}
	return reasons
}

// CommandActionOutput is the output of a Command-initiated action. At most
// one of the embedded batches is populated for SendCancelRequests/
// SendOpenRequests/CancelOrders; ClosePositions populates both.
type CommandActionOutput struct {
	Cancels execution.SendRequestsOutput[execution.CancelOrderRequest]
	Opens   execution.SendRequestsOutput[execution.OpenOrderRequest]
}

func (o CommandActionOutput) IsUnrecoverable() bool {
	return o.Cancels.IsUnrecoverable() || o.Opens.IsUnrecoverable()
}

func (o CommandActionOutput) unrecoverableReasons() []types.EngineError {
	var reasons []types.EngineError
	for _, e := range o.Cancels.Errors {
		if ee, ok := e.Err.(types.EngineError); ok && ee.IsUnrecoverable() {
			reasons = append(reasons, ee)
		}
	}
	for _, e := range o.Opens.Errors {
		if ee, ok := e.Err.(types.EngineError); ok && ee.IsUnrecoverable() {
			reasons = append(reasons, ee)
		}
	}
	return reasons
}

// StepOutput is the composite action output for one reducer step: the
// primary output produced while handling the event itself (a command
// result, a trading-state transition, or an on-disconnect dispatch), plus
// the algo pass output run afterwards if trading was left enabled.
type StepOutput struct {
	Primary  any
	AlgoPass *GenerateAlgoOrdersOutput
}

// IsEmpty reports whether neither half of the step produced an output, in
// which case the step's audit is a plain ProcessAudit.
func (s StepOutput) IsEmpty() bool {
	return s.Primary == nil && s.AlgoPass == nil
}

// unrecoverableReasons flattens every unrecoverable reason across both
// halves of the step.
func (s StepOutput) unrecoverableReasons() []types.EngineError {
	var reasons []types.EngineError
	if checker, ok := s.Primary.(unrecoverableChecker); ok {
		reasons = append(reasons, checker.unrecoverableReasons()...)
	}
	if s.AlgoPass != nil {
		reasons = append(reasons, s.AlgoPass.unrecoverableReasons()...)
	}
	return reasons
}
