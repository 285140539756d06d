package engine

import (
	"log/slog"

	"github.com/barterforge/engine-core/internal/engine/state"
	"github.com/barterforge/engine-core/internal/execution"
	"github.com/barterforge/engine-core/internal/feed"
	"github.com/barterforge/engine-core/internal/types"
)

// Engine is the single-threaded reducer: it owns EngineState and the
// outbound execution channels exclusively, and is the only thing that
// mutates either. Strategy and risk never hold a reference into state;
// they receive it by borrow on each call this reducer makes.
type Engine[ExchangeKey comparable, AssetKey comparable, InstrumentKey comparable] struct {
	state      *state.EngineState[ExchangeKey, AssetKey, InstrumentKey]
	resolver   state.KeyResolver[ExchangeKey, AssetKey, InstrumentKey]
	dispatcher *execution.Dispatcher

	strategy       AlgoStrategy[ExchangeKey, AssetKey, InstrumentKey]
	closePositions ClosePositionsStrategy[ExchangeKey, AssetKey, InstrumentKey]
	onDisconnect   OnDisconnectStrategy[ExchangeKey, AssetKey, InstrumentKey]
	risk           RiskManager[ExchangeKey, AssetKey, InstrumentKey]

	auditor *Auditor
	logger  *slog.Logger
}

// New builds an Engine over an already-constructed EngineState, key
// resolver, and execution dispatcher. The strategy/risk/closePositions/
// onDisconnect collaborators are all required; wire a no-op implementation
// for whichever hooks a deployment does not need.
func New[ExchangeKey comparable, AssetKey comparable, InstrumentKey comparable](
	s *state.EngineState[ExchangeKey, AssetKey, InstrumentKey],
	resolver state.KeyResolver[ExchangeKey, AssetKey, InstrumentKey],
	dispatcher *execution.Dispatcher,
	strategy AlgoStrategy[ExchangeKey, AssetKey, InstrumentKey],
	closePositions ClosePositionsStrategy[ExchangeKey, AssetKey, InstrumentKey],
	onDisconnect OnDisconnectStrategy[ExchangeKey, AssetKey, InstrumentKey],
	risk RiskManager[ExchangeKey, AssetKey, InstrumentKey],
	auditor *Auditor,
	logger *slog.Logger,
) *Engine[ExchangeKey, AssetKey, InstrumentKey] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine[ExchangeKey, AssetKey, InstrumentKey]{
		state:          s,
		resolver:       resolver,
		dispatcher:     dispatcher,
		strategy:       strategy,
		closePositions: closePositions,
		onDisconnect:   onDisconnect,
		risk:           risk,
		auditor:        auditor,
		logger:         logger,
	}
}

// State exposes the engine's EngineState for read-only inspection by the
// host (e.g. a status command), never for mutation from outside the
// reducer.
func (e *Engine[ExchangeKey, AssetKey, InstrumentKey]) State() *state.EngineState[ExchangeKey, AssetKey, InstrumentKey] {
	return e.state
}

// Process is the reducer's sole public operation: it consumes one
// EngineEvent to completion and returns the AuditKind describing what
// happened. Determinism: for a given EngineState and event, the output and
// resulting state are a pure function of the event; the only external
// input is the clock read by the Auditor to stamp the returned audit, and
// Process itself never touches the clock.
func (e *Engine[ExchangeKey, AssetKey, InstrumentKey]) Process(event feed.EngineEvent) AuditKind {
	switch ev := event.(type) {
	case feed.ShutdownEvent:
		return ShutdownWithOutputAudit{Reason: ShutdownCommanded{Event: event}, Output: StepOutput{}}

	case feed.CommandEvent:
		primary := e.handleCommand(ev.Command)
		return e.finish(event, primary)

	case feed.TradingStateUpdateEvent:
		primary := e.processTradingState(ev.State)
		return e.finish(event, primary)

	case feed.AccountEngineEvent:
		primary := e.processAccountStream(ev.Stream)
		return e.finish(event, primary)

	case feed.MarketEngineEvent:
		primary := e.processMarketStream(ev.Stream)
		return e.finish(event, primary)

	default:
		return e.finish(event, nil)
	}
}

// finish runs the algo pass if trading is enabled, composes the step's
// output, and decides whether the step is terminal.
func (e *Engine[ExchangeKey, AssetKey, InstrumentKey]) finish(event feed.EngineEvent, primary any) AuditKind {
	output := StepOutput{Primary: primary}

	if e.state.Trading == types.TradingEnabled {
		algoOutput := e.runAlgoPass()
		output.AlgoPass = &algoOutput
	}

	if reasons := output.unrecoverableReasons(); len(reasons) > 0 {
		return ShutdownWithOutputAudit{
			Reason: ShutdownError{Event: event, Reasons: reasons},
			Output: output,
		}
	}

	if output.IsEmpty() {
		return ProcessAudit{Event: event}
	}
	return ProcessWithOutputAudit{Event: event, Output: output}
}
