package engine

import "github.com/barterforge/engine-core/internal/types"

// processTradingState applies a TradingStateUpdate event and logs the
// transition, matching the four-cell table of prev/incoming combinations.
// The algo pass after this event runs iff the resulting state is Enabled,
// which Process re-derives from e.state.Trading after this returns.
func (e *Engine[ExchangeKey, AssetKey, InstrumentKey]) processTradingState(incoming types.TradingState) TradingStateTransition {
	prev := e.state.Trading

	switch {
	case prev == types.TradingEnabled && incoming == types.TradingDisabled:
		e.logger.Info("setting Disabled")
	case prev == types.TradingDisabled && incoming == types.TradingEnabled:
		e.logger.Info("setting Enabled")
	case prev == types.TradingEnabled && incoming == types.TradingEnabled:
		e.logger.Info("already enabled")
	case prev == types.TradingDisabled && incoming == types.TradingDisabled:
		e.logger.Info("already disabled")
	}

	e.state.Trading = incoming
	return TradingStateTransition{Prev: prev, Current: incoming}
}
