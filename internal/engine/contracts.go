// Package engine implements the top-level reducer: the single-threaded
// event loop that consumes a merged EngineEvent feed, mutates EngineState,
// runs the strategy/risk/dispatch pipeline, and emits one audit per event.
package engine

import (
	"github.com/barterforge/engine-core/internal/engine/state"
	"github.com/barterforge/engine-core/internal/feed"
	"github.com/barterforge/engine-core/internal/types"
)

// EventObserver is implemented by both strategies and risk managers: every
// decoded account or market item is forwarded to it by shared borrow after
// the reducer has applied its own state mutation, so strategy/risk state
// can track whatever derived view it needs without ever holding a
// reference into EngineState.
type EventObserver interface {
	ProcessAccountEvent(e feed.AccountEvent)
	ProcessMarketEvent(e feed.MarketEvent)
}

// AlgoStrategy generates the one algo pass run after every non-shutdown
// event while trading is enabled. GenerateOrders must be deterministic
// given an unchanged EngineState: two calls against equal states produce
// equal outputs.
type AlgoStrategy[ExchangeKey comparable, AssetKey comparable, InstrumentKey comparable] interface {
	EventObserver
	GenerateOrders(s *state.EngineState[ExchangeKey, AssetKey, InstrumentKey]) (cancels []feed.OrderRef, opens []feed.OpenRef)
}

// ClosePositionsStrategy backs the ClosePositions command: given a filter
// and the current state, it produces the cancel/open requests that flatten
// every matching instrument's position.
type ClosePositionsStrategy[ExchangeKey comparable, AssetKey comparable, InstrumentKey comparable] interface {
	ClosePositionsRequests(filter state.InstrumentFilter, s *state.EngineState[ExchangeKey, AssetKey, InstrumentKey]) (cancels []feed.OrderRef, opens []feed.OpenRef)
}

// OnDisconnectStrategy backs the market-data Reconnecting hook. Its output
// is dispatched like an algo pass output but bypasses risk — the strategy
// is trusted here, typically to flatten exposure on a venue that just
// dropped its market-data stream.
type OnDisconnectStrategy[ExchangeKey comparable, AssetKey comparable, InstrumentKey comparable] interface {
	OnDisconnect(venue types.ExchangeId, s *state.EngineState[ExchangeKey, AssetKey, InstrumentKey]) (cancels []feed.OrderRef, opens []feed.OpenRef)
}

// RiskManager approves or refuses an algo pass's proposed cancels/opens.
// Command-initiated actions never call Check; they bypass risk entirely.
type RiskManager[ExchangeKey comparable, AssetKey comparable, InstrumentKey comparable] interface {
	EventObserver
	Check(
		s *state.EngineState[ExchangeKey, AssetKey, InstrumentKey],
		cancels []feed.OrderRef,
		opens []feed.OpenRef,
	) (approvedCancels []feed.OrderRef, approvedOpens []feed.OpenRef, refusedCancels []RefusedCancel, refusedOpens []RefusedOpen)
}

// RefusedCancel pairs a cancel request risk declined to approve with its
// textual reason.
type RefusedCancel struct {
	Request feed.OrderRef
	Reason  string
}

// RefusedOpen pairs an open request risk declined to approve with its
// textual reason.
type RefusedOpen struct {
	Request feed.OpenRef
	Reason  string
}
