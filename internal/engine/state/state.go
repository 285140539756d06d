package state

import "github.com/barterforge/engine-core/internal/types"

// EngineState is the authoritative in-memory world model: connectivity per
// venue, per-asset balances, per-instrument market snapshot + position +
// open-order book, plus opaque strategy and risk substates.
//
// It is generic over the three key types used to index its stores, so that
// the same reducer logic drives both the indexed (production) and named
// (config/test) key regimes — one contract per store,
// not one monolithic trait.
type EngineState[ExchangeKey comparable, AssetKey comparable, InstrumentKey comparable] struct {
	Trading      types.TradingState
	Connectivity Store[ExchangeKey, ConnectivityState]
	Assets       Store[AssetKey, AssetState]
	Instruments  Store[InstrumentKey, InstrumentState]

	// Strategy and Risk are opaque substates mutated only via the
	// strategy/risk Processor calls the reducer makes on each event. The
	// engine never inspects their contents.
	Strategy any
	Risk     any
}

// New constructs an EngineState from pre-built stores. Stores are supplied
// fully populated for the static instrument/asset/venue universe fixed at
// engine start.
func New[ExchangeKey comparable, AssetKey comparable, InstrumentKey comparable](
	connectivity Store[ExchangeKey, ConnectivityState],
	assets Store[AssetKey, AssetState],
	instruments Store[InstrumentKey, InstrumentState],
	strategy, risk any,
	initialTrading types.TradingState,
) *EngineState[ExchangeKey, AssetKey, InstrumentKey] {
	return &EngineState[ExchangeKey, AssetKey, InstrumentKey]{
		Trading:      initialTrading,
		Connectivity: connectivity,
		Assets:       assets,
		Instruments:  instruments,
		Strategy:     strategy,
		Risk:         risk,
	}
}

// InstrumentsMatching returns every instrument state passing filter, for
// CancelOrders/ClosePositions command actions.
func (s *EngineState[ExchangeKey, AssetKey, InstrumentKey]) InstrumentsMatching(
	filter InstrumentFilter,
) []*InstrumentState {
	var out []*InstrumentState
	for _, inst := range s.Instruments.All() {
		if Matches(filter, inst.Exchange, inst.Instrument) {
			out = append(out, inst)
		}
	}
	return out
}
