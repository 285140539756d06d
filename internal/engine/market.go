package engine

import (
	"github.com/barterforge/engine-core/internal/feed"
	"github.com/barterforge/engine-core/internal/types"
)

// processMarketStream applies one MarketStreamEvent. A Reconnecting notice
// flips connectivity and, unlike the account stream, also invokes the
// strategy's on-disconnect hook — its output is dispatched like an algo
// pass output but is never risk-checked, since the strategy is trusted for
// this path (typically flatten-on-disconnect). A decoded item is routed to
// the instrument's opaque market substate, then forwarded to strategy and
// risk by borrow.
func (e *Engine[ExchangeKey, AssetKey, InstrumentKey]) processMarketStream(stream feed.MarketStreamEvent) any {
	switch s := stream.(type) {
	case feed.MarketReconnecting:
		if key, ok := e.resolver.Exchange(s.Exchange); ok {
			e.state.Connectivity.MustLookup(key).OnMarketReconnecting()
		}
		return e.dispatchOnDisconnect(s.Exchange)

	case feed.MarketItem:
		if key, ok := e.resolver.Instrument(s.Event.Instrument); ok {
			inst := e.state.Instruments.MustLookup(key)
			inst.Market.Process(s.Event.Payload)
			if exKey, ok := e.resolver.Exchange(s.Event.Instrument.Exchange); ok {
				e.state.Connectivity.MustLookup(exKey).OnMarketItem()
			}
		}
		e.strategy.ProcessMarketEvent(s.Event)
		e.risk.ProcessMarketEvent(s.Event)
		return nil

	default:
		return nil
	}
}

// dispatchOnDisconnect runs the OnDisconnectStrategy hook for venue and
// dispatches its output, bypassing risk.
func (e *Engine[ExchangeKey, AssetKey, InstrumentKey]) dispatchOnDisconnect(venue types.ExchangeId) OnDisconnectOutput {
	cancels, opens := e.onDisconnect.OnDisconnect(venue, e.state)
	return e.dispatchOnDisconnectRequests(cancels, opens)
}
