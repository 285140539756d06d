package feed

import "github.com/barterforge/engine-core/internal/types"

// MarketStreamEvent is either a reconnect notice for a venue's market
// stream, or a decoded MarketEvent item.
type MarketStreamEvent interface {
	isMarketStreamEvent()
}

// MarketReconnecting notifies that a venue's market stream is
// reconnecting; no instrument market substate is mutated.
type MarketReconnecting struct {
	Exchange types.ExchangeId
}

func (MarketReconnecting) isMarketStreamEvent() {}

// MarketItem wraps one decoded MarketEvent.
type MarketItem struct {
	Event MarketEvent
}

func (MarketItem) isMarketStreamEvent() {}

// MarketEvent carries an opaque market payload for one instrument. The
// payload is routed to that instrument's MarketDataState.Process and
// never interpreted by the engine itself.
type MarketEvent struct {
	Instrument types.InstrumentKey
	Payload    any
}
