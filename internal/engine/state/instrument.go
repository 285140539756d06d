package state

import (
	"github.com/shopspring/decimal"

	"github.com/barterforge/engine-core/internal/types"
)

// MarketDataState is the opaque, per-instrument market substate. The
// engine never inspects its contents; it only routes
// decoded market events into it. A concrete implementation might track an
// order book, a rolling VWAP, or nothing at all.
type MarketDataState interface {
	// Process applies a decoded market event payload to the substate.
	Process(payload any)
}

// NoopMarketDataState is the zero-footprint MarketDataState used when a
// deployment has no use for per-instrument market bookkeeping beyond what
// the strategy itself tracks.
type NoopMarketDataState struct{}

func (NoopMarketDataState) Process(any) {}

// InstrumentState is the per-(venue, instrument) substate: an opaque market
// snapshot (owned and mutated by an external market-data decoder), the net
// Position, and the Orders book tracking open and in-flight orders.
type InstrumentState struct {
	Exchange   types.ExchangeId
	Instrument types.InstrumentName
	Market     MarketDataState
	Position   Position
	Orders     Orders
}

// NewInstrumentState returns the initial InstrumentState for a static
// universe entry.
func NewInstrumentState(exchange types.ExchangeId, instrument types.InstrumentName, market MarketDataState) InstrumentState {
	if market == nil {
		market = NoopMarketDataState{}
	}
	return InstrumentState{
		Exchange:   exchange,
		Instrument: instrument,
		Market:     market,
		Orders:     NewOrders(),
	}
}

// PositionSnapshot is an authoritative, venue-origin record of a position
// that replaces the local one wholesale.
type PositionSnapshot struct {
	Quantity      decimal.Decimal
	AvgPrice      decimal.Decimal
	RealisedPnL   decimal.Decimal
	UnrealisedPnL decimal.Decimal
}

// UpdateFromPositionSnapshot replaces the position wholesale, as delivered
// by an account Snapshot or a standalone PositionSnapshot event.
func (i *InstrumentState) UpdateFromPositionSnapshot(snap PositionSnapshot) {
	i.Position = Position{
		Quantity:      snap.Quantity,
		AvgPrice:      snap.AvgPrice,
		RealisedPnL:   snap.RealisedPnL,
		UnrealisedPnL: snap.UnrealisedPnL,
	}
}
