package strategy

import (
	"github.com/shopspring/decimal"

	"github.com/barterforge/engine-core/internal/engine/state"
	"github.com/barterforge/engine-core/internal/feed"
	"github.com/barterforge/engine-core/internal/types"
)

// Flatten is a ClosePositionsStrategy and OnDisconnectStrategy: it cancels
// every order resting or cancellable on the selected instruments and, for
// any that still carry a position, dispatches one opposing order sized to
// bring it to flat.
type Flatten[ExchangeKey comparable, AssetKey comparable, InstrumentKey comparable] struct{}

// NewFlatten constructs a Flatten strategy. It carries no state of its own.
func NewFlatten[ExchangeKey comparable, AssetKey comparable, InstrumentKey comparable]() Flatten[ExchangeKey, AssetKey, InstrumentKey] {
	return Flatten[ExchangeKey, AssetKey, InstrumentKey]{}
}

// ClosePositionsRequests flattens every instrument matching filter.
func (Flatten[ExchangeKey, AssetKey, InstrumentKey]) ClosePositionsRequests(
	filter state.InstrumentFilter,
	s *state.EngineState[ExchangeKey, AssetKey, InstrumentKey],
) (cancels []feed.OrderRef, opens []feed.OpenRef) {
	return flattenMatching(s.InstrumentsMatching(filter))
}

// OnDisconnect flattens every instrument on venue, de-risking a venue whose
// market data just dropped.
func (Flatten[ExchangeKey, AssetKey, InstrumentKey]) OnDisconnect(
	venue types.ExchangeId,
	s *state.EngineState[ExchangeKey, AssetKey, InstrumentKey],
) (cancels []feed.OrderRef, opens []feed.OpenRef) {
	var matching []*state.InstrumentState
	for _, inst := range s.Instruments.All() {
		if inst.Exchange == venue {
			matching = append(matching, inst)
		}
	}
	return flattenMatching(matching)
}

func flattenMatching(insts []*state.InstrumentState) (cancels []feed.OrderRef, opens []feed.OpenRef) {
	for _, inst := range insts {
		key := types.InstrumentKey{Exchange: inst.Exchange, Instrument: inst.Instrument}

		for _, entry := range inst.Orders.Entries() {
			req, ok := state.AsRequestCancel(entry)
			if !ok {
				continue
			}
			cancels = append(cancels, feed.OrderRef{Exchange: inst.Exchange, Instrument: key, Request: req})
		}

		if inst.Position.Quantity.IsZero() {
			continue
		}
		side := types.SideSell
		if inst.Position.Quantity.IsNegative() {
			side = types.SideBuy
		}
		opens = append(opens, feed.OpenRef{
			Exchange:   inst.Exchange,
			Instrument: key,
			Request: state.RequestOpen{
				ClientOrderId: nextClientOrderId("flatten", key),
				Side:          side,
				Price:         decimal.Zero,
				Quantity:      inst.Position.Quantity.Abs(),
			},
		})
	}
	return cancels, opens
}
