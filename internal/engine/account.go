package engine

import (
	"github.com/barterforge/engine-core/internal/engine/state"
	"github.com/barterforge/engine-core/internal/feed"
	"github.com/barterforge/engine-core/internal/types"
)

// processAccountStream applies one AccountStreamEvent. Reconnecting
// notices only flip connectivity; decoded items dispatch on their Kind,
// mutate state, and are then forwarded to strategy and risk by borrow.
// Account processing never itself produces a dispatch output.
func (e *Engine[ExchangeKey, AssetKey, InstrumentKey]) processAccountStream(stream feed.AccountStreamEvent) any {
	switch s := stream.(type) {
	case feed.AccountReconnecting:
		if key, ok := e.resolver.Exchange(s.Exchange); ok {
			e.state.Connectivity.MustLookup(key).OnAccountReconnecting()
		}
		return nil

	case feed.AccountItem:
		if key, ok := e.resolver.Exchange(s.Event.Exchange); ok {
			e.state.Connectivity.MustLookup(key).OnAccountItem()
		}
		e.applyAccountEvent(s.Event)
		e.strategy.ProcessAccountEvent(s.Event)
		e.risk.ProcessAccountEvent(s.Event)
		return nil

	default:
		return nil
	}
}

func (e *Engine[ExchangeKey, AssetKey, InstrumentKey]) applyAccountEvent(event feed.AccountEvent) {
	switch kind := event.Kind.(type) {
	case feed.AccountSnapshot:
		for _, balance := range kind.Balances {
			e.updateBalance(balance)
		}
		for _, instrument := range kind.Instruments {
			e.updatePositionSnapshot(instrument.Instrument, instrument.Position)
			for _, snap := range instrument.Orders {
				e.updateOrderSnapshot(instrument.Instrument, snap)
			}
		}

	case feed.AccountBalanceSnapshot:
		e.updateBalance(kind.Balance)

	case feed.AccountPositionSnapshot:
		e.updatePositionSnapshot(kind.Instrument, kind.Position)

	case feed.AccountOrderSnapshot:
		e.updateOrderSnapshot(kind.Instrument, kind.Snapshot)

	case feed.AccountOrderOpened:
		if key, ok := e.resolver.Instrument(kind.Instrument); ok {
			e.state.Instruments.MustLookup(key).Orders.UpdateFromOpen(kind.Response)
		}

	case feed.AccountOrderCancelled:
		if key, ok := e.resolver.Instrument(kind.Instrument); ok {
			e.state.Instruments.MustLookup(key).Orders.UpdateFromCancel(kind.Response)
		}

	case feed.AccountTrade:
		if key, ok := e.resolver.Instrument(kind.Instrument); ok {
			inst := e.state.Instruments.MustLookup(key)
			inst.Position.ApplyTrade(kind.Trade)
			inst.Orders.ApplyFill(kind.Trade.ClientOrderId, kind.Trade.Quantity)
		}
	}
}

func (e *Engine[ExchangeKey, AssetKey, InstrumentKey]) updateBalance(b feed.BalanceUpdate) {
	key, ok := e.resolver.Asset(b.Asset)
	if !ok {
		return
	}
	e.state.Assets.MustLookup(key).UpdateFromBalance(b.Balance)
}

func (e *Engine[ExchangeKey, AssetKey, InstrumentKey]) updatePositionSnapshot(instrument types.InstrumentKey, snap state.PositionSnapshot) {
	key, ok := e.resolver.Instrument(instrument)
	if !ok {
		return
	}
	e.state.Instruments.MustLookup(key).UpdateFromPositionSnapshot(snap)
}

func (e *Engine[ExchangeKey, AssetKey, InstrumentKey]) updateOrderSnapshot(instrument types.InstrumentKey, snap state.OrderSnapshot) {
	key, ok := e.resolver.Instrument(instrument)
	if !ok {
		return
	}
	e.state.Instruments.MustLookup(key).Orders.UpdateFromOrderSnapshot(snap)
}
