package feed

import (
	"github.com/barterforge/engine-core/internal/engine/state"
	"github.com/barterforge/engine-core/internal/types"
)

// AccountStreamEvent is either a reconnect notice for a venue's account
// stream, or a decoded AccountEvent item.
type AccountStreamEvent interface {
	isAccountStreamEvent()
}

// AccountReconnecting notifies that a venue's account stream is
// reconnecting; no other mutation follows.
type AccountReconnecting struct {
	Exchange types.ExchangeId
}

func (AccountReconnecting) isAccountStreamEvent() {}

// AccountItem wraps one decoded AccountEvent.
type AccountItem struct {
	Event AccountEvent
}

func (AccountItem) isAccountStreamEvent() {}

// AccountEvent is one account-origin message, scoped to a venue and
// tagged by Kind.
type AccountEvent struct {
	Exchange types.ExchangeId
	Kind     AccountEventKind
}

// AccountEventKind is the closed sum of account message variants.
type AccountEventKind interface {
	isAccountEventKind()
}

// AccountSnapshot replaces every named balance and every per-instrument
// position/orders snapshot wholesale.
type AccountSnapshot struct {
	Balances    []BalanceUpdate
	Instruments []InstrumentSnapshot
}

func (AccountSnapshot) isAccountEventKind() {}

// BalanceUpdate names the asset a Balance applies to.
type BalanceUpdate struct {
	Asset   types.AssetKey
	Balance state.Balance
}

// InstrumentSnapshot names the instrument a position/orders snapshot
// applies to.
type InstrumentSnapshot struct {
	Instrument types.InstrumentKey
	Position   state.PositionSnapshot
	Orders     []state.OrderSnapshot
}

// AccountBalanceSnapshot updates a single asset's balance.
type AccountBalanceSnapshot struct {
	Balance BalanceUpdate
}

func (AccountBalanceSnapshot) isAccountEventKind() {}

// AccountPositionSnapshot updates a single instrument's position.
type AccountPositionSnapshot struct {
	Instrument types.InstrumentKey
	Position   state.PositionSnapshot
}

func (AccountPositionSnapshot) isAccountEventKind() {}

// AccountOrderSnapshot delivers an authoritative order-book snapshot to
// the order manager.
type AccountOrderSnapshot struct {
	Instrument types.InstrumentKey
	Snapshot   state.OrderSnapshot
}

func (AccountOrderSnapshot) isAccountEventKind() {}

// AccountOrderOpened delivers an open acknowledgement to the order
// manager.
type AccountOrderOpened struct {
	Instrument types.InstrumentKey
	Response   state.OrderOpenResponse
}

func (AccountOrderOpened) isAccountEventKind() {}

// AccountOrderCancelled delivers a cancel acknowledgement to the order
// manager.
type AccountOrderCancelled struct {
	Instrument types.InstrumentKey
	Response   state.OrderCancelResponse
}

func (AccountOrderCancelled) isAccountEventKind() {}

// AccountTrade reports a fill to apply to the instrument's position.
type AccountTrade struct {
	Instrument types.InstrumentKey
	Trade      state.Trade
}

func (AccountTrade) isAccountEventKind() {}
