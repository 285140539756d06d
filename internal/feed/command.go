package feed

import (
	"github.com/barterforge/engine-core/internal/engine/state"
	"github.com/barterforge/engine-core/internal/types"
)

// Command is the operator-issued action set handled by the engine's
// action handlers. All command-initiated actions bypass risk.
type Command interface {
	isCommand()
}

// SendCancelRequests dispatches each given cancel request and records the
// sent ones as in-flight.
type SendCancelRequests struct {
	Requests []OrderRef
}

func (SendCancelRequests) isCommand() {}

// SendOpenRequests dispatches each given open request and records the sent
// ones as in-flight.
type SendOpenRequests struct {
	Requests []OpenRef
}

func (SendOpenRequests) isCommand() {}

// CancelOrders produces and dispatches a cancel request for every
// currently-Open order on every instrument matching Filter.
type CancelOrders struct {
	Filter state.InstrumentFilter
}

func (CancelOrders) isCommand() {}

// ClosePositions delegates to the strategy's ClosePositionsStrategy to
// produce (cancels, opens) for every instrument matching Filter.
type ClosePositions struct {
	Filter state.InstrumentFilter
}

func (ClosePositions) isCommand() {}

// OpenRef names an instrument plus the open request to send against it.
type OpenRef struct {
	Exchange   types.ExchangeId
	Instrument types.InstrumentKey
	Request    state.RequestOpen
}

// OrderRef names an instrument plus the cancel request to send against it.
type OrderRef struct {
	Exchange   types.ExchangeId
	Instrument types.InstrumentKey
	Request    state.RequestCancel
}
