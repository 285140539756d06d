// Package execution defines the outbound ExecutionRequest contract and the
// per-venue dispatcher that routes requests onto it, plus a simulated
// execution client used for tests and by cmd/enginectl. Real venue
// clients (WebSocket/REST adapters) are external collaborators, wired by
// the host process rather than implemented here.
package execution

import (
	"github.com/barterforge/engine-core/internal/engine/state"
	"github.com/barterforge/engine-core/internal/types"
)

// ExecutionRequest is the outbound message the engine dispatches to a
// per-venue execution channel: either an order open or an order cancel.
type ExecutionRequest interface {
	isExecutionRequest()
	Venue() types.ExchangeId
}

// OpenOrderRequest asks a venue to open a new order.
type OpenOrderRequest struct {
	Exchange   types.ExchangeId
	Instrument types.InstrumentKey
	Open       state.RequestOpen
}

func (OpenOrderRequest) isExecutionRequest()       {}
func (r OpenOrderRequest) Venue() types.ExchangeId { return r.Exchange }

// CancelOrderRequest asks a venue to cancel a known open order.
type CancelOrderRequest struct {
	Exchange   types.ExchangeId
	Instrument types.InstrumentKey
	Cancel     state.RequestCancel
}

func (CancelOrderRequest) isExecutionRequest()       {}
func (r CancelOrderRequest) Venue() types.ExchangeId { return r.Exchange }
