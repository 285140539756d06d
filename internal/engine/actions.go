package engine

import (
	"github.com/barterforge/engine-core/internal/engine/state"
	"github.com/barterforge/engine-core/internal/execution"
	"github.com/barterforge/engine-core/internal/feed"
	"github.com/barterforge/engine-core/internal/types"
)

// toCancelRequest converts a feed-level cancel reference into the
// execution-layer request the dispatcher understands.
func toCancelRequest(r feed.OrderRef) execution.CancelOrderRequest {
	return execution.CancelOrderRequest{Exchange: r.Exchange, Instrument: r.Instrument, Cancel: r.Request}
}

// toOpenRequest converts a feed-level open reference into the
// execution-layer request the dispatcher understands.
func toOpenRequest(r feed.OpenRef) execution.OpenOrderRequest {
	return execution.OpenOrderRequest{Exchange: r.Exchange, Instrument: r.Instrument, Open: r.Request}
}

// recordInFlightCancel marks every successfully-dispatched cancel request
// as in flight against its instrument's order book.
func (e *Engine[ExchangeKey, AssetKey, InstrumentKey]) recordInFlightCancel(sent []execution.CancelOrderRequest) {
	for _, req := range sent {
		key, ok := e.resolver.Instrument(req.Instrument)
		if !ok {
			continue
		}
		e.state.Instruments.MustLookup(key).Orders.RecordInFlightCancel(req.Cancel)
	}
}

// recordInFlightOpen marks every successfully-dispatched open request as
// in flight against its instrument's order book.
func (e *Engine[ExchangeKey, AssetKey, InstrumentKey]) recordInFlightOpen(sent []execution.OpenOrderRequest) {
	for _, req := range sent {
		key, ok := e.resolver.Instrument(req.Instrument)
		if !ok {
			continue
		}
		e.state.Instruments.MustLookup(key).Orders.RecordInFlightOpen(req.Open)
	}
}

// dispatchCancelsThenOpens sends cancels before opens (within one action,
// cancels are always dispatched first, reducing the chance of double
// exposure when a strategy replaces a resting order), recording each
// successfully-sent request as in flight.
func (e *Engine[ExchangeKey, AssetKey, InstrumentKey]) dispatchCancelsThenOpens(
	cancels []feed.OrderRef,
	opens []feed.OpenRef,
) (execution.SendRequestsOutput[execution.CancelOrderRequest], execution.SendRequestsOutput[execution.OpenOrderRequest]) {
	cancelReqs := make([]execution.CancelOrderRequest, len(cancels))
	for i, c := range cancels {
		cancelReqs[i] = toCancelRequest(c)
	}
	cancelOut := execution.SendRequests(e.dispatcher, cancelReqs)
	e.recordInFlightCancel(cancelOut.Sent)

	openReqs := make([]execution.OpenOrderRequest, len(opens))
	for i, o := range opens {
		openReqs[i] = toOpenRequest(o)
	}
	openOut := execution.SendRequests(e.dispatcher, openReqs)
	e.recordInFlightOpen(openOut.Sent)

	return cancelOut, openOut
}

// dispatchOnDisconnectRequests sends the OnDisconnectStrategy's output,
// bypassing risk entirely.
func (e *Engine[ExchangeKey, AssetKey, InstrumentKey]) dispatchOnDisconnectRequests(
	cancels []feed.OrderRef,
	opens []feed.OpenRef,
) OnDisconnectOutput {
	cancelOut, openOut := e.dispatchCancelsThenOpens(cancels, opens)
	return OnDisconnectOutput{Cancels: cancelOut, Opens: openOut}
}

// runAlgoPass is the strategy-then-risk-then-dispatch cycle triggered
// after any non-shutdown event while trading is enabled.
func (e *Engine[ExchangeKey, AssetKey, InstrumentKey]) runAlgoPass() GenerateAlgoOrdersOutput {
	cancels, opens := e.strategy.GenerateOrders(e.state)
	approvedCancels, approvedOpens, refusedCancels, refusedOpens := e.risk.Check(e.state, cancels, opens)

	cancelOut, openOut := e.dispatchCancelsThenOpens(approvedCancels, approvedOpens)

	return GenerateAlgoOrdersOutput{
		Cancels:        cancelOut,
		CancelsRefused: refusedCancels,
		Opens:          openOut,
		OpensRefused:   refusedOpens,
	}
}

// handleCommand runs one operator Command. All command-initiated actions
// bypass risk.
func (e *Engine[ExchangeKey, AssetKey, InstrumentKey]) handleCommand(cmd feed.Command) any {
	switch c := cmd.(type) {
	case feed.SendCancelRequests:
		cancelOut, _ := e.dispatchCancelsThenOpens(c.Requests, nil)
		return CommandActionOutput{Cancels: cancelOut}

	case feed.SendOpenRequests:
		_, openOut := e.dispatchCancelsThenOpens(nil, c.Requests)
		return CommandActionOutput{Opens: openOut}

	case feed.CancelOrders:
		cancels := e.cancelRequestsMatching(c.Filter)
		cancelOut, _ := e.dispatchCancelsThenOpens(cancels, nil)
		return CommandActionOutput{Cancels: cancelOut}

	case feed.ClosePositions:
		cancels, opens := e.closePositions.ClosePositionsRequests(c.Filter, e.state)
		cancelOut, openOut := e.dispatchCancelsThenOpens(cancels, opens)
		return CommandActionOutput{Cancels: cancelOut, Opens: openOut}

	default:
		return nil
	}
}

// cancelRequestsMatching produces a cancel request for every currently
// Open order on every instrument matching filter.
func (e *Engine[ExchangeKey, AssetKey, InstrumentKey]) cancelRequestsMatching(filter state.InstrumentFilter) []feed.OrderRef {
	var out []feed.OrderRef
	for _, inst := range e.state.InstrumentsMatching(filter) {
		for _, entry := range inst.Orders.Entries() {
			req, ok := state.AsRequestCancel(entry)
			if !ok {
				continue
			}
			out = append(out, feed.OrderRef{
				Exchange:   inst.Exchange,
				Instrument: types.InstrumentKey{Exchange: inst.Exchange, Instrument: inst.Instrument},
				Request:    req,
			})
		}
	}
	return out
}
