package state

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/barterforge/engine-core/internal/types"
)

// OrderStatus is the state of one OrderEntry in the order manager's state
// machine.
type OrderStatus int

const (
	// StatusInFlightOpen: an open request has been sent, the venue has not
	// yet acknowledged it.
	StatusInFlightOpen OrderStatus = iota
	// StatusInFlightCancel: a cancel-only marker — recorded when a cancel
	// was requested but no local Open entry matched it, so that a
	// subsequently arriving open ack for the same cid is ignored rather
	// than resurrecting an order the caller already tried to cancel away.
	StatusInFlightCancel
	// StatusOpen: acknowledged open at the venue.
	StatusOpen
	// StatusOpenCancelInFlight: open at the venue, with a local cancel
	// request also in flight against it.
	StatusOpenCancelInFlight
)

func (s OrderStatus) String() string {
	switch s {
	case StatusInFlightOpen:
		return "InFlightOpen"
	case StatusInFlightCancel:
		return "InFlightCancel"
	case StatusOpen:
		return "Open"
	case StatusOpenCancelInFlight:
		return "OpenCancelInFlight"
	default:
		return "Unknown"
	}
}

// OrderEntry is one order tracked by the order manager, keyed by its
// ClientOrderId.
type OrderEntry struct {
	ClientOrderId types.ClientOrderId
	Side          types.Side
	Status        OrderStatus

	VenueOrderId   types.VenueOrderId
	Price          decimal.Decimal
	Quantity       decimal.Decimal
	FilledQuantity decimal.Decimal

	// sequence is the time_exchange of the last venue message applied to
	// this entry, used to tie-break conflicting updates (greater wins;
	// equal applies the incoming message).
	sequence int64
}

// RequestOpen is a caller-built open request, recorded as in-flight the
// moment it is dispatched.
type RequestOpen struct {
	ClientOrderId types.ClientOrderId
	Side          types.Side
	Price         decimal.Decimal
	Quantity      decimal.Decimal
}

// RequestCancel is a caller-built cancel request against a known open
// order, recorded as in-flight the moment it is dispatched.
type RequestCancel struct {
	ClientOrderId types.ClientOrderId
	VenueOrderId  types.VenueOrderId
}

// OrderOpenResponse is the venue's reply to an open request.
type OrderOpenResponse struct {
	ClientOrderId types.ClientOrderId
	VenueOrderId  types.VenueOrderId
	Side          types.Side
	Price         decimal.Decimal
	Quantity      decimal.Decimal
	TimeExchange  int64
	Err           *OrderError
}

// OrderCancelResponse is the venue's reply to a cancel request.
type OrderCancelResponse struct {
	ClientOrderId types.ClientOrderId
	TimeExchange  int64
	Err           *OrderError
}

// OrderError classifies an order-lifecycle error response from the venue.
type OrderError struct {
	UnknownOrder bool
	Reason       string
}

func (e *OrderError) Error() string { return e.Reason }

// OrderSnapshotStatus is the venue-reported lifecycle status carried on an
// authoritative OrderSnapshot message.
type OrderSnapshotStatus int

const (
	SnapshotOpen OrderSnapshotStatus = iota
	SnapshotClosed
)

// OrderSnapshot is an authoritative, venue-origin record of one order's
// current state. Venue snapshots are truth: they override local in-flight
// state regardless of what the order manager currently believes.
type OrderSnapshot struct {
	ClientOrderId  types.ClientOrderId
	VenueOrderId   types.VenueOrderId
	Side           types.Side
	Status         OrderSnapshotStatus
	Price          decimal.Decimal
	Quantity       decimal.Decimal
	FilledQuantity decimal.Decimal
	TimeExchange   int64
}

// Orders is the per-instrument order book: a mapping from ClientOrderId to
// an OrderEntry, reconciling externally-reported lifecycle events against
// locally-issued in-flight requests.
type Orders struct {
	entries map[types.ClientOrderId]*OrderEntry
}

// NewOrders returns an empty order book.
func NewOrders() Orders {
	return Orders{entries: make(map[types.ClientOrderId]*OrderEntry)}
}

// RecordInFlightOpen inserts an InFlightOpen entry for req.ClientOrderId.
// A ClientOrderId may only ever pass through InFlightOpen once (invariant
// 2): if any entry already exists for this cid, that is a caller
// programming error, and the manager panics rather than silently
// corrupting its reconciliation state.
func (o *Orders) RecordInFlightOpen(req RequestOpen) {
	if _, exists := o.entries[req.ClientOrderId]; exists {
		panic(fmt.Sprintf("order manager: record_in_flight_open called twice for cid %s", req.ClientOrderId))
	}
	o.entries[req.ClientOrderId] = &OrderEntry{
		ClientOrderId: req.ClientOrderId,
		Side:          req.Side,
		Status:        StatusInFlightOpen,
		Price:         req.Price,
		Quantity:      req.Quantity,
	}
}

// RecordInFlightCancel transitions a matching Open entry to
// OpenCancelInFlight. If there is no matching entry, it records a
// cancel-only marker so that a later-arriving open ack for the same cid is
// ignored instead of resurrecting an order the caller already tried to
// cancel away.
func (o *Orders) RecordInFlightCancel(req RequestCancel) {
	entry, exists := o.entries[req.ClientOrderId]
	if exists && entry.Status == StatusOpen {
		entry.Status = StatusOpenCancelInFlight
		return
	}
	if !exists {
		o.entries[req.ClientOrderId] = &OrderEntry{
			ClientOrderId: req.ClientOrderId,
			Status:        StatusInFlightCancel,
		}
	}
}

// UpdateFromOpen transitions InFlightOpen -> Open on success, or removes
// the entry on an error response. Any other local status (cancel-only
// marker, already-reconciled) means the ack is stale or pre-empted by a
// cancel; it is ignored. A cancel-only marker is consumed by the ack and
// removed; an already-reconciled entry is left as it is.
func (o *Orders) UpdateFromOpen(resp OrderOpenResponse) {
	entry, exists := o.entries[resp.ClientOrderId]
	if !exists {
		return
	}
	if entry.Status != StatusInFlightOpen {
		if entry.Status == StatusInFlightCancel {
			delete(o.entries, resp.ClientOrderId)
		}
		return
	}
	if resp.Err != nil {
		delete(o.entries, resp.ClientOrderId)
		return
	}

	entry.Status = StatusOpen
	entry.VenueOrderId = resp.VenueOrderId
	entry.Price = resp.Price
	entry.Quantity = resp.Quantity
	entry.FilledQuantity = decimal.Zero
	entry.sequence = resp.TimeExchange
}

// UpdateFromCancel transitions OpenCancelInFlight or Open to removed. A
// cancel error that indicates the order is unknown at the venue also
// removes the entry defensively, since the venue has no record of it
// either way.
func (o *Orders) UpdateFromCancel(resp OrderCancelResponse) {
	entry, exists := o.entries[resp.ClientOrderId]
	if !exists {
		return
	}
	if resp.Err != nil && !resp.Err.UnknownOrder {
		return
	}
	if resp.TimeExchange < entry.sequence {
		return
	}
	delete(o.entries, resp.ClientOrderId)
}

// UpdateFromOrderSnapshot authoritatively replaces local state: the venue
// is truth. An out-of-order snapshot (lower time_exchange than the last
// one applied to this entry) is silently ignored (invariant 4, testable
// property: out-of-order venue snapshot ignored).
func (o *Orders) UpdateFromOrderSnapshot(snap OrderSnapshot) {
	entry, exists := o.entries[snap.ClientOrderId]
	if exists && snap.TimeExchange < entry.sequence {
		return
	}

	if snap.Status == SnapshotClosed {
		if exists {
			delete(o.entries, snap.ClientOrderId)
		}
		return
	}

	if snap.FilledQuantity.GreaterThan(snap.Quantity) {
		panic(fmt.Sprintf("order manager: snapshot for %s has filled_quantity > quantity", snap.ClientOrderId))
	}

	o.entries[snap.ClientOrderId] = &OrderEntry{
		ClientOrderId:  snap.ClientOrderId,
		Side:           snap.Side,
		Status:         StatusOpen,
		VenueOrderId:   snap.VenueOrderId,
		Price:          snap.Price,
		Quantity:       snap.Quantity,
		FilledQuantity: snap.FilledQuantity,
		sequence:       snap.TimeExchange,
	}
}

// ApplyFill records a partial or full fill against an Open entry,
// enforcing filled_quantity <= quantity (invariant 1). A fully-filled
// order is a terminal acknowledgement and is removed (invariant 3).
func (o *Orders) ApplyFill(cid types.ClientOrderId, filledDelta decimal.Decimal) {
	entry, exists := o.entries[cid]
	if !exists {
		return
	}
	entry.FilledQuantity = entry.FilledQuantity.Add(filledDelta)
	if entry.FilledQuantity.GreaterThan(entry.Quantity) {
		panic(fmt.Sprintf("order manager: fill pushed filled_quantity above quantity for %s", cid))
	}
	if entry.FilledQuantity.Equal(entry.Quantity) {
		delete(o.entries, cid)
	}
}

// Entries returns every tracked order entry. Iteration order is
// unspecified; callers that need determinism should sort by ClientOrderId.
func (o *Orders) Entries() []*OrderEntry {
	out := make([]*OrderEntry, 0, len(o.entries))
	for _, e := range o.entries {
		out = append(out, e)
	}
	return out
}

// Lookup returns the entry for cid, if any.
func (o *Orders) Lookup(cid types.ClientOrderId) (*OrderEntry, bool) {
	e, ok := o.entries[cid]
	return e, ok
}

// AsRequestCancel produces a cancel request for entry iff it is currently
// Open; any other status means a cancel is already in flight, or the order
// has not yet been acknowledged open.
func AsRequestCancel(entry *OrderEntry) (RequestCancel, bool) {
	if entry.Status != StatusOpen {
		return RequestCancel{}, false
	}
	return RequestCancel{
		ClientOrderId: entry.ClientOrderId,
		VenueOrderId:  entry.VenueOrderId,
	}, true
}
