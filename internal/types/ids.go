package types

import "fmt"

// ClientOrderId is caller-generated and locally unique per instrument. The
// engine never re-derives it from venue state — see Orders book invariant 2
// in the order manager.
type ClientOrderId string

// VenueOrderId is assigned by the venue once an order is acknowledged open.
type VenueOrderId string

// ExchangeIndex, AssetIndex and InstrumentIndex are the production,
// array-backed key regime: dense integers assigned once at universe
// construction, giving O(1) slice lookups in the indexed state stores.
type ExchangeIndex int

type AssetIndex int

type InstrumentIndex int

// ExchangeId, AssetName and InstrumentName are the human-readable key
// regime used by configuration and test fixtures. Both regimes satisfy the
// same lookup contracts defined in internal/engine/state.
type ExchangeId string

func (e ExchangeId) String() string { return string(e) }

type AssetName string

func (a AssetName) String() string { return string(a) }

type InstrumentName string

func (i InstrumentName) String() string { return string(i) }

// AssetKey scopes an AssetName to the venue it is held on: balances are
// tracked per (venue, asset), not globally.
type AssetKey struct {
	Exchange ExchangeId
	Asset    AssetName
}

func (k AssetKey) String() string {
	return fmt.Sprintf("%s:%s", k.Exchange, k.Asset)
}

// InstrumentKey scopes an InstrumentName to the venue it trades on.
type InstrumentKey struct {
	Exchange   ExchangeId
	Instrument InstrumentName
}

func (k InstrumentKey) String() string {
	return fmt.Sprintf("%s:%s", k.Exchange, k.Instrument)
}
