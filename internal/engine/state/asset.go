package state

import "github.com/shopspring/decimal"

// Balance is a point-in-time view of an asset's holdings on a venue.
type Balance struct {
	Total     decimal.Decimal
	Available decimal.Decimal
	Sequence  uint64
}

// AssetState is the per-(venue, asset) balance record. It is updated
// monotonically by the sequence number carried on incoming balance
// snapshots; a snapshot whose sequence is lower than the locally recorded
// one is discarded. A snapshot with an equal sequence replaces the record,
// so re-applying the same snapshot leaves it unchanged.
type AssetState struct {
	Balance Balance
}

// NewAssetState returns a zeroed AssetState suitable as the initial value
// for a static universe entry.
func NewAssetState() AssetState {
	return AssetState{}
}

// UpdateFromBalance applies an incoming balance snapshot, discarding it if
// its sequence is lower than the locally recorded one.
func (a *AssetState) UpdateFromBalance(incoming Balance) {
	if incoming.Sequence < a.Balance.Sequence {
		return
	}
	a.Balance = incoming
}
