package engine

import (
	"fmt"

	"github.com/barterforge/engine-core/internal/feed"
)

// Run drives the reducer over events, emitting one audit per event onto
// auditor's outbound channel. The very first audit is a full state
// snapshot; the very last is the ShutdownWithOutputAudit that caused the
// loop to exit, whether from an explicit Shutdown event, feed exhaustion,
// or an unrecoverable action output. Run returns once that final audit has
// been built and closes the auditor's channel.
func Run[ExchangeKey comparable, AssetKey comparable, InstrumentKey comparable](
	e *Engine[ExchangeKey, AssetKey, InstrumentKey],
	events <-chan feed.EngineEvent,
) {
	e.auditor.Build(e.snapshot())

	for event := range events {
		kind := e.Process(event)
		e.auditor.Build(kind)

		if _, shutdown := kind.(ShutdownWithOutputAudit); shutdown {
			e.auditor.Close()
			return
		}
	}

	e.auditor.Build(ShutdownWithOutputAudit{Reason: ShutdownFeedEnded{}, Output: StepOutput{}})
	e.auditor.Close()
}

// snapshot builds the startup SnapshotAudit from the engine's initial
// state.
func (e *Engine[ExchangeKey, AssetKey, InstrumentKey]) snapshot() SnapshotAudit {
	connectivity := make(map[string]ConnectivitySnapshot)
	for _, key := range e.state.Connectivity.Keys() {
		c := e.state.Connectivity.MustLookup(key)
		connectivity[keyString(key)] = ConnectivitySnapshot{Market: c.Market.String(), Account: c.Account.String()}
	}

	assets := make(map[string]AssetSnapshot)
	for _, key := range e.state.Assets.Keys() {
		a := e.state.Assets.MustLookup(key)
		assets[keyString(key)] = AssetSnapshot{
			Total:     a.Balance.Total.String(),
			Available: a.Balance.Available.String(),
			Sequence:  a.Balance.Sequence,
		}
	}

	instruments := make(map[string]InstrumentSnapshot)
	for _, key := range e.state.Instruments.Keys() {
		inst := e.state.Instruments.MustLookup(key)
		instruments[keyString(key)] = InstrumentSnapshot{
			PositionQuantity: inst.Position.Quantity.String(),
			AvgPrice:         inst.Position.AvgPrice.String(),
			OpenOrders:       len(inst.Orders.Entries()),
		}
	}

	return SnapshotAudit{
		Trading:      e.state.Trading,
		Connectivity: connectivity,
		Assets:       assets,
		Instruments:  instruments,
	}
}

// keyString renders any store key (named or indexed) as a map key for the
// snapshot audit, using fmt.Stringer when available and a generic
// fallback otherwise.
func keyString[K comparable](key K) string {
	if s, ok := any(key).(interface{ String() string }); ok {
		return s.String()
	}
	return fmt.Sprintf("%v", key)
}
