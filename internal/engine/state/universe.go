package state

import "github.com/barterforge/engine-core/internal/types"

// Universe describes the static instrument/asset/venue universe fixed at
// engine start: EngineState is created once with a static universe; only
// connectivity/balances/positions/orders mutate afterwards.
type Universe struct {
	Exchanges   []types.ExchangeId
	Assets      []types.AssetKey
	Instruments []types.InstrumentKey

	// MarketFactory builds the opaque MarketDataState for one instrument.
	// Defaults to NoopMarketDataState when nil.
	MarketFactory func(types.InstrumentKey) MarketDataState
}

func (u Universe) marketFor(key types.InstrumentKey) MarketDataState {
	if u.MarketFactory == nil {
		return NoopMarketDataState{}
	}
	return u.MarketFactory(key)
}

// BuildNamed constructs a named-regime EngineState plus its (identity)
// KeyResolver.
func BuildNamed(u Universe, strategy, risk any, initial types.TradingState) (
	*EngineState[types.ExchangeId, types.AssetKey, types.InstrumentKey],
	KeyResolver[types.ExchangeId, types.AssetKey, types.InstrumentKey],
) {
	connectivity := NewNamedStore[types.ExchangeId, ConnectivityState]()
	for _, e := range u.Exchanges {
		connectivity.Set(e, ConnectivityState{})
	}

	assets := NewNamedStore[types.AssetKey, AssetState]()
	for _, a := range u.Assets {
		assets.Set(a, NewAssetState())
	}

	instruments := NewNamedStore[types.InstrumentKey, InstrumentState]()
	for _, i := range u.Instruments {
		instruments.Set(i, NewInstrumentState(i.Exchange, i.Instrument, u.marketFor(i)))
	}

	return New[types.ExchangeId, types.AssetKey, types.InstrumentKey](
		connectivity, assets, instruments, strategy, risk, initial,
	), NamedResolver{}
}

// BuildIndexed constructs an indexed-regime EngineState plus the
// IndexResolver mapping venue-origin identifiers to the dense indices
// assigned here, in universe order.
func BuildIndexed(u Universe, strategy, risk any, initial types.TradingState) (
	*EngineState[types.ExchangeIndex, types.AssetIndex, types.InstrumentIndex],
	KeyResolver[types.ExchangeIndex, types.AssetIndex, types.InstrumentIndex],
) {
	exchangeIdx := make(map[types.ExchangeId]types.ExchangeIndex, len(u.Exchanges))
	for i, e := range u.Exchanges {
		exchangeIdx[e] = types.ExchangeIndex(i)
	}
	assetIdx := make(map[types.AssetKey]types.AssetIndex, len(u.Assets))
	for i, a := range u.Assets {
		assetIdx[a] = types.AssetIndex(i)
	}
	instrumentIdx := make(map[types.InstrumentKey]types.InstrumentIndex, len(u.Instruments))
	for i, k := range u.Instruments {
		instrumentIdx[k] = types.InstrumentIndex(i)
	}

	connectivity := NewIndexedStore[types.ExchangeIndex, ConnectivityState](len(u.Exchanges), func(int) ConnectivityState {
		return ConnectivityState{}
	})
	assets := NewIndexedStore[types.AssetIndex, AssetState](len(u.Assets), func(int) AssetState {
		return NewAssetState()
	})
	instruments := NewIndexedStore[types.InstrumentIndex, InstrumentState](len(u.Instruments), func(i int) InstrumentState {
		key := u.Instruments[i]
		return NewInstrumentState(key.Exchange, key.Instrument, u.marketFor(key))
	})

	resolver := NewIndexResolver(exchangeIdx, assetIdx, instrumentIdx)

	return New[types.ExchangeIndex, types.AssetIndex, types.InstrumentIndex](
		connectivity, assets, instruments, strategy, risk, initial,
	), resolver
}
