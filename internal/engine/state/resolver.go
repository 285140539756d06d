package state

import "github.com/barterforge/engine-core/internal/types"

// KeyResolver translates the human-readable identifiers a venue or feed
// names in its events (ExchangeId, AssetKey, InstrumentKey) into whichever
// store key type this EngineState was built with. The named regime's
// resolver is an identity pass-through; the indexed regime's resolver is a
// lookup table built once at universe construction. Event processors
// depend only on this contract, never on which regime is wired.
type KeyResolver[ExchangeKey comparable, AssetKey comparable, InstrumentKey comparable] interface {
	Exchange(types.ExchangeId) (ExchangeKey, bool)
	Asset(types.AssetKey) (AssetKey, bool)
	Instrument(types.InstrumentKey) (InstrumentKey, bool)
}

// NamedResolver is the identity KeyResolver for the named key regime,
// where the store keys already are types.ExchangeId / types.AssetKey /
// types.InstrumentKey.
type NamedResolver struct{}

func (NamedResolver) Exchange(id types.ExchangeId) (types.ExchangeId, bool) { return id, true }
func (NamedResolver) Asset(k types.AssetKey) (types.AssetKey, bool)         { return k, true }
func (NamedResolver) Instrument(k types.InstrumentKey) (types.InstrumentKey, bool) {
	return k, true
}

// IndexResolver is the lookup-table KeyResolver for the indexed key
// regime, built once when the static universe is assigned dense indices.
type IndexResolver struct {
	exchanges   map[types.ExchangeId]types.ExchangeIndex
	assets      map[types.AssetKey]types.AssetIndex
	instruments map[types.InstrumentKey]types.InstrumentIndex
}

// NewIndexResolver builds an IndexResolver from the universe's assigned
// indices.
func NewIndexResolver(
	exchanges map[types.ExchangeId]types.ExchangeIndex,
	assets map[types.AssetKey]types.AssetIndex,
	instruments map[types.InstrumentKey]types.InstrumentIndex,
) *IndexResolver {
	return &IndexResolver{exchanges: exchanges, assets: assets, instruments: instruments}
}

func (r *IndexResolver) Exchange(id types.ExchangeId) (types.ExchangeIndex, bool) {
	i, ok := r.exchanges[id]
	return i, ok
}

func (r *IndexResolver) Asset(k types.AssetKey) (types.AssetIndex, bool) {
	i, ok := r.assets[k]
	return i, ok
}

func (r *IndexResolver) Instrument(k types.InstrumentKey) (types.InstrumentIndex, bool) {
	i, ok := r.instruments[k]
	return i, ok
}
