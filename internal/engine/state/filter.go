package state

import "github.com/barterforge/engine-core/internal/types"

// InstrumentFilter selects a subset of instruments for a command action
// (CancelOrders, ClosePositions). It is a closed sum type realised as an
// interface with an unexported marker method, matching the Go idiom for
// tagged variants used throughout this package.
type InstrumentFilter interface {
	isInstrumentFilter()
}

// FilterNone selects every instrument.
type FilterNone struct{}

func (FilterNone) isInstrumentFilter() {}

// FilterExchanges selects every instrument on any of the listed venues.
type FilterExchanges struct {
	Exchanges []types.ExchangeId
}

func (FilterExchanges) isInstrumentFilter() {}

// FilterInstruments selects exactly the listed instruments.
type FilterInstruments struct {
	Instruments []types.InstrumentKey
}

func (FilterInstruments) isInstrumentFilter() {}

// Matches reports whether the instrument keyed by exchange/instrument
// passes the filter.
func Matches(f InstrumentFilter, exchange types.ExchangeId, instrument types.InstrumentName) bool {
	switch v := f.(type) {
	case FilterNone:
		return true
	case FilterExchanges:
		for _, e := range v.Exchanges {
			if e == exchange {
				return true
			}
		}
		return false
	case FilterInstruments:
		key := types.InstrumentKey{Exchange: exchange, Instrument: instrument}
		for _, k := range v.Instruments {
			if k == key {
				return true
			}
		}
		return false
	default:
		return false
	}
}
