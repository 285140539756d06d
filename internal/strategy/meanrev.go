package strategy

import (
	"github.com/shopspring/decimal"

	"github.com/barterforge/engine-core/internal/engine/state"
	"github.com/barterforge/engine-core/internal/feed"
	"github.com/barterforge/engine-core/internal/types"
	"github.com/barterforge/engine-core/pkg/indicator"
)

// MeanRevConfig configures MeanReversion.
type MeanRevConfig struct {
	SMAPeriod     int
	StdDevPeriod  int
	EntryStdDev   decimal.Decimal // number of std-devs from the mean required to enter
	MinStdDev     decimal.Decimal // suppress signals while StdDev is below this floor
	OrderQuantity decimal.Decimal // fixed size of every entry this strategy opens
}

// DefaultMeanRevConfig returns sensible defaults.
func DefaultMeanRevConfig() MeanRevConfig {
	return MeanRevConfig{
		SMAPeriod:     20,
		StdDevPeriod:  20,
		EntryStdDev:   decimal.RequireFromString("2.0"),
		MinStdDev:     decimal.Zero,
		OrderQuantity: decimal.RequireFromString("1"),
	}
}

type meanRevMemory struct {
	sma        *indicator.SMA
	stddev     *indicator.StdDev
	lastClose  decimal.Decimal
	bandMean   decimal.Decimal
	bandStdDev decimal.Decimal

	wasReady       bool
	lastSignalUp   bool
	lastSignalDown bool
}

// MeanReversion enters long when price closes below its rolling mean minus
// EntryStdDev standard deviations, and short on the mirrored upper band,
// expecting price to revert back toward the mean.
type MeanReversion[ExchangeKey comparable, AssetKey comparable, InstrumentKey comparable] struct {
	cfg    MeanRevConfig
	memory map[types.InstrumentKey]*meanRevMemory
}

// NewMeanReversion constructs a MeanReversion strategy with no instrument
// history.
func NewMeanReversion[ExchangeKey comparable, AssetKey comparable, InstrumentKey comparable](cfg MeanRevConfig) *MeanReversion[ExchangeKey, AssetKey, InstrumentKey] {
	return &MeanReversion[ExchangeKey, AssetKey, InstrumentKey]{cfg: cfg, memory: make(map[types.InstrumentKey]*meanRevMemory)}
}

func (m *MeanReversion[ExchangeKey, AssetKey, InstrumentKey]) memoryFor(key types.InstrumentKey) *meanRevMemory {
	mem, ok := m.memory[key]
	if !ok {
		mem = &meanRevMemory{sma: indicator.NewSMA(m.cfg.SMAPeriod), stddev: indicator.NewStdDev(m.cfg.StdDevPeriod)}
		m.memory[key] = mem
	}
	return mem
}

// ProcessMarketEvent updates the rolling mean/stddev with the new close.
// Signals are generated against the PREVIOUS bar's bands, so that the band
// the current close is tested against does not already include it.
func (m *MeanReversion[ExchangeKey, AssetKey, InstrumentKey]) ProcessMarketEvent(event feed.MarketEvent) {
	candle, ok := event.Payload.(types.Candle)
	if !ok {
		return
	}
	mem := m.memoryFor(event.Instrument)
	mem.wasReady = mem.sma.Ready() && mem.stddev.Ready()
	prevMean, prevStdDev := mem.sma.Current(), mem.stddev.Current()
	mem.sma.Update(candle.Close)
	mem.stddev.Update(candle.Close)
	mem.lastClose = candle.Close
	if mem.wasReady {
		mem.bandMean, mem.bandStdDev = prevMean, prevStdDev
	}
}

func (m *MeanReversion[ExchangeKey, AssetKey, InstrumentKey]) ProcessAccountEvent(feed.AccountEvent) {
}

func (m *MeanReversion[ExchangeKey, AssetKey, InstrumentKey]) Name() string { return "meanrev" }

// GenerateOrders tests the latest close against the bands computed from the
// bar before it, resetting the fired-once flags once price returns inside
// the bands.
func (m *MeanReversion[ExchangeKey, AssetKey, InstrumentKey]) GenerateOrders(
	s *state.EngineState[ExchangeKey, AssetKey, InstrumentKey],
) (cancels []feed.OrderRef, opens []feed.OpenRef) {
	for _, inst := range s.Instruments.All() {
		key := types.InstrumentKey{Exchange: inst.Exchange, Instrument: inst.Instrument}
		mem, ok := m.memory[key]
		if !ok || !mem.wasReady {
			continue
		}
		if !m.cfg.MinStdDev.IsZero() && mem.bandStdDev.LessThan(m.cfg.MinStdDev) {
			continue
		}
		if !inst.Position.Quantity.IsZero() || len(inst.Orders.Entries()) > 0 {
			continue
		}

		deviation := mem.bandStdDev.Mul(m.cfg.EntryStdDev)
		upper := mem.bandMean.Add(deviation)
		lower := mem.bandMean.Sub(deviation)

		switch {
		case mem.lastClose.LessThan(lower) && !mem.lastSignalDown:
			opens = append(opens, m.open(inst, key, types.SideBuy))
			mem.lastSignalDown, mem.lastSignalUp = true, false
		case mem.lastClose.GreaterThan(upper) && !mem.lastSignalUp:
			opens = append(opens, m.open(inst, key, types.SideSell))
			mem.lastSignalUp, mem.lastSignalDown = true, false
		case mem.lastClose.GreaterThan(lower) && mem.lastClose.LessThan(upper):
			mem.lastSignalUp, mem.lastSignalDown = false, false
		}
	}
	return cancels, opens
}

func (m *MeanReversion[ExchangeKey, AssetKey, InstrumentKey]) open(inst *state.InstrumentState, key types.InstrumentKey, side types.Side) feed.OpenRef {
	return feed.OpenRef{
		Exchange:   inst.Exchange,
		Instrument: key,
		Request: state.RequestOpen{
			ClientOrderId: nextClientOrderId(m.Name(), key),
			Side:          side,
			Price:         decimal.Zero,
			Quantity:      m.cfg.OrderQuantity,
		},
	}
}
