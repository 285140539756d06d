package strategy

import (
	"github.com/shopspring/decimal"

	"github.com/barterforge/engine-core/internal/engine/state"
	"github.com/barterforge/engine-core/internal/feed"
	"github.com/barterforge/engine-core/internal/types"
	"github.com/barterforge/engine-core/pkg/indicator"
)

// BreakoutConfig configures Breakout.
type BreakoutConfig struct {
	LookbackBars   int             // bars spanning the range a breakout is measured against
	MinATR         decimal.Decimal // suppress signals while ATR is below this floor
	BreakoutBuffer decimal.Decimal // buffer above/below the range, as a ratio of its width
	OrderQuantity  decimal.Decimal // fixed size of every entry this strategy opens
}

// DefaultBreakoutConfig returns sensible defaults.
func DefaultBreakoutConfig() BreakoutConfig {
	return BreakoutConfig{
		LookbackBars:   20,
		MinATR:         decimal.Zero,
		BreakoutBuffer: decimal.RequireFromString("0.0005"),
		OrderQuantity:  decimal.RequireFromString("1"),
	}
}

type breakoutMemory struct {
	highs, lows                   []decimal.Decimal
	atr                           *indicator.ATR
	lastClose                     decimal.Decimal
	signalledLong, signalledShort bool
	lastRangeHigh, lastRangeLow   decimal.Decimal
}

// Breakout opens long when price closes above the highest high of the
// lookback window, and short when it closes below the lowest low, each
// gated to fire once per range and skipped while the instrument already
// carries a position or an order in flight.
type Breakout[ExchangeKey comparable, AssetKey comparable, InstrumentKey comparable] struct {
	cfg    BreakoutConfig
	memory map[types.InstrumentKey]*breakoutMemory
}

// NewBreakout constructs a Breakout strategy with no instrument history.
func NewBreakout[ExchangeKey comparable, AssetKey comparable, InstrumentKey comparable](cfg BreakoutConfig) *Breakout[ExchangeKey, AssetKey, InstrumentKey] {
	return &Breakout[ExchangeKey, AssetKey, InstrumentKey]{cfg: cfg, memory: make(map[types.InstrumentKey]*breakoutMemory)}
}

func (b *Breakout[ExchangeKey, AssetKey, InstrumentKey]) memoryFor(key types.InstrumentKey) *breakoutMemory {
	m, ok := b.memory[key]
	if !ok {
		m = &breakoutMemory{
			highs: make([]decimal.Decimal, 0, b.cfg.LookbackBars),
			lows:  make([]decimal.Decimal, 0, b.cfg.LookbackBars),
			atr:   indicator.NewATR(b.cfg.LookbackBars),
		}
		b.memory[key] = m
	}
	return m
}

// ProcessMarketEvent folds a decoded candle into the instrument's rolling
// high/low window and ATR. Non-candle payloads are ignored.
func (b *Breakout[ExchangeKey, AssetKey, InstrumentKey]) ProcessMarketEvent(event feed.MarketEvent) {
	candle, ok := event.Payload.(types.Candle)
	if !ok {
		return
	}
	m := b.memoryFor(event.Instrument)
	m.highs = append(m.highs, candle.High)
	m.lows = append(m.lows, candle.Low)
	if len(m.highs) > b.cfg.LookbackBars {
		m.highs = m.highs[1:]
		m.lows = m.lows[1:]
	}
	m.atr.Update(candle.High, candle.Low, candle.Close)
	m.lastClose = candle.Close
}

// ProcessAccountEvent is a no-op: breakout entries depend only on price.
func (b *Breakout[ExchangeKey, AssetKey, InstrumentKey]) ProcessAccountEvent(feed.AccountEvent) {}

func (b *Breakout[ExchangeKey, AssetKey, InstrumentKey]) Name() string { return "breakout" }

// GenerateOrders emits at most one entry per instrument per algo pass.
func (b *Breakout[ExchangeKey, AssetKey, InstrumentKey]) GenerateOrders(
	s *state.EngineState[ExchangeKey, AssetKey, InstrumentKey],
) (cancels []feed.OrderRef, opens []feed.OpenRef) {
	for _, inst := range s.Instruments.All() {
		key := types.InstrumentKey{Exchange: inst.Exchange, Instrument: inst.Instrument}
		m, ok := b.memory[key]
		if !ok || len(m.highs) < b.cfg.LookbackBars {
			continue
		}
		if !inst.Position.Quantity.IsZero() || len(inst.Orders.Entries()) > 0 {
			continue
		}

		rangeHigh := highest(m.highs[:len(m.highs)-1])
		rangeLow := lowest(m.lows[:len(m.lows)-1])
		if !rangeHigh.Equal(m.lastRangeHigh) || !rangeLow.Equal(m.lastRangeLow) {
			m.signalledLong, m.signalledShort = false, false
			m.lastRangeHigh, m.lastRangeLow = rangeHigh, rangeLow
		}

		if !b.cfg.MinATR.IsZero() && m.atr.Current().LessThan(b.cfg.MinATR) {
			continue
		}

		buffer := rangeHigh.Sub(rangeLow).Mul(b.cfg.BreakoutBuffer)
		breakoutHigh := rangeHigh.Add(buffer)
		breakoutLow := rangeLow.Sub(buffer)

		switch {
		case m.lastClose.GreaterThan(breakoutHigh) && !m.signalledLong:
			opens = append(opens, b.open(inst, key, types.SideBuy))
			m.signalledLong = true
		case m.lastClose.LessThan(breakoutLow) && !m.signalledShort:
			opens = append(opens, b.open(inst, key, types.SideSell))
			m.signalledShort = true
		}
	}
	return cancels, opens
}

func (b *Breakout[ExchangeKey, AssetKey, InstrumentKey]) open(inst *state.InstrumentState, key types.InstrumentKey, side types.Side) feed.OpenRef {
	return feed.OpenRef{
		Exchange:   inst.Exchange,
		Instrument: key,
		Request: state.RequestOpen{
			ClientOrderId: nextClientOrderId(b.Name(), key),
			Side:          side,
			Price:         decimal.Zero,
			Quantity:      b.cfg.OrderQuantity,
		},
	}
}
