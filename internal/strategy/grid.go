package strategy

import (
	"github.com/shopspring/decimal"

	"github.com/barterforge/engine-core/internal/engine/state"
	"github.com/barterforge/engine-core/internal/feed"
	"github.com/barterforge/engine-core/internal/types"
)

// GridConfig configures Grid.
type GridConfig struct {
	GridSpacingPct decimal.Decimal // distance between grid levels, as % of price
	MaxGridLevels  int             // maximum number of grid levels before entries stop
	LookbackBars   int             // bars spanning the swing high/low window
	MinMovePoints  decimal.Decimal // minimum price move to trigger a grid entry
	OrderQuantity  decimal.Decimal // fixed size of every entry this strategy opens
}

// DefaultGridConfig returns sensible defaults.
func DefaultGridConfig() GridConfig {
	return GridConfig{
		GridSpacingPct: decimal.RequireFromString("0.002"),
		MaxGridLevels:  5,
		LookbackBars:   20,
		MinMovePoints:  decimal.RequireFromString("10"),
		OrderQuantity:  decimal.RequireFromString("1"),
	}
}

type gridDirection int

const (
	gridNone gridDirection = iota
	gridLong
	gridShort
)

type gridMemory struct {
	highs, lows         []decimal.Decimal
	lastClose           decimal.Decimal
	swingHigh, swingLow decimal.Decimal
	lastGridLevel       int
	direction           gridDirection
}

// Grid enters counter-trend positions as price moves away from its recent
// swing high/low by calculated intervals, expecting a partial rebound; it
// stands down once MaxGridLevels is reached and resets once price returns
// to the middle of the swing range.
type Grid[ExchangeKey comparable, AssetKey comparable, InstrumentKey comparable] struct {
	cfg    GridConfig
	memory map[types.InstrumentKey]*gridMemory
}

// NewGrid constructs a Grid strategy with no instrument history.
func NewGrid[ExchangeKey comparable, AssetKey comparable, InstrumentKey comparable](cfg GridConfig) *Grid[ExchangeKey, AssetKey, InstrumentKey] {
	return &Grid[ExchangeKey, AssetKey, InstrumentKey]{cfg: cfg, memory: make(map[types.InstrumentKey]*gridMemory)}
}

func (g *Grid[ExchangeKey, AssetKey, InstrumentKey]) memoryFor(key types.InstrumentKey) *gridMemory {
	m, ok := g.memory[key]
	if !ok {
		m = &gridMemory{
			highs: make([]decimal.Decimal, 0, g.cfg.LookbackBars),
			lows:  make([]decimal.Decimal, 0, g.cfg.LookbackBars),
		}
		g.memory[key] = m
	}
	return m
}

func (g *Grid[ExchangeKey, AssetKey, InstrumentKey]) ProcessMarketEvent(event feed.MarketEvent) {
	candle, ok := event.Payload.(types.Candle)
	if !ok {
		return
	}
	m := g.memoryFor(event.Instrument)
	m.highs = append(m.highs, candle.High)
	m.lows = append(m.lows, candle.Low)
	if len(m.highs) > g.cfg.LookbackBars {
		m.highs = m.highs[1:]
		m.lows = m.lows[1:]
	}
	m.lastClose = candle.Close
}

func (g *Grid[ExchangeKey, AssetKey, InstrumentKey]) ProcessAccountEvent(feed.AccountEvent) {}

func (g *Grid[ExchangeKey, AssetKey, InstrumentKey]) Name() string { return "grid" }

// GenerateOrders re-derives the swing range on every pass and opens the
// next grid level when price has moved far enough from it, alternating
// direction only after the range resets through its midpoint.
func (g *Grid[ExchangeKey, AssetKey, InstrumentKey]) GenerateOrders(
	s *state.EngineState[ExchangeKey, AssetKey, InstrumentKey],
) (cancels []feed.OrderRef, opens []feed.OpenRef) {
	for _, inst := range s.Instruments.All() {
		key := types.InstrumentKey{Exchange: inst.Exchange, Instrument: inst.Instrument}
		m, ok := g.memory[key]
		if !ok || len(m.highs) < g.cfg.LookbackBars {
			continue
		}

		m.swingHigh = highest(m.highs)
		m.swingLow = lowest(m.lows)
		swingRange := m.swingHigh.Sub(m.swingLow)
		if swingRange.LessThan(g.cfg.MinMovePoints) {
			continue
		}

		gridSpacing := m.lastClose.Mul(g.cfg.GridSpacingPct)
		if gridSpacing.IsZero() {
			continue
		}

		if !inst.Position.Quantity.IsZero() || len(inst.Orders.Entries()) > 0 {
			continue
		}

		dropFromHigh := m.swingHigh.Sub(m.lastClose)
		if dropFromHigh.GreaterThan(g.cfg.MinMovePoints) && m.direction != gridShort {
			level := int(dropFromHigh.Div(gridSpacing).IntPart()) + 1
			if level > m.lastGridLevel && level <= g.cfg.MaxGridLevels {
				opens = append(opens, g.open(inst, key, types.SideBuy))
				m.lastGridLevel = level
				m.direction = gridLong
			}
		}

		riseFromLow := m.lastClose.Sub(m.swingLow)
		if riseFromLow.GreaterThan(g.cfg.MinMovePoints) && m.direction != gridLong {
			level := int(riseFromLow.Div(gridSpacing).IntPart()) + 1
			if level > m.lastGridLevel && level <= g.cfg.MaxGridLevels {
				opens = append(opens, g.open(inst, key, types.SideSell))
				m.lastGridLevel = level
				m.direction = gridShort
			}
		}

		midPoint := m.swingLow.Add(swingRange.Div(decimal.NewFromInt(2)))
		if m.lastClose.Sub(midPoint).Abs().LessThan(gridSpacing) {
			m.lastGridLevel = 0
			m.direction = gridNone
		}
	}
	return cancels, opens
}

func (g *Grid[ExchangeKey, AssetKey, InstrumentKey]) open(inst *state.InstrumentState, key types.InstrumentKey, side types.Side) feed.OpenRef {
	return feed.OpenRef{
		Exchange:   inst.Exchange,
		Instrument: key,
		Request: state.RequestOpen{
			ClientOrderId: nextClientOrderId(g.Name(), key),
			Side:          side,
			Price:         decimal.Zero,
			Quantity:      g.cfg.OrderQuantity,
		},
	}
}
