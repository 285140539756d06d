package strategy

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/barterforge/engine-core/internal/types"
)

func TestGrid_NotReadyUntilEnoughBars(t *testing.T) {
	key := types.InstrumentKey{Exchange: "binance", Instrument: "BTC-USD"}
	cfg := DefaultGridConfig()
	cfg.LookbackBars = 5
	g := NewGrid[types.ExchangeId, types.AssetKey, types.InstrumentKey](cfg)
	s := singleInstrumentState(t, key)

	for i := 0; i < 3; i++ {
		g.ProcessMarketEvent(candleEvent(key, 100, 101, 99, 100))
	}
	_, opens := g.GenerateOrders(s)
	if len(opens) != 0 {
		t.Fatalf("expected no opens before enough bars, got %d", len(opens))
	}
}

func TestGrid_LongEntryOnDropFromSwingHigh(t *testing.T) {
	key := types.InstrumentKey{Exchange: "binance", Instrument: "BTC-USD"}
	cfg := DefaultGridConfig()
	cfg.LookbackBars = 3
	cfg.MinMovePoints = decimal.NewFromInt(10)
	cfg.GridSpacingPct = decimal.RequireFromString("0.01")
	cfg.MaxGridLevels = 5
	g := NewGrid[types.ExchangeId, types.AssetKey, types.InstrumentKey](cfg)
	s := singleInstrumentState(t, key)

	g.ProcessMarketEvent(candleEvent(key, 1000, 1020, 980, 1010))
	g.ProcessMarketEvent(candleEvent(key, 1010, 1010, 950, 1005))
	g.ProcessMarketEvent(candleEvent(key, 1005, 1005, 990, 1000))

	_, opens := g.GenerateOrders(s)
	if len(opens) != 1 {
		t.Fatalf("expected 1 grid entry on drop from swing high, got %d", len(opens))
	}
	if opens[0].Request.Side != types.SideBuy {
		t.Errorf("side = %v, want SideBuy", opens[0].Request.Side)
	}
}

func TestGrid_ResetsNearMidpoint(t *testing.T) {
	key := types.InstrumentKey{Exchange: "binance", Instrument: "BTC-USD"}
	cfg := DefaultGridConfig()
	cfg.LookbackBars = 3
	cfg.MinMovePoints = decimal.NewFromInt(10)
	cfg.GridSpacingPct = decimal.RequireFromString("0.01")
	g := NewGrid[types.ExchangeId, types.AssetKey, types.InstrumentKey](cfg)
	s := singleInstrumentState(t, key)

	g.ProcessMarketEvent(candleEvent(key, 1000, 1020, 980, 1010))
	g.ProcessMarketEvent(candleEvent(key, 1010, 1010, 950, 1005))
	g.ProcessMarketEvent(candleEvent(key, 1005, 1005, 990, 1000))
	g.GenerateOrders(s)

	mem := g.memory[key]
	if mem.lastGridLevel == 0 {
		t.Fatalf("expected a grid level to have been recorded")
	}

	// Return to the midpoint of the swing range; the grid level resets.
	mid := mem.swingLow.Add(mem.swingHigh.Sub(mem.swingLow).Div(decimal.NewFromInt(2)))
	g.ProcessMarketEvent(candleEvent(key, 1000, int64(1005), int64(995), mid.IntPart()))
	g.GenerateOrders(s)
	if mem.lastGridLevel != 0 {
		t.Errorf("lastGridLevel = %d, want 0 after returning to midpoint", mem.lastGridLevel)
	}
}
