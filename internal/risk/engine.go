// Package risk implements the RiskManager the algo pass consults before
// dispatching: drawdown-gated safe mode, per-instrument and whole-book
// exposure caps, and the position-sizing helpers deployments use to
// derive order quantities.
package risk

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/barterforge/engine-core/internal/engine"
	"github.com/barterforge/engine-core/internal/engine/state"
	"github.com/barterforge/engine-core/internal/feed"
	"github.com/barterforge/engine-core/internal/types"
)

// Config holds the risk engine configuration.
type Config struct {
	// EquityAsset names the balance the high-water-mark tracker follows.
	EquityAsset types.AssetKey
	// MaxGlobalDrawdownPct trips safe mode once the tracked drawdown
	// reaches it; every open is refused until equity recovers.
	MaxGlobalDrawdownPct decimal.Decimal // e.g., 0.20 for 20%
	// MaxExposurePerInstrumentPct caps one instrument's notional (existing
	// position plus the proposed open) as a fraction of equity.
	MaxExposurePerInstrumentPct decimal.Decimal // e.g., 0.50 for 50%
	// MaxTotalExposurePct caps the sum of every instrument's notional as a
	// fraction of equity.
	MaxTotalExposurePct decimal.Decimal // e.g., 1.00 for 100%
}

// DefaultConfig returns a conservative default configuration.
func DefaultConfig() Config {
	return Config{
		MaxGlobalDrawdownPct:        decimal.RequireFromString("0.20"),
		MaxExposurePerInstrumentPct: decimal.RequireFromString("0.50"),
		MaxTotalExposurePct:         decimal.RequireFromString("1.00"),
	}
}

// Engine is the RiskManager implementation shared by every deployment. It
// tracks a high-water mark off the configured equity asset's balance and
// the last traded price per instrument observed off the market stream, and
// refuses opens that would breach a drawdown or exposure limit. Cancels
// are never refused: reducing risk is always allowed.
type Engine[ExchangeKey comparable, AssetKey comparable, InstrumentKey comparable] struct {
	mu sync.Mutex

	cfg    Config
	hwm    *HighWaterMarkTracker
	logger *slog.Logger

	lastPrice map[types.InstrumentKey]decimal.Decimal
	safeMode  bool
}

// NewEngine creates a new risk engine seeded with initialEquity.
func NewEngine[ExchangeKey comparable, AssetKey comparable, InstrumentKey comparable](
	cfg Config,
	initialEquity decimal.Decimal,
	logger *slog.Logger,
) *Engine[ExchangeKey, AssetKey, InstrumentKey] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine[ExchangeKey, AssetKey, InstrumentKey]{
		cfg:       cfg,
		hwm:       NewHighWaterMarkTracker(initialEquity),
		logger:    logger,
		lastPrice: make(map[types.InstrumentKey]decimal.Decimal),
	}
}

// ProcessAccountEvent feeds the high-water-mark tracker whenever the
// configured equity asset's balance is reported, flipping safe mode when
// drawdown crosses MaxGlobalDrawdownPct.
func (e *Engine[ExchangeKey, AssetKey, InstrumentKey]) ProcessAccountEvent(ev feed.AccountEvent) {
	switch k := ev.Kind.(type) {
	case feed.AccountBalanceSnapshot:
		e.observeBalance(k.Balance)
	case feed.AccountSnapshot:
		for _, b := range k.Balances {
			e.observeBalance(b)
		}
	}
}

func (e *Engine[ExchangeKey, AssetKey, InstrumentKey]) observeBalance(b feed.BalanceUpdate) {
	if b.Asset != e.cfg.EquityAsset {
		return
	}
	e.hwm.Update(b.Balance.Total)

	e.mu.Lock()
	defer e.mu.Unlock()
	drawdown := e.hwm.Drawdown()
	tripped := e.cfg.MaxGlobalDrawdownPct.IsPositive() && drawdown.GreaterThanOrEqual(e.cfg.MaxGlobalDrawdownPct)
	if tripped && !e.safeMode {
		e.logger.Error("KILL SWITCH ACTIVATED - entering safe mode",
			"reason", "max drawdown exceeded",
			"drawdown", drawdown.String(),
			"limit", e.cfg.MaxGlobalDrawdownPct.String(),
		)
	}
	if !tripped && e.safeMode {
		e.logger.Warn("safe mode exited", "drawdown", drawdown.String())
	}
	e.safeMode = tripped
}

// ProcessMarketEvent records the last observed close for an instrument,
// the reference price exposure checks multiply proposed quantity against.
// Every strategy here places market orders (RequestOpen.Price is always
// zero), so Check cannot derive notional from the request itself.
func (e *Engine[ExchangeKey, AssetKey, InstrumentKey]) ProcessMarketEvent(ev feed.MarketEvent) {
	candle, ok := ev.Payload.(types.Candle)
	if !ok {
		return
	}
	e.mu.Lock()
	e.lastPrice[ev.Instrument] = candle.Close
	e.mu.Unlock()
}

// IsInSafeMode returns true if the engine is refusing opens for drawdown.
func (e *Engine[ExchangeKey, AssetKey, InstrumentKey]) IsInSafeMode() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.safeMode
}

// Check approves every cancel unconditionally, and approves each open
// unless safe mode is active, no reference price has been observed yet for
// its instrument, or it would push that instrument's or the whole book's
// notional past its configured limit.
func (e *Engine[ExchangeKey, AssetKey, InstrumentKey]) Check(
	s *state.EngineState[ExchangeKey, AssetKey, InstrumentKey],
	cancels []feed.OrderRef,
	opens []feed.OpenRef,
) (approvedCancels []feed.OrderRef, approvedOpens []feed.OpenRef, refusedCancels []engine.RefusedCancel, refusedOpens []engine.RefusedOpen) {
	approvedCancels = cancels

	e.mu.Lock()
	safeMode := e.safeMode
	e.mu.Unlock()
	equity := e.hwm.Current()

	totalNotional := e.bookNotional(s)

	for _, open := range opens {
		if safeMode {
			refusedOpens = append(refusedOpens, engine.RefusedOpen{Request: open, Reason: "safe mode: max drawdown exceeded"})
			continue
		}

		price, ok := e.referencePrice(open.Instrument)
		if !ok {
			refusedOpens = append(refusedOpens, engine.RefusedOpen{Request: open, Reason: "no reference price available for exposure check"})
			continue
		}
		if equity.LessThanOrEqual(decimal.Zero) {
			refusedOpens = append(refusedOpens, engine.RefusedOpen{Request: open, Reason: "no equity on record"})
			continue
		}

		openNotional := price.Mul(open.Request.Quantity.Abs())
		instNotional := e.instrumentNotional(s, open.Instrument, price).Add(openNotional)

		if limit := equity.Mul(e.cfg.MaxExposurePerInstrumentPct); e.cfg.MaxExposurePerInstrumentPct.IsPositive() && instNotional.GreaterThan(limit) {
			refusedOpens = append(refusedOpens, engine.RefusedOpen{
				Request: open,
				Reason:  fmt.Sprintf("exceeds per-instrument exposure limit: %s > %s", instNotional.String(), limit.String()),
			})
			continue
		}
		projectedTotal := totalNotional.Add(openNotional)
		if limit := equity.Mul(e.cfg.MaxTotalExposurePct); e.cfg.MaxTotalExposurePct.IsPositive() && projectedTotal.GreaterThan(limit) {
			refusedOpens = append(refusedOpens, engine.RefusedOpen{
				Request: open,
				Reason:  fmt.Sprintf("exceeds total exposure limit: %s > %s", projectedTotal.String(), limit.String()),
			})
			continue
		}

		totalNotional = projectedTotal
		approvedOpens = append(approvedOpens, open)
	}

	return approvedCancels, approvedOpens, refusedCancels, refusedOpens
}

func (e *Engine[ExchangeKey, AssetKey, InstrumentKey]) referencePrice(key types.InstrumentKey) (decimal.Decimal, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	p, ok := e.lastPrice[key]
	return p, ok
}

// instrumentNotional returns the absolute notional value of the existing
// position for the instrument named by key, priced at price.
func (e *Engine[ExchangeKey, AssetKey, InstrumentKey]) instrumentNotional(
	s *state.EngineState[ExchangeKey, AssetKey, InstrumentKey],
	key types.InstrumentKey,
	price decimal.Decimal,
) decimal.Decimal {
	for _, inst := range s.Instruments.All() {
		if inst.Exchange == key.Exchange && inst.Instrument == key.Instrument {
			return inst.Position.Quantity.Abs().Mul(price)
		}
	}
	return decimal.Zero
}

// bookNotional sums every instrument's existing position notional, using
// the last observed price for each. An instrument with no recorded price
// is skipped rather than refused, since it carries no pending proposal
// until Check is asked about it directly.
func (e *Engine[ExchangeKey, AssetKey, InstrumentKey]) bookNotional(
	s *state.EngineState[ExchangeKey, AssetKey, InstrumentKey],
) decimal.Decimal {
	total := decimal.Zero
	for _, inst := range s.Instruments.All() {
		price, ok := e.referencePrice(types.InstrumentKey{Exchange: inst.Exchange, Instrument: inst.Instrument})
		if !ok {
			continue
		}
		total = total.Add(inst.Position.Quantity.Abs().Mul(price))
	}
	return total
}
