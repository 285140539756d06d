package risk

import "github.com/shopspring/decimal"

// InstrumentRiskProfile carries the per-instrument constants a PositionSizer
// needs to turn a risk budget into a quantity: the smallest price increment
// the venue accepts, and the dollar value of one unit of quantity moving by
// one TickSize.
type InstrumentRiskProfile struct {
	TickSize  decimal.Decimal
	TickValue decimal.Decimal
}

// PositionSizer turns a risk budget (equity * riskPerTradePct) and a stop
// distance into a maximum quantity, for one instrument's profile.
type PositionSizer struct {
	profile InstrumentRiskProfile
}

// NewPositionSizer constructs a PositionSizer for profile.
func NewPositionSizer(profile InstrumentRiskProfile) *PositionSizer {
	return &PositionSizer{profile: profile}
}

// SizeResult is the outcome of a sizing calculation.
type SizeResult struct {
	Quantity     decimal.Decimal
	RiskAmount   decimal.Decimal
	Valid        bool
	RejectReason string
}

// MaxQuantity determines the largest quantity whose loss, if the price
// moves against the position by stopDistanceTicks*TickSize, does not exceed
// capitalAtRisk.
//
//	capital_at_risk = equity * riskPerTradePct
//	tick_risk       = stopDistanceTicks * TickValue
//	quantity        = floor(capital_at_risk / tick_risk)
func (p *PositionSizer) MaxQuantity(equity, riskPerTradePct decimal.Decimal, stopDistanceTicks int) decimal.Decimal {
	if stopDistanceTicks <= 0 || equity.LessThanOrEqual(decimal.Zero) || riskPerTradePct.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	capitalAtRisk := equity.Mul(riskPerTradePct)
	tickRisk := decimal.NewFromInt(int64(stopDistanceTicks)).Mul(p.profile.TickValue)
	if tickRisk.IsZero() {
		return decimal.Zero
	}
	qty := capitalAtRisk.Div(tickRisk).Floor()
	if qty.IsNegative() {
		return decimal.Zero
	}
	return qty
}

// CalculateWithDetails sizes a position and reports why, if it declines to
// approve one.
func (p *PositionSizer) CalculateWithDetails(equity, riskPerTradePct decimal.Decimal, stopDistanceTicks int) SizeResult {
	switch {
	case stopDistanceTicks <= 0:
		return SizeResult{RejectReason: "stop distance must be positive"}
	case equity.LessThanOrEqual(decimal.Zero):
		return SizeResult{RejectReason: "equity must be positive"}
	case riskPerTradePct.LessThanOrEqual(decimal.Zero):
		return SizeResult{RejectReason: "risk per trade must be positive"}
	case riskPerTradePct.GreaterThan(decimal.RequireFromString("0.1")):
		return SizeResult{RejectReason: "risk per trade exceeds 10% maximum"}
	}

	qty := p.MaxQuantity(equity, riskPerTradePct, stopDistanceTicks)
	if qty.LessThanOrEqual(decimal.Zero) {
		return SizeResult{RejectReason: "calculated quantity is zero"}
	}

	tickRisk := decimal.NewFromInt(int64(stopDistanceTicks)).Mul(p.profile.TickValue)
	return SizeResult{
		Quantity:   qty,
		RiskAmount: tickRisk.Mul(qty),
		Valid:      true,
	}
}
