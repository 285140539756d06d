package state

import (
	"github.com/shopspring/decimal"

	"github.com/barterforge/engine-core/internal/types"
)

// Position is the net exposure on one instrument: a signed quantity (positive
// for net-long, negative for net-short), the average entry price of the open
// side, and running realised/unrealised PnL. All fields are fixed-point
// decimals, matching the rest of the engine's money and quantity types.
type Position struct {
	Quantity      decimal.Decimal
	AvgPrice      decimal.Decimal
	RealisedPnL   decimal.Decimal
	UnrealisedPnL decimal.Decimal
}

// Trade is an externally-reported fill applied to a position.
type Trade struct {
	ClientOrderId types.ClientOrderId
	Side          types.Side
	Price         decimal.Decimal
	Quantity      decimal.Decimal
	Fee           decimal.Decimal
	TimeExchange  int64 // monotonic venue sequence/timestamp, for tie-breaks
}

// ApplyTrade folds a trade into the position. Quantity and average price
// are recomputed by signed VWAP; realised PnL increments on reducing trades
// by (exit_price - entry_avg) * reduced_size * side_sign, with fees
// subtracted.
func (p *Position) ApplyTrade(t Trade) {
	signedQty := t.Quantity.Mul(decimal.NewFromInt(int64(t.Side.Sign())))

	switch {
	case p.Quantity.IsZero() || sameSign(p.Quantity, signedQty):
		// Opening or adding to the position: VWAP the average price.
		newQty := p.Quantity.Add(signedQty)
		if newQty.IsZero() {
			p.AvgPrice = decimal.Zero
		} else {
			weighted := p.AvgPrice.Mul(p.Quantity.Abs()).Add(t.Price.Mul(t.Quantity))
			p.AvgPrice = weighted.Div(newQty.Abs())
		}
		p.Quantity = newQty

	default:
		// Reducing (or flipping through) the position.
		reduced := decimal.Min(p.Quantity.Abs(), t.Quantity)
		existingSideSign := decimal.NewFromInt(int64(sign(p.Quantity)))
		realised := t.Price.Sub(p.AvgPrice).Mul(reduced).Mul(existingSideSign)
		p.RealisedPnL = p.RealisedPnL.Add(realised)

		remaining := p.Quantity.Add(signedQty)
		if t.Quantity.GreaterThan(p.Quantity.Abs()) {
			// The trade flips the position through flat: the excess opens
			// a new position on the other side at the trade price.
			p.Quantity = remaining
			p.AvgPrice = t.Price
		} else {
			p.Quantity = remaining
			if p.Quantity.IsZero() {
				p.AvgPrice = decimal.Zero
			}
		}
	}

	p.RealisedPnL = p.RealisedPnL.Sub(t.Fee)
}

// ApplyUnrealised recomputes unrealised PnL against a mark price. Not a
// state transition the order manager drives directly. The engine's market
// processor does not call it: market payloads stay opaque to the engine.
func (p *Position) ApplyUnrealised(mark decimal.Decimal) {
	if p.Quantity.IsZero() {
		p.UnrealisedPnL = decimal.Zero
		return
	}
	p.UnrealisedPnL = mark.Sub(p.AvgPrice).Mul(p.Quantity)
}

func sign(d decimal.Decimal) int {
	switch {
	case d.IsPositive():
		return 1
	case d.IsNegative():
		return -1
	default:
		return 0
	}
}

func sameSign(a, b decimal.Decimal) bool {
	return sign(a) == sign(b) || a.IsZero() || b.IsZero()
}
