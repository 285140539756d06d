package indicator

import "github.com/shopspring/decimal"

// ATR is a rolling average true range. True range extends the plain
// high-low span to cover gaps across bars:
//
//	max(high-low, |high-prevClose|, |low-prevClose|)
//
// The very first bar has no previous close, so its true range is just the
// high-low span.
type ATR struct {
	w         window
	prevClose decimal.Decimal
	seeded    bool
}

// NewATR returns an ATR over the given period. Periods below one are
// clamped to one.
func NewATR(period int) *ATR {
	return &ATR{w: newWindow(period)}
}

// Update folds in one bar and returns the refreshed average true range,
// zero until the window has filled.
func (a *ATR) Update(high, low, close decimal.Decimal) decimal.Decimal {
	span := high.Sub(low)
	if a.seeded {
		if gap := high.Sub(a.prevClose).Abs(); gap.GreaterThan(span) {
			span = gap
		}
		if gap := low.Sub(a.prevClose).Abs(); gap.GreaterThan(span) {
			span = gap
		}
	}
	a.prevClose = close
	a.seeded = true
	a.w.push(span)
	return a.w.mean()
}

// Current returns the average true range over the present window contents
// without consuming a new bar.
func (a *ATR) Current() decimal.Decimal {
	return a.w.mean()
}

// Ready reports whether the window has filled.
func (a *ATR) Ready() bool {
	return a.w.full()
}

// Reset discards all accumulated bars.
func (a *ATR) Reset() {
	a.w.reset()
	a.prevClose = decimal.Zero
	a.seeded = false
}
