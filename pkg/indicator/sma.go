package indicator

import "github.com/shopspring/decimal"

// SMA is a rolling simple moving average over a fixed number of
// observations.
type SMA struct {
	w window
}

// NewSMA returns an SMA over the given period. Periods below one are
// clamped to one.
func NewSMA(period int) *SMA {
	return &SMA{w: newWindow(period)}
}

// Update folds in a new observation and returns the refreshed average,
// zero until the window has filled.
func (s *SMA) Update(v decimal.Decimal) decimal.Decimal {
	s.w.push(v)
	return s.w.mean()
}

// Current returns the average over the present window contents without
// consuming a new observation.
func (s *SMA) Current() decimal.Decimal {
	return s.w.mean()
}

// Ready reports whether the window has filled.
func (s *SMA) Ready() bool {
	return s.w.full()
}

// Reset discards all accumulated observations.
func (s *SMA) Reset() {
	s.w.reset()
}
