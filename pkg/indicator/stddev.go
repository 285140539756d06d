package indicator

import "github.com/shopspring/decimal"

// StdDev is a rolling population standard deviation over a fixed number
// of observations.
type StdDev struct {
	w window
}

// NewStdDev returns a StdDev over the given period. Periods below one are
// clamped to one.
func NewStdDev(period int) *StdDev {
	return &StdDev{w: newWindow(period)}
}

// Update folds in a new observation and returns the refreshed deviation,
// zero until the window has filled.
func (s *StdDev) Update(v decimal.Decimal) decimal.Decimal {
	s.w.push(v)
	return s.deviation()
}

// Current returns the deviation over the present window contents without
// consuming a new observation.
func (s *StdDev) Current() decimal.Decimal {
	return s.deviation()
}

// Mean returns the average of the present window contents.
func (s *StdDev) Mean() decimal.Decimal {
	return s.w.mean()
}

// Ready reports whether the window has filled.
func (s *StdDev) Ready() bool {
	return s.w.full()
}

// Reset discards all accumulated observations.
func (s *StdDev) Reset() {
	s.w.reset()
}

func (s *StdDev) deviation() decimal.Decimal {
	if !s.w.full() {
		return decimal.Zero
	}
	mean := s.w.mean()
	var acc decimal.Decimal
	for _, v := range s.w.values {
		d := v.Sub(mean)
		acc = acc.Add(d.Mul(d))
	}
	return decSqrt(acc.Div(decimal.NewFromInt(int64(len(s.w.values)))))
}

// decSqrt computes a square root by Newton-Raphson iteration, converging
// to eight decimal places. Non-positive inputs return zero.
func decSqrt(v decimal.Decimal) decimal.Decimal {
	if !v.IsPositive() {
		return decimal.Zero
	}
	half := decimal.RequireFromString("0.5")
	tolerance := decimal.New(1, -8)
	x := v
	for i := 0; i < 64; i++ {
		next := x.Add(v.Div(x)).Mul(half)
		if next.Sub(x).Abs().LessThan(tolerance) {
			return next.Round(8)
		}
		x = next
	}
	return x.Round(8)
}
