// Package indicator implements the rolling-window calculations the
// reference strategies derive entry signals from: simple moving average,
// standard deviation, and average true range. All values are fixed-point
// decimals, matching the engine's money and quantity types.
package indicator

import "github.com/shopspring/decimal"

// window is a fixed-capacity FIFO of observations with a running sum.
// Every indicator in this package is a thin shell around one.
type window struct {
	size   int
	values []decimal.Decimal
	sum    decimal.Decimal
}

func newWindow(size int) window {
	if size < 1 {
		size = 1
	}
	return window{size: size}
}

// push appends v, evicting the oldest observation once the window is full.
func (w *window) push(v decimal.Decimal) {
	w.values = append(w.values, v)
	w.sum = w.sum.Add(v)
	if len(w.values) > w.size {
		w.sum = w.sum.Sub(w.values[0])
		w.values = w.values[1:]
	}
}

func (w *window) full() bool {
	return len(w.values) >= w.size
}

// mean returns the average of the current contents, zero until full.
func (w *window) mean() decimal.Decimal {
	if !w.full() {
		return decimal.Zero
	}
	return w.sum.Div(decimal.NewFromInt(int64(w.size)))
}

func (w *window) reset() {
	w.values = w.values[:0]
	w.sum = decimal.Zero
}
