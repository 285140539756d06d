package risk

import (
	"sync"

	"github.com/shopspring/decimal"
)

// HighWaterMarkTracker follows the equity balance the risk engine is
// configured to watch, remembering its peak so drawdown can be measured
// against the best the account has ever been, not against where it
// started.
type HighWaterMarkTracker struct {
	mu      sync.Mutex
	current decimal.Decimal
	peak    decimal.Decimal
}

// NewHighWaterMarkTracker seeds the tracker; the initial equity is both
// the starting value and the first peak.
func NewHighWaterMarkTracker(initial decimal.Decimal) *HighWaterMarkTracker {
	return &HighWaterMarkTracker{current: initial, peak: initial}
}

// Update records a fresh equity observation, reporting whether it set a
// new peak.
func (h *HighWaterMarkTracker) Update(equity decimal.Decimal) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.current = equity
	if equity.GreaterThan(h.peak) {
		h.peak = equity
		return true
	}
	return false
}

// Current returns the last observed equity.
func (h *HighWaterMarkTracker) Current() decimal.Decimal {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current
}

// Peak returns the high-water mark.
func (h *HighWaterMarkTracker) Peak() decimal.Decimal {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.peak
}

// Drawdown returns (peak - current) / peak as a fraction: 0.15 means the
// account sits 15% under its best. Zero while at or above the peak, and
// zero when the peak itself is zero (no meaningful base to measure from).
func (h *HighWaterMarkTracker) Drawdown() decimal.Decimal {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.drawdownLocked()
}

func (h *HighWaterMarkTracker) drawdownLocked() decimal.Decimal {
	if h.peak.IsZero() || h.current.GreaterThanOrEqual(h.peak) {
		return decimal.Zero
	}
	return h.peak.Sub(h.current).Div(h.peak)
}

// Reset re-seeds the tracker, discarding the recorded peak. Used when an
// operator deliberately re-bases after a withdrawal or deposit.
func (h *HighWaterMarkTracker) Reset(equity decimal.Decimal) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.current = equity
	h.peak = equity
}

// Snapshot returns current, peak and drawdown as one consistent view.
func (h *HighWaterMarkTracker) Snapshot() (current, peak, drawdown decimal.Decimal) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current, h.peak, h.drawdownLocked()
}
