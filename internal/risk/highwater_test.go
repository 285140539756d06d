package risk

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestHighWaterMarkTracker_TracksPeak(t *testing.T) {
	h := NewHighWaterMarkTracker(decimal.NewFromInt(1000))

	if newPeak := h.Update(decimal.NewFromInt(1200)); !newPeak {
		t.Fatal("expected a new peak on increase")
	}
	if newPeak := h.Update(decimal.NewFromInt(1100)); newPeak {
		t.Fatal("expected no new peak on decrease")
	}
	if !h.Peak().Equal(decimal.NewFromInt(1200)) {
		t.Fatalf("expected peak 1200, got %s", h.Peak())
	}
	if !h.Current().Equal(decimal.NewFromInt(1100)) {
		t.Fatalf("expected current 1100, got %s", h.Current())
	}
}

func TestHighWaterMarkTracker_Drawdown(t *testing.T) {
	h := NewHighWaterMarkTracker(decimal.NewFromInt(1000))
	h.Update(decimal.NewFromInt(800))

	dd := h.Drawdown()
	if !dd.Equal(decimal.RequireFromString("0.2")) {
		t.Fatalf("expected drawdown 0.2, got %s", dd)
	}
}

func TestHighWaterMarkTracker_NoDrawdownAtOrAbovePeak(t *testing.T) {
	h := NewHighWaterMarkTracker(decimal.NewFromInt(1000))
	h.Update(decimal.NewFromInt(1000))
	if !h.Drawdown().IsZero() {
		t.Fatalf("expected zero drawdown at peak, got %s", h.Drawdown())
	}
}

func TestHighWaterMarkTracker_Reset(t *testing.T) {
	h := NewHighWaterMarkTracker(decimal.NewFromInt(1000))
	h.Update(decimal.NewFromInt(1500))
	h.Reset(decimal.NewFromInt(2000))

	current, peak, drawdown := h.Snapshot()
	if !current.Equal(decimal.NewFromInt(2000)) || !peak.Equal(decimal.NewFromInt(2000)) || !drawdown.IsZero() {
		t.Fatalf("expected reset state (2000, 2000, 0), got (%s, %s, %s)", current, peak, drawdown)
	}
}
