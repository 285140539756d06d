package indicator

import (
	"testing"

	"github.com/shopspring/decimal"
)

func bar(high, low, close int64) [3]decimal.Decimal {
	return [3]decimal.Decimal{decimal.NewFromInt(high), decimal.NewFromInt(low), decimal.NewFromInt(close)}
}

func TestATR_ZeroUntilWindowFills(t *testing.T) {
	a := NewATR(3)
	b := bar(10, 8, 9)
	if got := a.Update(b[0], b[1], b[2]); !got.IsZero() {
		t.Fatalf("expected zero before window fills, got %s", got)
	}
	if a.Ready() {
		t.Fatal("expected not ready with one bar of three")
	}
}

func TestATR_AveragesTrueRanges(t *testing.T) {
	a := NewATR(3)

	// Bar 1: no previous close, TR = 10-8 = 2.
	// Bar 2: max(12-9, |12-9|, |9-9|) = 3.
	// Bar 3: gap up from close 11: max(15-13, |15-11|, |13-11|) = 4.
	bars := [][3]decimal.Decimal{bar(10, 8, 9), bar(12, 9, 11), bar(15, 13, 14)}
	var got decimal.Decimal
	for _, b := range bars {
		got = a.Update(b[0], b[1], b[2])
	}

	if !got.Equal(decimal.NewFromInt(3)) {
		t.Fatalf("expected ATR (2+3+4)/3 = 3, got %s", got)
	}
	if !a.Ready() {
		t.Fatal("expected ready after three bars")
	}
}

func TestATR_GapDownUsesPrevClose(t *testing.T) {
	a := NewATR(1)
	b1 := bar(100, 98, 100)
	a.Update(b1[0], b1[1], b1[2])

	// Gap down: |low - prevClose| = |90 - 100| = 10 dominates the 2-wide span.
	b2 := bar(92, 90, 91)
	got := a.Update(b2[0], b2[1], b2[2])
	if !got.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("expected gap-down true range 10, got %s", got)
	}
}

func TestATR_ResetForgetsPrevClose(t *testing.T) {
	a := NewATR(1)
	b1 := bar(100, 98, 100)
	a.Update(b1[0], b1[1], b1[2])
	a.Reset()

	// After reset the next bar is a first bar again: TR = high - low.
	b2 := bar(92, 90, 91)
	got := a.Update(b2[0], b2[1], b2[2])
	if !got.Equal(decimal.NewFromInt(2)) {
		t.Fatalf("expected plain span 2 after reset, got %s", got)
	}
}
