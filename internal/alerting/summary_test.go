package alerting

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestRunSummary_RenderWithPositions(t *testing.T) {
	s := RunSummary{
		Start:           time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		End:             time.Date(2026, 3, 1, 17, 0, 0, 0, time.UTC),
		EventsProcessed: 1204,
		OrdersOpened:    7,
		OrdersCancelled: 3,
		RiskRefusals:    2,
		RealisedPnL:     decimal.RequireFromString("134.50"),
		OpenPositions: []PositionSummary{
			{Exchange: "binance", Instrument: "BTC-USD", Quantity: decimal.RequireFromString("0.25"), AvgPrice: decimal.NewFromInt(50000)},
		},
	}

	text := s.Render()
	for _, want := range []string{
		"events processed: 1204",
		"orders opened: 7, cancelled: 3",
		"risk refusals: 2",
		"realised PnL: 134.5",
		"binance BTC-USD qty=0.25 avg=50000",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("summary missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "shutdown") {
		t.Error("running summary must not mention a shutdown")
	}
}

func TestRunSummary_RenderFlatBookAndShutdown(t *testing.T) {
	s := RunSummary{
		Start:          time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		End:            time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
		RealisedPnL:    decimal.Zero,
		ShutdownReason: "commanded",
	}

	text := s.Render()
	if !strings.Contains(text, "open positions: none") {
		t.Errorf("expected flat book to render as none:\n%s", text)
	}
	if !strings.Contains(text, "shutdown: commanded") {
		t.Errorf("expected shutdown reason rendered:\n%s", text)
	}
}
