package alerting

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// RunSummary condenses one stretch of engine activity for the operator
// digest: what was processed, what was refused, and what
// exposure is still on the book.
type RunSummary struct {
	Start, End      time.Time
	EventsProcessed uint64
	OrdersOpened    int
	OrdersCancelled int
	RiskRefusals    int
	RealisedPnL     decimal.Decimal
	OpenPositions   []PositionSummary
	// ShutdownReason is empty while the engine is still running.
	ShutdownReason string
}

// PositionSummary is one instrument's residual exposure.
type PositionSummary struct {
	Exchange   string
	Instrument string
	Quantity   decimal.Decimal
	AvgPrice   decimal.Decimal
}

// Render formats the summary as the free-text message alert channels
// deliver.
func (s RunSummary) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Engine summary %s → %s\n",
		s.Start.Format("2006-01-02 15:04:05"), s.End.Format("15:04:05"))
	fmt.Fprintf(&b, "- events processed: %d\n", s.EventsProcessed)
	fmt.Fprintf(&b, "- orders opened: %d, cancelled: %d\n", s.OrdersOpened, s.OrdersCancelled)
	fmt.Fprintf(&b, "- risk refusals: %d\n", s.RiskRefusals)
	fmt.Fprintf(&b, "- realised PnL: %s\n", s.RealisedPnL)

	if len(s.OpenPositions) == 0 {
		b.WriteString("- open positions: none")
	} else {
		b.WriteString("- open positions:")
		for _, p := range s.OpenPositions {
			fmt.Fprintf(&b, "\n  %s %s qty=%s avg=%s", p.Exchange, p.Instrument, p.Quantity, p.AvgPrice)
		}
	}

	if s.ShutdownReason != "" {
		fmt.Fprintf(&b, "\n- shutdown: %s", s.ShutdownReason)
	}
	return b.String()
}
