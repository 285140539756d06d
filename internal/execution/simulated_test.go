package execution

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/barterforge/engine-core/internal/engine/state"
	"github.com/barterforge/engine-core/internal/feed"
	"github.com/barterforge/engine-core/internal/types"
)

func TestSimulatedClient_OpenThenFill(t *testing.T) {
	reqs := make(chan ExecutionRequest, 1)
	out := make(chan feed.AccountStreamEvent, 4)
	cfg := SimulatedConfig{SlippageTicks: 1, TickSize: decimal.NewFromFloat(0.5), CommissionPerSide: decimal.NewFromFloat(0.1)}
	client := NewSimulatedClient("SIM", cfg, reqs, out, nil)

	go client.Run()

	instrument := types.InstrumentKey{Exchange: "SIM", Instrument: "BTC-USD"}
	reqs <- OpenOrderRequest{
		Exchange:   "SIM",
		Instrument: instrument,
		Open: state.RequestOpen{
			ClientOrderId: "cid-1",
			Side:          types.SideBuy,
			Price:         decimal.NewFromInt(100),
			Quantity:      decimal.NewFromInt(2),
		},
	}
	close(reqs)

	opened := requireAccountItem(t, out)
	ack, ok := opened.Kind.(feed.AccountOrderOpened)
	if !ok {
		t.Fatalf("expected AccountOrderOpened, got %T", opened.Kind)
	}
	if !ack.Response.Price.Equal(decimal.NewFromFloat(100.5)) {
		t.Fatalf("expected slipped price 100.5, got %s", ack.Response.Price)
	}

	traded := requireAccountItem(t, out)
	trade, ok := traded.Kind.(feed.AccountTrade)
	if !ok {
		t.Fatalf("expected AccountTrade, got %T", traded.Kind)
	}
	if !trade.Trade.Quantity.Equal(decimal.NewFromInt(2)) {
		t.Fatalf("expected full fill quantity 2, got %s", trade.Trade.Quantity)
	}
	if !trade.Trade.Fee.Equal(decimal.NewFromFloat(0.1)) {
		t.Fatalf("expected commission 0.1, got %s", trade.Trade.Fee)
	}

	<-client.Done()
}

func TestSimulatedClient_Cancel(t *testing.T) {
	reqs := make(chan ExecutionRequest, 1)
	out := make(chan feed.AccountStreamEvent, 2)
	client := NewSimulatedClient("SIM", DefaultSimulatedConfig(), reqs, out, nil)

	go client.Run()

	instrument := types.InstrumentKey{Exchange: "SIM", Instrument: "BTC-USD"}
	reqs <- CancelOrderRequest{
		Exchange:   "SIM",
		Instrument: instrument,
		Cancel:     state.RequestCancel{ClientOrderId: "cid-1", VenueOrderId: "v-1"},
	}
	close(reqs)

	cancelled := requireAccountItem(t, out)
	if _, ok := cancelled.Kind.(feed.AccountOrderCancelled); !ok {
		t.Fatalf("expected AccountOrderCancelled, got %T", cancelled.Kind)
	}

	<-client.Done()
}

func requireAccountItem(t *testing.T, out <-chan feed.AccountStreamEvent) feed.AccountEvent {
	t.Helper()
	select {
	case ev := <-out:
		item, ok := ev.(feed.AccountItem)
		if !ok {
			t.Fatalf("expected AccountItem, got %T", ev)
		}
		return item.Event
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for account stream event")
		return feed.AccountEvent{}
	}
}
