package execution

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"github.com/barterforge/engine-core/internal/engine/state"
	"github.com/barterforge/engine-core/internal/feed"
	"github.com/barterforge/engine-core/internal/types"
)

// SimulatedConfig configures one venue's SimulatedClient: the in-process
// execution collaborator that stands in for a real venue's WebSocket/REST
// adapter in tests and in cmd/enginectl.
type SimulatedConfig struct {
	// SlippageTicks nudges every fill away from the requested price by this
	// many TickSize units, against the taker.
	SlippageTicks int
	TickSize      decimal.Decimal
	// CommissionPerSide is charged on every fill, regardless of side.
	CommissionPerSide decimal.Decimal
	// FillDelay simulates venue ack/fill latency. Zero fills synchronously.
	FillDelay time.Duration
	// RateLimitPerSecond throttles outbound acks/fills; zero disables
	// limiting.
	RateLimitPerSecond int
}

// DefaultSimulatedConfig returns sensible defaults.
func DefaultSimulatedConfig() SimulatedConfig {
	return SimulatedConfig{
		SlippageTicks:      1,
		TickSize:           decimal.NewFromFloat(0.01),
		CommissionPerSide:  decimal.NewFromFloat(0.01),
		FillDelay:          0,
		RateLimitPerSecond: 0,
	}
}

// SimulatedClient is a venue execution client: it drains ExecutionRequests
// off the receiving side of a VenueChannel and publishes AccountStreamEvents
// that, merged back into the engine's input feed by the host, look exactly
// like a real venue's account stream. It never touches EngineState directly
// — the engine reducer is the only thing that does that.
type SimulatedClient struct {
	exchange types.ExchangeId
	cfg      SimulatedConfig
	limiter  *rate.Limiter
	requests <-chan ExecutionRequest
	done     chan struct{}
	out      chan<- feed.AccountStreamEvent
	logger   *slog.Logger
}

// NewSimulatedClient constructs a SimulatedClient for one venue. requests is
// the receiving side of the VenueChannel registered with the Dispatcher for
// exchange; out is the account-stream channel the host merges into the
// engine's EngineEvent feed.
func NewSimulatedClient(
	exchange types.ExchangeId,
	cfg SimulatedConfig,
	requests <-chan ExecutionRequest,
	out chan<- feed.AccountStreamEvent,
	logger *slog.Logger,
) *SimulatedClient {
	if logger == nil {
		logger = slog.Default()
	}
	var limiter *rate.Limiter
	if cfg.RateLimitPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitPerSecond), cfg.RateLimitPerSecond)
	}
	return &SimulatedClient{
		exchange: exchange,
		cfg:      cfg,
		limiter:  limiter,
		requests: requests,
		done:     make(chan struct{}),
		out:      out,
		logger:   logger,
	}
}

// Done is closed once Run has drained its request channel and exited; the
// Dispatcher treats a closed Done as the venue being terminated.
func (c *SimulatedClient) Done() <-chan struct{} { return c.done }

// Run drains requests until the channel closes, simulating a venue ack (and,
// for opens, a fill) for each. Run blocks; call it from its own goroutine.
// Run closes done when it returns, which the Dispatcher observes as this
// venue no longer being instructable.
func (c *SimulatedClient) Run() {
	defer close(c.done)
	for req := range c.requests {
		c.throttle()
		switch r := req.(type) {
		case OpenOrderRequest:
			c.simulateOpen(r)
		case CancelOrderRequest:
			c.simulateCancel(r)
		}
	}
}

func (c *SimulatedClient) throttle() {
	if c.limiter != nil {
		_ = c.limiter.Wait(context.Background())
	}
}

func (c *SimulatedClient) simulateOpen(r OpenOrderRequest) {
	venueOrderID := types.VenueOrderId(uuid.NewString())
	fillPrice := c.slipped(r.Open.Price, r.Open.Side)

	c.emit(feed.AccountOrderOpened{
		Instrument: r.Instrument,
		Response: state.OrderOpenResponse{
			ClientOrderId: r.Open.ClientOrderId,
			VenueOrderId:  venueOrderID,
			Side:          r.Open.Side,
			Price:         fillPrice,
			Quantity:      r.Open.Quantity,
			TimeExchange:  time.Now().UnixNano(),
		},
	})

	fill := func() {
		c.emit(feed.AccountTrade{
			Instrument: r.Instrument,
			Trade: state.Trade{
				ClientOrderId: r.Open.ClientOrderId,
				Side:          r.Open.Side,
				Price:         fillPrice,
				Quantity:      r.Open.Quantity,
				Fee:           c.cfg.CommissionPerSide,
				TimeExchange:  time.Now().UnixNano(),
			},
		})
	}
	if c.cfg.FillDelay <= 0 {
		fill()
		return
	}
	time.AfterFunc(c.cfg.FillDelay, fill)
}

func (c *SimulatedClient) simulateCancel(r CancelOrderRequest) {
	c.emit(feed.AccountOrderCancelled{
		Instrument: r.Instrument,
		Response: state.OrderCancelResponse{
			ClientOrderId: r.Cancel.ClientOrderId,
			TimeExchange:  time.Now().UnixNano(),
		},
	})
}

// slipped nudges price by SlippageTicks*TickSize against the taker: a buy
// pays more, a sell receives less.
func (c *SimulatedClient) slipped(price decimal.Decimal, side types.Side) decimal.Decimal {
	if c.cfg.SlippageTicks == 0 || c.cfg.TickSize.IsZero() {
		return price
	}
	slip := c.cfg.TickSize.Mul(decimal.NewFromInt(int64(c.cfg.SlippageTicks)))
	if side == types.SideBuy {
		return price.Add(slip)
	}
	return price.Sub(slip)
}

// emit pushes an account stream item, blocking until the host's feed merger
// accepts it. The account stream has no drop-tolerant contract — only the
// audit channel does — so this deliberately applies backpressure rather
// than silently losing an order ack or fill.
func (c *SimulatedClient) emit(kind feed.AccountEventKind) {
	c.out <- feed.AccountItem{Event: feed.AccountEvent{Exchange: c.exchange, Kind: kind}}
}
