package state

// Connection is the status of one stream (market data or account) for a
// venue.
type Connection int

const (
	Healthy Connection = iota
	Reconnecting
)

func (c Connection) String() string {
	if c == Reconnecting {
		return "Reconnecting"
	}
	return "Healthy"
}

// ConnectivityState tracks the two independent connection statuses
// (market data, account) for one venue. A venue that has produced a
// Reconnecting notice without a subsequent live event remains
// Reconnecting; it auto-heals to Healthy the moment the next item is
// observed on that stream (see OnAccountItem / OnMarketItem).
type ConnectivityState struct {
	Market  Connection
	Account Connection
}

// OnMarketReconnecting marks the market-data stream as Reconnecting.
func (c *ConnectivityState) OnMarketReconnecting() {
	c.Market = Reconnecting
}

// OnMarketItem auto-heals the market-data stream to Healthy. Called for
// every processed Market(Item) event regardless of prior status.
func (c *ConnectivityState) OnMarketItem() {
	c.Market = Healthy
}

// OnAccountReconnecting marks the account stream as Reconnecting.
func (c *ConnectivityState) OnAccountReconnecting() {
	c.Account = Reconnecting
}

// OnAccountItem auto-heals the account stream to Healthy.
func (c *ConnectivityState) OnAccountItem() {
	c.Account = Healthy
}
