package types

import "github.com/shopspring/decimal"

// Candle is a decoded OHLCV market-data bar: the payload strategies expect
// to find inside a market event.
type Candle struct {
	Open, High, Low, Close, Volume decimal.Decimal
	TimeExchange                   int64
}
