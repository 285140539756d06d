// Package strategy adapts breakout, grid-rebound, and mean-reversion
// market-following logic to operate over the engine's shared EngineState,
// plus a Flatten implementation used to close positions on command and to
// de-risk on venue disconnect.
package strategy

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/barterforge/engine-core/internal/types"
)

// nextClientOrderId mints a locally-unique id for a freshly generated
// order, scoped to the strategy and instrument that produced it.
func nextClientOrderId(strategyName string, key types.InstrumentKey) types.ClientOrderId {
	return types.ClientOrderId(fmt.Sprintf("%s-%s-%s", strategyName, key, uuid.NewString()))
}

// highest returns the largest value in a non-empty slice.
func highest(values []decimal.Decimal) decimal.Decimal {
	high := values[0]
	for _, v := range values[1:] {
		if v.GreaterThan(high) {
			high = v
		}
	}
	return high
}

// lowest returns the smallest value in a non-empty slice.
func lowest(values []decimal.Decimal) decimal.Decimal {
	low := values[0]
	for _, v := range values[1:] {
		if v.LessThan(low) {
			low = v
		}
	}
	return low
}
