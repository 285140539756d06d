// Package feed defines the merged input EngineEvent feed and its
// constituent event types: operator Commands, TradingState toggles, and
// the Account/Market stream events forwarded from external collaborators.
// It is a shared leaf so that both internal/execution (which produces
// AccountEvents) and internal/engine (which consumes EngineEvents) can
// depend on it without an import cycle.
package feed

import "github.com/barterforge/engine-core/internal/types"

// EngineEvent is the closed sum of everything the reducer accepts on its
// single input feed.
type EngineEvent interface {
	isEngineEvent()
}

// ShutdownEvent tells the engine to stop processing and emit its final
// audit.
type ShutdownEvent struct{}

func (ShutdownEvent) isEngineEvent() {}

// CommandEvent carries one operator-issued Command.
type CommandEvent struct {
	Command Command
}

func (CommandEvent) isEngineEvent() {}

// TradingStateUpdateEvent toggles global trading on or off.
type TradingStateUpdateEvent struct {
	State types.TradingState
}

func (TradingStateUpdateEvent) isEngineEvent() {}

// AccountEngineEvent forwards one item from a venue's account stream.
type AccountEngineEvent struct {
	Stream AccountStreamEvent
}

func (AccountEngineEvent) isEngineEvent() {}

// MarketEngineEvent forwards one item from a venue's market stream.
type MarketEngineEvent struct {
	Stream MarketStreamEvent
}

func (MarketEngineEvent) isEngineEvent() {}
