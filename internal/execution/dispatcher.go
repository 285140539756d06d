package execution

import (
	"log/slog"

	"github.com/barterforge/engine-core/internal/types"
)

// VenueChannel is the outbound execution-request channel for one venue,
// plus a Done signal the execution client closes when it can no longer be
// instructed (peer dropped, transport closed). The engine is the sole
// producer on Requests; only the client side ever closes Done.
type VenueChannel struct {
	Requests chan<- ExecutionRequest
	Done     <-chan struct{}
}

// Dispatcher maps a venue key to its outbound VenueChannel and classifies
// send failures as recoverable or terminal.
type Dispatcher struct {
	channels map[types.ExchangeId]VenueChannel
	logger   *slog.Logger
}

// NewDispatcher builds a Dispatcher over the given per-venue channels.
func NewDispatcher(channels map[types.ExchangeId]VenueChannel, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{channels: channels, logger: logger}
}

// Dispatch attempts a non-blocking send of req onto its venue's channel.
//
//  1. Missing mapping -> MissingExecutionChannelError (unrecoverable).
//  2. Client already signalled Done -> ExecutionChannelTerminatedError
//     (unrecoverable).
//  3. Buffer full (backpressure) -> ExecutionChannelUnhealthyError
//     (recoverable); the request is reported as failed but the engine
//     continues.
//  4. Otherwise the send succeeds.
func (d *Dispatcher) Dispatch(req ExecutionRequest) error {
	venue := req.Venue()
	vc, ok := d.channels[venue]
	if !ok {
		return &types.MissingExecutionChannelError{Venue: venue}
	}

	select {
	case <-vc.Done:
		return &types.ExecutionChannelTerminatedError{Venue: venue, Detail: "execution client signalled done"}
	default:
	}

	select {
	case vc.Requests <- req:
		return nil
	case <-vc.Done:
		return &types.ExecutionChannelTerminatedError{Venue: venue, Detail: "execution client signalled done"}
	default:
		d.logger.Warn("execution channel backpressure", "venue", venue)
		return &types.ExecutionChannelUnhealthyError{Venue: venue, Detail: "channel full"}
	}
}

// SendRequestsOutput accumulates the dispatch outcome for a batch of
// requests of one kind (all opens or all cancels within one action).
type SendRequestsOutput[T ExecutionRequest] struct {
	Sent   []T
	Errors []SendError[T]
}

// SendError pairs a request that failed to dispatch with the error.
type SendError[T ExecutionRequest] struct {
	Request T
	Err     error
}

// IsUnrecoverable reports whether any error in the batch is unrecoverable,
// used by the reducer to decide whether to shut down.
func (o SendRequestsOutput[T]) IsUnrecoverable() bool {
	for _, e := range o.Errors {
		if types.IsUnrecoverable(e.Err) {
			return true
		}
	}
	return false
}

// SendRequests dispatches every request in reqs, partitioning outcomes
// into SendRequestsOutput.
func SendRequests[T ExecutionRequest](d *Dispatcher, reqs []T) SendRequestsOutput[T] {
	out := SendRequestsOutput[T]{}
	for _, r := range reqs {
		if err := d.Dispatch(r); err != nil {
			out.Errors = append(out.Errors, SendError[T]{Request: r, Err: err})
			continue
		}
		out.Sent = append(out.Sent, r)
	}
	return out
}

// UnrecoverableReasons flattens every unrecoverable error across outputs,
// for the shutdown audit.
func UnrecoverableReasons(errs ...error) []types.EngineError {
	var out []types.EngineError
	for _, err := range errs {
		if ee, ok := err.(types.EngineError); ok && ee.IsUnrecoverable() {
			out = append(out, ee)
		}
	}
	return out
}
