package types

import "errors"

// Sentinel errors naming an unknown key. The state stores' lookups report
// a miss with a boolean and do not return these.
var (
	ErrUnknownExchange   = errors.New("unknown exchange")
	ErrUnknownAsset      = errors.New("unknown asset")
	ErrUnknownInstrument = errors.New("unknown instrument")
)
