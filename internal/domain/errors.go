package domain

import "errors"

var (
	// ErrClientNotFound is a resolution failure: no profile for the client id
	ErrClientNotFound = errors.New("client not found")
	// ErrInstrumentNotFound is a resolution failure: no reference data for the symbol
	ErrInstrumentNotFound = errors.New("instrument not found")
	// ErrInvalidDirection rejects anything other than BUY or SELL
	ErrInvalidDirection = errors.New("invalid direction")
	// ErrInvalidQuantity rejects a non-positive ticket quantity
	ErrInvalidQuantity = errors.New("invalid quantity")
	// ErrMissingClient rejects a ticket without a client id
	ErrMissingClient = errors.New("client_id is required")
	// ErrMissingSymbol rejects a ticket without a symbol
	ErrMissingSymbol = errors.New("symbol is required")
	// ErrInvalidOverride rejects out-of-range urgency or risk-aversion overrides
	ErrInvalidOverride = errors.New("invalid override")
)
