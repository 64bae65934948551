package principal

import "errors"

var (
	// ErrEmptyPrincipal indicates a principal with no identifier.
	ErrEmptyPrincipal = errors.New("principal: empty identifier")

	// ErrMalformedPrincipal indicates the identifier is neither an address nor a paymail handle.
	ErrMalformedPrincipal = errors.New("principal: malformed identifier")

	// ErrWrongNetwork indicates an address that belongs to a different network.
	ErrWrongNetwork = errors.New("principal: address network mismatch")
)
