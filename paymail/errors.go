package paymail

import "errors"

var (
	// ErrInvalidHandle indicates the string is not a well-formed alias@domain handle.
	ErrInvalidHandle = errors.New("paymail: invalid handle")

	// ErrPaymailDiscovery indicates .well-known/bsvalias fetch failed.
	ErrPaymailDiscovery = errors.New("paymail: capability discovery failed")

	// ErrAddressResolution indicates the P2P payment destination resolution failed.
	ErrAddressResolution = errors.New("paymail: address resolution failed")
)
