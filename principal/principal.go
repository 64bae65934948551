// Package principal defines the participant identifiers used by the royalty
// ledger: creators, sellers, buyers, split recipients and the administrator.
//
// A Principal is an opaque string. The ledger only ever compares principals
// for equality; the Validator decides which strings are well formed.
package principal

import (
	"fmt"
	"strings"

	"github.com/bsv-blockchain/go-sdk/script"

	"github.com/bitfsorg/royaltyledger-go/paymail"
)

// Principal identifies a participant. It is either a base58check P2PKH
// address or a paymail handle (alias@domain).
type Principal string

// String implements fmt.Stringer.
func (p Principal) String() string { return string(p) }

// IsZero reports whether p is the empty principal.
func (p Principal) IsZero() bool { return p == "" }

// IsHandle reports whether p is written as a paymail handle.
func (p Principal) IsHandle() bool { return paymail.IsHandle(string(p)) }

// Validator decides whether an identifier is a well-formed principal.
type Validator interface {
	IsWellFormed(p Principal) bool
}

// ValidatorFunc adapts a plain function to Validator.
type ValidatorFunc func(p Principal) bool

// IsWellFormed calls f(p).
func (f ValidatorFunc) IsWellFormed(p Principal) bool { return f(p) }

// Network names accepted by StandardValidator.
const (
	NetworkAny     = ""
	NetworkMainnet = "mainnet"
	NetworkTestnet = "testnet"
	NetworkRegtest = "regtest"
)

// Base58check P2PKH address length bounds.
const (
	minAddressLen = 26
	maxAddressLen = 35
)

// StandardValidator accepts P2PKH addresses and paymail handles.
// When Network is set, addresses must carry that network's version prefix.
type StandardValidator struct {
	Network string
}

// Compile-time interface check.
var _ Validator = StandardValidator{}

// IsWellFormed reports whether p passes Check.
func (v StandardValidator) IsWellFormed(p Principal) bool {
	return v.Check(p) == nil
}

// Check returns the reason p is rejected, or nil.
func (v StandardValidator) Check(p Principal) error {
	s := string(p)
	if s == "" {
		return ErrEmptyPrincipal
	}
	if strings.TrimSpace(s) != s {
		return fmt.Errorf("%w: surrounding whitespace", ErrMalformedPrincipal)
	}

	// Principals compare byte-wise, so a handle must already be in the
	// lower-case form ParseHandle produces.
	if p.IsHandle() {
		h, err := paymail.ParseHandle(s)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrMalformedPrincipal, err)
		}
		if canonical := h.String(); canonical != s {
			return fmt.Errorf("%w: non-canonical handle %q, use %q", ErrMalformedPrincipal, s, canonical)
		}
		return nil
	}

	if len(s) < minAddressLen || len(s) > maxAddressLen {
		return fmt.Errorf("%w: address length %d", ErrMalformedPrincipal, len(s))
	}
	if _, err := script.NewAddressFromString(s); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedPrincipal, err)
	}
	if !networkAccepts(v.Network, s[0]) {
		return fmt.Errorf("%w: %s address on %s", ErrWrongNetwork, s, v.Network)
	}
	return nil
}

// networkAccepts checks the leading base58 character of a P2PKH address:
// '1' for mainnet, 'm' or 'n' for testnet and regtest.
func networkAccepts(network string, lead byte) bool {
	switch network {
	case NetworkAny:
		return true
	case NetworkMainnet:
		return lead == '1'
	case NetworkTestnet, NetworkRegtest:
		return lead == 'm' || lead == 'n'
	}
	return false
}
