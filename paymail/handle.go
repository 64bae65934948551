// Package paymail resolves paymail handles (alias@domain) used as royalty
// payees.
//
// Handles are checked syntactically by ParseHandle. Payment destinations are
// discovered through .well-known/bsvalias and the P2P payment destination
// capability.
package paymail

import (
	"fmt"
	"strings"

	"github.com/miekg/dns"
)

// MaxHandleLen bounds the total length of a handle.
const MaxHandleLen = 255

// Handle is a parsed paymail handle.
type Handle struct {
	Alias  string
	Domain string
}

// String returns the canonical alias@domain form.
func (h Handle) String() string {
	return h.Alias + "@" + h.Domain
}

// ParseHandle parses alias@domain. The alias is lower-cased and limited to
// letters, digits and ".-_+"; the domain must be a valid multi-label DNS name.
func ParseHandle(s string) (*Handle, error) {
	if s == "" {
		return nil, fmt.Errorf("%w: empty handle", ErrInvalidHandle)
	}
	if len(s) > MaxHandleLen {
		return nil, fmt.Errorf("%w: handle exceeds %d bytes", ErrInvalidHandle, MaxHandleLen)
	}

	at := strings.IndexByte(s, '@')
	if at < 0 || at != strings.LastIndexByte(s, '@') {
		return nil, fmt.Errorf("%w: expected exactly one '@' in %q", ErrInvalidHandle, s)
	}

	alias := strings.ToLower(s[:at])
	domain := strings.ToLower(strings.TrimSuffix(s[at+1:], "."))
	if alias == "" {
		return nil, fmt.Errorf("%w: empty alias", ErrInvalidHandle)
	}
	for _, r := range alias {
		if !isAliasRune(r) {
			return nil, fmt.Errorf("%w: invalid character %q in alias", ErrInvalidHandle, r)
		}
	}

	labels, ok := dns.IsDomainName(domain)
	if !ok || labels < 2 {
		return nil, fmt.Errorf("%w: invalid domain %q", ErrInvalidHandle, domain)
	}

	return &Handle{Alias: alias, Domain: domain}, nil
}

// IsHandle reports whether s looks like a handle rather than an address.
func IsHandle(s string) bool {
	return strings.Contains(s, "@")
}

func isAliasRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		return true
	case r == '.', r == '-', r == '_', r == '+':
		return true
	}
	return false
}
