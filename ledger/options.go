package ledger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/bitfsorg/royaltyledger-go/principal"
)

// SplitMode selects whether configured splits change who gets paid.
type SplitMode int

const (
	// SplitInformational pays the whole royalty to the creator; splits are
	// recorded but do not alter the payout.
	SplitInformational SplitMode = iota

	// SplitDistribute pays each split recipient its share of the royalty
	// and the creator any unassigned share. Flooring dust stays with the
	// seller.
	SplitDistribute
)

// String implements fmt.Stringer.
func (m SplitMode) String() string {
	switch m {
	case SplitInformational:
		return "informational"
	case SplitDistribute:
		return "distribute"
	}
	return fmt.Sprintf("SplitMode(%d)", int(m))
}

// ParseSplitMode parses "informational" or "distribute".
func ParseSplitMode(s string) (SplitMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "informational":
		return SplitInformational, nil
	case "distribute":
		return SplitDistribute, nil
	}
	return 0, fmt.Errorf("ledger: unknown split mode %q", s)
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithLogger sets the logger. The default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(l *Ledger) {
		if log != nil {
			l.log = log
		}
	}
}

// WithMetrics attaches collectors created by NewMetrics.
func WithMetrics(m *Metrics) Option {
	return func(l *Ledger) { l.metrics = m }
}

// WithSplitMode selects the split payout behavior.
func WithSplitMode(m SplitMode) Option {
	return func(l *Ledger) { l.splitMode = m }
}

// WithSequencer sets the sequence source. The default is the store's
// persistent clock, which survives reopening a durable store.
func WithSequencer(s Sequencer) Option {
	return func(l *Ledger) {
		if s != nil {
			l.sequencer = s
		}
	}
}

// WithValidator sets the principal validator. The default is
// principal.StandardValidator{}.
func WithValidator(v principal.Validator) Option {
	return func(l *Ledger) {
		if v != nil {
			l.validator = v
		}
	}
}
