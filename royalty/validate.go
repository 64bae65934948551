package royalty

import "fmt"

// IsValidRoyaltyBps reports whether 0 < bps <= MaxRoyaltyBps.
func IsValidRoyaltyBps(bps uint32) bool {
	return bps > 0 && bps <= MaxRoyaltyBps
}

// ValidateRoyaltyBps returns ErrRoyaltyOutOfRange for an invalid royalty.
func ValidateRoyaltyBps(bps uint32) error {
	if !IsValidRoyaltyBps(bps) {
		return fmt.Errorf("%w: %d (max %d)", ErrRoyaltyOutOfRange, bps, MaxRoyaltyBps)
	}
	return nil
}

// ValidateSplitSet checks the share arithmetic of a split set: at most
// MaxSplitRecipients entries, every share positive, total at most
// BasisPoints. An empty set is valid and clears the splits.
// Recipients are not inspected here.
func ValidateSplitSet(entries []SplitEntry) error {
	if len(entries) > MaxSplitRecipients {
		return fmt.Errorf("%w: %d entries (max %d)", ErrTooManySplits, len(entries), MaxSplitRecipients)
	}
	for i, e := range entries {
		if e.SplitBps == 0 {
			return fmt.Errorf("%w: entry %d (%s)", ErrZeroSplitShare, i, e.Recipient)
		}
	}
	if total := SplitTotal(entries); total > BasisPoints {
		return fmt.Errorf("%w: total %d bps", ErrSplitSumExceeded, total)
	}
	return nil
}

// IsValidSplitSet reports whether ValidateSplitSet accepts entries.
func IsValidSplitSet(entries []SplitEntry) bool {
	return ValidateSplitSet(entries) == nil
}
