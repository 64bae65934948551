package royalty

import "errors"

var (
	// ErrRoyaltyOutOfRange indicates a royalty outside (0, MaxRoyaltyBps].
	ErrRoyaltyOutOfRange = errors.New("royalty: royalty bps out of range")

	// ErrTooManySplits indicates more than MaxSplitRecipients entries.
	ErrTooManySplits = errors.New("royalty: too many split recipients")

	// ErrZeroSplitShare indicates a split entry with zero basis points.
	ErrZeroSplitShare = errors.New("royalty: zero split share")

	// ErrSplitSumExceeded indicates split shares adding up to more than 100%.
	ErrSplitSumExceeded = errors.New("royalty: split shares exceed 100%")

	// ErrInvalidPolicyData indicates an encoded policy is malformed.
	ErrInvalidPolicyData = errors.New("royalty: invalid policy data")

	// ErrInvalidSaleData indicates an encoded sale record is malformed.
	ErrInvalidSaleData = errors.New("royalty: invalid sale data")
)
