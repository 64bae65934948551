package ledger

import "errors"

// Error kinds returned by ledger operations. Every rejection wraps exactly
// one of the first seven; match with errors.Is.
var (
	// ErrNotAuthorized indicates the ledger is paused, the caller lacks the
	// required role, or the policy is inactive at sale time.
	ErrNotAuthorized = errors.New("ledger: not authorized")

	// ErrInvalidPercentage indicates a royalty or split percentage out of bounds.
	ErrInvalidPercentage = errors.New("ledger: invalid percentage")

	// ErrAssetNotFound indicates no policy exists for the asset.
	ErrAssetNotFound = errors.New("ledger: asset not found")

	// ErrAlreadyExists indicates a duplicate policy registration.
	ErrAlreadyExists = errors.New("ledger: policy already exists")

	// ErrInvalidRecipient indicates a malformed principal.
	ErrInvalidRecipient = errors.New("ledger: invalid recipient")

	// ErrTransferFailed indicates the royalty payout failed.
	ErrTransferFailed = errors.New("ledger: transfer failed")

	// ErrInvalidPrice indicates a zero sale price.
	ErrInvalidPrice = errors.New("ledger: invalid price")

	// ErrAdminMismatch indicates the store is bound to a different administrator.
	ErrAdminMismatch = errors.New("ledger: administrator mismatch")

	// ErrTotalOverflow indicates the cumulative total would exceed 2^64-1.
	ErrTotalOverflow = errors.New("ledger: total distributed overflow")
)

var errorKinds = []struct {
	err  error
	kind string
}{
	{ErrNotAuthorized, "not_authorized"},
	{ErrInvalidPercentage, "invalid_percentage"},
	{ErrAssetNotFound, "asset_not_found"},
	{ErrAlreadyExists, "already_exists"},
	{ErrInvalidRecipient, "invalid_recipient"},
	{ErrTransferFailed, "transfer_failed"},
	{ErrInvalidPrice, "invalid_price"},
}

// ErrorKind returns the short name of err's kind, or "internal" for
// failures outside the taxonomy such as storage errors.
func ErrorKind(err error) string {
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return "internal"
}
