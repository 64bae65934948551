package settle

import "errors"

var (
	// ErrNoPayouts indicates a transfer with nothing to pay.
	ErrNoPayouts = errors.New("settle: no payouts")

	// ErrUnknownPayer indicates no signing key for the proceeds holder.
	ErrUnknownPayer = errors.New("settle: unknown payer")

	// ErrInvalidPayee indicates a payee that cannot be turned into an output.
	ErrInvalidPayee = errors.New("settle: invalid payee")

	// ErrInsufficientFunds indicates the payer's outputs cannot cover payouts and fee.
	ErrInsufficientFunds = errors.New("settle: insufficient funds")

	// ErrBuildFailed indicates the payout transaction could not be built or signed.
	ErrBuildFailed = errors.New("settle: transaction build failed")

	// ErrBroadcastFailed indicates the node refused the payout transaction.
	ErrBroadcastFailed = errors.New("settle: broadcast failed")
)
