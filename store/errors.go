package store

import "errors"

var (
	// ErrReadOnly indicates a write attempted inside View.
	ErrReadOnly = errors.New("store: write in read-only transaction")

	// ErrDuplicateSale indicates a sale record already exists at that sequence.
	ErrDuplicateSale = errors.New("store: duplicate sale record")

	// ErrNilParam indicates a required parameter is nil.
	ErrNilParam = errors.New("store: nil parameter")

	// ErrClosed indicates the store has been closed.
	ErrClosed = errors.New("store: closed")

	// ErrCorrupt indicates a stored value could not be decoded.
	ErrCorrupt = errors.New("store: corrupt record")
)
