package history

import "errors"

var (
	// ErrNotFound is returned when no record exists for the game.
	ErrNotFound = errors.New("history: game not found")

	// ErrFinalized is returned on writes to a finalized record.
	ErrFinalized = errors.New("history: record is finalized")

	// ErrCorrupt is returned when an on-disk record cannot be decoded.
	ErrCorrupt = errors.New("history: corrupt record")

	// ErrPersist wraps filesystem failures while saving a record.
	ErrPersist = errors.New("history: persist failed")
)
