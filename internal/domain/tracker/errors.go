package tracker

import "errors"

// Sentinel kinds for tracker errors. Rejected plays are treated as
// malformed input by callers: skipped and logged, never fatal.
var (
	ErrOutOfOrder      = errors.New("play out of sequence order")
	ErrScoreRegression = errors.New("score regression")
)
