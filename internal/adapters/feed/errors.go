package feed

import "errors"

// Sentinel kinds for feed errors.
var (
	ErrUpstream = errors.New("upstream feed unavailable")
)
