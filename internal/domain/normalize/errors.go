package normalize

import "errors"

// Sentinel kinds for normalization errors. These allow errors.Is from callers.
var (
	ErrUnparseable   = errors.New("unparseable play record")
	ErrNegativeScore = errors.New("negative score")
)
