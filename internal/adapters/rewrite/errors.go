package rewrite

import "errors"

// ErrUnavailable covers every non-success outcome from the collaborator;
// callers treat them all the same and keep the literal text.
var ErrUnavailable = errors.New("rewrite collaborator unavailable")
