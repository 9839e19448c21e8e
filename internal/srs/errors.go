package srs

import "errors"

// Sentinel errors for the srs package.
// Use errors.Is to check: errors.Is(err, srs.ErrNotFound)
var (
	ErrNotFound       = errors.New("srs: card not found")
	ErrInvalidQuality = errors.New("srs: invalid quality")
	ErrInvalidKind    = errors.New("srs: invalid item kind")
)
