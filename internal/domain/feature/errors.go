package feature

import "errors"

// Sentinel kinds for feature errors.
var (
	ErrUnknownFeature = errors.New("unknown feature")
)
