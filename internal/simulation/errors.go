package simulation

import "errors"

// Sentinel kinds for simulation errors.
var (
	ErrNoTaxonomy = errors.New("simulation requires at least one category and one city")
)
