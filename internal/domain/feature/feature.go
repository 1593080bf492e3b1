// Package feature applies optional demographic corrections to raw
// similarity scores and derives the admission threshold.
package feature

import (
	"fmt"
	"math"
)

// Feature names a demographic signal that can adjust scoring.
type Feature string

// Supported features.
const (
	Age  Feature = "age"
	City Feature = "city"
)

// Parse validates a feature name from an external source.
func Parse(s string) (Feature, error) {
	switch Feature(s) {
	case Age:
		return Age, nil
	case City:
		return City, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFeature, s)
	}
}

// Set is a selection of features.
type Set map[Feature]struct{}

// NewSet builds a Set from the given features.
func NewSet(features ...Feature) Set {
	s := make(Set, len(features))
	for _, f := range features {
		s[f] = struct{}{}
	}
	return s
}

// Has reports whether f is selected.
func (s Set) Has(f Feature) bool {
	_, ok := s[f]
	return ok
}

// DistanceFunc returns the distance between two cities in kilometers.
// The adjuster treats it as an opaque positive numeric provider.
type DistanceFunc func(cityA, cityB string) float64

// Default correction constants, mirroring the reference model. Treated
// as calibration values: override via options, do not change in place.
const (
	DefaultBaseThreshold       = 0.2
	DefaultAgeThresholdFactor  = 0.8
	DefaultCityThresholdFactor = 0.95
	DefaultAgeDecayPerYear     = 0.05
	DefaultAgeDeltaFloor       = 0.5
	DefaultMaxAgeGapYears      = 10
	DefaultCityBetaExponent    = 0.09
)

// Adjuster computes thresholds and feature correction multipliers.
type Adjuster struct {
	ageThresholdFactor  float64
	cityThresholdFactor float64
	ageDecayPerYear     float64
	ageDeltaFloor       float64
	maxAgeGapYears      int
	cityBetaExponent    float64
}

// Option applies a configuration option to the Adjuster.
type Option func(*Adjuster)

// WithThresholdFactors sets the per-feature threshold multipliers.
func WithThresholdFactors(age, city float64) Option {
	return func(a *Adjuster) {
		if age > 0 {
			a.ageThresholdFactor = age
		}
		if city > 0 {
			a.cityThresholdFactor = city
		}
	}
}

// WithAgeDecay sets the per-year decay and the floor reached beyond maxGapYears.
func WithAgeDecay(perYear, floor float64, maxGapYears int) Option {
	return func(a *Adjuster) {
		if perYear > 0 {
			a.ageDecayPerYear = perYear
		}
		if floor > 0 {
			a.ageDeltaFloor = floor
		}
		if maxGapYears > 0 {
			a.maxAgeGapYears = maxGapYears
		}
	}
}

// WithCityBetaExponent sets the exponent of the distance penalty.
func WithCityBetaExponent(exp float64) Option {
	return func(a *Adjuster) {
		if exp > 0 {
			a.cityBetaExponent = exp
		}
	}
}

// New creates an Adjuster with the reference calibration.
func New(opts ...Option) *Adjuster {
	a := &Adjuster{
		ageThresholdFactor:  DefaultAgeThresholdFactor,
		cityThresholdFactor: DefaultCityThresholdFactor,
		ageDecayPerYear:     DefaultAgeDecayPerYear,
		ageDeltaFloor:       DefaultAgeDeltaFloor,
		maxAgeGapYears:      DefaultMaxAgeGapYears,
		cityBetaExponent:    DefaultCityBetaExponent,
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Threshold scales base by the factor of each selected feature. Selecting
// a feature lowers the bar: the correction multipliers already shrink the
// raw scores.
func (a *Adjuster) Threshold(base float64, features Set) float64 {
	threshold := base
	if features.Has(Age) {
		threshold *= a.ageThresholdFactor
	}
	if features.Has(City) {
		threshold *= a.cityThresholdFactor
	}
	return threshold
}

// AgeDelta returns the age correction in [floor, 1]: linear decay per year
// of difference, clipped at the floor beyond the maximum gap.
func (a *Adjuster) AgeDelta(ageA, ageB int) float64 {
	gap := ageA - ageB
	if gap < 0 {
		gap = -gap
	}
	if gap > a.maxAgeGapYears {
		return a.ageDeltaFloor
	}
	return 1 - a.ageDecayPerYear*float64(gap)
}

// CityBeta returns the city correction in (0,1]: 1 for the same city,
// otherwise a slowly decaying penalty on the distance between the two.
func (a *Adjuster) CityBeta(cityA, cityB string, distance DistanceFunc) float64 {
	if cityA == cityB {
		return 1
	}
	d := distance(cityA, cityB)
	if d <= 0 {
		// Unknown or non-positive distances are treated as co-located.
		return 1
	}
	return math.Pow(1/d, a.cityBetaExponent)
}
