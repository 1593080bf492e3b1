// Package geo provides city-to-city distances for the recommendation
// engine. A static lookup table stands in for a geocoding service; the
// engine only depends on the Provider interface, so a real geocoder can
// be substituted without touching it.
package geo

import "sort"

// DefaultFallbackKM is used for city pairs missing from the table.
// It matches the Roma-Milano road distance the reference model assumed
// for every unknown pair.
const DefaultFallbackKM = 573

// Provider returns the distance in kilometers between two cities.
type Provider interface {
	Distance(cityA, cityB string) float64
}

// StaticProvider implements Provider with a symmetric lookup table and a
// fallback for unknown pairs.
type StaticProvider struct {
	distances  map[[2]string]float64
	fallbackKM float64
}

// Option applies a configuration option to the StaticProvider.
type Option func(*StaticProvider)

// WithFallbackKM sets the distance used for unknown city pairs.
func WithFallbackKM(km float64) Option {
	return func(p *StaticProvider) {
		if km > 0 {
			p.fallbackKM = km
		}
	}
}

// WithDistance registers the distance for a city pair, in both directions.
func WithDistance(cityA, cityB string, km float64) Option {
	return func(p *StaticProvider) {
		if km > 0 {
			p.distances[pairKey(cityA, cityB)] = km
		}
	}
}

// NewStaticProvider creates a provider with the given overrides.
func NewStaticProvider(opts ...Option) *StaticProvider {
	p := &StaticProvider{
		distances:  make(map[[2]string]float64),
		fallbackKM: DefaultFallbackKM,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Distance returns the distance between two cities. Identical cities are
// at distance 0; unknown pairs fall back to the configured default.
func (p *StaticProvider) Distance(cityA, cityB string) float64 {
	if cityA == cityB {
		return 0
	}
	if km, ok := p.distances[pairKey(cityA, cityB)]; ok {
		return km
	}
	return p.fallbackKM
}

// pairKey normalizes the pair so lookups are direction-independent.
func pairKey(a, b string) [2]string {
	cities := []string{a, b}
	sort.Strings(cities)
	return [2]string{cities[0], cities[1]}
}
