// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load() layers defaults, an optional YAML file, and environment variables.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"runtime"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// Seed runs the synthetic-data simulator at startup when the stores are empty.
	Seed bool `koanf:"seed"`

	// BaseThreshold is the admission threshold before feature corrections.
	BaseThreshold float64 `koanf:"base_threshold"`

	// AgeThresholdFactor and CityThresholdFactor scale the threshold when
	// the corresponding feature is selected.
	AgeThresholdFactor  float64 `koanf:"age_threshold_factor"`
	CityThresholdFactor float64 `koanf:"city_threshold_factor"`

	// AgeDecayPerYear is the similarity penalty per year of age difference.
	AgeDecayPerYear float64 `koanf:"age_decay_per_year"`

	// AgeDeltaFloor is the minimum age correction, reached at MaxAgeGapYears.
	AgeDeltaFloor  float64 `koanf:"age_delta_floor"`
	MaxAgeGapYears int     `koanf:"max_age_gap_years"`

	// CityBetaExponent shapes the distance penalty for users in different cities.
	CityBetaExponent float64 `koanf:"city_beta_exponent"`

	// DefaultCityDistanceKM is used when no distance is known for a city pair.
	DefaultCityDistanceKM float64 `koanf:"default_city_distance_km"`

	// RecommendWorkers sets the scoring fan-out when computing recommendations.
	RecommendWorkers int `koanf:"recommend_workers"`

	// Simulation parameters for synthetic seeding.
	SimUsers             int     `koanf:"sim_users"`
	SimEventsPerCategory int     `koanf:"sim_events_per_category"`
	SimAttendancesPer    int     `koanf:"sim_attendances_per_user"`
	SimSameCityBias      float64 `koanf:"sim_same_city_bias"`
	SimSeed              int64   `koanf:"sim_seed"`

	// Categories and Cities drive the simulator and the catalog taxonomy.
	Categories []string `koanf:"categories"`
	Cities     []string `koanf:"cities"`
}

// New creates a Config populated with defaults. The tuning values mirror
// the reference recommendation model and should only change with evidence
// that a different calibration performs better.
func New() *Config {
	return &Config{
		LogLevel:              "info",
		Addr:                  ":9080",
		Seed:                  true,
		BaseThreshold:         0.2,
		AgeThresholdFactor:    0.8,
		CityThresholdFactor:   0.95,
		AgeDecayPerYear:       0.05,
		AgeDeltaFloor:         0.5,
		MaxAgeGapYears:        10,
		CityBetaExponent:      0.09,
		DefaultCityDistanceKM: 573,
		RecommendWorkers:      runtime.NumCPU(),
		SimUsers:              100,
		SimEventsPerCategory:  40,
		SimAttendancesPer:     50,
		SimSameCityBias:       0.7,
		SimSeed:               42,
		Categories:            []string{"Arte", "Cibo", "Festa", "Musica", "Sport"},
		Cities:                []string{"Roma", "Milano"},
	}
}
