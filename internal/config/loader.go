package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if RITROVO_CONFIG is set
//  3. env (prefix RITROVO_)
func Load(ctx context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("RITROVO_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: RITROVO_ADDR, RITROVO_BASE_THRESHOLD, ...
	// Map env keys like RITROVO_BASE_THRESHOLD -> base_threshold (flat keys).
	envProvider := env.Provider("RITROVO_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "ritrovo_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	switch {
	case cfg.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case cfg.BaseThreshold < 0 || cfg.BaseThreshold > 1:
		return fmt.Errorf("%w: base_threshold must be in [0,1]", ErrInvalidConfig)
	case cfg.DefaultCityDistanceKM <= 0:
		return fmt.Errorf("%w: default_city_distance_km must be positive", ErrInvalidConfig)
	case cfg.RecommendWorkers < 1:
		return fmt.Errorf("%w: recommend_workers must be at least 1", ErrInvalidConfig)
	case len(cfg.Categories) == 0:
		return fmt.Errorf("%w: at least one category is required", ErrInvalidConfig)
	case len(cfg.Cities) == 0:
		return fmt.Errorf("%w: at least one city is required", ErrInvalidConfig)
	}
	return nil
}
