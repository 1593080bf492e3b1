// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ritrovo/ritrovo/internal/adapters/geo"
	"github.com/ritrovo/ritrovo/internal/adapters/repository"
	"github.com/ritrovo/ritrovo/internal/domain/feature"
	"github.com/ritrovo/ritrovo/internal/domain/model"
	"github.com/ritrovo/ritrovo/internal/domain/recommend"
	"github.com/ritrovo/ritrovo/internal/domain/similarity"
	"github.com/ritrovo/ritrovo/internal/simulation"
	"github.com/ritrovo/ritrovo/pkg/logger"
	"github.com/ritrovo/ritrovo/pkg/metrics"
)

// Service wires the stores, the distance provider, the recommendation
// engine, and the startup seeding together.
type Service struct {
	mu sync.RWMutex

	// Core components
	users      repository.UserStore
	catalog    repository.EventCatalog
	attendance repository.AttendanceStore
	distance   geo.Provider
	engine     *recommend.Engine

	// Configuration
	seedOnStart      bool
	baseThreshold    float64
	workers          int
	adjusterOpts     []feature.Option
	fallbackKM       float64
	simulationConfig simulation.Config

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSeedOnStart controls whether empty stores are seeded at startup.
func WithSeedOnStart(seed bool) Option {
	return func(s *Service) {
		s.seedOnStart = seed
	}
}

// WithBaseThreshold sets the admission threshold before corrections.
func WithBaseThreshold(base float64) Option {
	return func(s *Service) {
		if base > 0 {
			s.baseThreshold = base
		}
	}
}

// WithWorkers sets the engine's scoring fan-out.
func WithWorkers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithAdjusterOptions forwards calibration options to the feature adjuster.
func WithAdjusterOptions(opts ...feature.Option) Option {
	return func(s *Service) {
		s.adjusterOpts = append(s.adjusterOpts, opts...)
	}
}

// WithFallbackDistanceKM sets the distance used for unknown city pairs.
func WithFallbackDistanceKM(km float64) Option {
	return func(s *Service) {
		if km > 0 {
			s.fallbackKM = km
		}
	}
}

// WithSimulation sets the synthetic seeding parameters.
func WithSimulation(cfg simulation.Config) Option {
	return func(s *Service) {
		s.simulationConfig = cfg
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		seedOnStart:   true,
		baseThreshold: feature.DefaultBaseThreshold,
		fallbackKM:    geo.DefaultFallbackKM,
		simulationConfig: simulation.Config{
			Categories: []string{"Arte", "Cibo", "Festa", "Musica", "Sport"},
			Cities:     []string{"Roma", "Milano"},
		},
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes the stores and the engine, and seeds synthetic data
// when configured to do so.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting recommendation service...")

	s.users = repository.NewMemoryUserStore()
	s.catalog = repository.NewMemoryEventCatalog()
	s.attendance = repository.NewMemoryAttendanceStore()
	s.distance = geo.NewStaticProvider(geo.WithFallbackKM(s.fallbackKM))

	scorer := similarity.NewCosineScorer(s.catalog.CategoryOf)
	engineOpts := []recommend.Option{
		recommend.WithBaseThreshold(s.baseThreshold),
		recommend.WithAdjuster(feature.New(s.adjusterOpts...)),
		recommend.WithLogger(s.logger.Named("engine")),
	}
	if s.workers > 0 {
		engineOpts = append(engineOpts, recommend.WithWorkers(s.workers))
	}
	s.engine = recommend.New(s.users, s.attendance, scorer, s.distance.Distance, engineOpts...)

	if s.seedOnStart && s.users.Count(ctx) == 0 {
		sim := simulation.New(s.simulationConfig, s.users, s.catalog, s.attendance,
			simulation.WithLogger(s.logger.Named("simulation")))
		if err := sim.Run(ctx); err != nil {
			return fmt.Errorf("seed synthetic data: %w", err)
		}
	}

	metrics.UpdateTotalUsers(s.users.Count(ctx))
	metrics.UpdateTotalEvents(s.catalog.Count(ctx))
	metrics.UpdateTotalAttendances(s.attendance.Count(ctx))

	s.started = true
	s.logger.Info(ctx, "recommendation service started",
		logger.Int("users", s.users.Count(ctx)),
		logger.Int("events", s.catalog.Count(ctx)),
		logger.Int("attendances", s.attendance.Count(ctx)),
	)

	return nil
}

// Stop shuts the service down. The stores are in-memory, so there is
// nothing to flush; the flag only guards double starts.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "recommendation service stopped")
}

// Recommend computes recommendations for the target user and hydrates
// the recommended event ids into full catalog records.
func (s *Service) Recommend(ctx context.Context, targetID string, features feature.Set) (model.Recommendation, error) {
	start := time.Now()

	result, err := s.engine.Recommend(ctx, targetID, features)
	if err != nil {
		metrics.RecordRecommendationError()
		return model.Recommendation{}, err
	}

	rec := model.Recommendation{
		TargetUser: result.TargetUser,
		Users:      make([]model.SimilarUser, 0, len(result.Users)),
		Events:     make([]model.EventSupport, 0, len(result.Events)),
	}
	for _, su := range result.Users {
		rec.Users = append(rec.Users, model.SimilarUser{User: su.User, Similarity: su.Score})
	}
	for _, es := range result.Events {
		event, err := s.catalog.Get(ctx, es.EventID)
		if err != nil {
			metrics.RecordRecommendationError()
			return model.Recommendation{}, fmt.Errorf("hydrate event %s: %w", es.EventID, err)
		}
		rec.Events = append(rec.Events, model.EventSupport{Event: event, Support: es.Support})
	}

	metrics.RecordRecommendationComputed()
	metrics.RecordRecommendationLatency(float64(time.Since(start).Milliseconds()))
	metrics.RecordSimilarUsersRetained(len(rec.Users))
	metrics.RecordCandidateEvents(len(rec.Events))

	return rec, nil
}

// ListUsers returns all users.
func (s *Service) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.users.List(ctx)
}

// ListEvents returns the event catalog.
func (s *Service) ListEvents(ctx context.Context) ([]model.Event, error) {
	return s.catalog.List(ctx)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":        s.started,
		"base_threshold": s.baseThreshold,
	}

	if s.started {
		users := s.users.Count(ctx)
		events := s.catalog.Count(ctx)
		attendances := s.attendance.Count(ctx)

		stats["users"] = users
		stats["events"] = events
		stats["attendances"] = attendances

		metrics.UpdateTotalUsers(users)
		metrics.UpdateTotalEvents(events)
		metrics.UpdateTotalAttendances(attendances)
	}

	return stats
}
