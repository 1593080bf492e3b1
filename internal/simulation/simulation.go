// Package simulation seeds the stores with a synthetic population:
// an event catalog per category and city, users with random taste
// distributions, and attendance histories sampled from those tastes.
package simulation

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/ritrovo/ritrovo/internal/adapters/repository"
	"github.com/ritrovo/ritrovo/internal/domain/model"
	"github.com/ritrovo/ritrovo/pkg/logger"
)

// Default simulation parameters.
const (
	defaultUsers              = 100
	defaultEventsPerCategory  = 40
	defaultAttendancesPerUser = 50
	defaultSameCityBias       = 0.7
	defaultSeed               = 42

	minAge       = 18
	ageRange     = 47 // ages span [18, 65)
	eventWindow  = 30 * 24 * time.Hour
	eventLength  = 3 * time.Hour
	maxSampleTry = 16
)

// Config holds the simulation parameters.
type Config struct {
	Users              int
	EventsPerCategory  int
	AttendancesPerUser int
	SameCityBias       float64
	Seed               int64
	Categories         []string
	Cities             []string
}

// Simulator generates the synthetic population and writes it to the stores.
type Simulator struct {
	cfg        Config
	users      repository.UserStore
	catalog    repository.EventCatalog
	attendance repository.AttendanceStore
	rng        *rand.Rand
	logger     logger.Logger
}

// Option applies a configuration option to the Simulator.
type Option func(*Simulator)

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Simulator) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a Simulator writing to the given stores. Zero-valued config
// fields fall back to defaults; the random source is seeded explicitly so
// a given configuration reproduces the same population.
func New(cfg Config, users repository.UserStore, catalog repository.EventCatalog, attendance repository.AttendanceStore, opts ...Option) *Simulator {
	if cfg.Users <= 0 {
		cfg.Users = defaultUsers
	}
	if cfg.EventsPerCategory <= 0 {
		cfg.EventsPerCategory = defaultEventsPerCategory
	}
	if cfg.AttendancesPerUser <= 0 {
		cfg.AttendancesPerUser = defaultAttendancesPerUser
	}
	if cfg.SameCityBias <= 0 || cfg.SameCityBias > 1 {
		cfg.SameCityBias = defaultSameCityBias
	}
	if cfg.Seed == 0 {
		cfg.Seed = defaultSeed
	}

	s := &Simulator{
		cfg:        cfg,
		users:      users,
		catalog:    catalog,
		attendance: attendance,
		rng:        rand.New(rand.NewSource(cfg.Seed)), //nolint:gosec // deterministic seed for reproducible populations
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Run populates the catalog, the users, and their attendance histories.
func (s *Simulator) Run(ctx context.Context) error {
	if len(s.cfg.Categories) == 0 || len(s.cfg.Cities) == 0 {
		return ErrNoTaxonomy
	}

	if err := s.generateCatalog(ctx); err != nil {
		return err
	}
	users, err := s.generateUsers(ctx)
	if err != nil {
		return err
	}
	if err := s.simulateAttendance(ctx, users); err != nil {
		return err
	}

	if s.logger != nil {
		s.logger.Info(ctx, "simulation complete",
			logger.Int("users", s.users.Count(ctx)),
			logger.Int("events", s.catalog.Count(ctx)),
			logger.Int("attendances", s.attendance.Count(ctx)),
		)
	}
	return nil
}

// generateCatalog fills the catalog with EventsPerCategory events for
// every (category, city) pair, starting at random times within the
// coming weeks.
func (s *Simulator) generateCatalog(ctx context.Context) error {
	now := time.Now()
	for _, category := range s.cfg.Categories {
		for _, city := range s.cfg.Cities {
			for i := 0; i < s.cfg.EventsPerCategory; i++ {
				start := now.Add(time.Duration(s.rng.Int63n(int64(eventWindow))))
				event := model.Event{
					ID:       uuid.New().String(),
					Name:     fmt.Sprintf("%s %s #%d", category, city, i+1),
					Category: category,
					City:     city,
					StartsAt: start,
					EndsAt:   start.Add(eventLength),
				}
				if err := s.catalog.Put(ctx, event); err != nil {
					return fmt.Errorf("seed event: %w", err)
				}
			}
		}
	}
	return nil
}

// generateUsers creates users with a random city, age, and a normalized
// taste distribution over the categories. The distribution drives the
// attendance sampling; the stored CategoryFreq starts at zero and only
// accumulates actual attendance counts.
func (s *Simulator) generateUsers(ctx context.Context) ([]seededUser, error) {
	users := make([]seededUser, 0, s.cfg.Users)
	for i := 0; i < s.cfg.Users; i++ {
		u := model.User{
			ID:           uuid.New().String(),
			Name:         fmt.Sprintf("user-%04d", i+1),
			Age:          minAge + s.rng.Intn(ageRange),
			City:         s.cfg.Cities[s.rng.Intn(len(s.cfg.Cities))],
			CategoryFreq: make(map[string]float64, len(s.cfg.Categories)),
		}
		if err := s.users.Put(ctx, u); err != nil {
			return nil, fmt.Errorf("seed user: %w", err)
		}
		users = append(users, seededUser{user: u, tastes: s.randomTastes()})
	}
	return users, nil
}

type seededUser struct {
	user   model.User
	tastes []float64 // per-category weights, summing to 1
}

// randomTastes draws a normalized preference distribution over the
// configured categories.
func (s *Simulator) randomTastes() []float64 {
	weights := make([]float64, len(s.cfg.Categories))
	var sum float64
	for i := range weights {
		weights[i] = s.rng.Float64()
		sum += weights[i]
	}
	for i := range weights {
		weights[i] /= sum
	}
	return weights
}

// simulateAttendance samples AttendancesPerUser events per user from the
// user's taste distribution, biased toward the user's own city, and
// records both the attendance and the raw category count.
func (s *Simulator) simulateAttendance(ctx context.Context, users []seededUser) error {
	for _, su := range users {
		attended := make(map[string]struct{}, s.cfg.AttendancesPerUser)
		for i := 0; i < s.cfg.AttendancesPerUser; i++ {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			category := s.cfg.Categories[s.sampleIndex(su.tastes)]
			city := s.sampleCity(su.user.City)

			event, ok, err := s.sampleEvent(ctx, attended, category, city)
			if err != nil {
				return err
			}
			if !ok {
				// Every event of this category and city is already
				// attended; move on to the next draw.
				continue
			}

			attended[event.ID] = struct{}{}
			if err := s.attendance.Record(ctx, su.user.ID, event.ID); err != nil {
				return fmt.Errorf("record attendance: %w", err)
			}
			if err := s.users.AddCategoryCount(ctx, su.user.ID, category, 1); err != nil {
				return fmt.Errorf("update category count: %w", err)
			}
		}
	}
	return nil
}

// sampleIndex draws an index from a normalized weight vector.
func (s *Simulator) sampleIndex(weights []float64) int {
	r := s.rng.Float64()
	var cumulative float64
	for i, w := range weights {
		cumulative += w
		if r < cumulative {
			return i
		}
	}
	return len(weights) - 1
}

// sampleCity returns the user's own city with probability SameCityBias,
// otherwise a uniformly random different city.
func (s *Simulator) sampleCity(home string) string {
	if s.rng.Float64() < s.cfg.SameCityBias || len(s.cfg.Cities) == 1 {
		return home
	}
	for {
		city := s.cfg.Cities[s.rng.Intn(len(s.cfg.Cities))]
		if city != home {
			return city
		}
	}
}

// sampleEvent picks an event of the given category and city that the user
// has not yet attended. A bounded number of random draws is tried first;
// if they all collide, the candidate list is scanned once. Returns
// ok=false when every candidate is already attended.
func (s *Simulator) sampleEvent(ctx context.Context, attended map[string]struct{}, category, city string) (model.Event, bool, error) {
	candidates, err := s.catalog.ListBy(ctx, category, city)
	if err != nil {
		return model.Event{}, false, fmt.Errorf("list events: %w", err)
	}
	if len(candidates) == 0 {
		return model.Event{}, false, nil
	}

	for try := 0; try < maxSampleTry; try++ {
		event := candidates[s.rng.Intn(len(candidates))]
		if _, seen := attended[event.ID]; !seen {
			return event, true, nil
		}
	}
	for _, event := range candidates {
		if _, seen := attended[event.ID]; !seen {
			return event, true, nil
		}
	}
	return model.Event{}, false, nil
}
