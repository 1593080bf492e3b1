// Package recommend orchestrates similarity scoring across all candidate
// users and produces the ranked recommendation result.
package recommend

import (
	"context"
	"fmt"
	"runtime"
	"sort"

	"github.com/ritrovo/ritrovo/internal/domain/feature"
	"github.com/ritrovo/ritrovo/internal/domain/model"
	"github.com/ritrovo/ritrovo/internal/domain/profile"
	"github.com/ritrovo/ritrovo/internal/domain/similarity"
	"github.com/ritrovo/ritrovo/pkg/logger"
)

// UserSource supplies the target user and the candidate pool.
type UserSource interface {
	Get(ctx context.Context, id string) (model.User, error)
	ListOthers(ctx context.Context, excludeID string) ([]model.User, error)
}

// AttendanceSource supplies each user's attended event ids.
type AttendanceSource interface {
	EventsFor(ctx context.Context, userID string) (map[string]struct{}, error)
}

// ScoredUser pairs a candidate user with the feature-adjusted similarity.
type ScoredUser struct {
	User  model.User
	Score float64
}

// EventSupport counts how many retained users attended a candidate event.
type EventSupport struct {
	EventID string
	Support int
}

// Result holds both rankings for a recommendation run. Users are ordered
// by score descending, events by support descending; ties break on
// ascending id so the order is deterministic.
type Result struct {
	TargetUser model.User
	Users      []ScoredUser
	Events     []EventSupport
}

// Engine computes recommendations from read-only store snapshots. It
// performs no writes and holds no mutable state between calls, so a
// single Engine is safe for concurrent use.
type Engine struct {
	users      UserSource
	attendance AttendanceSource
	scorer     similarity.Scorer
	adjuster   *feature.Adjuster
	distance   feature.DistanceFunc

	baseThreshold float64
	workers       int
	logger        logger.Logger
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithBaseThreshold overrides the admission threshold before corrections.
func WithBaseThreshold(base float64) Option {
	return func(e *Engine) {
		if base > 0 {
			e.baseThreshold = base
		}
	}
}

// WithWorkers sets the scoring fan-out.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithAdjuster sets a custom feature adjuster.
func WithAdjuster(a *feature.Adjuster) Option {
	return func(e *Engine) {
		if a != nil {
			e.adjuster = a
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an Engine over the given collaborators.
func New(users UserSource, attendance AttendanceSource, scorer similarity.Scorer, distance feature.DistanceFunc, opts ...Option) *Engine {
	e := &Engine{
		users:         users,
		attendance:    attendance,
		scorer:        scorer,
		adjuster:      feature.New(),
		distance:      distance,
		baseThreshold: feature.DefaultBaseThreshold,
		workers:       runtime.NumCPU(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// candidate is the per-user outcome of the parallel scoring loop.
type candidate struct {
	user      model.User
	score     float64
	newEvents []string
	err       error
}

// Recommend scores every other user against the target, retains those at
// or above the feature-adjusted threshold, and aggregates the events the
// retained users attended that the target has not.
//
// A target with no recorded attendance yields empty rankings and no
// error: that is the steady state for new users. An unknown target id
// surfaces the store's not-found error.
func (e *Engine) Recommend(ctx context.Context, targetID string, features feature.Set) (Result, error) {
	target, err := e.users.Get(ctx, targetID)
	if err != nil {
		return Result{}, fmt.Errorf("resolve target user: %w", err)
	}

	targetEvents, err := e.attendance.EventsFor(ctx, target.ID)
	if err != nil {
		return Result{}, fmt.Errorf("target attendance: %w", err)
	}

	result := Result{
		TargetUser: target,
		Users:      []ScoredUser{},
		Events:     []EventSupport{},
	}
	if len(targetEvents) == 0 {
		if e.logger != nil {
			e.logger.Debug(ctx, "target has no attendance; returning empty rankings",
				logger.String("userID", target.ID))
		}
		return result, nil
	}

	others, err := e.users.ListOthers(ctx, target.ID)
	if err != nil {
		return Result{}, fmt.Errorf("list candidate users: %w", err)
	}

	targetProfile := profile.Normalize(target.CategoryFreq)
	threshold := e.adjuster.Threshold(e.baseThreshold, features)

	candidates, err := e.scoreAll(ctx, target, targetProfile, targetEvents, others, features, threshold)
	if err != nil {
		return Result{}, err
	}

	support := make(map[string]int)
	for _, c := range candidates {
		result.Users = append(result.Users, ScoredUser{User: c.user, Score: c.score})
		for _, eventID := range c.newEvents {
			support[eventID]++
		}
	}
	for eventID, count := range support {
		result.Events = append(result.Events, EventSupport{EventID: eventID, Support: count})
	}

	sort.Slice(result.Users, func(i, j int) bool {
		if result.Users[i].Score != result.Users[j].Score {
			return result.Users[i].Score > result.Users[j].Score
		}
		return result.Users[i].User.ID < result.Users[j].User.ID
	})
	sort.Slice(result.Events, func(i, j int) bool {
		if result.Events[i].Support != result.Events[j].Support {
			return result.Events[i].Support > result.Events[j].Support
		}
		return result.Events[i].EventID < result.Events[j].EventID
	})

	if e.logger != nil {
		e.logger.Debug(ctx, "recommendation computed",
			logger.String("userID", target.ID),
			logger.Float64("threshold", threshold),
			logger.Int("candidates", len(others)),
			logger.Int("retained", len(result.Users)),
			logger.Int("events", len(result.Events)),
		)
	}
	return result, nil
}

// scoreAll fans the per-user scoring across a bounded worker pool. The
// loop is read-only over shared snapshots; results are merged afterwards
// so no shared accumulator needs locking.
func (e *Engine) scoreAll(ctx context.Context, target model.User, targetProfile map[string]float64, targetEvents map[string]struct{}, others []model.User, features feature.Set, threshold float64) ([]candidate, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	workers := e.workers
	if workers > len(others) {
		workers = len(others)
	}
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan model.User)
	outcomes := make(chan candidate, len(others))

	for w := 0; w < workers; w++ {
		go func() {
			for other := range jobs {
				outcomes <- e.scoreOne(ctx, target, targetProfile, targetEvents, other, features, threshold)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, other := range others {
			select {
			case jobs <- other:
			case <-ctx.Done():
				return
			}
		}
	}()

	retained := make([]candidate, 0, len(others))
	var firstErr error
	for i := 0; i < len(others); i++ {
		select {
		case c := <-outcomes:
			switch {
			case c.err != nil:
				if firstErr == nil {
					firstErr = c.err
					cancel()
				}
			case c.score >= threshold:
				retained = append(retained, c)
			}
		case <-ctx.Done():
			if firstErr == nil {
				firstErr = ctx.Err()
			}
			return nil, firstErr
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return retained, nil
}

// scoreOne computes the feature-adjusted similarity for a single
// candidate and, when above threshold, the events they could contribute.
func (e *Engine) scoreOne(ctx context.Context, target model.User, targetProfile map[string]float64, targetEvents map[string]struct{}, other model.User, features feature.Set, threshold float64) candidate {
	otherEvents, err := e.attendance.EventsFor(ctx, other.ID)
	if err != nil {
		return candidate{err: fmt.Errorf("attendance for user %s: %w", other.ID, err)}
	}

	score, err := e.scorer.Score(ctx, similarity.Input{
		TargetProfile: targetProfile,
		OtherProfile:  profile.Normalize(other.CategoryFreq),
		TargetEvents:  targetEvents,
		OtherEvents:   otherEvents,
	})
	if err != nil {
		return candidate{err: fmt.Errorf("score user %s: %w", other.ID, err)}
	}

	if features.Has(feature.Age) {
		score *= e.adjuster.AgeDelta(target.Age, other.Age)
	}
	if features.Has(feature.City) {
		score *= e.adjuster.CityBeta(target.City, other.City, e.distance)
	}

	c := candidate{user: other, score: score}
	if score < threshold {
		return c
	}

	for eventID := range otherEvents {
		if _, attended := targetEvents[eventID]; !attended {
			c.newEvents = append(c.newEvents, eventID)
		}
	}
	return c
}
