// Package similarity computes pairwise user similarity from shared
// event attendance and category taste profiles.
package similarity

import (
	"context"
	"fmt"
	"math"
)

// CategoryLookup resolves an event id to its category. Lookup failures
// are propagated to the caller; retry policy belongs to the catalog.
type CategoryLookup func(ctx context.Context, eventID string) (string, error)

// Input bundles the two users' attendance sets and normalized profiles.
type Input struct {
	TargetProfile map[string]float64
	OtherProfile  map[string]float64
	TargetEvents  map[string]struct{}
	OtherEvents   map[string]struct{}
}

// Scorer computes a similarity score for a pair of users.
type Scorer interface {
	// Score returns a value in [0,1]. It is asymmetric: coverage is
	// measured against the target's own attendance.
	Score(ctx context.Context, in Input) (float64, error)
}

// CosineScorer implements Scorer as coverage-weighted cosine similarity
// over the category weights of shared events.
type CosineScorer struct {
	categoryOf CategoryLookup
}

// NewCosineScorer creates a scorer backed by the given category lookup.
func NewCosineScorer(categoryOf CategoryLookup) *CosineScorer {
	return &CosineScorer{categoryOf: categoryOf}
}

// Score computes coverage * cosine(targetVec, otherVec) where the vectors
// hold, per shared event, each user's normalized weight for that event's
// category. A target with no recorded events, or a pair with no shared
// events, scores 0 rather than failing: both are expected steady states.
func (s *CosineScorer) Score(ctx context.Context, in Input) (float64, error) {
	if len(in.TargetEvents) == 0 {
		return 0, nil
	}

	common := intersect(in.TargetEvents, in.OtherEvents)
	if len(common) == 0 {
		return 0, nil
	}

	targetVec := make([]float64, 0, len(common))
	otherVec := make([]float64, 0, len(common))
	for _, eventID := range common {
		category, err := s.categoryOf(ctx, eventID)
		if err != nil {
			return 0, fmt.Errorf("category lookup for event %s: %w", eventID, err)
		}
		targetVec = append(targetVec, in.TargetProfile[category])
		otherVec = append(otherVec, in.OtherProfile[category])
	}

	coverage := float64(len(common)) / float64(len(in.TargetEvents))
	return coverage * cosine(targetVec, otherVec), nil
}

// cosine returns the cosine similarity of two equal-length vectors,
// defined as 0 when either vector has zero magnitude.
func cosine(a, b []float64) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// intersect returns the ids present in both sets. Order is unspecified;
// callers needing determinism must not depend on it.
func intersect(a, b map[string]struct{}) []string {
	small, large := a, b
	if len(b) < len(a) {
		small, large = b, a
	}
	out := make([]string, 0, len(small))
	for id := range small {
		if _, ok := large[id]; ok {
			out = append(out, id)
		}
	}
	return out
}
