// Package profile derives normalized category-attendance distributions
// from raw per-user attendance counts.
package profile

// Normalize returns a fresh mapping with each category weight divided by
// the total, so the weights sum to 1. The input is never mutated, which
// makes repeated normalization of the same counts idempotent.
//
// An empty mapping, or one whose weights sum to zero, yields an empty
// (non-nil) mapping rather than a division error: a user with no recorded
// attendance simply has no taste profile yet.
func Normalize(freq map[string]float64) map[string]float64 {
	var sum float64
	for _, v := range freq {
		sum += v
	}

	normalized := make(map[string]float64, len(freq))
	if sum == 0 {
		return normalized
	}
	for category, v := range freq {
		normalized[category] = v / sum
	}
	return normalized
}
