// Package model contains domain models passed between layers.
package model

import "time"

// User represents a member of the platform together with the raw counts of
// events attended per category. CategoryFreq holds raw counts; normalized
// views are always derived copies and are never written back.
type User struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	Age          int                `json:"age"`
	City         string             `json:"city"`
	CategoryFreq map[string]float64 `json:"categories_frequency"`
}

// Clone returns a deep copy so callers can hand out snapshot views.
func (u User) Clone() User {
	c := u
	c.CategoryFreq = make(map[string]float64, len(u.CategoryFreq))
	for k, v := range u.CategoryFreq {
		c.CategoryFreq[k] = v
	}
	return c
}

// Event represents a social event in the catalog. Immutable after ingestion.
type Event struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Category string    `json:"category"`
	City     string    `json:"city"`
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
}

// Attendance records that a user attended an event.
type Attendance struct {
	UserID  string `json:"user_id"`
	EventID string `json:"event_id"`
}

// SimilarUser pairs a user with the adjusted similarity to the target.
type SimilarUser struct {
	User       User    `json:"user"`
	Similarity float64 `json:"similarity"`
}

// EventSupport pairs an event with the number of retained similar users
// who attended it.
type EventSupport struct {
	Event   Event `json:"event"`
	Support int   `json:"support"`
}

// Recommendation is the hydrated result of a recommendation run: the
// target user, similar users ranked by similarity, and candidate events
// ranked by support.
type Recommendation struct {
	TargetUser User           `json:"target_user"`
	Users      []SimilarUser  `json:"users"`
	Events     []EventSupport `json:"events"`
}
