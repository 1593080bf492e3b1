// Package repository defines the store interfaces backing the
// recommendation engine and their in-memory implementations.
package repository

import (
	"context"

	"github.com/ritrovo/ritrovo/internal/domain/model"
)

// UserStore provides read/write access to user records.
type UserStore interface {
	// Get returns the user with the given id.
	// Returns ErrUserNotFound if the user is unknown.
	Get(ctx context.Context, id string) (model.User, error)

	// ListOthers returns every user except excludeID.
	ListOthers(ctx context.Context, excludeID string) ([]model.User, error)

	// List returns all users.
	List(ctx context.Context) ([]model.User, error)

	// Put inserts or replaces a user record.
	Put(ctx context.Context, u model.User) error

	// AddCategoryCount increments a user's raw attendance count for a category.
	AddCategoryCount(ctx context.Context, userID, category string, delta float64) error

	// Count returns the number of stored users.
	Count(ctx context.Context) int
}

// EventCatalog provides read/write access to the event catalog.
type EventCatalog interface {
	// Get returns the event with the given id.
	// Returns ErrEventNotFound if the event is unknown.
	Get(ctx context.Context, id string) (model.Event, error)

	// CategoryOf returns the category of an event.
	// Returns ErrEventNotFound if the event is unknown.
	CategoryOf(ctx context.Context, id string) (string, error)

	// List returns all events.
	List(ctx context.Context) ([]model.Event, error)

	// ListBy returns the events matching category and city.
	ListBy(ctx context.Context, category, city string) ([]model.Event, error)

	// Put inserts an event. Events are immutable once created.
	Put(ctx context.Context, e model.Event) error

	// Count returns the number of catalogued events.
	Count(ctx context.Context) int
}

// AttendanceStore records which users attended which events.
type AttendanceStore interface {
	// EventsFor returns the set of event ids the user attended. The
	// returned set is a copy the caller may treat as a snapshot.
	EventsFor(ctx context.Context, userID string) (map[string]struct{}, error)

	// Record registers that a user attended an event.
	Record(ctx context.Context, userID, eventID string) error

	// Count returns the total number of recorded attendances.
	Count(ctx context.Context) int
}
