package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/ritrovo/ritrovo/internal/domain/model"
)

// MemoryUserStore implements UserStore with an RWMutex-guarded map.
// Reads return deep copies so the engine can treat them as immutable
// snapshots while the simulator keeps writing.
type MemoryUserStore struct {
	mu    sync.RWMutex
	users map[string]model.User
}

// NewMemoryUserStore creates an empty in-memory user store.
func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[string]model.User)}
}

// Get returns the user with the given id.
func (s *MemoryUserStore) Get(_ context.Context, id string) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return model.User{}, fmt.Errorf("%w: %s", ErrUserNotFound, id)
	}
	return u.Clone(), nil
}

// ListOthers returns every user except excludeID, ordered by id.
func (s *MemoryUserStore) ListOthers(_ context.Context, excludeID string) ([]model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.User, 0, len(s.users))
	for id, u := range s.users {
		if id != excludeID {
			out = append(out, u.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// List returns all users ordered by id.
func (s *MemoryUserStore) List(ctx context.Context) ([]model.User, error) {
	return s.ListOthers(ctx, "")
}

// Put inserts or replaces a user record.
func (s *MemoryUserStore) Put(_ context.Context, u model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users[u.ID] = u.Clone()
	return nil
}

// AddCategoryCount increments a user's raw attendance count for a category.
func (s *MemoryUserStore) AddCategoryCount(_ context.Context, userID, category string, delta float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUserNotFound, userID)
	}
	if u.CategoryFreq == nil {
		u.CategoryFreq = make(map[string]float64)
		s.users[userID] = u
	}
	u.CategoryFreq[category] += delta
	return nil
}

// Count returns the number of stored users.
func (s *MemoryUserStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

// MemoryEventCatalog implements EventCatalog with an RWMutex-guarded map.
type MemoryEventCatalog struct {
	mu     sync.RWMutex
	events map[string]model.Event
}

// NewMemoryEventCatalog creates an empty in-memory event catalog.
func NewMemoryEventCatalog() *MemoryEventCatalog {
	return &MemoryEventCatalog{events: make(map[string]model.Event)}
}

// Get returns the event with the given id.
func (c *MemoryEventCatalog) Get(_ context.Context, id string) (model.Event, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.events[id]
	if !ok {
		return model.Event{}, fmt.Errorf("%w: %s", ErrEventNotFound, id)
	}
	return e, nil
}

// CategoryOf returns the category of an event.
func (c *MemoryEventCatalog) CategoryOf(ctx context.Context, id string) (string, error) {
	e, err := c.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return e.Category, nil
}

// List returns all events ordered by id.
func (c *MemoryEventCatalog) List(_ context.Context) ([]model.Event, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]model.Event, 0, len(c.events))
	for _, e := range c.events {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ListBy returns the events matching category and city, ordered by id.
func (c *MemoryEventCatalog) ListBy(_ context.Context, category, city string) ([]model.Event, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []model.Event
	for _, e := range c.events {
		if e.Category == category && e.City == city {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Put inserts an event.
func (c *MemoryEventCatalog) Put(_ context.Context, e model.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.events[e.ID] = e
	return nil
}

// Count returns the number of catalogued events.
func (c *MemoryEventCatalog) Count(_ context.Context) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.events)
}

// MemoryAttendanceStore implements AttendanceStore with an RWMutex-guarded
// map of per-user event id sets.
type MemoryAttendanceStore struct {
	mu       sync.RWMutex
	byUser   map[string]map[string]struct{}
	total    int
}

// NewMemoryAttendanceStore creates an empty in-memory attendance store.
func NewMemoryAttendanceStore() *MemoryAttendanceStore {
	return &MemoryAttendanceStore{byUser: make(map[string]map[string]struct{})}
}

// EventsFor returns a copy of the user's attended event id set. Unknown
// users yield an empty set: having no attendance is not an error.
func (s *MemoryAttendanceStore) EventsFor(_ context.Context, userID string) (map[string]struct{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	set := s.byUser[userID]
	out := make(map[string]struct{}, len(set))
	for id := range set {
		out[id] = struct{}{}
	}
	return out, nil
}

// Record registers that a user attended an event. Recording the same
// pair twice is a no-op.
func (s *MemoryAttendanceStore) Record(_ context.Context, userID, eventID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.byUser[userID]
	if !ok {
		set = make(map[string]struct{})
		s.byUser[userID] = set
	}
	if _, exists := set[eventID]; !exists {
		set[eventID] = struct{}{}
		s.total++
	}
	return nil
}

// Count returns the total number of recorded attendances.
func (s *MemoryAttendanceStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.total
}
