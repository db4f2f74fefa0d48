package scene

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Sentinel errors returned by store operations.
var (
	// ErrActorNotFound is returned when no actor has the requested ID.
	ErrActorNotFound = errors.New("actor not found")
	// ErrPropertyNotFound is returned when an actor lacks the requested property.
	ErrPropertyNotFound = errors.New("property not found")
	// ErrEmptyName is returned when an actor name is empty.
	ErrEmptyName = errors.New("actor name cannot be empty")
	// ErrSceneFull is returned when a spawn would exceed the actor limit.
	ErrSceneFull = errors.New("actor limit reached")
)

// Vector3 is a position, rotation, or scale triple.
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Actor is one object in the scene graph.
type Actor struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Class      string         `json:"class,omitempty"`
	Location   Vector3        `json:"location"`
	Rotation   Vector3        `json:"rotation"`
	Scale      Vector3        `json:"scale"`
	Properties map[string]any `json:"properties,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// SpawnRequest carries the initial state for a new actor. Scale zero
// value means default uniform scale, not a degenerate actor.
type SpawnRequest struct {
	Name       string
	Class      string
	Location   Vector3
	Rotation   Vector3
	Scale      *Vector3
	Properties map[string]any
}

// Transform carries the optional components of a transform update. Nil
// components are left untouched.
type Transform struct {
	Location *Vector3
	Rotation *Vector3
	Scale    *Vector3
}

// Store is the in-memory actor collection. All methods are safe for
// concurrent use and return copies, so callers can never mutate stored
// state behind the store's back.
type Store struct {
	mu     sync.RWMutex
	actors map[string]*Actor
	order  []string
	limit  int
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		actors: make(map[string]*Actor),
	}
}

// SetLimit caps how many actors the store holds at once. Zero means
// unlimited.
func (s *Store) SetLimit(n int) {
	s.mu.Lock()
	s.limit = n
	s.mu.Unlock()
}

// Spawn creates a new actor and returns it.
func (s *Store) Spawn(req SpawnRequest) (*Actor, error) {
	if req.Name == "" {
		return nil, ErrEmptyName
	}

	scale := Vector3{X: 1, Y: 1, Z: 1}
	if req.Scale != nil {
		scale = *req.Scale
	}

	now := time.Now()
	actor := &Actor{
		ID:         uuid.New().String(),
		Name:       req.Name,
		Class:      req.Class,
		Location:   req.Location,
		Rotation:   req.Rotation,
		Scale:      scale,
		Properties: cloneProperties(req.Properties),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	s.mu.Lock()
	if s.limit > 0 && len(s.actors) >= s.limit {
		limit := s.limit
		s.mu.Unlock()
		return nil, fmt.Errorf("%w (max %d)", ErrSceneFull, limit)
	}
	s.actors[actor.ID] = actor
	s.order = append(s.order, actor.ID)
	s.mu.Unlock()

	return actor.clone(), nil
}

// Get returns the actor with the given ID.
func (s *Store) Get(id string) (*Actor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	actor, ok := s.actors[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrActorNotFound, id)
	}
	return actor.clone(), nil
}

// List returns all actors in spawn order.
func (s *Store) List() []*Actor {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Actor, 0, len(s.order))
	for _, id := range s.order {
		if actor, ok := s.actors[id]; ok {
			out = append(out, actor.clone())
		}
	}
	return out
}

// Count returns the number of actors.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.actors)
}

// SetTransform applies the non-nil components of t to an actor.
func (s *Store) SetTransform(id string, t Transform) (*Actor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	actor, ok := s.actors[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrActorNotFound, id)
	}
	if t.Location != nil {
		actor.Location = *t.Location
	}
	if t.Rotation != nil {
		actor.Rotation = *t.Rotation
	}
	if t.Scale != nil {
		actor.Scale = *t.Scale
	}
	actor.UpdatedAt = time.Now()
	return actor.clone(), nil
}

// Rename changes an actor's display name.
func (s *Store) Rename(id, name string) (*Actor, error) {
	if name == "" {
		return nil, ErrEmptyName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	actor, ok := s.actors[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrActorNotFound, id)
	}
	actor.Name = name
	actor.UpdatedAt = time.Now()
	return actor.clone(), nil
}

// Delete removes an actor.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.actors[id]; !ok {
		return fmt.Errorf("%w: %s", ErrActorNotFound, id)
	}
	delete(s.actors, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// SetProperty sets one named property on an actor.
func (s *Store) SetProperty(id, name string, value any) (*Actor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	actor, ok := s.actors[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrActorNotFound, id)
	}
	if actor.Properties == nil {
		actor.Properties = make(map[string]any)
	}
	actor.Properties[name] = value
	actor.UpdatedAt = time.Now()
	return actor.clone(), nil
}

// GetProperty returns one named property of an actor.
func (s *Store) GetProperty(id, name string) (any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	actor, ok := s.actors[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrActorNotFound, id)
	}
	value, ok := actor.Properties[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s on actor %s", ErrPropertyNotFound, name, id)
	}
	return value, nil
}

// Clear removes all actors and returns how many were removed.
func (s *Store) Clear() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.actors)
	s.actors = make(map[string]*Actor)
	s.order = nil
	return n
}

func (a *Actor) clone() *Actor {
	c := *a
	c.Properties = cloneProperties(a.Properties)
	return &c
}

func cloneProperties(props map[string]any) map[string]any {
	if props == nil {
		return nil
	}
	out := make(map[string]any, len(props))
	for k, v := range props {
		out[k] = v
	}
	return out
}
