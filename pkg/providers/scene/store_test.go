package scene

import (
	"errors"
	"testing"
)

func mustSpawn(t *testing.T, s *Store, req SpawnRequest) *Actor {
	t.Helper()
	actor, err := s.Spawn(req)
	if err != nil {
		t.Fatalf("Spawn(%+v) failed: %v", req, err)
	}
	return actor
}

func TestSpawnDefaults(t *testing.T) {
	s := NewStore()

	actor := mustSpawn(t, s, SpawnRequest{Name: "cube"})

	if actor.ID == "" {
		t.Error("spawned actor has no ID")
	}
	if actor.Scale != (Vector3{X: 1, Y: 1, Z: 1}) {
		t.Errorf("default scale = %+v, want uniform 1", actor.Scale)
	}
	if actor.Location != (Vector3{}) {
		t.Errorf("default location = %+v, want origin", actor.Location)
	}
	if actor.CreatedAt.IsZero() || actor.UpdatedAt.IsZero() {
		t.Error("timestamps not set")
	}

	other := mustSpawn(t, s, SpawnRequest{Name: "cube"})
	if other.ID == actor.ID {
		t.Error("two spawns produced the same ID")
	}
}

func TestSpawnEmptyName(t *testing.T) {
	s := NewStore()
	if _, err := s.Spawn(SpawnRequest{}); !errors.Is(err, ErrEmptyName) {
		t.Errorf("Spawn with empty name = %v, want ErrEmptyName", err)
	}
}

func TestSpawnLimit(t *testing.T) {
	s := NewStore()
	s.SetLimit(2)

	mustSpawn(t, s, SpawnRequest{Name: "a"})
	b := mustSpawn(t, s, SpawnRequest{Name: "b"})

	if _, err := s.Spawn(SpawnRequest{Name: "c"}); !errors.Is(err, ErrSceneFull) {
		t.Errorf("Spawn past limit = %v, want ErrSceneFull", err)
	}

	// Deleting frees a slot.
	if err := s.Delete(b.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	mustSpawn(t, s, SpawnRequest{Name: "c"})
}

func TestGetUnknown(t *testing.T) {
	s := NewStore()
	if _, err := s.Get("nope"); !errors.Is(err, ErrActorNotFound) {
		t.Errorf("Get(nope) = %v, want ErrActorNotFound", err)
	}
}

func TestListSpawnOrder(t *testing.T) {
	s := NewStore()
	a := mustSpawn(t, s, SpawnRequest{Name: "a"})
	b := mustSpawn(t, s, SpawnRequest{Name: "b"})
	c := mustSpawn(t, s, SpawnRequest{Name: "c"})

	actors := s.List()
	if len(actors) != 3 {
		t.Fatalf("List returned %d actors, want 3", len(actors))
	}
	for i, want := range []string{a.ID, b.ID, c.ID} {
		if actors[i].ID != want {
			t.Errorf("actors[%d].ID = %s, want %s", i, actors[i].ID, want)
		}
	}

	if err := s.Delete(b.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	actors = s.List()
	if len(actors) != 2 || actors[0].ID != a.ID || actors[1].ID != c.ID {
		t.Errorf("order after delete is wrong: %v", actors)
	}
}

func TestSetTransformPartial(t *testing.T) {
	s := NewStore()
	actor := mustSpawn(t, s, SpawnRequest{Name: "cube", Rotation: Vector3{Y: 90}})

	moved, err := s.SetTransform(actor.ID, Transform{
		Location: &Vector3{X: 10, Y: 20, Z: 30},
	})
	if err != nil {
		t.Fatalf("SetTransform failed: %v", err)
	}
	if moved.Location != (Vector3{X: 10, Y: 20, Z: 30}) {
		t.Errorf("location = %+v", moved.Location)
	}
	if moved.Rotation != (Vector3{Y: 90}) {
		t.Errorf("rotation changed to %+v on a location-only update", moved.Rotation)
	}
	if moved.Scale != (Vector3{X: 1, Y: 1, Z: 1}) {
		t.Errorf("scale changed to %+v on a location-only update", moved.Scale)
	}

	if _, err := s.SetTransform("nope", Transform{Location: &Vector3{}}); !errors.Is(err, ErrActorNotFound) {
		t.Errorf("SetTransform on unknown actor = %v, want ErrActorNotFound", err)
	}
}

func TestRename(t *testing.T) {
	s := NewStore()
	actor := mustSpawn(t, s, SpawnRequest{Name: "old"})

	renamed, err := s.Rename(actor.ID, "new")
	if err != nil {
		t.Fatalf("Rename failed: %v", err)
	}
	if renamed.Name != "new" {
		t.Errorf("Name = %s", renamed.Name)
	}

	if _, err := s.Rename(actor.ID, ""); !errors.Is(err, ErrEmptyName) {
		t.Errorf("Rename to empty = %v, want ErrEmptyName", err)
	}
	if _, err := s.Rename("nope", "x"); !errors.Is(err, ErrActorNotFound) {
		t.Errorf("Rename unknown = %v, want ErrActorNotFound", err)
	}
}

func TestDeleteUnknown(t *testing.T) {
	s := NewStore()
	if err := s.Delete("nope"); !errors.Is(err, ErrActorNotFound) {
		t.Errorf("Delete(nope) = %v, want ErrActorNotFound", err)
	}
}

func TestProperties(t *testing.T) {
	s := NewStore()
	actor := mustSpawn(t, s, SpawnRequest{Name: "cube"})

	if _, err := s.SetProperty(actor.ID, "health", float64(80)); err != nil {
		t.Fatalf("SetProperty failed: %v", err)
	}

	value, err := s.GetProperty(actor.ID, "health")
	if err != nil {
		t.Fatalf("GetProperty failed: %v", err)
	}
	if value != float64(80) {
		t.Errorf("value = %v, want 80", value)
	}

	if _, err := s.GetProperty(actor.ID, "mana"); !errors.Is(err, ErrPropertyNotFound) {
		t.Errorf("GetProperty(mana) = %v, want ErrPropertyNotFound", err)
	}
	if _, err := s.GetProperty("nope", "health"); !errors.Is(err, ErrActorNotFound) {
		t.Errorf("GetProperty on unknown actor = %v, want ErrActorNotFound", err)
	}
	if _, err := s.SetProperty("nope", "health", 1); !errors.Is(err, ErrActorNotFound) {
		t.Errorf("SetProperty on unknown actor = %v, want ErrActorNotFound", err)
	}
}

func TestClear(t *testing.T) {
	s := NewStore()
	mustSpawn(t, s, SpawnRequest{Name: "a"})
	mustSpawn(t, s, SpawnRequest{Name: "b"})

	if n := s.Clear(); n != 2 {
		t.Errorf("Clear returned %d, want 2", n)
	}
	if s.Count() != 0 {
		t.Errorf("Count after Clear = %d", s.Count())
	}
	if n := s.Clear(); n != 0 {
		t.Errorf("second Clear returned %d, want 0", n)
	}
}

func TestReturnedActorsAreCopies(t *testing.T) {
	s := NewStore()
	actor := mustSpawn(t, s, SpawnRequest{Name: "cube", Properties: map[string]any{"tag": "red"}})

	actor.Name = "mutated"
	actor.Properties["tag"] = "blue"

	stored, err := s.Get(actor.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if stored.Name != "cube" {
		t.Error("mutating a returned actor changed the stored name")
	}
	if stored.Properties["tag"] != "red" {
		t.Error("mutating a returned properties map changed the stored properties")
	}
}

func TestQuery(t *testing.T) {
	s := NewStore()
	mustSpawn(t, s, SpawnRequest{Name: "cube", Class: "StaticMesh", Location: Vector3{X: 10}})
	mustSpawn(t, s, SpawnRequest{Name: "sphere", Class: "StaticMesh", Location: Vector3{X: 2}})
	mustSpawn(t, s, SpawnRequest{Name: "light", Class: "PointLight"})

	tests := []struct {
		name   string
		filter string
		limit  int
		want   []string
	}{
		{"by name", `name == "cube"`, 0, []string{"cube"}},
		{"by class", `class == "StaticMesh"`, 0, []string{"cube", "sphere"}},
		{"by location", `location.x > 5`, 0, []string{"cube"}},
		{"compound", `class == "StaticMesh" && location.x < 5`, 0, []string{"sphere"}},
		{"limit", `class != ""`, 2, []string{"cube", "sphere"}},
		{"no match", `name == "camera"`, 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actors, err := s.Query(tt.filter, tt.limit)
			if err != nil {
				t.Fatalf("Query(%q) failed: %v", tt.filter, err)
			}
			if len(actors) != len(tt.want) {
				t.Fatalf("Query(%q) returned %d actors, want %d", tt.filter, len(actors), len(tt.want))
			}
			for i, name := range tt.want {
				if actors[i].Name != name {
					t.Errorf("actors[%d].Name = %s, want %s", i, actors[i].Name, name)
				}
			}
		})
	}
}

func TestQueryProperties(t *testing.T) {
	s := NewStore()
	strong := mustSpawn(t, s, SpawnRequest{Name: "strong", Properties: map[string]any{"health": float64(90)}})
	mustSpawn(t, s, SpawnRequest{Name: "weak", Properties: map[string]any{"health": float64(10)}})
	// No properties at all; evaluation errors exclude it silently.
	mustSpawn(t, s, SpawnRequest{Name: "bare"})

	actors, err := s.Query(`properties.health > 50`, 0)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(actors) != 1 || actors[0].ID != strong.ID {
		t.Errorf("Query matched %v, want only the strong actor", actors)
	}
}

func TestQueryBadFilter(t *testing.T) {
	s := NewStore()
	mustSpawn(t, s, SpawnRequest{Name: "cube"})

	if _, err := s.Query(`name ==`, 0); err == nil {
		t.Error("Query with a syntax error should fail")
	}
	if _, err := s.Query(`name`, 0); err == nil {
		t.Error("Query with a non-boolean filter should fail")
	}
}
