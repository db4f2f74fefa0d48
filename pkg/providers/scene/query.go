package scene

import (
	"fmt"

	"github.com/expr-lang/expr"
)

// Query returns the actors matching a filter expression, in spawn
// order, up to limit (0 means no cap). The expression is evaluated once
// per actor against that actor's fields; it must produce a boolean.
// Actors whose evaluation errors (a missing property, a type mismatch)
// are excluded rather than failing the query.
func (s *Store) Query(filter string, limit int) ([]*Actor, error) {
	program, err := expr.Compile(filter)
	if err != nil {
		return nil, fmt.Errorf("invalid filter expression: %w", err)
	}

	matched := make([]*Actor, 0)
	for _, actor := range s.List() {
		result, err := expr.Run(program, actorEnv(actor))
		if err != nil {
			continue
		}
		keep, ok := result.(bool)
		if !ok {
			return nil, fmt.Errorf("filter expression returned %T, expected bool", result)
		}
		if keep {
			matched = append(matched, actor)
			if limit > 0 && len(matched) >= limit {
				break
			}
		}
	}
	return matched, nil
}

// actorEnv flattens an actor into the expression environment. Vectors
// become x/y/z maps so filters can write location.x > 10.
func actorEnv(a *Actor) map[string]any {
	return map[string]any{
		"id":         a.ID,
		"name":       a.Name,
		"class":      a.Class,
		"location":   vectorEnv(a.Location),
		"rotation":   vectorEnv(a.Rotation),
		"scale":      vectorEnv(a.Scale),
		"properties": a.Properties,
	}
}

func vectorEnv(v Vector3) map[string]any {
	return map[string]any{"x": v.X, "y": v.Y, "z": v.Z}
}
