package batch

import (
	"reflect"
	"testing"
)

// lookupFixture builds a Lookup over a fixed set of step results.
func lookupFixture(results ...map[string]any) Lookup {
	return func(i int) (map[string]any, bool) {
		if i < 0 || i >= len(results) || results[i] == nil {
			return nil, false
		}
		return results[i], true
	}
}

func spawnResult() map[string]any {
	return map[string]any{
		"success": true,
		"node": map[string]any{
			"id":   "abc-123",
			"name": "cube",
		},
	}
}

func TestParseRef(t *testing.T) {
	tests := []struct {
		in    string
		index int
		path  string
		ok    bool
	}{
		{"$0", 0, "", true},
		{"$12", 12, "", true},
		{"$0.node.id", 0, "node.id", true},
		{"$3.a", 3, "a", true},
		{"", 0, "", false},
		{"$", 0, "", false},
		{"$.", 0, "", false},
		{"$.node", 0, "", false},
		{"$0.", 0, "", false},
		{"$-1", 0, "", false},
		{"$0x", 0, "", false},
		{"$1x.y", 0, "", false},
		{"0.node", 0, "", false},
		{"hello", 0, "", false},
	}

	for _, tt := range tests {
		index, path, ok := parseRef(tt.in)
		if ok != tt.ok || index != tt.index || path != tt.path {
			t.Errorf("parseRef(%q) = (%d, %q, %v), want (%d, %q, %v)",
				tt.in, index, path, ok, tt.index, tt.path, tt.ok)
		}
	}
}

func TestResolveWholeResult(t *testing.T) {
	lookup := lookupFixture(spawnResult())

	got := ResolveValue("$0", lookup)
	if !reflect.DeepEqual(got, spawnResult()) {
		t.Errorf("ResolveValue($0) = %v, want full step result", got)
	}
}

func TestResolveWholeResultIsACopy(t *testing.T) {
	stored := spawnResult()
	lookup := lookupFixture(stored)

	got := ResolveValue("$0", lookup).(map[string]any)
	got["node"].(map[string]any)["id"] = "mutated"

	if stored["node"].(map[string]any)["id"] != "abc-123" {
		t.Error("mutating a resolved body leaked into the stored result")
	}
}

func TestResolveFieldPath(t *testing.T) {
	lookup := lookupFixture(spawnResult())

	got := ResolveValue("$0.node.id", lookup)
	if got != "abc-123" {
		t.Errorf("ResolveValue($0.node.id) = %v, want abc-123", got)
	}
}

func TestResolveSubtree(t *testing.T) {
	lookup := lookupFixture(spawnResult())

	got := ResolveValue("$0.node", lookup)
	want := map[string]any{"id": "abc-123", "name": "cube"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ResolveValue($0.node) = %v, want %v", got, want)
	}
}

func TestResolveMissKeepsLiteral(t *testing.T) {
	lookup := lookupFixture(spawnResult())

	tests := []string{
		"$0.missing.field",
		"$0.node.id.extra",
		"$1",
		"$1.node.id",
		"$99.x",
	}
	for _, in := range tests {
		if got := ResolveValue(in, lookup); got != in {
			t.Errorf("ResolveValue(%q) = %v, want the literal back", in, got)
		}
	}
}

func TestResolveEmbeddedTokenStaysLiteral(t *testing.T) {
	lookup := lookupFixture(spawnResult())

	in := "see $0.node.id for details"
	if got := ResolveValue(in, lookup); got != in {
		t.Errorf("ResolveValue(%q) = %v, want the literal back", in, got)
	}
}

func TestResolveNoArrayIndexing(t *testing.T) {
	lookup := lookupFixture(map[string]any{
		"items": []any{"a", "b"},
	})

	// Dot paths walk object fields only; a numeric segment is a field
	// name, never an array index.
	in := "$0.items.0"
	if got := ResolveValue(in, lookup); got != in {
		t.Errorf("ResolveValue(%q) = %v, want the literal back", in, got)
	}
}

func TestResolveNestedContainers(t *testing.T) {
	lookup := lookupFixture(spawnResult())

	body := map[string]any{
		"target": "$0.node.id",
		"count":  float64(2),
		"tags":   []any{"$0.node.name", "fixed", float64(7)},
		"nested": map[string]any{"parent": "$0.node.id", "keep": "$9.nope"},
	}

	got := ResolveBody(body, lookup)
	want := map[string]any{
		"target": "abc-123",
		"count":  float64(2),
		"tags":   []any{"cube", "fixed", float64(7)},
		"nested": map[string]any{"parent": "abc-123", "keep": "$9.nope"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ResolveBody() = %v, want %v", got, want)
	}
}

func TestResolveInputNotMutated(t *testing.T) {
	lookup := lookupFixture(spawnResult())

	body := map[string]any{"target": "$0.node.id"}
	ResolveBody(body, lookup)

	if body["target"] != "$0.node.id" {
		t.Error("ResolveBody mutated its input")
	}
}

func TestResolveNilBody(t *testing.T) {
	if got := ResolveBody(nil, lookupFixture()); got != nil {
		t.Errorf("ResolveBody(nil) = %v, want nil", got)
	}
}

func TestResolveNonStringScalars(t *testing.T) {
	lookup := lookupFixture(spawnResult())

	for _, v := range []any{float64(42), true, nil} {
		if got := ResolveValue(v, lookup); !reflect.DeepEqual(got, v) {
			t.Errorf("ResolveValue(%v) = %v, want unchanged", v, got)
		}
	}
}
