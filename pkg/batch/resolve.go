package batch

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/ohler55/ojg/jp"
)

// Lookup returns the result data of an already-executed step. It reports
// false for indexes that are out of range, not yet executed, or whose
// step produced no JSON data.
type Lookup func(index int) (map[string]any, bool)

// ResolveBody resolves every reference in a step body against prior step
// results. The input is never mutated; containers are rebuilt on the way
// down so stored results and the resolved body share no structure.
func ResolveBody(body map[string]any, lookup Lookup) map[string]any {
	if body == nil {
		return nil
	}
	resolved, _ := ResolveValue(body, lookup).(map[string]any)
	return resolved
}

// ResolveValue recursively resolves references in a JSON value. Only
// whole-string values are treated as references; a token embedded in a
// longer string stays literal. Anything that fails to resolve also stays
// literal, so a handler sees exactly what the client wrote.
func ResolveValue(v any, lookup Lookup) any {
	switch val := v.(type) {
	case string:
		return resolveString(val, lookup)
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = ResolveValue(item, lookup)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = ResolveValue(item, lookup)
		}
		return out
	default:
		return v
	}
}

// resolveString resolves a single candidate reference. "$N" yields the
// entire result of step N; "$N.a.b.c" walks object fields below it.
func resolveString(s string, lookup Lookup) any {
	index, path, ok := parseRef(s)
	if !ok {
		return s
	}
	data, ok := lookup(index)
	if !ok {
		return s
	}
	if path == "" {
		return cloneValue(data)
	}

	// Build the expression from raw child fragments rather than parsing,
	// so segments are always field lookups and never array indexes.
	expr := jp.R()
	for _, seg := range strings.Split(path, ".") {
		expr = expr.C(seg)
	}
	got := expr.Get(data)
	if len(got) == 0 {
		return s
	}
	return cloneValue(got[0])
}

// parseRef splits a reference token into step index and field path.
// The token grammar is "$" digits ("." path)? covering the whole string;
// anything else is not a reference.
func parseRef(s string) (index int, path string, ok bool) {
	if len(s) < 2 || s[0] != '$' {
		return 0, "", false
	}
	rest := s[1:]
	digits := rest
	if dot := strings.IndexByte(rest, '.'); dot >= 0 {
		digits = rest[:dot]
		path = rest[dot+1:]
		if path == "" {
			return 0, "", false
		}
	}
	if digits == "" {
		return 0, "", false
	}
	index, err := strconv.Atoi(digits)
	if err != nil || index < 0 {
		return 0, "", false
	}
	return index, path, true
}

// cloneValue deep-copies maps and slices through a JSON round trip so a
// handler mutating its request body cannot corrupt stored step results.
// Scalars pass through unchanged.
func cloneValue(v any) any {
	switch v.(type) {
	case map[string]any, []any:
		b, err := json.Marshal(v)
		if err != nil {
			return v
		}
		var out any
		if err := json.Unmarshal(b, &out); err != nil {
			return v
		}
		return out
	default:
		return v
	}
}
