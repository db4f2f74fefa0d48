package router

import (
	"encoding/json"
	"net/url"
	"strings"
)

// DefaultAPIPrefix is the path prefix stripped from inbound requests.
const DefaultAPIPrefix = "/api/v1"

// Request is the handler-agnostic view of one inbound call. It is built
// once by the Normalizer and read-only afterward.
type Request struct {
	// Verb is the validated HTTP method.
	Verb Verb

	// Path is the normalized route path: prefix stripped, always starting
	// with "/", never empty.
	Path string

	// Query holds the query parameters as plain strings, last value wins
	// on duplicate keys. No type coercion is applied.
	Query map[string]string

	// RawBody is the request body decoded as text, empty if there was none.
	RawBody string

	// JSON is the parsed body, present only when RawBody is a JSON object.
	// A body that fails to parse is not an error here; handlers that need
	// a JSON body check for nil and complain themselves.
	JSON map[string]any
}

// HasJSON reports whether the body parsed as a JSON object.
func (r *Request) HasJSON() bool {
	return r.JSON != nil
}

// QueryValue returns the named query parameter or "" when absent.
func (r *Request) QueryValue(name string) string {
	return r.Query[name]
}

// Normalizer converts transport-level requests into the canonical Request
// form: prefix stripping, verb validation, query flattening, and a
// best-effort JSON body parse.
type Normalizer struct {
	prefix string
}

// NewNormalizer creates a Normalizer that strips the given API prefix.
// An empty prefix disables stripping.
func NewNormalizer(prefix string) *Normalizer {
	return &Normalizer{prefix: prefix}
}

// Normalize builds a Request from the transport pieces. The only error
// condition is an unsupported method; everything else is tolerated.
func (n *Normalizer) Normalize(method, rawPath string, query url.Values, body []byte) (Request, error) {
	verb, err := ParseVerb(method)
	if err != nil {
		return Request{}, err
	}

	req := Request{
		Verb:  verb,
		Path:  n.NormalizePath(rawPath),
		Query: flattenQuery(query),
	}

	if len(body) > 0 {
		req.RawBody = string(body)
		var obj map[string]any
		if err := json.Unmarshal(body, &obj); err == nil && obj != nil {
			req.JSON = obj
		}
	}

	return req, nil
}

// NormalizePath strips the API prefix when present and guarantees a
// leading "/". An empty result becomes "/".
func (n *Normalizer) NormalizePath(rawPath string) string {
	p := rawPath
	if n.prefix != "" {
		if p == n.prefix {
			p = "/"
		} else if strings.HasPrefix(p, n.prefix+"/") {
			p = strings.TrimPrefix(p, n.prefix)
		}
	}
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

// flattenQuery reduces multi-valued query parameters to single strings,
// keeping the last occurrence of each key.
func flattenQuery(query url.Values) map[string]string {
	if len(query) == 0 {
		return map[string]string{}
	}
	flat := make(map[string]string, len(query))
	for key, values := range query {
		if len(values) == 0 {
			flat[key] = ""
			continue
		}
		flat[key] = values[len(values)-1]
	}
	return flat
}
