package router

import (
	"fmt"
	"strings"
)

// Verb is one of the four HTTP methods the bridge routes on.
type Verb string

// Supported verbs.
const (
	VerbGet    Verb = "GET"
	VerbPost   Verb = "POST"
	VerbPut    Verb = "PUT"
	VerbDelete Verb = "DELETE"
)

// ErrUnsupportedMethod is returned for methods outside the supported set.
// Unrecognized methods are rejected with a 400-class envelope rather than
// being silently routed as GET.
var ErrUnsupportedMethod = fmt.Errorf("unsupported method")

// ParseVerb maps a transport method string to a Verb, case-insensitively.
func ParseVerb(method string) (Verb, error) {
	switch strings.ToUpper(method) {
	case "GET":
		return VerbGet, nil
	case "POST":
		return VerbPost, nil
	case "PUT":
		return VerbPut, nil
	case "DELETE":
		return VerbDelete, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedMethod, method)
	}
}

// Valid reports whether v is one of the supported verbs.
func (v Verb) Valid() bool {
	switch v {
	case VerbGet, VerbPost, VerbPut, VerbDelete:
		return true
	default:
		return false
	}
}
