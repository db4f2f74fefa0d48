// Package types provides the shared wire types used across the router,
// batch executor, and CLI client. Keeping them in one place ensures the
// server and client never drift apart on the API contract.
package types

// ErrorResponse is the failure envelope returned by every route.
// Error is a stable machine-readable code; clients branch on it, not on
// the message text.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// StatusResponse is the liveness route payload.
type StatusResponse struct {
	Success   bool     `json:"success"`
	Status    string   `json:"status"`
	Name      string   `json:"name"`
	Version   string   `json:"version,omitempty"`
	Port      int      `json:"port"`
	Uptime    int64    `json:"uptime"`
	Providers []string `json:"providers"`
}

// ProviderInfo describes one registered operation provider.
type ProviderInfo struct {
	Name        string `json:"name"`
	BasePath    string `json:"base_path"`
	Description string `json:"description"`
	Routes      int    `json:"routes"`
}

// ProvidersResponse is the provider enumeration payload.
type ProvidersResponse struct {
	Success   bool           `json:"success"`
	Providers []ProviderInfo `json:"providers"`
	Count     int            `json:"count"`
}

// BatchStep is one sub-request inside a batch call.
type BatchStep struct {
	Method string         `json:"method"`
	Path   string         `json:"path"`
	Body   map[string]any `json:"body,omitempty"`
}

// BatchOptions controls batch execution. StopOnError is a pointer so an
// absent field keeps its default (true) distinct from an explicit false.
type BatchOptions struct {
	StopOnError *bool `json:"stop_on_error,omitempty"`
}

// BatchRequest is the batch route request body.
type BatchRequest struct {
	Requests []BatchStep   `json:"requests"`
	Options  *BatchOptions `json:"options,omitempty"`
}

// BatchStepResult reports the outcome of one attempted step.
// Data carries the step's response body, error envelope included, so later
// steps and clients see exactly what the handler produced.
type BatchStepResult struct {
	Index   int            `json:"index"`
	Success bool           `json:"success"`
	Data    map[string]any `json:"data"`
}

// BatchResponse is the batch route response body. Success is true iff
// every attempted step succeeded; Completed counts succeeded steps and
// Failed counts failed ones, so Completed+Failed == len(Results).
type BatchResponse struct {
	Success   bool              `json:"success"`
	Results   []BatchStepResult `json:"results"`
	Completed int               `json:"completed"`
	Failed    int               `json:"failed"`
}

// StopOnError reports the effective stop-on-error policy for a request,
// defaulting to true when unset.
func (b *BatchRequest) StopOnError() bool {
	if b.Options == nil || b.Options.StopOnError == nil {
		return true
	}
	return *b.Options.StopOnError
}
