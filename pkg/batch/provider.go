package batch

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	api "github.com/getremoted/remoted/pkg/api/types"
	"github.com/getremoted/remoted/pkg/logging"
	"github.com/getremoted/remoted/pkg/metrics"
	"github.com/getremoted/remoted/pkg/router"
)

// Provider exposes batch execution as a route on the router it wraps.
// The batch call itself fails only when the envelope is malformed; step
// failures are reported inside the result payload with a 200.
type Provider struct {
	exec    *Executor
	log     *slog.Logger
	metrics *metrics.Metrics
}

// Option configures a Provider.
type Option func(*Provider)

// WithLogger sets the operational logger.
func WithLogger(log *slog.Logger) Option {
	return func(p *Provider) {
		if log != nil {
			p.log = log
		}
	}
}

// WithMetrics sets the metrics collectors.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Provider) {
		p.metrics = m
	}
}

// NewProvider creates the batch provider over the given router. Steps
// dispatch through the same table as direct requests, so a batch sees
// every route any provider has bound, including the batch route itself.
func NewProvider(rt *router.Router, opts ...Option) *Provider {
	p := &Provider{log: logging.Nop()}
	for _, opt := range opts {
		opt(p)
	}

	exec := NewExecutor(rt.Dispatch, rt.Normalizer())
	exec.SetLogger(p.log)
	exec.SetMetrics(p.metrics)
	p.exec = exec
	return p
}

func (p *Provider) Info() router.Info {
	return router.Info{
		Name:        "batch",
		BasePath:    "/batch",
		Description: "Sequential multi-request execution with step references",
	}
}

func (p *Provider) Routes() []router.Route {
	return []router.Route{
		{Verb: router.VerbPost, Path: "/batch", Handler: p.handleBatch},
	}
}

func (p *Provider) Shutdown(context.Context) error {
	return nil
}

// handleBatch validates the envelope and runs the steps.
func (p *Provider) handleBatch(req router.Request) router.Response {
	if strings.TrimSpace(req.RawBody) == "" {
		return router.Fail(http.StatusBadRequest, router.ErrCodeValidation, "request body is required")
	}

	var doc any
	if err := json.Unmarshal([]byte(req.RawBody), &doc); err != nil {
		return router.Fail(http.StatusBadRequest, router.ErrCodeValidation, "request body must be valid JSON")
	}
	if err := ValidateEnvelope(doc); err != nil {
		return router.Fail(http.StatusBadRequest, router.ErrCodeValidation, err.Error())
	}

	var batchReq api.BatchRequest
	if err := json.Unmarshal([]byte(req.RawBody), &batchReq); err != nil {
		return router.Fail(http.StatusBadRequest, router.ErrCodeValidation, err.Error())
	}

	res := p.exec.Run(&batchReq)
	p.log.Info("batch executed",
		"steps", len(batchReq.Requests),
		"completed", res.Completed,
		"failed", res.Failed)

	return router.Response{
		Status: http.StatusOK,
		JSON: map[string]any{
			"success":   res.Success,
			"results":   res.Results,
			"completed": res.Completed,
			"failed":    res.Failed,
		},
	}
}
