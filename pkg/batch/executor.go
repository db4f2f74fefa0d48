package batch

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"

	api "github.com/getremoted/remoted/pkg/api/types"
	"github.com/getremoted/remoted/pkg/logging"
	"github.com/getremoted/remoted/pkg/metrics"
	"github.com/getremoted/remoted/pkg/router"
)

// DispatchFunc dispatches one normalized request and returns the
// handler's response. It is the executor's only view of the router.
type DispatchFunc func(router.Request) router.Response

// Executor runs the steps of a batch request sequentially on the calling
// goroutine. Each step may reference the results of earlier steps; a
// step is never able to see its own result or a later one.
type Executor struct {
	dispatch DispatchFunc
	norm     *router.Normalizer
	log      *slog.Logger
	metrics  *metrics.Metrics
}

// NewExecutor creates an executor that dispatches steps through the
// given function. A nil normalizer falls back to the default API prefix.
func NewExecutor(dispatch DispatchFunc, norm *router.Normalizer) *Executor {
	if norm == nil {
		norm = router.NewNormalizer(router.DefaultAPIPrefix)
	}
	return &Executor{
		dispatch: dispatch,
		norm:     norm,
		log:      logging.Nop(),
	}
}

// SetLogger configures the operational logger.
func (e *Executor) SetLogger(log *slog.Logger) {
	if log != nil {
		e.log = log
	}
}

// SetMetrics configures optional metrics collectors.
func (e *Executor) SetMetrics(m *metrics.Metrics) {
	e.metrics = m
}

// Run executes the batch. Steps run in order; with stop-on-error (the
// default) the first failed step ends the run and later steps are never
// dispatched, so they produce no result entries at all.
func (e *Executor) Run(req *api.BatchRequest) *api.BatchResponse {
	e.metrics.BatchStarted()
	stopOnError := req.StopOnError()

	results := make([]api.BatchStepResult, 0, len(req.Requests))
	completed, failed := 0, 0
	for i, step := range req.Requests {
		res := e.runStep(i, step, results)
		results = append(results, res)
		if res.Success {
			completed++
		} else {
			failed++
		}
		e.metrics.BatchStep(res.Success)

		if !res.Success && stopOnError {
			e.log.Debug("batch stopped on failed step", "index", i, "method", step.Method, "path", step.Path)
			break
		}
	}

	return &api.BatchResponse{
		Success:   failed == 0,
		Results:   results,
		Completed: completed,
		Failed:    failed,
	}
}

// runStep resolves, normalizes, and dispatches a single step. Failures
// at any stage come back as a failed result carrying an error envelope,
// never as an error on the batch call itself.
func (e *Executor) runStep(index int, step api.BatchStep, prior []api.BatchStepResult) api.BatchStepResult {
	lookup := func(i int) (map[string]any, bool) {
		if i < 0 || i >= len(prior) || prior[i].Data == nil {
			return nil, false
		}
		return prior[i].Data, true
	}

	body := ResolveBody(step.Body, lookup)
	var bodyBytes []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return stepResult(index, router.Failf(http.StatusBadRequest, router.ErrCodeValidation,
				"step %d body cannot be encoded", index))
		}
		bodyBytes = b
	}

	target, err := url.Parse(step.Path)
	if err != nil {
		return stepResult(index, router.Failf(http.StatusBadRequest, router.ErrCodeValidation,
			"step %d path is not valid: %s", index, step.Path))
	}

	req, err := e.norm.Normalize(step.Method, target.Path, target.Query(), bodyBytes)
	if err != nil {
		return stepResult(index, router.Fail(http.StatusBadRequest, router.ErrCodeUnsupportedMethod, err.Error()))
	}

	resp := e.dispatch(req)
	e.log.Debug("batch step dispatched",
		"index", index,
		"verb", req.Verb,
		"path", req.Path,
		"status", resp.Status)
	return stepResult(index, resp)
}

// stepResult converts a handler response into a result entry. The
// response body is stored as-is, error envelope included, so references
// and clients see exactly what the handler produced. Raw non-JSON
// responses store no data and can never satisfy a reference.
func stepResult(index int, resp router.Response) api.BatchStepResult {
	return api.BatchStepResult{
		Index:   index,
		Success: !resp.Failed(),
		Data:    resp.JSON,
	}
}
