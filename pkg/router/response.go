package router

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Response is a handler's outcome before transport serialization.
// JSON takes precedence over Raw when both are set; when neither is set
// the wire body is the empty object, never an empty payload.
type Response struct {
	// Status is the intended HTTP status code. Zero means 200.
	Status int

	// JSON is the structured response body.
	JSON map[string]any

	// Raw is a plain-text response body, used only when JSON is nil.
	Raw string
}

// Failed reports whether the response signals failure. Status is the
// authoritative signal; the envelope's success flag mirrors it.
func (r Response) Failed() bool {
	return r.Status >= http.StatusBadRequest
}

// OK builds a 200 success envelope carrying the given domain fields at
// the top level.
func OK(fields map[string]any) Response {
	body := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		body[k] = v
	}
	body["success"] = true
	return Response{Status: http.StatusOK, JSON: body}
}

// Created builds a 201 success envelope, for operations that bring a
// new object into existence.
func Created(fields map[string]any) Response {
	resp := OK(fields)
	resp.Status = http.StatusCreated
	return resp
}

// Fail builds a failure envelope with a stable error code and a
// human-readable message. Clients branch on the code.
func Fail(status int, code, message string) Response {
	return Response{
		Status: status,
		JSON: map[string]any{
			"success": false,
			"error":   code,
			"message": message,
		},
	}
}

// Failf is Fail with a formatted message.
func Failf(status int, code, format string, args ...any) Response {
	return Fail(status, code, fmt.Sprintf(format, args...))
}

// WriteHTTP serializes a Response onto the transport. The response's
// status integer is always honored, and the content type is always JSON.
func WriteHTTP(w http.ResponseWriter, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	status := resp.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	switch {
	case resp.JSON != nil:
		_ = json.NewEncoder(w).Encode(resp.JSON)
	case resp.Raw != "":
		_, _ = io.WriteString(w, resp.Raw)
	default:
		_, _ = io.WriteString(w, "{}")
	}
}
