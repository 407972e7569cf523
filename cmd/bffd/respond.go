package main

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/kurax-labs/betting-bff/internal/upstream"
)

// envelope is the standard success payload shape the frontend consumes.
type envelope struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Data      any    `json:"data,omitempty"`
	Timestamp string `json:"timestamp"`
}

// errorEnvelope is the standard failure shape: a machine-readable error type
// plus a human message and the request path for correlation.
type errorEnvelope struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	Message   string `json:"message"`
	Details   any    `json:"details,omitempty"`
	Timestamp string `json:"timestamp"`
	Path      string `json:"path"`
}

var errorTypes = map[int]string{
	http.StatusBadRequest:          "BadRequestError",
	http.StatusUnauthorized:        "AuthenticationError",
	http.StatusForbidden:           "AuthorizationError",
	http.StatusNotFound:            "NotFoundError",
	http.StatusMethodNotAllowed:    "MethodNotAllowedError",
	http.StatusConflict:            "ConflictError",
	http.StatusUnprocessableEntity: "ValidationError",
	http.StatusTooManyRequests:     "RateLimitError",
	http.StatusInternalServerError: "InternalServerError",
	http.StatusBadGateway:          "BadGatewayError",
	http.StatusServiceUnavailable:  "ServiceUnavailableError",
	http.StatusGatewayTimeout:      "GatewayTimeoutError",
}

func errorType(status int) string {
	if t, ok := errorTypes[status]; ok {
		return t
	}
	return "UnknownError"
}

func writeData(w http.ResponseWriter, status int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	writeErrorDetails(w, r, status, message, nil)
}

func writeErrorDetails(w http.ResponseWriter, r *http.Request, status int, message string, details any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorEnvelope{
		Success:   false,
		Error:     errorType(status),
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Path:      r.URL.Path,
	})
}

// writeUpstreamError translates a gateway failure into the error envelope,
// preferring the original upstream error body when one was preserved.
func writeUpstreamError(w http.ResponseWriter, r *http.Request, err error) {
	ue := upstream.AsError(err)
	if len(ue.Body) > 0 {
		writeErrorDetails(w, r, ue.Status, ue.Message, json.RawMessage(ue.Body))
		return
	}
	writeError(w, r, ue.Status, ue.Message)
}

// writeValidationError surfaces request-body schema violations the way the
// frontend expects: a 422 with the per-field messages listed in details.
func writeValidationError(w http.ResponseWriter, r *http.Request, errs []string) {
	writeErrorDetails(w, r, http.StatusUnprocessableEntity, "Request validation failed", map[string]any{
		"validation_errors": errs,
		"error_count":       len(errs),
	})
}
