package upstream

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Error is the failure condition surfaced by every gateway call. Status is
// the HTTP status the route layer should answer with; Body carries the
// original upstream error payload when one was available.
type Error struct {
	Status  int
	Message string
	Body    json.RawMessage
}

func (e *Error) Error() string {
	return fmt.Sprintf("upstream: %d %s", e.Status, e.Message)
}

// AsError extracts an *Error from err, or wraps err as a generic 500.
func AsError(err error) *Error {
	var ue *Error
	if errors.As(err, &ue) {
		return ue
	}
	return &Error{Status: http.StatusInternalServerError, Message: "internal server error"}
}

// IsUnauthorized reports whether err is an upstream 401. Dashboard
// aggregation uses this to abort the whole response instead of degrading.
func IsUnauthorized(err error) bool {
	var ue *Error
	return errors.As(err, &ue) && ue.Status == http.StatusUnauthorized
}

// IsTimeout reports whether err is a gateway timeout (504).
func IsTimeout(err error) bool {
	var ue *Error
	return errors.As(err, &ue) && ue.Status == http.StatusGatewayTimeout
}

// IsUnavailable reports whether err is a connection failure (503).
func IsUnavailable(err error) bool {
	var ue *Error
	return errors.As(err, &ue) && ue.Status == http.StatusServiceUnavailable
}
