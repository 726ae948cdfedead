package leads

import (
	"errors"
	"fmt"
	"strings"
)

// ErrLeadNotFound is returned when an operation references an unknown id.
var ErrLeadNotFound = errors.New("lead not found")

// ValidationError reports required fields missing on create, or an
// otherwise malformed request. The operation is never attempted.
type ValidationError struct {
	Missing []string
	Reason  string
}

func (e *ValidationError) Error() string {
	if len(e.Missing) > 0 {
		return "missing required fields: " + strings.Join(e.Missing, ", ")
	}
	return e.Reason
}

// ProviderError is a non-success response from the forms provider. The
// message and status code are surfaced verbatim so the operator can
// decide whether to retry manually.
type ProviderError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("forms provider: %s: status %d: %s", e.Op, e.StatusCode, e.Message)
}
