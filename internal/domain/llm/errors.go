package llm

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// StatusError is a non-2xx reply from a completion endpoint.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("llm api error: %d %s", e.StatusCode, strings.TrimSpace(e.Body))
}

// IsTransient reports whether a failed completion call is worth retrying:
// rate limiting and server-side failures are, client errors are not.
func IsTransient(err error) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode == http.StatusTooManyRequests || statusErr.StatusCode >= http.StatusInternalServerError
	}
	return false
}

// RejectsTools reports whether an error body says the model cannot take tool
// definitions. Ollama and llm-api phrase this differently.
func RejectsTools(statusCode int, body string) bool {
	if statusCode < http.StatusBadRequest || statusCode >= http.StatusInternalServerError {
		return false
	}
	message := strings.ToLower(body)
	return strings.Contains(message, "does not support tools") ||
		strings.Contains(message, "tools unsupported") ||
		strings.Contains(message, "tool use is not supported")
}
