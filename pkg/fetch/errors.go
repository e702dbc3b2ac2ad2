package fetch

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrUnauthorized is wrapped by a StatusError carrying a 401.
var ErrUnauthorized = errors.New("unauthorized")

// StatusError is returned when the dashboard answers with a non-2xx status.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	text := http.StatusText(e.StatusCode)
	if text == "" {
		text = "unexpected status"
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.URL, e.StatusCode, text)
}

func (e *StatusError) Unwrap() error {
	if e.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return nil
}

// IsUnauthorized reports whether err carries a 401 from the dashboard.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}
