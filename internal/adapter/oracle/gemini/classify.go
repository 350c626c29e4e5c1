package gemini

import (
	"errors"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"
)

// classify reports whether a failed call may be retried and whether the
// failure was caused by rate limiting. Only rate limits and server overload
// are retried.
func classify(err error) (retryable bool, quota bool) {
	if err == nil {
		return false, false
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case http.StatusTooManyRequests:
			return true, true
		case http.StatusServiceUnavailable:
			return true, false
		}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "429"),
		strings.Contains(msg, "resource_exhausted"),
		strings.Contains(msg, "resourceexhausted"),
		strings.Contains(msg, "quota"):
		return true, true
	case strings.Contains(msg, "503"),
		strings.Contains(msg, "code = unavailable"):
		return true, false
	}
	return false, false
}
