package checker

import (
	"net/http"
	"strconv"
	"time"
)

// retryAfterSeconds reads a numeric Retry-After header as a duration.
// Non-numeric values (including HTTP dates) are ignored so the caller
// falls back to its own backoff.
func retryAfterSeconds(resp *http.Response) time.Duration {
	if resp == nil || resp.Header == nil {
		return 0
	}

	retry := resp.Header.Get("Retry-After")
	if retry == "" {
		return 0
	}

	seconds, err := strconv.ParseFloat(retry, 64)
	if err != nil || seconds <= 0 {
		return 0
	}

	return time.Duration(seconds * float64(time.Second))
}
