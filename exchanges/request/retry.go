package request

import (
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"
)

const (
	headerRetryAfter = "Retry-After"
	backoffBase      = 100 * time.Millisecond
	backoffMax       = 2 * time.Second
)

// DefaultRetryPolicy determines whether the request should be retried. Only
// network timeouts, rate limit responses and responses carrying Retry-After
// are retried.
func DefaultRetryPolicy(resp *http.Response, err error) (bool, error) {
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return true, nil
		}
		return false, err
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return true, nil
	}

	if resp.Header.Get(headerRetryAfter) != "" {
		return true, nil
	}

	return false, nil
}

// RetryAfter parses the Retry-After header in the response to determine the
// minimum duration needed to wait before retrying
func RetryAfter(resp *http.Response, now time.Time) time.Duration {
	if resp == nil {
		return 0
	}

	after := resp.Header.Get(headerRetryAfter)
	if after == "" {
		return 0
	}

	if sec, err := strconv.ParseInt(after, 10, 32); err == nil {
		return time.Duration(sec) * time.Second
	}

	if when, err := time.Parse(time.RFC1123, after); err == nil {
		return when.Sub(now)
	}

	return 0
}

// DefaultBackoff returns the linear backoff used when no option is supplied
func DefaultBackoff() Backoff {
	return LinearBackoff(backoffBase, backoffMax)
}

// LinearBackoff returns a Backoff of linear increments capped at maxDelay
func LinearBackoff(base, maxDelay time.Duration) Backoff {
	return func(n int) time.Duration {
		if d := base * time.Duration(n); d < maxDelay {
			return d
		}
		return maxDelay
	}
}
