package request

import (
	"io"
	"net/http"
	"sync/atomic"
	"time"
)

// Const vars used by the requester
const (
	// MaxRetryAttempts is the default number of retries for a request
	MaxRetryAttempts = 3
	// DefaultMaxRequestJobs is the default ceiling of concurrent jobs
	DefaultMaxRequestJobs int32 = 50

	proxyTLSTimeout = 15 * time.Second
	userAgent       = "User-Agent"
	drainBodyLimit  = 100000
)

// Requester struct for the request client
type Requester struct {
	name        string
	httpClient  *http.Client
	userAgent   string
	maxRetries  int
	maxJobs     int32
	jobs        atomic.Int32
	retryPolicy RetryPolicy
	backoff     Backoff
}

// Item is a temp item for requests
type Item struct {
	Method  string
	Path    string
	Headers map[string]string
	Body    io.Reader
	// Result is populated through json.Unmarshal on a successful response
	Result         any
	Verbose        bool
	HTTPDebugging  bool
	HeaderResponse *http.Header
}

// Generate defines a closure for functionality outside the requester to be
// used on every attempt of a request. Authenticated requests must sign inside
// this closure so that every retry carries a fresh nonce.
type Generate func() (*Item, error)

// RequesterOption is a function option that can be applied to configure a
// Requester when creating it
type RequesterOption func(*Requester)

// RetryPolicy determines whether the request should be retried, implemented
// with a default strategy
type RetryPolicy func(resp *http.Response, err error) (bool, error)

// Backoff determines how long to wait between request attempts
type Backoff func(n int) time.Duration
