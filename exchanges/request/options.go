package request

// WithBackoff configures the backoff strategy for a Requester
func WithBackoff(b Backoff) RequesterOption {
	return func(r *Requester) {
		r.backoff = b
	}
}

// WithRetryPolicy configures the retry policy for a Requester
func WithRetryPolicy(p RetryPolicy) RequesterOption {
	return func(r *Requester) {
		r.retryPolicy = p
	}
}

// WithMaxRetries configures the number of retries after the first attempt
func WithMaxRetries(n int) RequesterOption {
	return func(r *Requester) {
		r.maxRetries = n
	}
}

// WithMaxJobs configures the ceiling of concurrent requests
func WithMaxJobs(n int32) RequesterOption {
	return func(r *Requester) {
		r.maxJobs = n
	}
}

// WithUserAgent configures the User-Agent header sent when an Item does not
// supply its own
func WithUserAgent(ua string) RequesterOption {
	return func(r *Requester) {
		r.userAgent = ua
	}
}
