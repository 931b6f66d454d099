package request

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"net/url"
	"time"

	"github.com/thrasher-corp/bfxclient/log"
)

// Public errors
var (
	ErrRequestSystemIsNil = errors.New("request system is nil")
)

var (
	errMaxRequestJobs         = errors.New("max request jobs reached")
	errRequestFunctionIsNil   = errors.New("request function is nil")
	errRequestItemNil         = errors.New("request item is nil")
	errInvalidPath            = errors.New("invalid path")
	errHeaderResponseMapIsNil = errors.New("header response map is nil")
	errHTTPClientIsNil        = errors.New("http client is nil")
	errNoProxyURLSupplied     = errors.New("no proxy URL supplied")
	errTransportNotSet        = errors.New("transport not set, cannot set proxy")
	errFailedToRetryRequest   = errors.New("failed to retry request")
)

// New returns a new Requester
func New(name string, httpRequester *http.Client, opts ...RequesterOption) (*Requester, error) {
	if httpRequester == nil {
		return nil, errHTTPClientIsNil
	}
	r := &Requester{
		name:        name,
		httpClient:  httpRequester,
		backoff:     DefaultBackoff(),
		retryPolicy: DefaultRetryPolicy,
		maxRetries:  MaxRetryAttempts,
		maxJobs:     DefaultMaxRequestJobs,
	}

	for _, o := range opts {
		o(r)
	}

	return r, nil
}

// SendPayload handles sending HTTP/HTTPS requests. newRequest is invoked once
// per attempt.
func (r *Requester) SendPayload(ctx context.Context, newRequest Generate) error {
	if r == nil {
		return ErrRequestSystemIsNil
	}

	if newRequest == nil {
		return errRequestFunctionIsNil
	}

	if r.jobs.Add(1) > r.maxJobs {
		r.jobs.Add(-1)
		return errMaxRequestJobs
	}
	defer r.jobs.Add(-1)

	return r.doRequest(ctx, newRequest)
}

// validateRequest validates the requester item fields
func (i *Item) validateRequest(ctx context.Context, r *Requester) (*http.Request, error) {
	if i == nil {
		return nil, errRequestItemNil
	}

	if i.Path == "" {
		return nil, errInvalidPath
	}

	if i.HeaderResponse != nil && *i.HeaderResponse == nil {
		return nil, errHeaderResponseMapIsNil
	}

	req, err := http.NewRequestWithContext(ctx, i.Method, i.Path, i.Body)
	if err != nil {
		return nil, err
	}

	for k, v := range i.Headers {
		req.Header.Add(k, v)
	}

	if r.userAgent != "" && req.Header.Get(userAgent) == "" {
		req.Header.Add(userAgent, r.userAgent)
	}

	if i.HTTPDebugging {
		// Err not evaluated due to validation check above
		dump, _ := httputil.DumpRequestOut(req, true)
		log.Debugf(log.RequestSys, "DumpRequest:\n%s", dump)
	}

	return req, nil
}

// doRequest performs a HTTP/HTTPS request with the supplied params
func (r *Requester) doRequest(ctx context.Context, newRequest Generate) error {
	id, err := jobID(ctx)
	if err != nil {
		return err
	}
	for attempt := 1; ; attempt++ {
		p, err := newRequest()
		if err != nil {
			return err
		}

		req, err := p.validateRequest(ctx, r)
		if err != nil {
			return err
		}

		verbose := IsVerbose(ctx, p.Verbose)
		if verbose {
			log.Debugf(log.RequestSys, "%s [%s] attempt %d request path: %s", r.name, id, attempt, p.Path)
			for k, d := range req.Header {
				log.Debugf(log.RequestSys, "%s [%s] request header [%s]: %s", r.name, id, k, d)
			}
			log.Debugf(log.RequestSys, "%s [%s] request type: %s", r.name, id, req.Method)
		}

		resp, err := r.httpClient.Do(req)
		retry, checkErr := r.retryPolicy(resp, err)
		if checkErr != nil {
			return checkErr
		}
		if retry && hasRetryNotAllowed(ctx) {
			if err != nil {
				return err
			}
			retry = false
		}
		if retry {
			if err == nil {
				// If the body isn't fully read, the connection cannot be re-used
				r.drainBody(resp.Body)
			}

			if attempt > r.maxRetries {
				if err != nil {
					return fmt.Errorf("%w, err: %w", errFailedToRetryRequest, err)
				}
				return fmt.Errorf("%w, status: %s", errFailedToRetryRequest, resp.Status)
			}

			delay := r.backoff(attempt)
			if after := RetryAfter(resp, time.Now()); after > delay {
				delay = after
			}

			if d, ok := ctx.Deadline(); ok && time.Now().Add(delay).After(d) {
				if err != nil {
					return fmt.Errorf("deadline would be exceeded by retry, err: %w", err)
				}
				return fmt.Errorf("deadline would be exceeded by retry, status: %s", resp.Status)
			}

			if verbose {
				log.Errorf(log.RequestSys,
					"%s [%s] request has failed. Retrying request in %s, attempt %d",
					r.name,
					id,
					delay,
					attempt)
			}

			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
			continue
		}
		if err != nil {
			return err
		}

		contents, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return err
		}

		if p.HeaderResponse != nil {
			for k, v := range resp.Header {
				(*p.HeaderResponse)[k] = v
			}
		}

		if p.HTTPDebugging {
			dump, err := httputil.DumpResponse(resp, false)
			if err != nil {
				log.Errorf(log.RequestSys, "DumpResponse invalid response: %v:", err)
			}
			log.Debugf(log.RequestSys, "DumpResponse Headers (%v):\n%s", p.Path, dump)
			log.Debugf(log.RequestSys, "DumpResponse Body (%v):\n %s", p.Path, contents)
		}

		if verbose {
			log.Debugf(log.RequestSys, "%s [%s] HTTP status: %s, Code: %v", r.name, id, resp.Status, resp.StatusCode)
			if !p.HTTPDebugging {
				log.Debugf(log.RequestSys, "%s [%s] raw response: %s", r.name, id, contents)
			}
		}

		if resp.StatusCode < http.StatusOK || resp.StatusCode > http.StatusAccepted {
			return newHTTPError(r.name, resp.StatusCode, contents)
		}

		if p.Result != nil {
			return json.Unmarshal(contents, p.Result)
		}
		return nil
	}
}

// Name returns the service name used in log lines and errors
func (r *Requester) Name() string {
	if r == nil {
		return ""
	}
	return r.name
}

// SetProxy sets a proxy address to the client transport
func (r *Requester) SetProxy(p *url.URL) error {
	if r == nil {
		return ErrRequestSystemIsNil
	}
	if p == nil || p.String() == "" {
		return errNoProxyURLSupplied
	}

	t, ok := r.httpClient.Transport.(*http.Transport)
	if !ok {
		return errTransportNotSet
	}
	t.Proxy = http.ProxyURL(p)
	t.TLSHandshakeTimeout = proxyTLSTimeout
	return nil
}

// SetHTTPClientTimeout sets the timeout value for the underlying client
func (r *Requester) SetHTTPClientTimeout(timeout time.Duration) error {
	if r == nil {
		return ErrRequestSystemIsNil
	}
	r.httpClient.Timeout = timeout
	return nil
}

// SetHTTPClientUserAgent sets the default User-Agent header
func (r *Requester) SetHTTPClientUserAgent(ua string) error {
	if r == nil {
		return ErrRequestSystemIsNil
	}
	r.userAgent = ua
	return nil
}

// GetHTTPClientUserAgent returns the default User-Agent header
func (r *Requester) GetHTTPClientUserAgent() (string, error) {
	if r == nil {
		return "", ErrRequestSystemIsNil
	}
	return r.userAgent, nil
}

func (r *Requester) drainBody(body io.ReadCloser) {
	defer body.Close()
	if _, err := io.Copy(io.Discard, io.LimitReader(body, drainBodyLimit)); err != nil {
		log.Errorf(log.RequestSys,
			"%s failed to drain request body %s",
			r.name,
			err)
	}
}
