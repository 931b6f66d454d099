package request_test

import (
	"context"
	"errors"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/thrasher-corp/bfxclient/exchanges/request"
)

func TestDefaultRetryPolicy(t *testing.T) {
	t.Parallel()
	dnsFailure := &net.DNSError{Err: "no such host", Name: "api.bitfinex.com"}
	for _, tc := range []struct {
		name  string
		resp  *http.Response
		err   error
		retry bool
		fails error
	}{
		{name: "lookup failure", err: dnsFailure, fails: dnsFailure},
		{name: "lookup timeout", err: &net.DNSError{Err: "timeout", IsTimeout: true}, retry: true},
		{name: "context cancelled", err: context.Canceled, fails: context.Canceled},
		{name: "ratelimit", resp: &http.Response{StatusCode: http.StatusTooManyRequests}, retry: true},
		{name: "nonce small", resp: &http.Response{StatusCode: http.StatusInternalServerError}},
		{name: "invalid key", resp: &http.Response{StatusCode: http.StatusUnauthorized}},
		{name: "maintenance", resp: &http.Response{StatusCode: http.StatusServiceUnavailable}},
		{name: "ok", resp: &http.Response{StatusCode: http.StatusOK}},
		{
			name:  "retry after on any status",
			resp:  &http.Response{StatusCode: http.StatusServiceUnavailable, Header: http.Header{"Retry-After": []string{"1"}}},
			retry: true,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			retry, err := request.DefaultRetryPolicy(tc.resp, tc.err)
			if tc.fails != nil {
				assert.True(t, errors.Is(err, tc.fails), "transport errors must be returned as is")
				assert.False(t, retry)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.retry, retry)
		})
	}
}

func TestRetryAfter(t *testing.T) {
	t.Parallel()
	now := time.Date(2024, time.March, 4, 9, 15, 0, 0, time.UTC)
	header := func(v string) *http.Response {
		return &http.Response{StatusCode: http.StatusTooManyRequests, Header: http.Header{"Retry-After": []string{v}}}
	}
	for _, tc := range []struct {
		name string
		resp *http.Response
		want time.Duration
	}{
		{name: "nil response"},
		{name: "no header", resp: &http.Response{StatusCode: http.StatusTooManyRequests, Header: http.Header{}}},
		{name: "blank", resp: header("")},
		{name: "fractional seconds ignored", resp: header("1.5")},
		{name: "whole seconds", resp: header("60"), want: time.Minute},
		{name: "http date", resp: header("Mon, 04 Mar 2024 09:15:30 GMT"), want: 30 * time.Second},
		{name: "date in the past", resp: header("Mon, 04 Mar 2024 09:14:50 GMT"), want: -10 * time.Second},
		{name: "rfc3339 not accepted", resp: header("2024-03-04T09:15:30Z")},
	} {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, request.RetryAfter(tc.resp, now))
		})
	}
}

func TestLinearBackoff(t *testing.T) {
	t.Parallel()
	b := request.LinearBackoff(250*time.Millisecond, time.Second)
	for attempt, want := range map[int]time.Duration{
		1: 250 * time.Millisecond,
		2: 500 * time.Millisecond,
		4: time.Second,
		9: time.Second,
	} {
		assert.Equalf(t, want, b(attempt), "attempt %d", attempt)
	}

	d := request.DefaultBackoff()
	assert.Equal(t, 100*time.Millisecond, d(1))
	assert.Equal(t, 2*time.Second, d(50), "default backoff must be capped")
}
