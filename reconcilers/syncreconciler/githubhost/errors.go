/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package githubhost

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"syscall"
	"time"

	"chainguard.dev/downstreamsync/reconcilers/syncreconciler"
	"github.com/google/go-github/v84/github"
)

// IsTransient reports whether err is worth retrying: rate limits, server
// errors and network failures. Client errors such as 404 or 422 are final.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return true
	}
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return true
	}

	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) {
		if respErr.Response == nil {
			return false
		}
		code := respErr.Response.StatusCode
		return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}

	// githubv4 reports HTTP failures as plain errors.
	return strings.Contains(err.Error(), "non-200 OK status code: 5")
}

// isRateLimited is the narrower retry policy for non-idempotent calls, where
// a server error may hide a request that actually succeeded.
func isRateLimited(err error) bool {
	var rateErr *github.RateLimitError
	var abuseErr *github.AbuseRateLimitError
	return errors.As(err, &rateErr) || errors.As(err, &abuseErr)
}

// classifyTransient retries transient errors, waiting as long as GitHub asked
// when it rate limited the call.
func classifyTransient(err error) (bool, time.Duration) {
	if !IsTransient(err) {
		return false, 0
	}
	return true, RetryAfter(err, time.Now())
}

// classifyRateLimited retries rate limits only.
func classifyRateLimited(err error) (bool, time.Duration) {
	if !isRateLimited(err) {
		return false, 0
	}
	return true, RetryAfter(err, time.Now())
}

// RetryAfter returns how long GitHub asked the client to wait before retrying
// err, or 0 when it did not say. Secondary rate limits carry a Retry-After
// header, primary rate limits the time their window resets.
func RetryAfter(err error, now time.Time) time.Duration {
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return abuseErr.GetRetryAfter()
	}

	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		if reset := rateErr.Rate.Reset.Time; !reset.IsZero() && reset.After(now) {
			return reset.Sub(now)
		}
		return 0
	}

	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		if secs, err := strconv.Atoi(respErr.Response.Header.Get("Retry-After")); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return 0
}

// isNotFound reports whether err is a 404 from the REST API.
func isNotFound(err error) bool {
	var respErr *github.ErrorResponse
	return errors.As(err, &respErr) && respErr.Response != nil && respErr.Response.StatusCode == http.StatusNotFound
}

// notFound maps a 404 to syncreconciler.ErrNotFound, keeping the original
// error in the chain.
func notFound(err error) error {
	if isNotFound(err) {
		return fmt.Errorf("%w: %w", syncreconciler.ErrNotFound, err)
	}
	return err
}
