/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package retry retries remote calls with bounded exponential backoff.
package retry

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/chainguard-dev/clog"
)

// Config configures retry behavior for remote calls.
type Config struct {
	// MaxRetries is the maximum number of retry attempts (default: 3).
	// 0 means do not retry at all.
	MaxRetries int
	// BaseBackoff is the initial backoff duration (default: 1s).
	BaseBackoff time.Duration
	// MaxBackoff caps the backoff duration (default: 30s).
	MaxBackoff time.Duration
	// MaxJitter is the maximum random jitter added to backoff (default: 250ms).
	MaxJitter time.Duration
	// MaxWait caps a wait requested by the server, such as the reset of a
	// rate limit (default: 2m). A longer request ends the retries at once.
	// 0 ignores requested waits and always uses the backoff.
	MaxWait time.Duration
}

// Validate checks that the retry configuration has valid values.
func (c Config) Validate() error {
	if c.MaxRetries < 0 {
		return errors.New("max retries cannot be negative")
	}
	if c.BaseBackoff < 0 {
		return errors.New("base backoff cannot be negative")
	}
	if c.MaxBackoff < 0 {
		return errors.New("max backoff cannot be negative")
	}
	if c.MaxJitter < 0 {
		return errors.New("max jitter cannot be negative")
	}
	if c.MaxWait < 0 {
		return errors.New("max wait cannot be negative")
	}
	return nil
}

// DefaultConfig returns the retry configuration used for GitHub API calls.
func DefaultConfig() Config {
	return Config{
		MaxRetries:  3,
		BaseBackoff: 1 * time.Second,
		MaxBackoff:  30 * time.Second,
		MaxJitter:   250 * time.Millisecond,
		MaxWait:     2 * time.Minute,
	}
}

// Classifier decides whether err is worth another attempt. A positive wait is
// the delay the server asked for and replaces the exponential backoff.
type Classifier func(err error) (retryable bool, wait time.Duration)

// ErrWaitTooLong is returned when the server asks for a wait beyond
// Config.MaxWait.
var ErrWaitTooLong = errors.New("requested wait exceeds the retry limit")

// Do executes fn until it succeeds, classify rejects its error or the retries
// run out. Rejected errors are returned unwrapped.
func Do[T any](ctx context.Context, cfg Config, operation string, classify Classifier, fn func() (T, error)) (T, error) {
	var result T
	var lastErr error

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		result, lastErr = fn()
		if lastErr == nil {
			return result, nil
		}

		retryable, wait := classify(lastErr)
		if !retryable {
			return result, lastErr
		}

		if attempt >= cfg.MaxRetries {
			break
		}

		delay := cfg.backoff(attempt)
		if wait > 0 && cfg.MaxWait > 0 {
			if wait > cfg.MaxWait {
				return result, fmt.Errorf("%s: %w (%s > %s): %w", operation, ErrWaitTooLong, wait.Round(time.Second), cfg.MaxWait, lastErr)
			}
			delay = wait + cfg.jitter()
		}

		clog.FromContext(ctx).With("operation", operation).
			With("attempt", attempt+1).
			With("max_retries", cfg.MaxRetries).
			With("backoff", delay).
			With("requested", wait).
			With("error", lastErr.Error()).
			Warn("Transient error, retrying")

		select {
		case <-ctx.Done():
			return result, ctx.Err()
		case <-time.After(delay):
		}
	}

	return result, fmt.Errorf("%s failed after %d retries: %w", operation, cfg.MaxRetries, lastErr)
}

// backoff is BaseBackoff * 2^attempt capped at MaxBackoff, plus jitter.
func (c Config) backoff(attempt int) time.Duration {
	return min(c.BaseBackoff<<attempt, c.MaxBackoff) + c.jitter()
}

func (c Config) jitter() time.Duration {
	if c.MaxJitter <= 0 {
		return 0
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(c.MaxJitter)))
	if err != nil {
		return 0
	}
	return time.Duration(n.Int64())
}
