/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package retry_test

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"chainguard.dev/downstreamsync/internal/retry"
)

func testConfig() retry.Config {
	return retry.Config{
		MaxRetries:  3,
		BaseBackoff: time.Millisecond,
		MaxBackoff:  10 * time.Millisecond,
		MaxJitter:   time.Millisecond,
	}
}

func alwaysRetryable(err error) (bool, time.Duration) {
	return err != nil, 0
}

func TestDo_Success(t *testing.T) {
	t.Parallel()
	var attempts atomic.Int32
	result, err := retry.Do(context.Background(), testConfig(), "test_op", alwaysRetryable, func() (string, error) {
		attempts.Add(1)
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "ok" {
		t.Fatalf("expected result %q, got %q", "ok", result)
	}
	if got := attempts.Load(); got != 1 {
		t.Fatalf("expected 1 attempt, got %d", got)
	}
}

func TestDo_SuccessAfterRetries(t *testing.T) {
	t.Parallel()
	var attempts atomic.Int32
	transient := errors.New("502 bad gateway")

	result, err := retry.Do(context.Background(), testConfig(), "test_op", alwaysRetryable, func() (string, error) {
		if attempts.Add(1) < 3 {
			return "", transient
		}
		return "recovered", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "recovered" {
		t.Fatalf("expected result %q, got %q", "recovered", result)
	}
	if got := attempts.Load(); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
}

func TestDo_ExhaustedRetries(t *testing.T) {
	t.Parallel()
	transient := errors.New("503 service unavailable")

	var attempts atomic.Int32
	_, err := retry.Do(context.Background(), testConfig(), "test_op", alwaysRetryable, func() (string, error) {
		attempts.Add(1)
		return "", transient
	})
	if err == nil {
		t.Fatal("expected error after exhausted retries")
	}
	if got := attempts.Load(); got != 4 {
		t.Fatalf("expected 4 attempts (1 initial + 3 retries), got %d", got)
	}
	if !errors.Is(err, transient) {
		t.Fatalf("expected wrapped error to contain original, got: %v", err)
	}
	if !strings.HasPrefix(err.Error(), "test_op failed after 3 retries") {
		t.Fatalf("unexpected error message: %q", err)
	}
}

func TestDo_NonRetryableError(t *testing.T) {
	t.Parallel()
	notFound := errors.New("404 not found")

	var attempts atomic.Int32
	_, err := retry.Do(context.Background(), testConfig(), "test_op", func(error) (bool, time.Duration) { return false, 0 }, func() (string, error) {
		attempts.Add(1)
		return "", notFound
	})
	if !errors.Is(err, notFound) || strings.Contains(err.Error(), "failed after") {
		t.Fatalf("expected the original error, got: %v", err)
	}
	if got := attempts.Load(); got != 1 {
		t.Fatalf("expected 1 attempt, got %d", got)
	}
}

func TestDo_ContextCancelled(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	cfg.BaseBackoff = time.Hour
	cfg.MaxBackoff = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	var attempts atomic.Int32
	_, err := retry.Do(ctx, cfg, "test_op", alwaysRetryable, func() (string, error) {
		if attempts.Add(1) == 1 {
			cancel()
		}
		return "", errors.New("transient")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got: %v", err)
	}
	if got := attempts.Load(); got != 1 {
		t.Fatalf("expected 1 attempt, got %d", got)
	}
}

func TestDo_HonorsRequestedWait(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	cfg.BaseBackoff = time.Hour
	cfg.MaxBackoff = time.Hour
	cfg.MaxJitter = 0
	cfg.MaxWait = time.Second

	var attempts atomic.Int32
	start := time.Now()
	result, err := retry.Do(context.Background(), cfg, "test_op", func(error) (bool, time.Duration) {
		return true, 20 * time.Millisecond
	}, func() (string, error) {
		if attempts.Add(1) < 2 {
			return "", errors.New("secondary rate limit")
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "ok" {
		t.Fatalf("expected result %q, got %q", "ok", result)
	}
	// The hour long backoff would still be running.
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond || elapsed > time.Minute {
		t.Fatalf("expected to wait about 20ms, waited %s", elapsed)
	}
}

func TestDo_RequestedWaitTooLong(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	cfg.MaxWait = time.Second
	limited := errors.New("rate limit exceeded")

	var attempts atomic.Int32
	_, err := retry.Do(context.Background(), cfg, "test_op", func(error) (bool, time.Duration) {
		return true, time.Hour
	}, func() (string, error) {
		attempts.Add(1)
		return "", limited
	})
	if !errors.Is(err, retry.ErrWaitTooLong) || !errors.Is(err, limited) {
		t.Fatalf("expected ErrWaitTooLong wrapping the original, got: %v", err)
	}
	if got := attempts.Load(); got != 1 {
		t.Fatalf("expected 1 attempt, got %d", got)
	}
}

func TestDo_RequestedWaitIgnoredWithoutMaxWait(t *testing.T) {
	t.Parallel()
	var attempts atomic.Int32
	_, err := retry.Do(context.Background(), testConfig(), "test_op", func(error) (bool, time.Duration) {
		return true, time.Hour
	}, func() (string, error) {
		if attempts.Add(1) < 2 {
			return "", errors.New("rate limit exceeded")
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := attempts.Load(); got != 2 {
		t.Fatalf("expected 2 attempts, got %d", got)
	}
}

func TestConfigValidate(t *testing.T) {
	if err := retry.DefaultConfig().Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v", err)
	}
	for name, cfg := range map[string]retry.Config{
		"negative retries":     {MaxRetries: -1},
		"negative base":        {BaseBackoff: -1},
		"negative max backoff": {MaxBackoff: -1},
		"negative jitter":      {MaxJitter: -1},
		"negative max wait":    {MaxWait: -1},
	} {
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
}
