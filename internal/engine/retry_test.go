package engine

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"
)

var fastRetry = RetryConfig{
	MaxRetries:  3,
	InitialWait: time.Millisecond,
	MaxWait:     5 * time.Millisecond,
	Multiplier:  2.0,
}

func TestRetryDoSucceedsAfterTransientFailures(t *testing.T) {
	attempts := 0
	got, err := RetryDo(context.Background(), fastRetry, func() (string, error) {
		attempts++
		if attempts < 3 {
			return "", &net.DNSError{Err: "temporary", IsTemporary: true}
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ok" || attempts != 3 {
		t.Errorf("got %q after %d attempts", got, attempts)
	}
}

func TestRetryDoStopsOnPermanentError(t *testing.T) {
	permanent := errors.New("bad input")
	attempts := 0
	_, err := RetryDo(context.Background(), fastRetry, func() (int, error) {
		attempts++
		return 0, permanent
	})
	if !errors.Is(err, permanent) {
		t.Fatalf("want permanent error, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("non-retryable error must not retry, got %d attempts", attempts)
	}
}

func TestRetryDoZeroRetries(t *testing.T) {
	attempts := 0
	_, err := RetryDo(context.Background(), RetryConfig{MaxRetries: 0}, func() (int, error) {
		attempts++
		return 0, &net.DNSError{Err: "temporary"}
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if attempts != 1 {
		t.Errorf("zero retries must allow exactly one attempt, got %d", attempts)
	}
}

func TestRetryDoRetriesRetryableStatus(t *testing.T) {
	attempts := 0
	got, err := RetryDo(context.Background(), fastRetry, func() (string, error) {
		attempts++
		if attempts < 2 {
			return "", &StatusError{Status: 503}
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ok" || attempts != 2 {
		t.Errorf("got %q after %d attempts", got, attempts)
	}
}

func TestRetryDoStopsOnTerminalStatus(t *testing.T) {
	attempts := 0
	_, err := RetryDo(context.Background(), fastRetry, func() (int, error) {
		attempts++
		return 0, &StatusError{Status: 404}
	})
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.Status != 404 {
		t.Fatalf("want status 404 error, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("terminal status must not retry, got %d attempts", attempts)
	}
}

func TestRetryDoRespectsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := RetryDo(ctx, fastRetry, func() (int, error) {
		t.Fatal("fn must not run with cancelled context")
		return 0, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("want context.Canceled, got %v", err)
	}
}

func TestIsRetryableStatus(t *testing.T) {
	for _, code := range []int{408, 429, 500, 502, 503, 504} {
		if !IsRetryableStatus(code) {
			t.Errorf("status %d should be retryable", code)
		}
	}
	for _, code := range []int{200, 301, 400, 401, 403, 404, 410} {
		if IsRetryableStatus(code) {
			t.Errorf("status %d should not be retryable", code)
		}
	}
}
