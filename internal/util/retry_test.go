package util

import (
	"context"
	"errors"
	"os"
	"syscall"
	"testing"
	"time"
)

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"EAGAIN", syscall.EAGAIN, true},
		{"EBUSY", syscall.EBUSY, true},
		{"ETIMEDOUT", syscall.ETIMEDOUT, true},
		{"EIO", syscall.EIO, true},
		{"ENOENT (not retryable)", syscall.ENOENT, false},
		{"EPERM (not retryable)", syscall.EPERM, false},
		{"sqlite locked", errors.New("database is locked (5) (SQLITE_BUSY)"), true},
		{"timeout in message", errors.New("operation timeout"), true},
		{"generic error (not retryable)", errors.New("invalid argument"), false},
		{"context canceled (not retryable)", context.Canceled, false},
		{"PathError with EAGAIN", &os.PathError{Op: "rename", Path: "/test", Err: syscall.EAGAIN}, true},
		{"PathError with ENOENT (not retryable)", &os.PathError{Op: "open", Path: "/test", Err: syscall.ENOENT}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsRetryableError(tt.err)
			if result != tt.expected {
				t.Errorf("IsRetryableError(%v) = %v, expected %v", tt.err, result, tt.expected)
			}
		})
	}
}

func testRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts: 3,
		InitialWait: time.Millisecond,
		MaxWait:     5 * time.Millisecond,
	}
}

func TestRetryWithBackoff_ImmediateSuccess(t *testing.T) {
	attempts := 0
	result, err := RetryWithBackoff(context.Background(), testRetryConfig(), func() (int, error) {
		attempts++
		return 42, nil
	}, "test operation")

	if err != nil {
		t.Errorf("Expected no error, got: %v", err)
	}
	if result != 42 {
		t.Errorf("Expected result 42, got: %d", result)
	}
	if attempts != 1 {
		t.Errorf("Expected 1 attempt, got: %d", attempts)
	}
}

func TestRetryWithBackoff_TransientThenSuccess(t *testing.T) {
	attempts := 0
	err := Retry(context.Background(), testRetryConfig(), func() error {
		attempts++
		if attempts < 3 {
			return syscall.EAGAIN
		}
		return nil
	}, "flaky write")

	if err != nil {
		t.Fatalf("Expected success after retries, got: %v", err)
	}
	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got: %d", attempts)
	}
}

func TestRetryWithBackoff_NonRetryableStopsEarly(t *testing.T) {
	attempts := 0
	sentinel := errors.New("invalid argument")
	err := Retry(context.Background(), testRetryConfig(), func() error {
		attempts++
		return sentinel
	}, "bad write")

	if !errors.Is(err, sentinel) {
		t.Fatalf("Expected sentinel error, got: %v", err)
	}
	if attempts != 1 {
		t.Errorf("Expected 1 attempt, got: %d", attempts)
	}
}

func TestRetryWithBackoff_Exhausted(t *testing.T) {
	attempts := 0
	err := Retry(context.Background(), testRetryConfig(), func() error {
		attempts++
		return syscall.EBUSY
	}, "busy write")

	if err == nil {
		t.Fatal("Expected error after exhausting retries")
	}
	if !errors.Is(err, syscall.EBUSY) {
		t.Errorf("Expected wrapped EBUSY, got: %v", err)
	}
	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got: %d", attempts)
	}
}

func TestRetryWithBackoff_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := &RetryConfig{MaxAttempts: 5, InitialWait: time.Second, MaxWait: time.Second}
	err := Retry(ctx, cfg, func() error {
		return syscall.EAGAIN
	}, "cancelled write")

	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got: %v", err)
	}
}
