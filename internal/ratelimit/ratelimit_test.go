package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name            string
		linesPerSecond  float64
		expectUnlimited bool
	}{
		{
			name:            "unlimited_zero",
			linesPerSecond:  0,
			expectUnlimited: true,
		},
		{
			name:            "unlimited_negative",
			linesPerSecond:  -1,
			expectUnlimited: true,
		},
		{
			name:           "limited_ten_per_second",
			linesPerSecond: 10,
		},
		{
			name:           "limited_fractional",
			linesPerSecond: 0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limiter := New(tt.linesPerSecond)

			if got := limiter.Unlimited(); got != tt.expectUnlimited {
				t.Errorf("Unlimited() = %v, want %v", got, tt.expectUnlimited)
			}

			limit := limiter.Limit()
			if tt.expectUnlimited {
				if limit != 0 {
					t.Errorf("Expected unlimited (0), got %f", limit)
				}
			} else if limit != tt.linesPerSecond {
				t.Errorf("Expected limit %f, got %f", tt.linesPerSecond, limit)
			}
		})
	}
}

func TestLimiter_Wait(t *testing.T) {
	t.Run("unlimited_no_wait", func(t *testing.T) {
		limiter := New(0)

		start := time.Now()
		for i := range 1000 {
			if err := limiter.Wait(context.Background()); err != nil {
				t.Fatalf("Wait() %d failed: %v", i, err)
			}
		}

		if d := time.Since(start); d > 50*time.Millisecond {
			t.Errorf("Unlimited limiter took too long: %v", d)
		}
	})

	t.Run("unlimited_honours_cancelled_context", func(t *testing.T) {
		limiter := New(0)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if err := limiter.Wait(ctx); !errors.Is(err, context.Canceled) {
			t.Errorf("Wait() error = %v, want context.Canceled", err)
		}
	})

	t.Run("limited_spaces_lines", func(t *testing.T) {
		limiter := New(20) // 50ms between lines

		start := time.Now()
		for i := range 3 {
			if err := limiter.Wait(context.Background()); err != nil {
				t.Fatalf("Wait() %d failed: %v", i, err)
			}
		}

		if d := time.Since(start); d < 80*time.Millisecond {
			t.Errorf("three lines at 20/s finished in %v, expected ~100ms", d)
		}
	})

	t.Run("context_cancellation", func(t *testing.T) {
		limiter := New(1)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		if err := limiter.Wait(context.Background()); err != nil {
			t.Fatalf("First Wait() failed: %v", err)
		}

		if err := limiter.Wait(ctx); err == nil {
			t.Error("Expected context cancellation error")
		}
	})
}
