package retry

import (
	"context"
	"testing"
	"time"
)

func TestLinearBackoff(t *testing.T) {
	lb := NewLinearBackoff(3 * time.Second)

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 0},
		{1, 3 * time.Second},
		{2, 6 * time.Second},
		{3, 9 * time.Second},
	}
	for _, tt := range tests {
		if got := lb.NextDelay(tt.attempt); got != tt.want {
			t.Errorf("NextDelay(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestLinearBackoffCapsAtMaxDelay(t *testing.T) {
	lb := &LinearBackoff{
		BaseDelay: 2 * time.Second,
		Increment: 2 * time.Second,
		MaxDelay:  5 * time.Second,
	}

	if got := lb.NextDelay(10); got != 5*time.Second {
		t.Errorf("NextDelay(10) = %v, want the 5s cap", got)
	}
}

func TestExponentialBackoff(t *testing.T) {
	eb := &ExponentialBackoff{
		BaseDelay:  1 * time.Second,
		MaxDelay:   10 * time.Second,
		Multiplier: 2.0,
	}

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 1 * time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{4, 8 * time.Second},
		{5, 10 * time.Second}, // capped
	}
	for _, tt := range tests {
		if got := eb.NextDelay(tt.attempt); got != tt.want {
			t.Errorf("NextDelay(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestExponentialBackoffJitterStaysInRange(t *testing.T) {
	eb := &ExponentialBackoff{
		BaseDelay:    4 * time.Second,
		MaxDelay:     60 * time.Second,
		Multiplier:   2.0,
		JitterFactor: 0.25,
	}

	for i := 0; i < 50; i++ {
		got := eb.NextDelay(1)
		if got < 3*time.Second || got > 5*time.Second {
			t.Fatalf("Jittered delay %v outside [3s, 5s]", got)
		}
	}
}

func TestConstantBackoff(t *testing.T) {
	cb := &ConstantBackoff{Delay: 2 * time.Second}

	if got := cb.NextDelay(1); got != 2*time.Second {
		t.Errorf("NextDelay(1) = %v, want 2s", got)
	}
	if got := cb.NextDelay(7); got != 2*time.Second {
		t.Errorf("NextDelay(7) = %v, want 2s", got)
	}
	if got := cb.NextDelay(0); got != 0 {
		t.Errorf("NextDelay(0) = %v, want 0", got)
	}
}

func TestWaitReturnsAfterDelay(t *testing.T) {
	if err := Wait(context.Background(), time.Millisecond); err != nil {
		t.Errorf("Wait returned error: %v", err)
	}
}

func TestWaitZeroDelayReturnsImmediately(t *testing.T) {
	if err := Wait(context.Background(), 0); err != nil {
		t.Errorf("Wait returned error: %v", err)
	}
}

func TestWaitHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Wait(ctx, time.Minute)
	if err != context.Canceled {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}
