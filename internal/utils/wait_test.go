package utils

import (
	"context"
	"errors"
	"testing"
	"time"
)

func stubAfter(t *testing.T, fire bool) *[]time.Duration {
	t.Helper()
	var waits []time.Duration
	orig := after
	after = func(d time.Duration) <-chan time.Time {
		waits = append(waits, d)
		ch := make(chan time.Time, 1)
		if fire {
			ch <- time.Time{}
		}
		return ch
	}
	t.Cleanup(func() { after = orig })
	return &waits
}

func TestWaitFor(t *testing.T) {
	waits := stubAfter(t, true)

	if err := WaitFor(context.Background(), 3*time.Second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := WaitFor(context.Background(), 0); err != nil {
		t.Fatalf("unexpected error for zero duration: %v", err)
	}
	if len(*waits) != 1 || (*waits)[0] != 3*time.Second {
		t.Fatalf("expected a single 3s wait, got %v", *waits)
	}
}

func TestWaitForStopsOnCancel(t *testing.T) {
	stubAfter(t, false)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := WaitFor(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
