package core

import (
	"testing"
	"time"
)

func TestFixedIntervalFiresOncePerInterval(t *testing.T) {
	fs := NewFixedInterval(time.Second)
	start := time.Unix(1000, 0)

	if !fs.shouldStepAt(start) {
		t.Fatal("first call should fire immediately")
	}
	if fs.shouldStepAt(start.Add(500 * time.Millisecond)) {
		t.Fatal("should not fire before the interval elapses")
	}
	if !fs.shouldStepAt(start.Add(1000 * time.Millisecond)) {
		t.Fatal("should fire once the interval elapses")
	}
	if fs.shouldStepAt(start.Add(1100 * time.Millisecond)) {
		t.Fatal("should not fire twice in one interval")
	}
}

func TestFixedStepCapsCatchUp(t *testing.T) {
	fs := NewFixedInterval(time.Second)
	start := time.Unix(1000, 0)
	fs.shouldStepAt(start)

	if !fs.shouldStepAt(start.Add(10 * time.Second)) {
		t.Fatal("expected a tick after a long stall")
	}
	fired := 0
	for i := 1; i <= 5; i++ {
		if fs.shouldStepAt(start.Add(10*time.Second + time.Duration(i)*time.Millisecond)) {
			fired++
		}
	}
	if fired > 1 {
		t.Fatalf("expected at most one catch-up tick, got %d", fired)
	}
}

func TestFixedStepDefaults(t *testing.T) {
	if got := NewFixedStep(0).Interval(); got != time.Second/60 {
		t.Fatalf("NewFixedStep(0) interval = %v, want 1/60s", got)
	}
	if got := NewFixedInterval(-time.Second).Interval(); got != time.Second/60 {
		t.Fatalf("non-positive interval should fall back to 60 TPS, got %v", got)
	}
	fs := NewFixedStep(10)
	fs.SetTPS(2)
	if got := fs.Interval(); got != 500*time.Millisecond {
		t.Fatalf("SetTPS(2) interval = %v, want 500ms", got)
	}
}
