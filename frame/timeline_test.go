package frame

import (
	"testing"
	"time"
)

func TestTimelineWaitReturnsImmediatelyForCompletedValue(t *testing.T) {
	tl := NewTimeline()
	value := tl.NextSignalValue()
	tl.Signal(value)

	if err := tl.Wait(value, time.Second); err != nil {
		t.Fatalf("Wait: %v", err)
	}
}

func TestTimelineWaitBlocksUntilSignalled(t *testing.T) {
	tl := NewTimeline()
	value := tl.NextSignalValue()

	done := make(chan error, 1)
	go func() { done <- tl.Wait(value, 0) }()

	select {
	case <-done:
		t.Fatal("Wait returned before Signal")
	case <-time.After(20 * time.Millisecond):
	}

	tl.Signal(value)
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Wait: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Wait never returned after Signal")
	}
}

func TestTimelineWaitTimesOut(t *testing.T) {
	tl := NewTimeline()
	value := tl.NextSignalValue()

	err := tl.Wait(value, 10*time.Millisecond)
	if err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestTimelineWaitZeroValueNeverBlocks(t *testing.T) {
	tl := NewTimeline()
	if err := tl.Wait(0, time.Second); err != nil {
		t.Fatalf("Wait(0): %v", err)
	}
}
