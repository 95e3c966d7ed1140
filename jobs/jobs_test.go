package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestLaunchRunsJobAndSignalsEvent(t *testing.T) {
	s := NewScheduler(2)
	var ran atomic.Bool

	ev := s.Launch(context.Background(), func(ctx context.Context) error {
		ran.Store(true)
		return nil
	})

	if err := ev.wait(context.Background()); err != nil {
		t.Fatalf("wait: %v", err)
	}
	if !ran.Load() {
		t.Fatal("expected job to have run")
	}
}

func TestLaunchWaitsForPrerequisite(t *testing.T) {
	s := NewScheduler(2)
	prereq := NewEvent()
	var order []string

	ev := s.Launch(context.Background(), func(ctx context.Context) error {
		order = append(order, "job")
		return nil
	}, prereq)

	time.Sleep(10 * time.Millisecond)
	if len(order) != 0 {
		t.Fatal("job ran before its prerequisite signalled")
	}

	order = append(order, "prereq")
	prereq.Signal(nil)

	if err := ev.wait(context.Background()); err != nil {
		t.Fatalf("wait: %v", err)
	}
	if len(order) != 2 || order[0] != "prereq" || order[1] != "job" {
		t.Fatalf("unexpected order: %v", order)
	}
}

func TestLaunchPropagatesPrerequisiteError(t *testing.T) {
	s := NewScheduler(2)
	prereq := NewEvent()
	prereq.Signal(errors.New("boom"))

	ev := s.Launch(context.Background(), func(ctx context.Context) error {
		t.Fatal("job should not run when a prerequisite failed")
		return nil
	}, prereq)

	if err := ev.wait(context.Background()); err == nil {
		t.Fatal("expected an error from the failed prerequisite")
	}
}

func TestParallelForEachRunsEveryItem(t *testing.T) {
	s := NewScheduler(4)
	items := []int{1, 2, 3, 4, 5}
	var sum atomic.Int64

	err := s.ParallelForEach(context.Background(), items, func(ctx context.Context, item int) error {
		sum.Add(int64(item))
		return nil
	})
	if err != nil {
		t.Fatalf("ParallelForEach: %v", err)
	}
	if sum.Load() != 15 {
		t.Fatalf("sum = %d, want 15", sum.Load())
	}
}

func TestParallelForEachReturnsFirstError(t *testing.T) {
	s := NewScheduler(4)
	items := []int{1, 2, 3}

	err := s.ParallelForEach(context.Background(), items, func(ctx context.Context, item int) error {
		if item == 2 {
			return errors.New("item 2 failed")
		}
		return nil
	})
	if err == nil {
		t.Fatal("expected an error")
	}
}

func TestTimelineWaitAdaptsBlockingFunction(t *testing.T) {
	calledWith := time.Duration(-1)
	prereq := TimelineWait(func(timeout time.Duration) error {
		calledWith = timeout
		return nil
	})

	if err := prereq.(timelineWaiter).wait(context.Background()); err != nil {
		t.Fatalf("wait: %v", err)
	}
	if calledWith != 0 {
		t.Fatalf("expected zero timeout with no context deadline, got %v", calledWith)
	}
}
