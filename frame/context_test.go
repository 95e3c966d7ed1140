package frame

import (
	"testing"
	"time"
)

func fixedClock(t *time.Time) Clock {
	return func() time.Time { return *t }
}

func TestBeginFrameComputesDeltaTime(t *testing.T) {
	now := time.Unix(0, 0)
	clock := fixedClock(&now)
	c := NewContext(Config{FramesInFlight: 2}, clock)

	now = now.Add(16 * time.Millisecond)
	c.BeginFrame()
	if c.DeltaTime() <= 0 {
		t.Fatalf("expected positive delta time, got %f", c.DeltaTime())
	}
}

func TestFrameIndexIsMonotonic(t *testing.T) {
	now := time.Unix(0, 0)
	c := NewContext(Config{FramesInFlight: 2}, fixedClock(&now))

	for i := uint64(0); i < 5; i++ {
		if c.FrameIndex() != i {
			t.Fatalf("frame index = %d, want %d", c.FrameIndex(), i)
		}
		c.BeginFrame()
		value := c.EndFrame()
		c.SignalGPUFinished(i, value)
	}
}

func TestBeginFrameBlocksUntilInFlightLimitSignals(t *testing.T) {
	now := time.Unix(0, 0)
	c := NewContext(Config{FramesInFlight: 1}, fixedClock(&now))

	c.BeginFrame()
	frame0 := c.FrameIndex()
	value0 := c.EndFrame()

	done := make(chan struct{})
	go func() {
		c.BeginFrame() // should block: frame 1 needs frame 0's signal, FramesInFlight=1
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("BeginFrame returned before the in-flight frame signalled")
	case <-time.After(30 * time.Millisecond):
	}

	c.SignalGPUFinished(frame0, value0)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("BeginFrame never returned after signalling")
	}
}

func TestArenaResetsEachFrame(t *testing.T) {
	now := time.Unix(0, 0)
	c := NewContext(Config{FramesInFlight: 2}, fixedClock(&now))

	c.Arena.Alloc(128)
	if c.Arena.Used() != 128 {
		t.Fatalf("Used() = %d, want 128", c.Arena.Used())
	}
	c.BeginFrame()
	if c.Arena.Used() != 0 {
		t.Fatalf("expected arena reset on BeginFrame, Used() = %d", c.Arena.Used())
	}
}

func TestBlackboardClearsEachFrame(t *testing.T) {
	now := time.Unix(0, 0)
	c := NewContext(Config{FramesInFlight: 2}, fixedClock(&now))

	type key struct{}
	c.Blackboard.Set(key{}, 42)
	c.BeginFrame()
	if _, ok := c.Blackboard.Get(key{}); ok {
		t.Fatal("expected blackboard to be cleared on BeginFrame")
	}
}

func TestStageEventTableTracksBeginEnd(t *testing.T) {
	now := time.Unix(0, 0)
	c := NewContext(Config{FramesInFlight: 2}, fixedClock(&now))

	if c.Events.HasEnded(StageShadowMap) {
		t.Fatal("expected stage not ended before Begin/End")
	}
	c.Events.Begin(StageShadowMap)
	c.Events.End(StageShadowMap)
	if !c.Events.HasEnded(StageShadowMap) {
		t.Fatal("expected stage marked ended after End")
	}
}
