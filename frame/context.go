// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package frame

import (
	"time"
)

// Blackboard is a typed heterogeneous map for cross-stage data passing
// within one frame, keyed by the caller-chosen key type.
type Blackboard struct {
	values map[any]any
}

func newBlackboard() *Blackboard {
	return &Blackboard{values: make(map[any]any)}
}

// Set stores value under key, overwriting any prior entry.
func (b *Blackboard) Set(key, value any) {
	b.values[key] = value
}

// Get retrieves the value stored under key, if any.
func (b *Blackboard) Get(key any) (any, bool) {
	v, ok := b.values[key]
	return v, ok
}

func (b *Blackboard) reset() {
	clear(b.values)
}

// Clock abstracts the host clock so tests can supply a deterministic
// time source instead of wall-clock time.
type Clock func() time.Time

// Config bounds frame pacing: how many frames may be in flight at once
// and an optional soft frame-rate cap.
type Config struct {
	FramesInFlight int
	MaxFPS         *float32
}

// Context owns one frame's lifetime: its index, delta/time, stage-event
// table, GPU-finished waitable, and bump arena. A Context is reused
// across frames (BeginFrame/EndFrame cycle) rather than reallocated.
type Context struct {
	clock Clock
	cfg   Config

	frameIndex uint64
	startTime  time.Time
	lastBegin  time.Time
	deltaTime  float64
	totalTime  float64

	Events    *StageEventTable
	Blackboard *Blackboard
	Arena     *Arena

	timelines    []*Timeline // ring of FramesInFlight timelines, indexed by frameIndex % len
	signalValues []uint64

	lastFrameEnd time.Time
}

// NewContext creates a Context. clock defaults to time.Now when nil.
func NewContext(cfg Config, clock Clock) *Context {
	if cfg.FramesInFlight < 1 {
		cfg.FramesInFlight = 1
	}
	if cfg.FramesInFlight > 3 {
		cfg.FramesInFlight = 3
	}
	if clock == nil {
		clock = time.Now
	}

	timelines := make([]*Timeline, cfg.FramesInFlight)
	for i := range timelines {
		timelines[i] = NewTimeline()
	}

	now := clock()
	c := &Context{
		clock:        clock,
		cfg:          cfg,
		startTime:    now,
		lastBegin:    now,
		Blackboard:   newBlackboard(),
		Arena:        NewArena(64 * 1024),
		timelines:    timelines,
		signalValues: make([]uint64, cfg.FramesInFlight),
		lastFrameEnd: now,
	}
	c.Events = newStageEventTable(func() float64 { return clock().Sub(c.lastBegin).Seconds() })
	return c
}

// FrameIndex returns the current frame's monotonically increasing index.
func (c *Context) FrameIndex() uint64 { return c.frameIndex }

// DeltaTime returns the seconds elapsed since the previous BeginFrame.
func (c *Context) DeltaTime() float64 { return c.deltaTime }

// Time returns the seconds elapsed since the Context was created.
func (c *Context) Time() float64 { return c.totalTime }

// Timeline returns the GPU-finished waitable for the current frame.
func (c *Context) Timeline() *Timeline {
	return c.timelines[c.frameIndex%uint64(len(c.timelines))]
}

// BeginFrame advances to the next frame: it blocks until frame
// (frameIndex - FramesInFlight) has signalled its GPU-finished event,
// applies the soft max-FPS sleep, computes delta/time, and clears the
// stage-event table, blackboard, and arena for the new frame.
func (c *Context) BeginFrame() {
	if c.frameIndex >= uint64(len(c.timelines)) {
		inFlight := c.timelines[c.frameIndex%uint64(len(c.timelines))]
		needed := c.signalValues[c.frameIndex%uint64(len(c.timelines))]
		_ = inFlight.Wait(needed, 0)
	}

	c.applyMaxFPSCap()

	now := c.clock()
	c.deltaTime = now.Sub(c.lastBegin).Seconds()
	c.totalTime = now.Sub(c.startTime).Seconds()
	c.lastBegin = now

	c.Events.reset()
	c.Blackboard.reset()
	c.Arena.Reset()
}

// EndFrame allocates this frame's GPU-finished signal value, records it
// for the next time this ring slot is reused, and advances the frame
// index.
func (c *Context) EndFrame() uint64 {
	slot := c.frameIndex % uint64(len(c.timelines))
	value := c.timelines[slot].NextSignalValue()
	c.signalValues[slot] = value
	c.lastFrameEnd = c.clock()
	c.frameIndex++
	return value
}

// SignalGPUFinished marks value as completed on the timeline of the ring
// slot that slotFrameIndex maps to, waking anything blocked in BeginFrame
// or a job prerequisite wait. The host calls it, through
// RenderCore.SignalFrameGPUFinished, when that frame's GPU work completes.
func (c *Context) SignalGPUFinished(slotFrameIndex uint64, value uint64) {
	c.timelines[slotFrameIndex%uint64(len(c.timelines))].Signal(value)
}

// applyMaxFPSCap sleeps the remainder of the target frame budget, if a
// cap was configured and the previous frame finished early.
func (c *Context) applyMaxFPSCap() {
	if c.cfg.MaxFPS == nil || *c.cfg.MaxFPS <= 0 {
		return
	}
	budget := time.Duration(float64(time.Second) / float64(*c.cfg.MaxFPS))
	elapsed := c.clock().Sub(c.lastFrameEnd)
	if elapsed < budget {
		time.Sleep(budget - elapsed)
	}
}
