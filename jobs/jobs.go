// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package jobs implements the cooperative task scheduler: a single
// recording thread drives the orchestrator and graph builder, while
// worker goroutines run jobs launched with Launch and ParallelForEach.
// Jobs may suspend while waiting on prerequisites, including another
// job's completion or a frame's GPU-finished event, producing CPU-side
// ordering against GPU completion.
package jobs

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Prerequisite is anything a job can suspend on before running: another
// job's completion (Event), or a frame's GPU-finished event
// (TimelineWait).
type Prerequisite interface {
	wait(ctx context.Context) error
}

// Event is a CPU-only completion signal: a job's caller-visible handle,
// satisfied once and reusable as a prerequisite for any number of
// dependents.
type Event struct {
	done chan struct{}
	err  error
}

// NewEvent creates an unsignalled Event.
func NewEvent() *Event {
	return &Event{done: make(chan struct{})}
}

// Signal marks the event complete, recording err (nil on success) for
// anything waiting on it. Signal must be called at most once.
func (e *Event) Signal(err error) {
	e.err = err
	close(e.done)
}

func (e *Event) wait(ctx context.Context) error {
	select {
	case <-e.done:
		return e.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// timelineWaiter adapts a frame.Timeline wait into a Prerequisite
// without importing package frame directly, avoiding a dependency
// cycle; the scheduler only needs "something with a blocking wait."
type timelineWaiter struct {
	fn func(timeout time.Duration) error
}

// TimelineWait wraps a blocking wait function (typically
// (*frame.Timeline).Wait bound to a target value) as a job prerequisite.
func TimelineWait(fn func(timeout time.Duration) error) Prerequisite {
	return timelineWaiter{fn: fn}
}

func (w timelineWaiter) wait(ctx context.Context) error {
	deadline, hasDeadline := ctx.Deadline()
	timeout := time.Duration(0)
	if hasDeadline {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return context.DeadlineExceeded
		}
	}
	return w.fn(timeout)
}

// Scheduler bounds worker concurrency and runs jobs submitted via
// Launch/ParallelForEach. It is the single point worker goroutines fan
// out from, grounded on the teacher's WorkerPool but adding
// errgroup-style first-error propagation and context cancellation,
// which a raw channel pool does not give you.
type Scheduler struct {
	sem *semaphore.Weighted
}

// NewScheduler creates a Scheduler allowing up to maxWorkers concurrent
// jobs. A non-positive maxWorkers defaults to runtime.NumCPU().
func NewScheduler(maxWorkers int) *Scheduler {
	if maxWorkers <= 0 {
		maxWorkers = runtime.NumCPU()
	}
	return &Scheduler{sem: semaphore.NewWeighted(int64(maxWorkers))}
}

// Launch runs job on a worker goroutine once every prerequisite has been
// satisfied, returning an Event the caller (or further jobs) can wait
// on. Launch does not block; job begins asynchronously.
func (s *Scheduler) Launch(ctx context.Context, job func(ctx context.Context) error, prerequisites ...Prerequisite) *Event {
	ev := NewEvent()
	go func() {
		for _, p := range prerequisites {
			if err := p.wait(ctx); err != nil {
				ev.Signal(fmt.Errorf("jobs: prerequisite failed: %w", err))
				return
			}
		}
		if err := s.sem.Acquire(ctx, 1); err != nil {
			ev.Signal(err)
			return
		}
		defer s.sem.Release(1)
		ev.Signal(job(ctx))
	}()
	return ev
}

// ParallelForEach runs fn(item) for every element of items, bounded by
// the scheduler's worker budget, and returns the first error
// encountered (if any), cancelling the remaining work's context.
// Per-view rendering within a stage is independent per §5, which is
// exactly this shape: n independent units, no ordering between them.
func (s *Scheduler) ParallelForEach[T any](ctx context.Context, items []T, fn func(ctx context.Context, item T) error) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, item := range items {
		item := item
		if err := s.sem.Acquire(gctx, 1); err != nil {
			return err
		}
		g.Go(func() error {
			defer s.sem.Release(1)
			return fn(gctx, item)
		})
	}
	return g.Wait()
}
