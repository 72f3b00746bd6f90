// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package generation

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/danielhkuo/animal-portrait/models"
)

// Job status values, as exposed in snapshots
const (
	StatusRunning  = "running"
	StatusComplete = "complete"
	StatusFailed   = "failed"
	StatusCanceled = "canceled"
)

const (
	// Increment is added to the progress on every tick
	Increment = 10
	// Ceiling is where ticking stops; the rest arrives when the result is saved
	Ceiling = 90
	Full    = 100
)

type Timings struct {
	Interval time.Duration
	Duration time.Duration
	Settle   time.Duration
}

// Request describes one simulated generation
type Request struct {
	// Source is the uploaded photo reference. It is also the result.
	Source string
	// Persist records the result. It runs to completion even if the job is
	// cancelled meanwhile.
	Persist func(ctx context.Context, result string) error
	// OnComplete runs once progress has been at 100 for Settle. It is never
	// called for failed or cancelled jobs.
	OnComplete func(result string)
}

// Job is a running or finished generation
type Job struct {
	mu     sync.Mutex
	snap   models.GenerationSnapshot
	subs   map[chan models.GenerationSnapshot]struct{}
	cancel context.CancelFunc
	done   chan struct{}
}

// Start launches a generation bound to ctx
func Start(ctx context.Context, t Timings, req Request) *Job {
	ctx, cancel := context.WithCancel(ctx)
	j := &Job{
		snap:   models.GenerationSnapshot{Status: StatusRunning},
		subs:   make(map[chan models.GenerationSnapshot]struct{}),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go j.run(ctx, t, req)
	return j
}

func (j *Job) run(ctx context.Context, t Timings, req Request) {
	defer close(j.done)
	defer j.cancel()

	stop := Every(ctx, t.Interval, j.tick)
	defer stop()

	if err := Sleep(ctx, t.Duration); err != nil {
		stop()
		j.finish(StatusCanceled, "", "")
		return
	}

	result := req.Source
	if req.Persist != nil {
		if err := req.Persist(context.WithoutCancel(ctx), result); err != nil {
			stop()
			slog.Error("failed to save generated photo", "error", err)
			j.finish(StatusFailed, "", err.Error())
			return
		}
	}

	stop()
	j.setProgress(Full)

	if err := Sleep(ctx, t.Settle); err != nil {
		j.finish(StatusCanceled, "", "")
		return
	}

	if ctx.Err() != nil {
		j.finish(StatusCanceled, "", "")
		return
	}
	if req.OnComplete != nil {
		req.OnComplete(result)
	}
	j.finish(StatusComplete, result, "")
}

// tick advances the progress by one increment and reports whether ticking
// should continue
func (j *Job) tick() bool {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.snap.Progress >= Ceiling {
		return false
	}
	j.snap.Progress = min(j.snap.Progress+Increment, Ceiling)
	j.publishLocked()
	return j.snap.Progress < Ceiling
}

func (j *Job) setProgress(p int) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if p > j.snap.Progress {
		j.snap.Progress = p
	}
	j.publishLocked()
}

func (j *Job) finish(status, result, errMsg string) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.snap.Status = status
	j.snap.ResultURL = result
	j.snap.Error = errMsg
	j.publishLocked()

	for ch := range j.subs {
		close(ch)
	}
	j.subs = nil
}

// publishLocked hands the latest snapshot to every subscriber, replacing
// any snapshot the subscriber has not read yet
func (j *Job) publishLocked() {
	for ch := range j.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- j.snap:
		default:
		}
	}
}

// Snapshot returns the current progress and status
func (j *Job) Snapshot() models.GenerationSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.snap
}

// Subscribe returns a channel carrying the latest snapshot after every
// change. It is closed once the job has ended; the final snapshot is
// delivered first. Call the returned function to stop listening early.
func (j *Job) Subscribe() (<-chan models.GenerationSnapshot, func()) {
	ch := make(chan models.GenerationSnapshot, 1)

	j.mu.Lock()
	defer j.mu.Unlock()

	ch <- j.snap
	if j.subs == nil {
		close(ch)
		return ch, func() {}
	}
	j.subs[ch] = struct{}{}

	return ch, func() {
		j.mu.Lock()
		defer j.mu.Unlock()
		if _, ok := j.subs[ch]; ok {
			delete(j.subs, ch)
			close(ch)
		}
	}
}

// Cancel stops the job. It does not wait; use Wait for that.
func (j *Job) Cancel() {
	j.cancel()
}

// Wait blocks until the job has ended or ctx is done
func (j *Job) Wait(ctx context.Context) error {
	select {
	case <-j.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed when the job has ended
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Failed reports whether the job ended because the result could not be saved
func (j *Job) Failed() bool {
	return j.Snapshot().Status == StatusFailed
}
