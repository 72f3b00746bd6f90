// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package generation

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/danielhkuo/animal-portrait/models"
)

var fastTimings = Timings{
	Interval: time.Millisecond,
	Duration: 30 * time.Millisecond,
	Settle:   5 * time.Millisecond,
}

func waitJob(t *testing.T, j *Job) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := j.Wait(ctx); err != nil {
		t.Fatalf("job did not finish: %v", err)
	}
}

func TestJob_CompletesAtFullProgress(t *testing.T) {
	var mu sync.Mutex
	var persisted string
	var progressAtComplete int
	var completed atomic.Int32

	var j *Job
	ready := make(chan struct{})
	j = Start(context.Background(), fastTimings, Request{
		Source: "/photos/p1",
		Persist: func(ctx context.Context, result string) error {
			mu.Lock()
			defer mu.Unlock()
			persisted = result
			return nil
		},
		OnComplete: func(result string) {
			<-ready
			progressAtComplete = j.Snapshot().Progress
			completed.Add(1)
		},
	})
	close(ready)
	waitJob(t, j)

	if completed.Load() != 1 {
		t.Fatalf("Expected OnComplete once, got %d", completed.Load())
	}
	if progressAtComplete != Full {
		t.Errorf("Expected progress 100 before OnComplete, got %d", progressAtComplete)
	}

	mu.Lock()
	defer mu.Unlock()
	if persisted != "/photos/p1" {
		t.Errorf("Expected result to be the source photo, got %q", persisted)
	}

	snap := j.Snapshot()
	if snap.Status != StatusComplete || snap.ResultURL != "/photos/p1" || snap.Progress != Full {
		t.Errorf("Unexpected final snapshot: %+v", snap)
	}
}

func TestJob_ProgressMonotonic(t *testing.T) {
	timings := Timings{Interval: time.Millisecond, Duration: 40 * time.Millisecond, Settle: time.Millisecond}
	j := Start(context.Background(), timings, Request{Source: "/photos/p1"})

	updates, _ := j.Subscribe()
	var seen []models.GenerationSnapshot
	for snap := range updates {
		seen = append(seen, snap)
	}

	if len(seen) == 0 {
		t.Fatal("Expected at least one snapshot")
	}
	last := -1
	for _, s := range seen {
		if s.Progress < last {
			t.Fatalf("progress went backwards: %d after %d", s.Progress, last)
		}
		if s.Progress > Full {
			t.Fatalf("progress above 100: %d", s.Progress)
		}
		last = s.Progress
	}

	final := seen[len(seen)-1]
	if final.Progress != Full || final.Status != StatusComplete {
		t.Errorf("Expected final snapshot at 100/complete, got %+v", final)
	}
}

func TestJob_TicksStopAtCeiling(t *testing.T) {
	// Long enough for many more ticks than needed to reach the ceiling
	timings := Timings{Interval: time.Millisecond, Duration: time.Hour, Settle: time.Millisecond}
	j := Start(context.Background(), timings, Request{Source: "/photos/p1"})
	defer j.Cancel()

	deadline := time.Now().Add(5 * time.Second)
	for j.Snapshot().Progress < Ceiling {
		if time.Now().After(deadline) {
			t.Fatalf("progress never reached %d", Ceiling)
		}
		time.Sleep(time.Millisecond)
	}

	time.Sleep(20 * time.Millisecond)
	if got := j.Snapshot().Progress; got != Ceiling {
		t.Errorf("Expected progress to hold at %d, got %d", Ceiling, got)
	}
}

func TestJob_PersistFailure(t *testing.T) {
	var completed atomic.Bool
	j := Start(context.Background(), fastTimings, Request{
		Source: "/photos/p1",
		Persist: func(ctx context.Context, result string) error {
			return errors.New("relation \"generated_photos\" does not exist")
		},
		OnComplete: func(string) { completed.Store(true) },
	})
	waitJob(t, j)

	if completed.Load() {
		t.Error("OnComplete must not run after a failed save")
	}
	snap := j.Snapshot()
	if snap.Status != StatusFailed {
		t.Errorf("Expected status failed, got %s", snap.Status)
	}
	if snap.Progress >= Full {
		t.Errorf("Failed job should not reach 100, got %d", snap.Progress)
	}
	if snap.Error == "" {
		t.Error("Expected error message in snapshot")
	}
	if !j.Failed() {
		t.Error("Failed() should report true")
	}
}

func TestJob_Cancel(t *testing.T) {
	var completed, persisted atomic.Bool
	timings := Timings{Interval: time.Millisecond, Duration: time.Hour, Settle: time.Millisecond}
	j := Start(context.Background(), timings, Request{
		Source:     "/photos/p1",
		Persist:    func(context.Context, string) error { persisted.Store(true); return nil },
		OnComplete: func(string) { completed.Store(true) },
	})

	time.Sleep(5 * time.Millisecond)
	j.Cancel()
	waitJob(t, j)

	if completed.Load() || persisted.Load() {
		t.Error("cancelled job should neither persist nor complete")
	}
	if got := j.Snapshot().Status; got != StatusCanceled {
		t.Errorf("Expected status canceled, got %s", got)
	}
}

func TestJob_SubscribeAfterFinish(t *testing.T) {
	j := Start(context.Background(), fastTimings, Request{Source: "/photos/p1"})
	waitJob(t, j)

	updates, unsubscribe := j.Subscribe()
	defer unsubscribe()

	snap, ok := <-updates
	if !ok || snap.Status != StatusComplete {
		t.Fatalf("Expected final snapshot, got %+v (ok=%v)", snap, ok)
	}
	if _, ok := <-updates; ok {
		t.Error("Expected channel to be closed")
	}
}

func TestJob_Unsubscribe(t *testing.T) {
	timings := Timings{Interval: time.Millisecond, Duration: time.Hour, Settle: time.Millisecond}
	j := Start(context.Background(), timings, Request{Source: "/photos/p1"})
	defer j.Cancel()

	updates, unsubscribe := j.Subscribe()
	unsubscribe()
	unsubscribe()

	for range updates {
	}
}

func TestEvery_Stop(t *testing.T) {
	var calls atomic.Int32
	stop := Every(context.Background(), time.Millisecond, func() bool {
		calls.Add(1)
		return true
	})

	time.Sleep(10 * time.Millisecond)
	stop()
	after := calls.Load()
	time.Sleep(10 * time.Millisecond)

	if after == 0 {
		t.Error("Expected at least one call")
	}
	if calls.Load() != after {
		t.Error("fn called after stop returned")
	}
	stop()
}

func TestSleep_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := Sleep(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if err := Sleep(context.Background(), 0); err != nil {
		t.Errorf("Expected nil for zero duration, got %v", err)
	}
}
