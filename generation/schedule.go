// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package generation simulates portrait generation with a progress-reporting job.
package generation

import (
	"context"
	"sync"
	"time"
)

// Every calls fn once per interval until fn returns false, ctx is done, or
// the returned stop function is called. stop blocks until fn is no longer
// running and is safe to call more than once.
func Every(ctx context.Context, interval time.Duration, fn func() bool) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if !fn() {
					return
				}
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(cancel)
		<-done
	}
}

// Sleep waits for d or until ctx is done, whichever comes first
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
