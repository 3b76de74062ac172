package panel

import (
	"context"
	"sync"
	"time"
)

// Scheduler runs delayed callbacks until its context ends or Stop is called.
// No callback starts after Stop returns.
type Scheduler struct {
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	stopped bool
	wg      sync.WaitGroup
}

func NewScheduler(parent context.Context) *Scheduler {
	ctx, cancel := context.WithCancel(parent)
	return &Scheduler{ctx: ctx, cancel: cancel}
}

// After runs fn once d has elapsed. It reports false when the scheduler is
// already stopped.
func (s *Scheduler) After(d time.Duration, fn func(ctx context.Context)) bool {
	s.mu.Lock()
	if s.stopped || s.ctx.Err() != nil {
		s.mu.Unlock()
		return false
	}
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()

		t := time.NewTimer(d)
		defer t.Stop()

		select {
		case <-s.ctx.Done():
		case <-t.C:
			fn(s.ctx)
		}
	}()
	return true
}

// Stop cancels pending callbacks and waits for running ones.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	s.cancel()
	s.mu.Unlock()

	s.wg.Wait()
}
