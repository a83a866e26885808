package services

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/custodia-labs/lessonscout/internal/core/domain"
	"github.com/custodia-labs/lessonscout/internal/core/ports/driving"
)

// Ensure Scheduler implements the interface.
var _ driving.Scheduler = (*Scheduler)(nil)

// Scheduler is the admission queue in front of the search pipeline.
// A fixed pool of workers drains an unbounded FIFO queue, so at most
// Capacity sessions run at once and submission never blocks.
type Scheduler struct {
	config domain.SchedulerConfig
	runner driving.SessionRunner

	mu        sync.Mutex
	cond      *sync.Cond
	queue     []string
	accepting bool
	started   bool
	stopping  bool
	running   int
	processed int64

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewScheduler creates a scheduler. It accepts submissions immediately and
// starts draining them once Start is called.
func NewScheduler(config domain.SchedulerConfig, runner driving.SessionRunner) *Scheduler {
	s := &Scheduler{
		config:    config,
		runner:    runner,
		accepting: true,
	}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// Start launches the worker pool. Cancelling ctx only stops admission:
// queued and in-flight sessions keep running until Stop's context expires.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil // Already running
	}
	if s.stopping {
		return domain.ErrSchedulerStopped
	}
	s.started = true

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	context.AfterFunc(ctx, s.beginShutdown)

	workers := s.config.EffectiveCapacity()
	for i := 0; i < workers; i++ {
		s.wg.Add(1)
		go s.worker(runCtx)
	}
	return nil
}

// Submit enqueues a session and returns immediately.
func (s *Scheduler) Submit(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.accepting {
		return domain.ErrSchedulerStopped
	}
	s.queue = append(s.queue, sessionID)
	s.cond.Signal()
	return nil
}

// Stop stops accepting work and waits for queued and in-flight sessions.
// If ctx ends first, in-flight pipelines are cancelled and ctx's error is
// returned. Sessions still queued at that point stay pending.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.beginShutdown()

	s.mu.Lock()
	started := s.started
	s.mu.Unlock()
	if !started {
		return nil
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.cancel()
		return nil
	case <-ctx.Done():
		s.cancel()
		return fmt.Errorf("scheduler drain: %w", ctx.Err())
	}
}

// Stats reports queue depth and in-flight count.
func (s *Scheduler) Stats() domain.SchedulerStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return domain.SchedulerStats{
		Capacity:  s.config.EffectiveCapacity(),
		Queued:    len(s.queue),
		Running:   s.running,
		Processed: s.processed,
		Accepting: s.accepting,
	}
}

func (s *Scheduler) beginShutdown() {
	s.mu.Lock()
	s.accepting = false
	s.stopping = true
	s.mu.Unlock()
	s.cond.Broadcast()
}

// worker drains the queue until shutdown has begun and the queue is empty.
func (s *Scheduler) worker(ctx context.Context) {
	defer s.wg.Done()

	for {
		s.mu.Lock()
		for len(s.queue) == 0 && !s.stopping {
			s.cond.Wait()
		}
		if len(s.queue) == 0 {
			s.mu.Unlock()
			return
		}
		sessionID := s.queue[0]
		s.queue[0] = ""
		s.queue = s.queue[1:]
		s.running++
		s.mu.Unlock()

		s.run(ctx, sessionID)

		s.mu.Lock()
		s.running--
		s.processed++
		s.mu.Unlock()
	}
}

// run executes one session, keeping the worker alive across panics.
func (s *Scheduler) run(ctx context.Context, sessionID string) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("scheduler: session %s panicked: %v", sessionID, r)
		}
	}()

	if err := s.runner.Run(ctx, sessionID); err != nil {
		log.Printf("scheduler: session %s: %v", sessionID, err)
	}
}
