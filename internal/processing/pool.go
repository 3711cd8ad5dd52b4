package processing

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"
)

// Pool bounds the number of analyses running at once. Each task runs on its
// own goroutine and owns all of its state.
type Pool struct {
	sem    *semaphore.Weighted
	wg     sync.WaitGroup
	logger zerolog.Logger
}

func NewPool(workers int, logger zerolog.Logger) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{
		sem:    semaphore.NewWeighted(int64(workers)),
		logger: logger.With().Str("component", "pool").Logger(),
	}
}

// Run blocks until a slot is free, then runs process on the calling goroutine.
func (p *Pool) Run(ctx context.Context, process func() error) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("waiting for worker: %w", err)
	}
	defer p.sem.Release(1)
	return process()
}

// Go schedules process in the background and returns immediately. Errors are
// logged; callers that need them report through their own channels.
func (p *Pool) Go(ctx context.Context, name string, process func() error) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				p.logger.Error().Str("task", name).Interface("panic", r).Msg("task panicked")
			}
		}()
		if err := p.Run(ctx, process); err != nil {
			p.logger.Error().Err(err).Str("task", name).Msg("task failed")
		}
	}()
}

// Wait blocks until every task started with Go has returned.
func (p *Pool) Wait() {
	p.wg.Wait()
}
