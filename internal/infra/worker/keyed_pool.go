package worker

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"telegram-identity-bot/internal/domain"
)

type Task func(ctx context.Context) error

// KeyedPool runs tasks on a fixed set of workers, each draining its own
// queue. Tasks sharing a key land on the same queue, so processing for one
// key is strictly serialized while different keys run in parallel. The
// dialogue engine keys by conversation id: the read-modify-write of dialogue
// state is not atomic against the store, so two handlers for the same
// conversation must never be in flight together.
type KeyedPool struct {
	wg     sync.WaitGroup
	queues []chan Task
	log    *zerolog.Logger
}

func NewKeyedPool(workers, queueDepth int, logger *zerolog.Logger) *KeyedPool {
	if workers <= 0 {
		workers = 8
	}
	if queueDepth <= 0 {
		queueDepth = 32
	}
	queues := make([]chan Task, workers)
	for i := range queues {
		queues[i] = make(chan Task, queueDepth)
	}
	return &KeyedPool{queues: queues, log: logger}
}

// Start launches one goroutine per queue. Workers drain their queue until
// ctx is canceled.
func (p *KeyedPool) Start(ctx context.Context) {
	for i, q := range p.queues {
		p.wg.Add(1)
		go func(id int, queue chan Task) {
			defer p.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case task := <-queue:
					if task == nil {
						continue
					}
					if err := task(ctx); err != nil {
						p.log.Error().Err(err).Int("worker", id).Msg("task failed")
					}
				}
			}
		}(i, q)
	}
}

// Submit enqueues a task on the queue owned by key. When that queue is full
// the call blocks, applying backpressure to the producer instead of growing
// unbounded or reordering tasks.
func (p *KeyedPool) Submit(ctx context.Context, key int64, task Task) error {
	if task == nil {
		return fmt.Errorf("nil task: %w", domain.ErrInvalidArgument)
	}
	queue := p.queues[int(uint64(key)%uint64(len(p.queues)))]
	select {
	case queue <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Wait blocks until all workers have exited after context cancellation.
func (p *KeyedPool) Wait() {
	p.wg.Wait()
}
