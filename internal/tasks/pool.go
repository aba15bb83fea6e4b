package tasks

import (
	"context"
	"log"
	"sync"
	"time"
)

type job struct {
	name string
	fn   func(ctx context.Context)
}

// Pool is the background lane for best-effort work: booking history updates
// and notification emission. Tasks run outside any request transaction, are
// never retried, and a full queue drops the task rather than blocking the
// caller.
type Pool struct {
	jobs    chan job
	wg      sync.WaitGroup
	timeout time.Duration

	mu     sync.Mutex
	closed bool
}

func NewPool(workers, queueSize int, timeout time.Duration) *Pool {
	if workers <= 0 {
		workers = 2
	}
	if queueSize <= 0 {
		queueSize = 64
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	p := &Pool{
		jobs:    make(chan job, queueSize),
		timeout: timeout,
	}

	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}

	return p
}

// Submit queues fn for background execution. It never blocks: when the queue
// is full or the pool is closed the task is dropped and logged. The mutex is
// held across the send so Close cannot close the channel mid-send.
func (p *Pool) Submit(name string, fn func(ctx context.Context)) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		log.Printf("tasks: pool closed, dropping %s", name)
		return
	}

	select {
	case p.jobs <- job{name: name, fn: fn}:
	default:
		log.Printf("tasks: queue full, dropping %s", name)
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for j := range p.jobs {
		p.run(j)
	}
}

func (p *Pool) run(j job) {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			log.Printf("tasks: panic in %s: %v", j.name, r)
		}
	}()

	j.fn(ctx)
}

// Close stops accepting tasks and drains the queue, giving up when ctx ends.
func (p *Pool) Close(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	close(p.jobs)

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
