package worker

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Job is a unit of fire-and-forget work, typically a remote call plus its continuation.
type Job func(ctx context.Context)

type queued struct {
	ctx context.Context
	job Job
}

// Pool runs submitted jobs on a fixed set of workers. Submit never blocks the
// caller: when the queue is full or the pool is not running the job gets its
// own goroutine. Jobs are not ordered relative to each other. A stopped pool
// can be started again.
type Pool struct {
	logger    *zap.Logger
	count     int
	queueSize int

	mu      sync.RWMutex
	running bool
	jobs    chan queued
	stop    chan struct{}

	wg      sync.WaitGroup // workers
	pending sync.WaitGroup // submitted, unfinished jobs
}

func NewPool(logger *zap.Logger, count, queueSize int) *Pool {
	if count <= 0 {
		count = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	return &Pool{
		logger:    logger,
		count:     count,
		queueSize: queueSize,
	}
}

func (p *Pool) Start(ctx context.Context) {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	p.running = true
	jobs := make(chan queued, p.queueSize)
	stop := make(chan struct{})
	p.jobs, p.stop = jobs, stop
	p.mu.Unlock()

	p.logger.Info("Starting worker pool", zap.Int("workers", p.count))

	for i := 0; i < p.count; i++ {
		p.wg.Add(1)
		go p.worker(i, jobs)
	}

	go func() {
		select {
		case <-ctx.Done():
			p.Stop()
		case <-stop:
		}
	}()
}

// Stop lets the workers finish everything already queued, then returns.
func (p *Pool) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	close(p.stop)
	close(p.jobs)
	p.mu.Unlock()

	p.logger.Info("Stopping worker pool...")
	p.wg.Wait()
	p.logger.Info("Worker pool stopped")
}

func (p *Pool) Submit(ctx context.Context, job Job) {
	p.pending.Add(1)

	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.running {
		select {
		case p.jobs <- queued{ctx: ctx, job: job}:
			return
		default:
		}
	}
	go p.run(-1, queued{ctx: ctx, job: job})
}

// Wait blocks until every submitted job has returned.
func (p *Pool) Wait() {
	p.pending.Wait()
}

func (p *Pool) worker(id int, jobs <-chan queued) {
	defer p.wg.Done()
	for q := range jobs {
		p.run(id, q)
	}
}

func (p *Pool) run(workerID int, q queued) {
	defer p.pending.Done()
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("job panicked", zap.Int("worker", workerID), zap.Any("panic", r))
		}
	}()
	q.job(q.ctx)
}
