package meshing

import (
	"context"
	"errors"
	"log"
	"runtime"
	"sync"
	"time"

	"voxelview/internal/profiling"
	"voxelview/internal/regions"
)

// Sink receives meshed units. *regions.Space satisfies it.
type Sink interface {
	AddRenderableUnit(u *regions.Unit) error
	Contains(c regions.ChunkCoord) bool
}

// DefaultRetryDelay is how long a worker waits before offering a unit to a
// full sink again.
const DefaultRetryDelay = 5 * time.Millisecond

// WorkerPool meshes chunks on background goroutines and hands the results to
// a Sink. A coordinate stays in flight from Submit until the sink has
// accepted it, so callers never submit the same chunk twice.
type WorkerPool struct {
	jobQueue chan regions.ChunkCoord
	workers  int
	mesher   *ColumnMesher
	sink     Sink

	pending   map[regions.ChunkCoord]struct{}
	pendingMu sync.Mutex

	retryDelay time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWorkerPool starts workers goroutines (NumCPU when workers <= 0) reading
// from a job queue of queueSize entries.
func NewWorkerPool(mesher *ColumnMesher, sink Sink, workers int, queueSize int) *WorkerPool {
	ctx, cancel := context.WithCancel(context.Background())
	if workers <= 0 {
		workers = max(runtime.NumCPU(), 1)
	}
	pool := &WorkerPool{
		jobQueue:   make(chan regions.ChunkCoord, max(queueSize, 1)),
		workers:    workers,
		mesher:     mesher,
		sink:       sink,
		pending:    make(map[regions.ChunkCoord]struct{}),
		retryDelay: DefaultRetryDelay,
		ctx:        ctx,
		cancel:     cancel,
	}

	for i := 0; i < workers; i++ {
		pool.wg.Add(1)
		go pool.worker(i)
	}

	return pool
}

// Submit queues chunk c for meshing. It returns false if c is already in
// flight, the queue is full or the pool is shut down.
func (p *WorkerPool) Submit(c regions.ChunkCoord) bool {
	if p.ctx.Err() != nil {
		return false
	}

	p.pendingMu.Lock()
	if _, ok := p.pending[c]; ok {
		p.pendingMu.Unlock()
		return false
	}
	p.pending[c] = struct{}{}
	p.pendingMu.Unlock()

	select {
	case p.jobQueue <- c:
		return true
	default:
		// queue full: rollback
		p.done(c)
		return false
	}
}

// InFlight reports whether c was submitted and not yet accepted by the sink.
func (p *WorkerPool) InFlight(c regions.ChunkCoord) bool {
	p.pendingMu.Lock()
	defer p.pendingMu.Unlock()
	_, ok := p.pending[c]
	return ok
}

// Pending returns the number of chunks in flight.
func (p *WorkerPool) Pending() int {
	p.pendingMu.Lock()
	defer p.pendingMu.Unlock()
	return len(p.pending)
}

// GetQueueLength returns the current number of jobs in the queue.
func (p *WorkerPool) GetQueueLength() int {
	return len(p.jobQueue)
}

// Workers returns the number of worker goroutines.
func (p *WorkerPool) Workers() int {
	return p.workers
}

func (p *WorkerPool) done(c regions.ChunkCoord) {
	p.pendingMu.Lock()
	delete(p.pending, c)
	p.pendingMu.Unlock()
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	for {
		select {
		case c := <-p.jobQueue:
			p.process(id, c)
		case <-p.ctx.Done():
			return
		}
	}
}

func (p *WorkerPool) process(id int, c regions.ChunkCoord) {
	defer p.done(c)

	if p.ctx.Err() != nil || p.sink.Contains(c) {
		return
	}
	u := p.mesher.MeshUnit(c)
	for {
		err := p.sink.AddRenderableUnit(u)
		if err == nil {
			profiling.Count("meshing.delivered", 1)
			return
		}
		if !errors.Is(err, regions.ErrQueueFull) {
			log.Printf("mesh worker %d: drop %v: %v", id, c, err)
			return
		}
		select {
		case <-time.After(p.retryDelay):
		case <-p.ctx.Done():
			return
		}
	}
}

// Shutdown stops the workers and waits for them. Queued jobs are dropped and
// a worker blocked on a full sink gives up its unit.
func (p *WorkerPool) Shutdown() {
	p.cancel()
	p.wg.Wait()
	for {
		select {
		case c := <-p.jobQueue:
			p.done(c)
		default:
			return
		}
	}
}
