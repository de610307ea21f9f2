package mpm

import (
	"runtime"
	"sync"
)

// Backend runs data-parallel loops for the solver stages. Run splits [0, n)
// into contiguous chunks and invokes fn once per chunk with a worker index
// in [0, Workers()); a worker receives at most one chunk per Run call, so
// per-worker scratch touched inside fn is never shared. Run returns only
// after every chunk has completed, which gives the stages their barriers.
type Backend interface {
	Run(n int, fn func(worker, start, end int))
	Workers() int
	Close()
}

// Serial is the single-threaded reference backend. It is fully
// deterministic and is what the tests run against.
type Serial struct{}

func (Serial) Run(n int, fn func(worker, start, end int)) {
	if n > 0 {
		fn(0, 0, n)
	}
}

func (Serial) Workers() int { return 1 }
func (Serial) Close()       {}

// workChunk is one contiguous index range dispatched to a pool worker.
type workChunk struct {
	worker     int
	start, end int
	fn         func(worker, start, end int)
}

// Pool is a persistent worker-pool backend. Workers are launched lazily on
// the first Run and live until Close.
type Pool struct {
	workers int

	workChan chan workChunk
	doneChan chan struct{}
	stopChan chan struct{}
	wg       sync.WaitGroup
	running  bool
}

// NewPool creates a pool with the given worker count; workers <= 0 uses
// GOMAXPROCS.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Pool{workers: workers}
}

func (p *Pool) Workers() int { return p.workers }

// start launches the persistent worker goroutines.
func (p *Pool) start() {
	if p.running {
		return
	}
	p.workChan = make(chan workChunk, p.workers)
	p.doneChan = make(chan struct{}, p.workers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.stopChan:
			return
		case chunk, ok := <-p.workChan:
			if !ok {
				return
			}
			chunk.fn(chunk.worker, chunk.start, chunk.end)
			p.doneChan <- struct{}{}
		}
	}
}

// Run dispatches ceil(n/workers)-sized chunks and waits for completion.
func (p *Pool) Run(n int, fn func(worker, start, end int)) {
	if n <= 0 {
		return
	}
	p.start()

	chunkSize := (n + p.workers - 1) / p.workers
	dispatched := 0
	for w := 0; w < p.workers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > n {
			end = n
		}
		if start >= end {
			break
		}
		p.workChan <- workChunk{worker: w, start: start, end: end, fn: fn}
		dispatched++
	}
	for i := 0; i < dispatched; i++ {
		<-p.doneChan
	}
}

// Close stops the workers and waits for them to exit.
func (p *Pool) Close() {
	if !p.running {
		return
	}
	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}
