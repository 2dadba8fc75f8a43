package parallel

import (
	"log/slog"
	"runtime"
	"runtime/debug"
	"sync"
	"sync/atomic"
)

type (
	WorkerFunc func(func())
	WaitFunc   func(done bool)
	CancelFunc func()
)

// Pool runs jobs on a fixed set of goroutines. With a single worker, jobs
// run inline on the caller's goroutine and Wait returns immediately.
//
// Wait(true) stops accepting jobs and blocks until queued ones finish.
// Wait(false) only blocks, so some other goroutine must call Cancel.
type Pool struct {
	Do     WorkerFunc
	Wait   WaitFunc
	Cancel CancelFunc

	workers int
	jobs    chan func()
	wg      sync.WaitGroup
	panics  atomic.Int64
}

func Start(numWorkers int) *Pool {
	if numWorkers < 1 {
		numWorkers = runtime.GOMAXPROCS(0)
	}

	pool := &Pool{workers: numWorkers}
	pool.Do = pool.run
	pool.Wait = func(bool) {}
	pool.Cancel = func() {}

	if numWorkers == 1 {
		return pool
	}

	pool.jobs = make(chan func(), numWorkers)
	for range numWorkers {
		pool.wg.Go(func() {
			for job := range pool.jobs {
				pool.run(job)
			}
		})
	}

	pool.Do = func(job func()) {
		pool.jobs <- job
	}
	pool.Cancel = sync.OnceFunc(func() { close(pool.jobs) })
	pool.Wait = func(done bool) {
		if done {
			pool.Cancel()
		}
		pool.wg.Wait()
	}

	return pool
}

// Workers returns the number of goroutines serving the pool.
func (p *Pool) Workers() int {
	return p.workers
}

// Panics returns how many jobs panicked so far.
func (p *Pool) Panics() int64 {
	return p.panics.Load()
}

// run executes job, turning a panic into a logged error so that one bad
// input cannot stop a batch.
func (p *Pool) run(job func()) {
	defer func() {
		if r := recover(); r != nil {
			p.panics.Add(1)
			slog.Error("job panicked", "panic", r, "stack", string(debug.Stack()))
		}
	}()
	job()
}
