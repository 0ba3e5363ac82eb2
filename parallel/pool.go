package parallel

import (
	"runtime"
	"sync"
)

// Pool runs jobs on a fixed number of goroutines. A pool of one worker runs
// every job inline in the caller's goroutine, in submission order.
type Pool struct {
	wg      sync.WaitGroup
	work    chan func()
	stop    func()
	workers int
}

// Start launches a pool. numWorkers < 1 means one worker per GOMAXPROCS.
func Start(numWorkers int) *Pool {
	if numWorkers < 1 {
		numWorkers = runtime.GOMAXPROCS(0)
	}

	pool := &Pool{
		workers: numWorkers,
		stop:    func() {},
	}
	if numWorkers == 1 {
		return pool
	}

	pool.work = make(chan func(), numWorkers)
	for range numWorkers {
		pool.wg.Go(func() {
			for f := range pool.work {
				f()
			}
		})
	}
	pool.stop = sync.OnceFunc(func() { close(pool.work) })

	return pool
}

// Workers returns the number of jobs that may run at once.
func (p *Pool) Workers() int {
	return p.workers
}

// Do submits f. It blocks while every worker is busy and the queue is full.
// Do must not be called after Wait.
func (p *Pool) Do(f func()) {
	if p.work == nil {
		f()
		return
	}
	p.work <- f
}

// Wait stops accepting work and blocks until every submitted job has finished.
func (p *Pool) Wait() {
	p.stop()
	p.wg.Wait()
}
