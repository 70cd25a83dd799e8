package parallel

import (
	"runtime"
	"sync"
)

type (
	WorkerFunc func(func())
	WaitFunc   func(done bool)
	CancelFunc func()
)

// Pool runs submitted functions on a fixed set of workers. With a single
// worker, Do runs the function inline and Wait is a no-op.
type Pool struct {
	workers sync.WaitGroup
	tasks   sync.WaitGroup
	Do      WorkerFunc
	Wait    WaitFunc
	Cancel  CancelFunc
	size    int
}

func Start(numWorkers int) *Pool {
	if numWorkers < 1 {
		numWorkers = runtime.GOMAXPROCS(0)
	}

	pool := &Pool{
		Do: func(f func()) {
			f()
		},
		Wait:   func(bool) {},
		Cancel: func() {},
		size:   numWorkers,
	}

	if numWorkers > 1 {
		workChan := make(chan func(), numWorkers)

		for range numWorkers {
			pool.workers.Go(func() {
				for {
					f, ok := <-workChan
					if !ok {
						return
					}
					f()
				}
			})
		}

		pool.Do = func(f func()) {
			pool.tasks.Add(1)
			workChan <- func() {
				defer pool.tasks.Done()
				f()
			}
		}

		// Wait blocks until every submitted function returned. When done is
		// set the workers are stopped as well and the pool can't be reused.
		pool.Wait = func(done bool) {
			pool.tasks.Wait()
			if done {
				pool.Cancel()
				pool.workers.Wait()
			}
		}
		pool.Cancel = sync.OnceFunc(func() { close(workChan) })
	}

	return pool
}

// Size reports the number of workers.
func (p *Pool) Size() int {
	return p.size
}
