package mesher

import (
	"runtime"

	"github.com/alitto/pond/v2"
)

// maxTasksPerWorker caps how many tasks one ParallelFor submits per worker.
// Larger ranges get a bigger batch instead.
const maxTasksPerWorker = 64

// Pool runs data-parallel loops and offloaded stages on a bounded set of workers.
type Pool struct {
	pool    pond.Pool
	workers int
}

// NewPool creates a pool with the given number of workers; 0 means one per CPU.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Pool{pool: pond.NewPool(workers), workers: workers}
}

// Workers returns the pool size.
func (p *Pool) Workers() int {
	return p.workers
}

// ParallelFor calls body(i) for every i in [0, n), batch indices per task,
// and returns once all calls have finished. A panic in body is returned as an error.
func (p *Pool) ParallelFor(n, batch int, body func(i int)) error {
	if n <= 0 {
		return nil
	}
	if batch < 1 {
		batch = 1
	}
	if limit := p.workers * maxTasksPerWorker; (n+batch-1)/batch > limit {
		batch = (n + limit - 1) / limit
	}

	group := p.pool.NewGroup()
	for start := 0; start < n; start += batch {
		end := min(start+batch, n)
		group.Submit(func() {
			for i := start; i < end; i++ {
				body(i)
			}
		})
	}
	return group.Wait()
}

// Background runs fn on a worker and waits for it.
func (p *Pool) Background(fn func() error) error {
	return p.pool.SubmitErr(fn).Wait()
}

// Stop waits for queued work and releases the workers.
func (p *Pool) Stop() {
	p.pool.StopAndWait()
}
