package parallel

import "sync"

type job struct {
	r  Range
	fn func(Range)
	wg *sync.WaitGroup
}

// Pool is a Runner backed by a fixed set of long-lived goroutines.
// A Pool may be shared by several callers; each Run waits only for its own
// ranges. Close must be called once the pool is no longer needed.
type Pool struct {
	jobs chan job
	once sync.Once
	done sync.WaitGroup
}

// NewPool starts n worker goroutines. n < 1 is treated as 1.
func NewPool(n int) *Pool {
	if n < 1 {
		n = 1
	}

	p := &Pool{jobs: make(chan job)}
	p.done.Add(n)
	for i := 0; i < n; i++ {
		go p.work()
	}

	return p
}

func (p *Pool) work() {
	defer p.done.Done()
	for j := range p.jobs {
		j.fn(j.r)
		j.wg.Done()
	}
}

// Run implements Runner. It must not be called after Close.
func (p *Pool) Run(ranges []Range, fn func(Range)) {
	var wg sync.WaitGroup
	wg.Add(len(ranges))

	for _, r := range ranges {
		p.jobs <- job{r: r, fn: fn, wg: &wg}
	}

	wg.Wait()
}

// Close stops the workers and waits for them to exit.
func (p *Pool) Close() {
	p.once.Do(func() {
		close(p.jobs)
		p.done.Wait()
	})
}
