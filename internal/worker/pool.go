package worker

import (
	"context"
	"sync"
)

// Job represents a unit of work to be executed
type Job interface {
	Execute(ctx context.Context) Result
}

// Result represents the result of a job execution
type Result interface {
	GetError() error
}

// indexedJob remembers where a job's result goes
type indexedJob struct {
	index int
	job   Job
}

// Pool runs jobs on a fixed number of workers
type Pool struct {
	workers int
}

// NewPool creates a new worker pool with the specified number of workers
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	return &Pool{workers: workers}
}

// Workers returns the configured concurrency
func (p *Pool) Workers() int {
	return p.workers
}

// Run executes every job and returns the results in submission order.
// Jobs not started before ctx is cancelled have a nil result.
func (p *Pool) Run(ctx context.Context, jobs []Job) []Result {
	results := make([]Result, len(jobs))
	if len(jobs) == 0 {
		return results
	}

	workers := p.workers
	if workers > len(jobs) {
		workers = len(jobs)
	}

	queue := make(chan indexedJob, workers*2) // Buffered to keep workers busy
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ij := range queue {
				if ctx.Err() != nil {
					continue
				}
				// Each index is written by exactly one worker
				results[ij.index] = ij.job.Execute(ctx)
			}
		}()
	}

submit:
	for i, job := range jobs {
		select {
		case <-ctx.Done():
			break submit
		case queue <- indexedJob{index: i, job: job}:
		}
	}
	close(queue)
	wg.Wait()

	return results
}

// Errors returns the non-nil errors of results, skipping jobs that never ran
func Errors(results []Result) []error {
	var errs []error
	for _, r := range results {
		if r == nil {
			continue
		}
		if err := r.GetError(); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}
