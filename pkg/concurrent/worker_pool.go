package concurrent

import (
	"sync"
)

/*
WorkerPool. fixed number of workers draining a buffered job queue.

	pool := NewWorkerPool[T, G](workers, jobCount)
	pool.AddJob(...)   // jobCount times
	pool.Close()
	pool.Start(fn)
	pool.Wait()
	for r := range pool.CollectResults() { ... }
*/
type WorkerPool[T JobI, G any] struct {
	numWorkers int
	jobQueue   chan Job[T]
	results    chan G
	wg         sync.WaitGroup
	jobCount   int
}

func NewWorkerPool[T JobI, G any](numWorkers, numJobs int) *WorkerPool[T, G] {
	if numWorkers < 1 {
		numWorkers = 1
	}
	return &WorkerPool[T, G]{
		numWorkers: numWorkers,
		jobQueue:   make(chan Job[T], numJobs),
		results:    make(chan G, numJobs),
	}
}

// AddJob. must not be called after Close. the queue holds numJobs jobs.
func (wp *WorkerPool[T, G]) AddJob(item T) {
	wp.jobQueue <- Job[T]{ID: wp.jobCount, JobItem: item}
	wp.jobCount++
}

// Close. no more jobs.
func (wp *WorkerPool[T, G]) Close() {
	close(wp.jobQueue)
}

func (wp *WorkerPool[T, G]) Start(fn JobFunc[T, G]) {
	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(fn)
	}
}

func (wp *WorkerPool[T, G]) worker(fn JobFunc[T, G]) {
	defer wp.wg.Done()
	for job := range wp.jobQueue {
		wp.results <- fn(job.JobItem)
	}
}

// Wait. block until every job ran, then close the results channel.
func (wp *WorkerPool[T, G]) Wait() {
	wp.wg.Wait()
	close(wp.results)
}

func (wp *WorkerPool[T, G]) CollectResults() <-chan G {
	return wp.results
}
