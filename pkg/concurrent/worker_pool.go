package concurrent

import (
	"sync"
)

type JobFunc[T any, G any] func(job T) G

// Job. unit of work tagged with its position so results can be put back in input order.
type Job[T any] struct {
	Index int
	Item  T
}

type Result[G any] struct {
	Index int
	Value G
}

type WorkerPool[T any, G any] struct {
	numWorkers int
	jobQueue   chan Job[T]
	results    chan Result[G]
	wg         sync.WaitGroup
}

func NewWorkerPool[T any, G any](numWorkers, jobQueueSize int) *WorkerPool[T, G] {
	if numWorkers < 1 {
		numWorkers = 1
	}
	return &WorkerPool[T, G]{
		numWorkers: numWorkers,
		jobQueue:   make(chan Job[T], jobQueueSize),
		results:    make(chan Result[G], jobQueueSize),
	}
}

func (wp *WorkerPool[T, G]) worker(jobFunc JobFunc[T, G]) {
	defer wp.wg.Done()
	for job := range wp.jobQueue {
		wp.results <- Result[G]{Index: job.Index, Value: jobFunc(job.Item)}
	}
}

func (wp *WorkerPool[T, G]) Start(jobFunc JobFunc[T, G]) {
	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(jobFunc)
	}
}

func (wp *WorkerPool[T, G]) Wait() {
	wp.wg.Wait()
	close(wp.results)
}

func (wp *WorkerPool[T, G]) AddJob(index int, item T) {
	wp.jobQueue <- Job[T]{Index: index, Item: item}
}

func (wp *WorkerPool[T, G]) CollectResults() chan Result[G] {
	return wp.results
}

func (wp *WorkerPool[T, G]) Close() {
	close(wp.jobQueue)
}

// Map. runs jobFunc over items on numWorkers goroutines, output[i] = jobFunc(items[i]).
func Map[T any, G any](items []T, numWorkers int, jobFunc JobFunc[T, G]) []G {
	out := make([]G, len(items))
	if len(items) == 0 {
		return out
	}

	wp := NewWorkerPool[T, G](numWorkers, len(items))
	wp.Start(jobFunc)
	for i, item := range items {
		wp.AddJob(i, item)
	}
	wp.Close()
	wp.Wait()

	for res := range wp.CollectResults() {
		out[res.Index] = res.Value
	}
	return out
}
