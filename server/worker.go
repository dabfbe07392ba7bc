package server

import (
	"context"
	"fmt"
	"sync"

	"github.com/chazu/nalm/vm"
)

// workRequest represents a unit of work to be executed on the worker goroutine.
type workRequest struct {
	fn   func(*vm.Executor) interface{}
	done chan workResult
}

// workResult holds the return value from an executor operation.
type workResult struct {
	value interface{}
	err   error
}

// Worker serializes all access to one Executor through a single goroutine.
// The executor is single-threaded; every handler touching a session's state
// must go through its worker.
type Worker struct {
	exec     *vm.Executor
	requests chan workRequest
	quit     chan struct{}
	stopOnce sync.Once
}

// NewWorker creates a Worker and starts the processing goroutine.
func NewWorker(e *vm.Executor) *Worker {
	w := &Worker{
		exec:     e,
		requests: make(chan workRequest, 16),
		quit:     make(chan struct{}),
	}
	go w.loop()
	return w
}

// loop processes requests sequentially on a dedicated goroutine.
func (w *Worker) loop() {
	for {
		select {
		case req := <-w.requests:
			req.done <- w.execute(req.fn)
		case <-w.quit:
			return
		}
	}
}

// execute runs a function on the executor, recovering from panics.
func (w *Worker) execute(fn func(*vm.Executor) interface{}) workResult {
	var result workResult
	func() {
		defer func() {
			if r := recover(); r != nil {
				result.err = fmt.Errorf("%v", r)
			}
		}()
		result.value = fn(w.exec)
	}()
	return result
}

// Do submits fn for execution on the worker goroutine and blocks until it
// completes. If ctx ends before the worker picks the request up, Do gives
// up with ctx's error; once started, fn runs to completion and is expected
// to watch ctx itself.
func (w *Worker) Do(ctx context.Context, fn func(*vm.Executor) interface{}) (interface{}, error) {
	req := workRequest{
		fn:   fn,
		done: make(chan workResult, 1),
	}
	select {
	case w.requests <- req:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-w.quit:
		return nil, errWorkerStopped
	}
	select {
	case result := <-req.done:
		return result.value, result.err
	case <-w.quit:
		return nil, errWorkerStopped
	}
}

// Stop shuts down the worker goroutine. Requests already running finish;
// their callers get errWorkerStopped.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() { close(w.quit) })
}
