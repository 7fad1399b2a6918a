// Package background runs long remote operations off the interactive loop.
// Work executes on its own goroutine; results are queued and only ever
// delivered on the caller's goroutine via Drain or Wait, so the presentation
// layer never touches shared state from two goroutines at once.
package background

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dkarademir/docstage/internal/logging"
)

// Result is the completion record of one submitted operation.
type Result struct {
	Name    string
	Success bool
	Message string
	Elapsed time.Duration
}

// Runner owns the worker goroutines and the completion queue.
type Runner struct {
	logger      logging.Logger
	completions chan Result
	pending     atomic.Int32
}

func NewRunner(logger logging.Logger) *Runner {
	return &Runner{
		logger:      logger,
		completions: make(chan Result, 16),
	}
}

// Submit starts work on its own goroutine. A panic inside work becomes a
// failed Result instead of crashing the process.
func (r *Runner) Submit(ctx context.Context, name string, work func(context.Context) Result) {
	r.pending.Add(1)
	r.logger.Debug(ctx, "operation submitted", "op", name)

	go func() {
		start := time.Now()
		res := r.invoke(ctx, name, work)
		res.Name = name
		res.Elapsed = time.Since(start)

		r.pending.Add(-1)
		r.completions <- res
	}()
}

func (r *Runner) invoke(ctx context.Context, name string, work func(context.Context) Result) (res Result) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error(ctx, "operation panicked", "op", name, "panic", p)
			res = Result{Success: false, Message: fmt.Sprintf("internal error: %v", p)}
		}
	}()
	return work(ctx)
}

// Pending reports how many operations have been submitted but not yet queued
// a completion.
func (r *Runner) Pending() int {
	return int(r.pending.Load())
}

// Drain delivers every queued completion to handle without blocking and
// returns how many were delivered.
func (r *Runner) Drain(handle func(Result)) int {
	n := 0
	for {
		select {
		case res := <-r.completions:
			handle(res)
			n++
		default:
			return n
		}
	}
}

// Wait blocks for the next completion and delivers it to handle. It returns
// ctx.Err() if the context ends first.
func (r *Runner) Wait(ctx context.Context, handle func(Result)) error {
	select {
	case res := <-r.completions:
		handle(res)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
