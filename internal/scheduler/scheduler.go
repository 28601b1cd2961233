package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go-etl-pipeline/internal/graph"
	"go-etl-pipeline/internal/model"
)

// Status of a task inside one execution.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped" // an upstream dependency failed
)

// TaskFunc executes one task of the graph.
type TaskFunc func(ctx context.Context, task *graph.Task) error

// RetryPolicy controls retries for errors that advertise themselves as
// retryable (see model.Retryable). Delays grow by BackoffFactor up to
// MaxDelay.
type RetryPolicy struct {
	MaxRetries    int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// DefaultRetryPolicy is used when Options.Retry is left zero.
var DefaultRetryPolicy = RetryPolicy{
	MaxRetries:    3,
	InitialDelay:  2 * time.Second,
	MaxDelay:      2 * time.Minute,
	BackoffFactor: 2,
}

func (p RetryPolicy) delay(attempt int) time.Duration {
	d := p.InitialDelay
	for i := 0; i < attempt; i++ {
		d = time.Duration(float64(d) * p.BackoffFactor)
		if d >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	return d
}

// Options configures one execution.
type Options struct {
	Workers int
	Retry   RetryPolicy
	Logger  *slog.Logger
	// OnUpdate is called on every task state transition. Errors from it are
	// the caller's problem; it must be safe for concurrent use.
	OnUpdate func(taskID string, status Status, err error)
}

// Executor runs a task graph, respecting its edges. Independent tasks run in
// parallel under the worker limit; a failed task marks its transitive
// dependents skipped while unrelated chains keep going.
type Executor struct {
	opts Options
}

func New(opts Options) *Executor {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Retry.BackoffFactor == 0 {
		opts.Retry = DefaultRetryPolicy
	}
	return &Executor{opts: opts}
}

type result struct {
	id  string
	err error
}

// Run executes the graph to completion (every task succeeded, failed, or was
// skipped) and returns the joined failures, if any.
func (e *Executor) Run(ctx context.Context, g *graph.TaskGraph, fn TaskFunc) error {
	total := g.Len()
	if total == 0 {
		return nil
	}

	waiting := make(map[string]int, total) // unmet dependency count
	status := make(map[string]Status, total)
	ready := make(chan string, total)
	results := make(chan result, total)

	for _, task := range g.Tasks() {
		status[task.ID] = StatusPending
		waiting[task.ID] = len(g.Deps(task.ID))
		if waiting[task.ID] == 0 {
			ready <- task.ID
		}
	}

	var wg sync.WaitGroup
	for i := 0; i < e.opts.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range ready {
				task, _ := g.Task(id)
				e.update(id, StatusRunning, nil)
				err := e.runWithRetry(ctx, task, fn)
				results <- result{id: id, err: err}
			}
		}()
	}

	var failures []error
	resolved := 0
	for resolved < total {
		res := <-results
		resolved++

		if res.err != nil {
			status[res.id] = StatusFailed
			e.update(res.id, StatusFailed, res.err)
			failures = append(failures, res.err)
			resolved += e.skipDependents(g, res.id, status, func(id string) {
				e.update(id, StatusSkipped, nil)
			})
			continue
		}

		status[res.id] = StatusSucceeded
		e.update(res.id, StatusSucceeded, nil)
		for _, next := range g.Dependents(res.id) {
			if status[next] != StatusPending {
				continue
			}
			waiting[next]--
			if waiting[next] == 0 {
				ready <- next
			}
		}
	}

	close(ready)
	wg.Wait()

	if len(failures) > 0 {
		return fmt.Errorf("%d of %d tasks failed: %w", len(failures), total, errors.Join(failures...))
	}
	return nil
}

// skipDependents marks every pending transitive dependent of id skipped and
// returns how many tasks it resolved.
func (e *Executor) skipDependents(g *graph.TaskGraph, id string, status map[string]Status, notify func(id string)) int {
	skipped := 0
	stack := append([]string(nil), g.Dependents(id)...)
	for len(stack) > 0 {
		next := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if status[next] != StatusPending {
			continue
		}
		status[next] = StatusSkipped
		notify(next)
		skipped++
		stack = append(stack, g.Dependents(next)...)
	}
	return skipped
}

func (e *Executor) runWithRetry(ctx context.Context, task *graph.Task, fn TaskFunc) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = fn(ctx, task)
		if err == nil {
			return nil
		}
		if !model.Retryable(err) || attempt >= e.opts.Retry.MaxRetries {
			return err
		}

		delay := e.opts.Retry.delay(attempt)
		e.opts.Logger.Warn("task failed, retrying",
			"task", task.ID, "attempt", attempt+1, "delay", delay, "error", err)
		select {
		case <-ctx.Done():
			return err
		case <-time.After(delay):
		}
	}
}

func (e *Executor) update(id string, status Status, err error) {
	if e.opts.OnUpdate != nil {
		e.opts.OnUpdate(id, status, err)
	}
}
