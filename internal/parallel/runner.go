package parallel

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
)

// Record is the map-typed input accepted by RunDictTasks.
type Record = map[string]any

// TaskResult describes one finished invocation. It is reported to observers
// as each item completes, independently of the ordered result slice.
type TaskResult struct {
	Index    int
	Error    error
	Duration time.Duration
}

// Option configures a run.
type Option func(*options)

type options struct {
	logger         *log.Logger
	maxConcurrency int
	observer       func(TaskResult)
}

// WithProgress logs a banner with the number of submitted items.
func WithProgress(logger *log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMaxConcurrency bounds the number of invocations in flight.
// Zero (the default) submits every input at once.
func WithMaxConcurrency(n int) Option {
	return func(o *options) {
		if n < 0 {
			n = 0
		}
		o.maxConcurrency = n
	}
}

// WithObserver registers a function called as each invocation finishes,
// in completion order. It is called from worker goroutines and must be safe
// for concurrent use.
func WithObserver(fn func(TaskResult)) Option {
	return func(o *options) {
		o.observer = fn
	}
}

// RunTasks runs fn once per input concurrently and waits for every call to
// return. results[i] always corresponds to inputs[i].
//
// If any call fails, RunTasks still waits for the others and then returns
// the first error with no results. onResult may be nil; otherwise it is
// invoked once per (input, result) pair in input order after the whole batch
// has finished.
func RunTasks[In, Out any](ctx context.Context, fn func(context.Context, In) (Out, error), inputs []In, onResult func(In, Out), opts ...Option) ([]Out, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	if o.logger != nil {
		o.logger.Infof("Processing %d items in parallel...", len(inputs))
	}
	if len(inputs) == 0 {
		return []Out{}, nil
	}

	results := make([]Out, len(inputs))

	// No derived context: a failing item must not cancel its siblings.
	var g errgroup.Group
	if o.maxConcurrency > 0 {
		g.SetLimit(o.maxConcurrency)
	}

	for i, input := range inputs {
		g.Go(func() error {
			start := time.Now()
			out, err := fn(ctx, input)
			if o.observer != nil {
				o.observer(TaskResult{Index: i, Error: err, Duration: time.Since(start)})
			}
			if err != nil {
				return fmt.Errorf("item %d: %w", i, err)
			}
			results[i] = out
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if onResult != nil {
		for i, input := range inputs {
			onResult(input, results[i])
		}
	}
	return results, nil
}

// RunDictTasks is RunTasks for map-typed inputs.
func RunDictTasks[Out any](ctx context.Context, fn func(context.Context, Record) (Out, error), inputs []Record, onResult func(Record, Out), opts ...Option) ([]Out, error) {
	return RunTasks(ctx, fn, inputs, onResult, opts...)
}
