package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sensor-collector/core/metrics"

	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var (
	// ErrPanic wraps a panic recovered from a task function.
	ErrPanic = errors.New("task panicked")
	// ErrPending is returned by Task.Err while the task is still running.
	ErrPending = errors.New("task still running")
)

// Task is the handle of one background operation.
type Task struct {
	name string
	done chan struct{}
	err  error
}

// Name returns the task label.
func (t *Task) Name() string {
	return t.name
}

// Done is closed once the task has finished.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Err returns the task outcome, or ErrPending if it has not finished.
func (t *Task) Err() error {
	select {
	case <-t.done:
		return t.err
	default:
		return ErrPending
	}
}

// Wait blocks until the task finishes or ctx is done. Giving up on the wait does
// not stop the task.
func (t *Task) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return t.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Dispatcher runs operations in the background, one goroutine per operation.
type Dispatcher struct {
	logger  *zap.Logger
	metrics *metrics.Metrics
	wg      *conc.WaitGroup
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithMetrics records in-flight and finished task counts.
func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Dispatcher) {
		d.metrics = m
	}
}

// New creates a Dispatcher.
func New(logger *zap.Logger, opts ...Option) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Dispatcher{
		logger: logger,
		wg:     conc.NewWaitGroup(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Go starts fn in the background and returns its handle. fn receives a context
// carrying ctx's values but not its cancellation: once submitted, an operation
// runs to completion or failure.
func (d *Dispatcher) Go(ctx context.Context, name string, fn func(ctx context.Context) error) *Task {
	t := &Task{name: name, done: make(chan struct{})}
	runCtx := context.WithoutCancel(ctx)

	if d.metrics != nil {
		d.metrics.TasksInflight.Inc()
	}
	d.wg.Go(func() {
		t.err = d.run(runCtx, name, fn)
		close(t.done)
	})
	return t
}

// Wait blocks until every submitted task has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) run(ctx context.Context, name string, fn func(ctx context.Context) error) (err error) {
	start := time.Now()

	var pc panics.Catcher
	pc.Try(func() {
		err = fn(ctx)
	})
	if r := pc.Recovered(); r != nil {
		err = fmt.Errorf("%w: %w", ErrPanic, r.AsError())
	}

	if d.metrics != nil {
		d.metrics.TasksInflight.Dec()
		d.metrics.TasksTotal.WithLabelValues(metrics.Result(err)).Inc()
	}

	l := d.logger.With(zap.String("task", name), zap.Duration("elapsed", time.Since(start)))
	if err != nil {
		l.Error("Background operation failed", zap.Error(err))
	} else {
		l.Info("Background operation finished")
	}
	return err
}

// WaitAll waits for every task and combines their failures. It returns early
// with ctx's error if ctx ends first.
func WaitAll(ctx context.Context, tasks ...*Task) error {
	var errs error
	for _, t := range tasks {
		if err := t.Wait(ctx); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
				return multierr.Append(errs, err)
			}
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", t.Name(), err))
		}
	}
	return errs
}
