package dispatch_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"sensor-collector/core/dispatch"
	"sensor-collector/core/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

func TestDispatcher_Go(t *testing.T) {
	d := dispatch.New(zap.NewNop())

	t.Run("Success", func(t *testing.T) {
		task := d.Go(context.Background(), "ok", func(ctx context.Context) error { return nil })
		assert.NoError(t, task.Wait(context.Background()))
		assert.NoError(t, task.Err())
		assert.Equal(t, "ok", task.Name())
	})

	t.Run("Failure", func(t *testing.T) {
		cause := errors.New("bucket unreachable")
		task := d.Go(context.Background(), "fail", func(ctx context.Context) error { return cause })
		assert.ErrorIs(t, task.Wait(context.Background()), cause)
		assert.ErrorIs(t, task.Err(), cause)
	})

	t.Run("Panic", func(t *testing.T) {
		task := d.Go(context.Background(), "panic", func(ctx context.Context) error { panic("nil bitmap") })
		err := task.Wait(context.Background())
		assert.ErrorIs(t, err, dispatch.ErrPanic)
		assert.Contains(t, err.Error(), "nil bitmap")
	})

	t.Run("Pending", func(t *testing.T) {
		release := make(chan struct{})
		task := d.Go(context.Background(), "slow", func(ctx context.Context) error {
			<-release
			return nil
		})
		assert.ErrorIs(t, task.Err(), dispatch.ErrPending)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		assert.ErrorIs(t, task.Wait(ctx), context.DeadlineExceeded)

		close(release)
		<-task.Done()
		assert.NoError(t, task.Err())
	})

	t.Run("CallerCancellationDoesNotStopTask", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		started := make(chan struct{})
		release := make(chan struct{})

		task := d.Go(ctx, "detached", func(ctx context.Context) error {
			close(started)
			<-release
			return ctx.Err()
		})
		<-started
		cancel()
		close(release)

		assert.NoError(t, task.Wait(context.Background()))
	})
}

func TestDispatcher_Wait(t *testing.T) {
	d := dispatch.New(nil)
	var tasks []*dispatch.Task
	for i := 0; i < 5; i++ {
		tasks = append(tasks, d.Go(context.Background(), "n", func(ctx context.Context) error {
			time.Sleep(5 * time.Millisecond)
			return nil
		}))
	}

	d.Wait()
	for _, task := range tasks {
		select {
		case <-task.Done():
		default:
			t.Fatal("task not finished after Wait")
		}
	}
}

func TestWaitAll(t *testing.T) {
	d := dispatch.New(zap.NewNop())

	t.Run("AggregatesFailures", func(t *testing.T) {
		errA := errors.New("a")
		errB := errors.New("b")

		err := dispatch.WaitAll(context.Background(),
			d.Go(context.Background(), "save_node", func(ctx context.Context) error { return errA }),
			d.Go(context.Background(), "upload_image", func(ctx context.Context) error { return nil }),
			d.Go(context.Background(), "upload_image", func(ctx context.Context) error { return errB }),
		)

		require.Error(t, err)
		assert.Len(t, multierr.Errors(err), 2)
		assert.ErrorIs(t, err, errA)
		assert.ErrorIs(t, err, errB)
		assert.Contains(t, err.Error(), "save_node")
	})

	t.Run("AllSucceed", func(t *testing.T) {
		assert.NoError(t, dispatch.WaitAll(context.Background(),
			d.Go(context.Background(), "a", func(ctx context.Context) error { return nil }),
			d.Go(context.Background(), "b", func(ctx context.Context) error { return nil }),
		))
	})

	t.Run("ContextEnds", func(t *testing.T) {
		release := make(chan struct{})
		defer close(release)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		err := dispatch.WaitAll(ctx, d.Go(context.Background(), "blocked", func(ctx context.Context) error {
			<-release
			return nil
		}))
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestDispatcher_Metrics(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	d := dispatch.New(zap.NewNop(), dispatch.WithMetrics(m))

	_ = dispatch.WaitAll(context.Background(),
		d.Go(context.Background(), "ok", func(ctx context.Context) error { return nil }),
		d.Go(context.Background(), "fail", func(ctx context.Context) error { return errors.New("x") }),
	)
	d.Wait()

	assert.Equal(t, 0.0, testutil.ToFloat64(m.TasksInflight))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TasksTotal.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TasksTotal.WithLabelValues("error")))
}
