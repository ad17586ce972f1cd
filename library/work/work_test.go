package work

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitForChannel(t *testing.T, ch <-chan struct{}, timeout time.Duration, msg string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(timeout):
		t.Fatal(msg)
	}
}

func TestAntsLoop(t *testing.T) {
	l := NewAntsLoop(2)
	require.NoError(t, l.Start())
	defer l.Stop()

	t.Run("start more times", func(t *testing.T) {
		require.NoError(t, l.Start())
	})

	t.Run("Post simple task", func(t *testing.T) {
		done := make(chan struct{})
		l.Post(func() { close(done) })
		waitForChannel(t, done, time.Second, "task not finished")
	})

	t.Run("PostAndWaitCtx returns expected value", func(t *testing.T) {
		val, err := l.PostAndWaitCtx(context.Background(), func() ([]byte, error) {
			return []byte("hello"), nil
		})
		require.NoError(t, err)
		assert.Equal(t, []byte("hello"), val)
	})

	t.Run("PostAndWaitCtx propagates job error", func(t *testing.T) {
		_, err := l.PostAndWaitCtx(context.Background(), func() ([]byte, error) {
			return nil, errors.New("boom")
		})
		assert.EqualError(t, err, "boom")
	})

	t.Run("Post panic inside job is recovered", func(t *testing.T) {
		done := make(chan struct{})
		l.Post(func() {
			defer close(done)
			panic("oops")
		})
		waitForChannel(t, done, time.Second, "panic job did not finish")
	})

	t.Run("PostAndWaitCtx panic becomes error", func(t *testing.T) {
		_, err := l.PostAndWaitCtx(context.Background(), func() ([]byte, error) {
			panic("oops2")
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "oops2")
	})

	t.Run("PostAndWaitCtx returns on deadline", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
		defer cancel()
		release := make(chan struct{})
		defer close(release)

		start := time.Now()
		_, err := l.PostAndWaitCtx(ctx, func() ([]byte, error) {
			<-release
			return []byte("late"), nil
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Less(t, time.Since(start), time.Second)
	})

	t.Run("Status reports capacity", func(t *testing.T) {
		st := l.Status()
		assert.Equal(t, 2, st.Capacity)
		assert.GreaterOrEqual(t, st.Free, 0)
	})
}

func TestAntsLoopFallback(t *testing.T) {
	var hit atomic.Bool
	l := NewAntsLoop(1, WithFallback(func(ctx context.Context, fn func()) {
		hit.Store(true)
		fn()
	}))

	// 未启动时走降级策略
	done := make(chan struct{})
	l.Post(func() { close(done) })
	waitForChannel(t, done, time.Second, "fallback did not run job")
	assert.True(t, hit.Load())
	assert.Equal(t, LoopStatus{}, l.Status())
}

func TestWheelScheduler(t *testing.T) {
	l := NewAntsLoop(4)
	require.NoError(t, l.Start())
	defer l.Stop()

	s := NewWheelScheduler(WithTick(5*time.Millisecond), WithExecutor(l), WithStopTimeout(time.Second))
	defer s.Stop()

	t.Run("Once fires", func(t *testing.T) {
		done := make(chan struct{})
		id := s.Once(20*time.Millisecond, func() { close(done) })
		assert.Greater(t, id, int64(0))
		waitForChannel(t, done, time.Second, "once task not fired")
		assert.Eventually(t, func() bool { return s.Len() == 0 }, time.Second, 5*time.Millisecond)
	})

	t.Run("Cancel prevents execution", func(t *testing.T) {
		var fired atomic.Bool
		id := s.Once(100*time.Millisecond, func() { fired.Store(true) })
		s.Cancel(id)
		time.Sleep(200 * time.Millisecond)
		assert.False(t, fired.Load())
	})

	t.Run("Forever repeats until cancelled", func(t *testing.T) {
		var count atomic.Int32
		id := s.Forever(10*time.Millisecond, func() { count.Add(1) })
		assert.Eventually(t, func() bool { return count.Load() >= 3 }, time.Second, 5*time.Millisecond)
		s.Cancel(id)
	})

	t.Run("CancelAll clears tasks", func(t *testing.T) {
		s.Once(time.Second, func() {})
		s.Once(time.Second, func() {})
		s.CancelAll()
		assert.Equal(t, 0, s.Len())
	})
}

func TestWheelSchedulerStop(t *testing.T) {
	s := NewWheelScheduler(WithTick(5 * time.Millisecond))
	s.Stop()
	assert.Equal(t, int64(-1), s.Once(time.Millisecond, func() {}))
}

func TestWorkStore(t *testing.T) {
	w := NewWorkStore(context.Background(), 5*time.Millisecond, 8)
	require.NoError(t, w.Start())
	defer w.Stop()

	done := make(chan struct{})
	w.Once(10*time.Millisecond, func() { close(done) })
	waitForChannel(t, done, time.Second, "store timer not fired")
	assert.Equal(t, 8, w.Status().Capacity)
}

// holdWorker 占住一个 worker 直到 release 关闭
func holdWorker(t *testing.T, l IExecutor, release <-chan struct{}) {
	t.Helper()
	started := make(chan struct{})
	l.Post(func() {
		close(started)
		<-release
	})
	waitForChannel(t, started, time.Second, "holding job not started")
}

func TestAntsLoopBusyPool(t *testing.T) {
	l := NewAntsLoop(1)
	require.NoError(t, l.Start())
	defer l.Stop()

	release := make(chan struct{})
	defer close(release)
	holdWorker(t, l, release)

	t.Run("PostAndWaitCtx honours deadline when pool is full", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		start := time.Now()
		_, err := l.PostAndWaitCtx(ctx, func() ([]byte, error) {
			<-release
			return nil, nil
		})
		require.Error(t, err)
		assert.Less(t, time.Since(start), 500*time.Millisecond)
	})

	t.Run("Post runs on fallback when pool is full", func(t *testing.T) {
		done := make(chan struct{})
		l.Post(func() { close(done) })
		waitForChannel(t, done, time.Second, "job blocked behind busy worker")
	})

	t.Run("timer fires while pool is full", func(t *testing.T) {
		s := NewWheelScheduler(WithTick(5*time.Millisecond), WithExecutor(l))
		defer s.Stop()
		done := make(chan struct{})
		s.Once(10*time.Millisecond, func() { close(done) })
		waitForChannel(t, done, time.Second, "timer callback starved")
	})
}

func TestWheelSchedulerForeverCancelStopsRearm(t *testing.T) {
	s := NewWheelScheduler(WithTick(5 * time.Millisecond))
	defer s.Stop()

	var count atomic.Int32
	id := s.Forever(10*time.Millisecond, func() { count.Add(1) })
	require.Eventually(t, func() bool { return count.Load() >= 2 }, time.Second, 5*time.Millisecond)
	s.Cancel(id)
	assert.Equal(t, 0, s.Len())

	time.Sleep(30 * time.Millisecond)
	n := count.Load()
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, n, count.Load())
}
