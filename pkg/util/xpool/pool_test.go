package xpool

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/omeyang/xserve/pkg/observability/xlog"
)

// syncBuffer 供多个 worker 并发写日志。
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) lines(t *testing.T) []map[string]any {
	t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []map[string]any
	for line := range strings.SplitSeq(strings.TrimSpace(b.buf.String()), "\n") {
		if line == "" {
			continue
		}
		m := map[string]any{}
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func newTestLogger(t *testing.T) (xlog.Logger, *syncBuffer) {
	t.Helper()
	buf := &syncBuffer{}
	logger, cleanup, err := xlog.New().
		SetOutput(buf).
		SetFormat("json").
		SetLevel(xlog.LevelDebug).
		Build()
	require.NoError(t, err)
	t.Cleanup(func() { _ = cleanup() })
	return logger, buf
}

func mustBuild(t *testing.T, n int, opts ...Option) *Pool {
	t.Helper()
	logger, _ := newTestLogger(t)
	pool, err := Build(n, append([]Option{WithLogger(logger)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pool.Close() })
	return pool
}

// =============================================================================
// Build
// =============================================================================

func TestBuild_InvalidSize(t *testing.T) {
	defer goleak.VerifyNone(t)

	for _, n := range []int{0, -1, MaxWorkers + 1} {
		pool, err := Build(n)
		assert.ErrorIs(t, err, ErrInvalidSize, "n=%d", n)
		assert.Nil(t, pool)
	}
}

func TestBuild_StartsNLiveWorkers(t *testing.T) {
	for _, n := range []int{1, 4, 16} {
		pool := mustBuild(t, n, WithName("live"))
		assert.Equal(t, n, pool.Size())
		assert.Equal(t, "live", pool.Name())

		// n 个任务同时阻塞在屏障上，只有 n 个 worker 都在运行时 started 才能到达 n
		var started sync.WaitGroup
		started.Add(n)
		release := make(chan struct{})
		for range n {
			require.NoError(t, pool.Execute(func() {
				started.Done()
				<-release
			}))
		}

		reached := make(chan struct{})
		go func() {
			started.Wait()
			close(reached)
		}()
		select {
		case <-reached:
		case <-time.After(5 * time.Second):
			t.Fatalf("only a subset of %d workers picked up jobs", n)
		}
		close(release)
		require.NoError(t, pool.Close())
	}
}

// =============================================================================
// Execute
// =============================================================================

func TestExecute_CounterFourWorkers(t *testing.T) {
	pool := mustBuild(t, 4)

	var counter atomic.Int64
	for range 100 {
		require.NoError(t, pool.Execute(func() { counter.Add(1) }))
	}
	require.NoError(t, pool.Close())

	assert.Equal(t, int64(100), counter.Load())
}

func TestExecute_SingleWorkerSerializes(t *testing.T) {
	pool := mustBuild(t, 1)

	var slowDone atomic.Bool
	var sawSlowDone atomic.Bool
	require.NoError(t, pool.Execute(func() {
		time.Sleep(50 * time.Millisecond)
		slowDone.Store(true)
	}))
	require.NoError(t, pool.Execute(func() {
		sawSlowDone.Store(slowDone.Load())
	}))
	require.NoError(t, pool.Close())

	assert.True(t, sawSlowDone.Load(), "second job ran before the first completed")
}

func TestExecute_ExactlyOnce(t *testing.T) {
	pool := mustBuild(t, 8)

	const jobs = 2000
	var hits [jobs]atomic.Int32
	for i := range jobs {
		require.NoError(t, pool.Execute(func() { hits[i].Add(1) }))
	}
	require.NoError(t, pool.Close())

	for i := range jobs {
		assert.Equal(t, int32(1), hits[i].Load(), "job %d", i)
	}
}

func TestExecute_ConcurrentProducers(t *testing.T) {
	pool := mustBuild(t, 4)

	var counter atomic.Int64
	var wg sync.WaitGroup
	for range 8 {
		wg.Go(func() {
			for range 250 {
				assert.NoError(t, pool.Execute(func() { counter.Add(1) }))
			}
		})
	}
	wg.Wait()
	require.NoError(t, pool.Close())

	assert.Equal(t, int64(2000), counter.Load())
}

func TestExecute_ConcurrencyBoundedBySize(t *testing.T) {
	for _, n := range []int{1, 3} {
		pool := mustBuild(t, n)

		var running, peak atomic.Int32
		for range 60 {
			require.NoError(t, pool.Execute(func() {
				cur := running.Add(1)
				for {
					old := peak.Load()
					if cur <= old || peak.CompareAndSwap(old, cur) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				running.Add(-1)
			}))
		}
		require.NoError(t, pool.Close())

		assert.LessOrEqual(t, peak.Load(), int32(n))
	}
}

func TestExecute_SingleProducerOrder(t *testing.T) {
	pool := mustBuild(t, 1)

	var mu sync.Mutex
	var order []int
	for i := range 50 {
		require.NoError(t, pool.Execute(func() {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
		}))
	}
	require.NoError(t, pool.Close())

	for i, v := range order {
		assert.Equal(t, i, v)
	}
	assert.Len(t, order, 50)
}

func TestExecute_NilJob(t *testing.T) {
	pool := mustBuild(t, 1)
	assert.ErrorIs(t, pool.Execute(nil), ErrNilJob)
}

func TestExecute_AfterClose(t *testing.T) {
	pool := mustBuild(t, 2)
	require.NoError(t, pool.Close())

	var ran atomic.Bool
	assert.ErrorIs(t, pool.Execute(func() { ran.Store(true) }), ErrClosed)
	assert.False(t, ran.Load())
}

// =============================================================================
// Panic
// =============================================================================

func TestWorker_PanicRecovered(t *testing.T) {
	logger, buf := newTestLogger(t)

	var got atomic.Pointer[PanicError]
	pool, err := Build(1,
		WithLogger(logger),
		WithPanicHandler(func(err *PanicError) { got.Store(err) }),
	)
	require.NoError(t, err)

	var after atomic.Bool
	require.NoError(t, pool.Execute(func() { panic("boom") }))
	require.NoError(t, pool.Execute(func() { after.Store(true) }))
	require.NoError(t, pool.Close())

	assert.True(t, after.Load(), "worker must survive a panicking job")

	perr := got.Load()
	require.NotNil(t, perr)
	assert.Equal(t, 0, perr.WorkerID)
	assert.Equal(t, "boom", perr.Value)
	assert.NotEmpty(t, perr.Stack)
	assert.True(t, errors.Is(perr, ErrJobPanicked))

	var found bool
	for _, line := range buf.lines(t) {
		if line["msg"] == "job panicked" {
			found = true
			assert.Contains(t, line[xlog.KeyStack], "panic")
			assert.Contains(t, line[xlog.KeyError], "boom")
		}
	}
	assert.True(t, found)
}

func TestWorker_PanicHandlerPanics(t *testing.T) {
	logger, buf := newTestLogger(t)
	pool, err := Build(1,
		WithLogger(logger),
		WithPanicHandler(func(*PanicError) { panic("handler") }),
	)
	require.NoError(t, err)

	var after atomic.Bool
	require.NoError(t, pool.Execute(func() { panic("job") }))
	require.NoError(t, pool.Execute(func() { after.Store(true) }))
	require.NoError(t, pool.Close())

	assert.True(t, after.Load())

	var found bool
	for _, line := range buf.lines(t) {
		if line["msg"] == "panic handler panicked" {
			found = true
			assert.Equal(t, "handler", line["panic"])
			assert.Equal(t, "job", line["job_panic"])
		}
	}
	assert.True(t, found)
}

func TestWorker_GoexitIsLogged(t *testing.T) {
	logger, buf := newTestLogger(t)
	pool, err := Build(2, WithLogger(logger))
	require.NoError(t, err)

	require.NoError(t, pool.Execute(runtime.Goexit))
	var after atomic.Bool
	require.NoError(t, pool.Execute(func() { after.Store(true) }))
	require.NoError(t, pool.Close())

	assert.True(t, after.Load(), "remaining worker keeps serving")

	var lost, disconnected int
	for _, line := range buf.lines(t) {
		switch line["msg"] {
		case "worker exited before queue closed; pool lost a slot":
			lost++
		case "worker disconnected; shutting down":
			disconnected++
		}
	}
	assert.Equal(t, 1, lost)
	assert.Equal(t, 1, disconnected)
}

// =============================================================================
// Shutdown
// =============================================================================

func TestClose_DrainsQueuedJobs(t *testing.T) {
	pool := mustBuild(t, 2)

	release := make(chan struct{})
	var counter atomic.Int64
	for range 2 {
		require.NoError(t, pool.Execute(func() { <-release }))
	}
	for range 20 {
		require.NoError(t, pool.Execute(func() { counter.Add(1) }))
	}
	assert.Positive(t, pool.Pending())

	closed := make(chan error, 1)
	go func() { closed <- pool.Close() }()
	close(release)
	require.NoError(t, <-closed)

	assert.Equal(t, int64(20), counter.Load())
	assert.Zero(t, pool.Pending())
}

func TestClose_NoLeakAndIdempotent(t *testing.T) {
	defer goleak.VerifyNone(t)

	pool, err := Build(4, WithLogger(xlog.Default()))
	require.NoError(t, err)
	require.NoError(t, pool.Execute(func() {}))

	require.NoError(t, pool.Close())
	require.NoError(t, pool.Close())

	select {
	case <-pool.Done():
	default:
		t.Fatal("Done must be closed after Close returns")
	}
}

func TestShutdown_JoinsInAscendingOrder(t *testing.T) {
	logger, buf := newTestLogger(t)
	pool, err := Build(4, WithLogger(logger), WithName("ordered"))
	require.NoError(t, err)
	require.NoError(t, pool.Close())

	var ids []float64
	for _, line := range buf.lines(t) {
		if line["msg"] == "shutting down worker" {
			ids = append(ids, line[xlog.KeyWorkerID].(float64))
			assert.Equal(t, "ordered", line[xlog.KeyPool])
		}
	}
	assert.Equal(t, []float64{0, 1, 2, 3}, ids)
}

func TestShutdown_Timeout(t *testing.T) {
	pool := mustBuild(t, 1)

	release := make(chan struct{})
	require.NoError(t, pool.Execute(func() { <-release }))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, pool.Shutdown(ctx), context.DeadlineExceeded)
	assert.ErrorIs(t, pool.Execute(func() {}), ErrClosed)

	close(release)
	select {
	case <-pool.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not exit after the blocking job returned")
	}
	assert.NoError(t, pool.Shutdown(context.Background()))
}

func TestShutdown_NilContext(t *testing.T) {
	pool := mustBuild(t, 1)
	//nolint:staticcheck // 验证 nil ctx 返回错误而非 panic
	assert.ErrorIs(t, pool.Shutdown(nil), ErrNilContext)
}
