package xpool

import (
	"context"
	"log/slog"
	"runtime/debug"

	"github.com/omeyang/xserve/pkg/observability/xlog"
	"github.com/omeyang/xserve/pkg/observability/xmetrics"
)

type worker struct {
	id   int
	pool *Pool
	done chan struct{}
}

// run 循环取任务执行，队列关闭且排空后退出。
func (w *worker) run() {
	defer w.pool.workerExited()
	defer close(w.done)

	ctx := context.Background()
	logger := w.pool.logger.With(xlog.WorkerID(w.id))

	// 任务调用 runtime.Goexit 时 worker 会跳过正常出口，pool 少一个槽位。
	disconnected := false
	defer func() {
		if !disconnected {
			logger.Error(ctx, "worker exited before queue closed; pool lost a slot")
		}
	}()

	for {
		job, err := w.pool.queue.Dequeue()
		if err != nil {
			disconnected = true
			logger.Debug(ctx, "worker disconnected; shutting down")
			return
		}
		logger.Debug(ctx, "worker got a job; executing")
		w.execute(ctx, logger, job)
	}
}

// execute 在 recover 边界内执行单个任务。
func (w *worker) execute(ctx context.Context, logger xlog.Logger, job Job) {
	ctx, span := xmetrics.Start(ctx, w.pool.observer, xmetrics.SpanOptions{
		Component: "xpool",
		Operation: "job",
		Kind:      xmetrics.KindConsumer,
		Attrs: []xmetrics.Attr{
			xmetrics.Int("worker_id", w.id),
			xmetrics.String("pool", w.pool.name),
		},
	})

	var perr *PanicError
	defer func() {
		if perr != nil {
			span.End(xmetrics.Result{Err: perr})
			return
		}
		span.End(xmetrics.Result{})
	}()
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		perr = &PanicError{WorkerID: w.id, Value: r, Stack: debug.Stack()}
		logger.Stack(ctx, "job panicked", xlog.Err(perr))
		w.notifyPanic(ctx, logger, perr)
	}()

	job()
}

// notifyPanic 调用 PanicHandler；回调自身 panic 时仅记录，worker 不退出。
func (w *worker) notifyPanic(ctx context.Context, logger xlog.Logger, perr *PanicError) {
	if w.pool.onPanic == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			logger.Error(ctx, "panic handler panicked",
				slog.Any("panic", r), slog.Any("job_panic", perr.Value))
		}
	}()
	w.pool.onPanic(perr)
}
