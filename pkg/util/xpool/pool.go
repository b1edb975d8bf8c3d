package xpool

import (
	"context"
	"io"
	"sync"
	"sync/atomic"

	"github.com/omeyang/xserve/pkg/observability/xlog"
	"github.com/omeyang/xserve/pkg/observability/xmetrics"
	"github.com/omeyang/xserve/pkg/util/xqueue"
)

// MaxWorkers worker 数量上限。
const MaxWorkers = 1 << 16

// Job 由 worker 执行的无参任务。
type Job func()

// Pool 固定大小的 worker pool。
type Pool struct {
	name     string
	logger   xlog.Logger
	observer xmetrics.Observer
	onPanic  PanicHandler

	queue   *xqueue.Queue[Job]
	workers []*worker

	alive     atomic.Int64
	done      chan struct{}
	closeOnce sync.Once
	joined    atomic.Bool
}

var _ io.Closer = (*Pool)(nil)

// Build 创建包含 n 个 worker 的 pool，worker 立即开始等待任务。
//
// n 不在 [1, MaxWorkers] 内时返回 ErrInvalidSize，且不启动任何 goroutine。
func Build(n int, opts ...Option) (*Pool, error) {
	if n < 1 || n > MaxWorkers {
		return nil, ErrInvalidSize
	}

	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	logger := o.logger
	if logger == nil {
		logger = xlog.Default()
	}
	logger = logger.With(xlog.Component("xpool"))
	if o.name != "" {
		logger = logger.With(xlog.Pool(o.name))
	}

	p := &Pool{
		name:     o.name,
		logger:   logger,
		observer: o.observer,
		onPanic:  o.onPanic,
		queue:    xqueue.New[Job](),
		workers:  make([]*worker, n),
		done:     make(chan struct{}),
	}
	p.alive.Store(int64(n))
	for id := range n {
		w := &worker{id: id, pool: p, done: make(chan struct{})}
		p.workers[id] = w
		go w.run()
	}
	return p, nil
}

// Execute 提交任务并立即返回。
//
// 关闭开始后返回 ErrClosed；job 为 nil 时返回 ErrNilJob。
func (p *Pool) Execute(job Job) error {
	if job == nil {
		return ErrNilJob
	}
	if err := p.queue.Enqueue(job); err != nil {
		return ErrClosed
	}
	return nil
}

// Close 关闭 pool 并等待所有 worker 退出。等价于 Shutdown(context.Background())。
func (p *Pool) Close() error {
	return p.Shutdown(context.Background())
}

// Shutdown 关闭队列并按 id 升序等待 worker 退出。
//
// 队列只关闭一次，重复调用只会再次等待。ctx 到期时返回 ctx.Err()，
// 未退出的 worker 继续在后台排空队列。
func (p *Pool) Shutdown(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	p.closeOnce.Do(func() {
		p.queue.Close()
	})
	if p.joined.Load() {
		return nil
	}

	for _, w := range p.workers {
		p.logger.Info(ctx, "shutting down worker", xlog.WorkerID(w.id))
		select {
		case <-w.done:
		case <-ctx.Done():
			p.logger.Warn(ctx, "shutdown interrupted",
				xlog.WorkerID(w.id), xlog.Count(int64(p.queue.Len())), xlog.Err(ctx.Err()))
			return ctx.Err()
		}
	}
	p.joined.Store(true)
	return nil
}

// Done 返回在所有 worker 退出后关闭的 channel。
func (p *Pool) Done() <-chan struct{} {
	return p.done
}

// Size 返回 worker 数量。
func (p *Pool) Size() int {
	return len(p.workers)
}

// Name 返回 pool 名称。
func (p *Pool) Name() string {
	return p.name
}

// Pending 返回已提交但尚未被 worker 取出的任务数。
func (p *Pool) Pending() int {
	return p.queue.Len()
}

func (p *Pool) workerExited() {
	if p.alive.Add(-1) == 0 {
		close(p.done)
	}
}
