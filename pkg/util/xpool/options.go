package xpool

import (
	"github.com/omeyang/xserve/pkg/observability/xlog"
	"github.com/omeyang/xserve/pkg/observability/xmetrics"
)

// PanicHandler 在任务 panic 被捕获后调用，运行在发生 panic 的 worker 上。
type PanicHandler func(err *PanicError)

// Option 定义 Pool 可选配置函数类型。
type Option func(*options)

type options struct {
	logger   xlog.Logger
	name     string
	observer xmetrics.Observer
	onPanic  PanicHandler
}

func defaultOptions() options {
	return options{
		observer: xmetrics.NoopObserver{},
	}
}

// WithLogger 设置日志记录器。默认使用 xlog.Default()，nil 被忽略。
func WithLogger(logger xlog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithName 设置 pool 名称，多实例时用于区分日志与指标来源。
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithObserver 为每个任务创建观测跨度（component=xpool, operation=job）。
func WithObserver(observer xmetrics.Observer) Option {
	return func(o *options) {
		if observer != nil {
			o.observer = observer
		}
	}
}

// WithPanicHandler 设置任务 panic 回调。
func WithPanicHandler(fn PanicHandler) Option {
	return func(o *options) {
		o.onPanic = fn
	}
}
