package xrun

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"

	"golang.org/x/sync/errgroup"

	"github.com/omeyang/xserve/pkg/observability/xlog"
)

// Group 并发运行多个服务，任一失败即取消全部。
//
// Go、GoWithName、Cancel 可并发调用；Wait 只应调用一次。
type Group struct {
	eg       *errgroup.Group
	ctx      context.Context
	causeCtx context.Context
	cancel   context.CancelCauseFunc
	opts     *groupOptions
	logger   xlog.Logger
}

// NewGroup 创建 Group，返回的 ctx 在任一服务出错或 Cancel 时取消。nil ctx 视为 Background。
func NewGroup(ctx context.Context, opts ...Option) (*Group, context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	logger := o.logger
	if logger == nil {
		logger = xlog.Default()
	}

	causeCtx, cancel := context.WithCancelCause(ctx)
	eg, egCtx := errgroup.WithContext(causeCtx)
	return &Group{
		eg:       eg,
		ctx:      egCtx,
		causeCtx: causeCtx,
		cancel:   cancel,
		opts:     o,
		logger:   logger.With(xlog.Component("xrun"), xlog.Operation(o.name)),
	}, egCtx
}

// Go 启动服务。
func (g *Group) Go(fn func(ctx context.Context) error) {
	g.eg.Go(func() error {
		if fn == nil {
			return ErrNilFunc
		}
		return fn(g.ctx)
	})
}

// GoWithName 启动服务并记录其启停日志。
func (g *Group) GoWithName(name string, fn func(ctx context.Context) error) {
	g.eg.Go(func() error {
		if fn == nil {
			return ErrNilFunc
		}
		svc := slog.String("service", name)
		g.logger.Debug(g.ctx, "service starting", svc)
		err := fn(g.ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			g.logger.Warn(g.ctx, "service exited with error", svc, xlog.Err(err))
		} else {
			g.logger.Debug(g.ctx, "service stopped", svc)
		}
		return err
	})
}

// Wait 等待全部服务退出。
//
// 返回第一个非取消类错误；Group 被主动取消时返回取消原因（如 *SignalError），
// 无显式原因则返回 nil。服务自身返回的 context.Canceled（Group 未取消时）原样返回。
func (g *Group) Wait() error {
	defer g.cancel(nil)

	err := g.eg.Wait()
	cause := g.explicitCause()

	switch {
	case err == nil:
		return cause
	case errors.Is(err, context.Canceled) && g.causeCtx.Err() != nil:
		return cause
	default:
		return err
	}
}

// explicitCause 返回 Cancel 或信号设置的退出原因，普通取消返回 nil。
func (g *Group) explicitCause() error {
	if g.causeCtx.Err() == nil {
		return nil
	}
	cause := context.Cause(g.causeCtx)
	if cause == nil || errors.Is(cause, context.Canceled) {
		return nil
	}
	return cause
}

// Cancel 取消全部服务，cause 会成为 Wait 的返回值。
// cause 不应包装 context.Canceled，否则会被当作普通取消过滤。
func (g *Group) Cancel(cause error) {
	g.cancel(cause)
}

// Context 返回 Group 的 context。
func (g *Group) Context() context.Context {
	return g.ctx
}

// Service 可由 Group 管理的长期运行服务。
type Service interface {
	Run(ctx context.Context) error
}

// ServiceFunc 将函数适配为 Service。
type ServiceFunc func(ctx context.Context) error

// Run 实现 Service。
func (f ServiceFunc) Run(ctx context.Context) error {
	return f(ctx)
}

// Run 监听默认信号并运行 services，收到信号时返回 *SignalError。
//
// 信号监听本身也是 Group 中的一个服务：即使所有 services 都返回 nil，
// Run 仍会等待信号或父 ctx 取消。
func Run(ctx context.Context, services ...func(ctx context.Context) error) error {
	return RunWithOptions(ctx, nil, services...)
}

// RunWithOptions 与 Run 相同，但支持配置选项。
func RunWithOptions(ctx context.Context, opts []Option, services ...func(ctx context.Context) error) error {
	return runGroup(ctx, opts, func(g *Group) {
		for _, svc := range services {
			g.Go(svc)
		}
	})
}

// RunServices 运行多个 Service，语义同 Run。
func RunServices(ctx context.Context, services ...Service) error {
	return RunServicesWithOptions(ctx, nil, services...)
}

// RunServicesWithOptions 与 RunServices 相同，但支持配置选项。
func RunServicesWithOptions(ctx context.Context, opts []Option, services ...Service) error {
	return runGroup(ctx, opts, func(g *Group) {
		for _, svc := range services {
			if svc == nil {
				g.Go(func(context.Context) error { return ErrNilService })
				continue
			}
			g.Go(svc.Run)
		}
	})
}

func runGroup(ctx context.Context, opts []Option, setup func(g *Group)) error {
	g, _ := NewGroup(ctx, opts...)
	if !g.opts.noSignalHandler {
		g.Go(g.watchSignals)
	}
	setup(g)
	return g.Wait()
}

// watchSignals 收到信号后以 *SignalError 取消 Group。
func (g *Group) watchSignals(ctx context.Context) error {
	source := g.opts.sigSource
	if source == nil {
		signals := g.opts.signals
		if len(signals) == 0 {
			signals = DefaultSignals()
		}
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, signals...)
		defer signal.Stop(ch)
		source = ch
	}

	select {
	case sig := <-source:
		g.logger.Info(ctx, "received signal", slog.String("signal", sig.String()))
		g.cancel(&SignalError{Signal: sig})
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
