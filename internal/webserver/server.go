package webserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
	"time"

	"github.com/omeyang/xserve/pkg/context/xctx"
	"github.com/omeyang/xserve/pkg/observability/xlog"
	"github.com/omeyang/xserve/pkg/observability/xmetrics"
	"github.com/omeyang/xserve/pkg/observability/xsampling"
	"github.com/omeyang/xserve/pkg/resilience/xretry"
	"github.com/omeyang/xserve/pkg/util/xpool"
)

// ErrNilExecutor 表示未提供任务执行器。
var ErrNilExecutor = errors.New("webserver: nil executor")

// Executor 接收连接任务，xpool.Pool 满足该接口。
type Executor interface {
	Execute(job xpool.Job) error
}

// Option 服务选项。
type Option func(*Server)

// WithLogger 设置日志记录器，默认 xlog.Default()。
func WithLogger(logger xlog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithObserver 为每个连接创建观测跨度。
func WithObserver(observer xmetrics.Observer) Option {
	return func(s *Server) {
		if observer != nil {
			s.observer = observer
		}
	}
}

// WithAccessSampler 设置访问日志采样器，默认全部记录。
// 采样只影响 "request served" 日志，观测跨度与错误日志不受影响。
func WithAccessSampler(sampler xsampling.Sampler) Option {
	return func(s *Server) {
		if sampler != nil {
			s.access = sampler
		}
	}
}

// Server 接受 TCP 连接并把每个连接作为一个任务交给 Executor。
type Server struct {
	cfg      Config
	exec     Executor
	pages    *PageStore
	logger   xlog.Logger
	observer xmetrics.Observer
	access   xsampling.Sampler
}

// New 创建服务。调用方负责在退出时调用 Close。
func New(cfg Config, exec Executor, opts ...Option) (*Server, error) {
	if exec == nil {
		return nil, ErrNilExecutor
	}
	pages, err := NewPageStore(cfg.Root, cfg.CacheSize, cfg.CacheTTL)
	if err != nil {
		return nil, err
	}
	s := &Server{
		cfg:      cfg,
		exec:     exec,
		pages:    pages,
		observer: xmetrics.NoopObserver{},
		access:   xsampling.Always(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.logger == nil {
		s.logger = xlog.Default()
	}
	s.logger = s.logger.With(xlog.Component("webserver"))
	return s, nil
}

// Pages 返回页面存储，用于热加载后失效缓存。
func (s *Server) Pages() *PageStore {
	return s.pages
}

// Close 释放页面缓存。
func (s *Server) Close() error {
	s.pages.Close()
	return nil
}

// Listen 绑定 TCP 地址，失败时按 BindRetry 重试（如端口尚在 TIME_WAIT）。
func (s *Server) Listen(ctx context.Context) (net.Listener, error) {
	lc := net.ListenConfig{Control: socketControl(s.cfg.ReusePort)}

	var ln net.Listener
	opts := append(s.cfg.BindRetry.Options(), xretry.OnRetry(func(n uint, err error) {
		s.logger.Warn(ctx, "bind failed; retrying", xlog.Addr(s.cfg.Addr), xlog.Count(int64(n)), xlog.Err(err))
	}))
	err := xretry.Do(ctx, func() error {
		var err error
		ln, err = lc.Listen(ctx, "tcp", s.cfg.Addr)
		return err
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("webserver: listen %s: %w", s.cfg.Addr, err)
	}
	s.logger.Info(ctx, "listening", xlog.Addr(ln.Addr().String()))
	return ln, nil
}

// Serve 接受连接直到 ctx 取消。ln 由 Serve 关闭。
//
// 每个连接恰好调用一次 Execute；Execute 失败（pool 已关闭）时直接关闭连接。
// 临时性 accept 错误记录日志后退避重试。ctx 取消导致的退出返回 nil。
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	stop := context.AfterFunc(ctx, func() { _ = ln.Close() })
	defer stop()
	defer func() { _ = ln.Close() }()

	// 连接任务不随服务 ctx 取消，只继承其中的值
	base := context.WithoutCancel(ctx)

	var backoff time.Duration
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if retryableAccept(err) {
				backoff = min(max(backoff*2, 5*time.Millisecond), time.Second)
				s.logger.Warn(ctx, "accept failed; retrying", xlog.Err(err), xlog.Duration(backoff))
				select {
				case <-time.After(backoff):
					continue
				case <-ctx.Done():
					return nil
				}
			}
			return fmt.Errorf("webserver: accept: %w", err)
		}
		backoff = 0
		s.dispatch(base, conn)
	}
}

// retryableAccept 判断 accept 错误是否是暂时的：超时、fd 耗尽、内核缓冲不足，
// 以及对端在 accept 前中止连接。这些情况下监听套接字仍可用。
func retryableAccept(err error) bool {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	for _, errno := range []syscall.Errno{
		syscall.EMFILE, syscall.ENFILE, syscall.ENOBUFS, syscall.ENOMEM, syscall.ECONNABORTED,
	} {
		if errors.Is(err, errno) {
			return true
		}
	}
	return false
}

// dispatch 为连接附加追踪字段并提交给 Executor。
func (s *Server) dispatch(ctx context.Context, conn net.Conn) {
	ctx = connContext(ctx, conn)
	if err := s.exec.Execute(func() { s.HandleConn(ctx, conn) }); err != nil {
		s.logger.Warn(ctx, "connection rejected", xlog.Err(err))
		_ = conn.Close()
	}
}

func connContext(ctx context.Context, conn net.Conn) context.Context {
	if next, err := xctx.WithConnID(ctx, xctx.NextConnID()); err == nil {
		ctx = next
	}
	if next, err := xctx.WithRemoteAddr(ctx, conn.RemoteAddr().String()); err == nil {
		ctx = next
	}
	if next, err := xctx.EnsureRequestID(ctx); err == nil {
		ctx = next
	}
	return ctx
}

// Run 监听并服务直到 ctx 取消，可直接作为 xrun 服务。
func (s *Server) Run(ctx context.Context) error {
	ln, err := s.Listen(ctx)
	if err != nil {
		return err
	}
	defer s.logger.Info(ctx, "server stopped", xlog.Addr(s.cfg.Addr))
	return s.Serve(ctx, ln)
}
