package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/omeyang/xserve/internal/appconf"
	"github.com/omeyang/xserve/internal/webserver"
	"github.com/omeyang/xserve/pkg/config/xconf"
	"github.com/omeyang/xserve/pkg/context/xctx"
	"github.com/omeyang/xserve/pkg/lifecycle/xrun"
	"github.com/omeyang/xserve/pkg/observability/xlog"
	"github.com/omeyang/xserve/pkg/observability/xmetrics"
	"github.com/omeyang/xserve/pkg/observability/xrotate"
	"github.com/omeyang/xserve/pkg/observability/xsampling"
	"github.com/omeyang/xserve/pkg/util/xpool"
	"github.com/omeyang/xserve/pkg/util/xproc"
	"github.com/omeyang/xserve/pkg/util/xsys"
)

// overrides 命令行显式设置的值，nil 表示未设置。
type overrides struct {
	configPath string
	addr       *string
	workers    *int
	root       *string
	logLevel   *string
	logFormat  *string
}

func overridesFromFlags(cmd *cli.Command) overrides {
	o := overrides{configPath: cmd.String("config")}
	str := func(name string) *string {
		if !cmd.IsSet(name) {
			return nil
		}
		v := cmd.String(name)
		return &v
	}
	o.addr = str("addr")
	o.root = str("root")
	o.logLevel = str("log-level")
	o.logFormat = str("log-format")
	if cmd.IsSet("workers") {
		n := cmd.Int("workers")
		o.workers = &n
	}
	return o
}

func (o overrides) apply(cfg *appconf.Config) {
	if o.addr != nil {
		cfg.Server.Addr = *o.addr
	}
	if o.workers != nil {
		cfg.Pool.Workers = *o.workers
	}
	if o.root != nil {
		cfg.Server.Root = *o.root
	}
	if o.logLevel != nil {
		cfg.Log.Level = *o.logLevel
	}
	if o.logFormat != nil {
		cfg.Log.Format = *o.logFormat
	}
}

// loadConfig 默认值 → 配置文件 → 命令行，返回配置源供热加载。
func loadConfig(o overrides) (appconf.Config, xconf.Config, error) {
	cfg, src, err := appconf.Load(o.configPath)
	if err != nil {
		return appconf.Config{}, nil, err
	}
	o.apply(&cfg)
	if err := cfg.Validate(); err != nil {
		return appconf.Config{}, nil, &usageError{err: err}
	}
	return cfg, src, nil
}

func buildLogger(cfg appconf.LogConfig, stderr io.Writer) (xlog.LoggerWithLevel, func() error, error) {
	b := xlog.New().
		SetOutput(stderr).
		SetLevelString(cfg.Level).
		SetFormat(cfg.Format).
		SetAddSource(cfg.AddSource)
	if cfg.File != "" {
		b.SetRotation(cfg.File,
			xrotate.WithMaxSize(cfg.MaxSizeMB),
			xrotate.WithMaxBackups(cfg.MaxBackups),
			xrotate.WithMaxAge(cfg.MaxAgeDays),
			xrotate.WithCompress(cfg.Compress),
		)
	}
	return b.Build()
}

func serverConfig(cfg appconf.Config) webserver.Config {
	return webserver.Config{
		Addr:         cfg.Server.Addr,
		Root:         cfg.Server.Root,
		IndexPage:    cfg.Server.IndexPage,
		NotFoundPage: cfg.Server.NotFoundPage,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		ReusePort:    cfg.Server.ReusePort,
		BindRetry:    cfg.Server.BindRetry,
		CacheSize:    cfg.Cache.Size,
		CacheTTL:     cfg.Cache.TTL,
	}
}

// serve 组装 logger、pool、server，运行到收到信号或 ctx 取消。
func serve(ctx context.Context, stderr io.Writer, o overrides, runOpts ...xrun.Option) error {
	cfg, src, err := loadConfig(o)
	if err != nil {
		return err
	}

	logger, cleanup, err := buildLogger(cfg.Log, stderr)
	if err != nil {
		return &usageError{err: err}
	}
	defer func() { _ = cleanup() }()
	xlog.SetDefault(logger)

	if limit, err := xsys.RaiseFileLimit(); err != nil {
		logger.Warn(ctx, "raise open file limit failed", xlog.Err(err))
	} else {
		logger.Debug(ctx, "open file limit", slog.Uint64("soft", limit.Soft), slog.Uint64("hard", limit.Hard))
	}

	access, err := xsampling.KeyBased(cfg.Log.AccessSampleRate, xctx.RequestID)
	if err != nil {
		return &usageError{err: err}
	}

	observer, err := xmetrics.NewOTelObserver()
	if err != nil {
		return err
	}

	pool, err := xpool.Build(cfg.Pool.Workers,
		xpool.WithLogger(logger),
		xpool.WithName(cfg.Pool.Name),
		xpool.WithObserver(observer),
	)
	if err != nil {
		return fmt.Errorf("failed to create worker pool: %w", err)
	}

	srv, err := webserver.New(serverConfig(cfg), pool,
		webserver.WithLogger(logger),
		webserver.WithObserver(observer),
		webserver.WithAccessSampler(access),
	)
	if err != nil {
		_ = pool.Close()
		return err
	}
	// 先排空 pool 再关闭页面缓存，排队中的连接仍能拿到页面。
	defer func() {
		_ = pool.Close()
		_ = srv.Close()
	}()

	services := []xrun.Service{srv}
	if src != nil {
		watcher, err := xconf.Watch(src, reloadHandler(ctx, logger, srv))
		if err != nil {
			return err
		}
		services = append(services, xrun.ServiceFunc(watcher.Run))
	}

	startAttrs := append(xproc.Self().Attrs(),
		xlog.Addr(cfg.Server.Addr), xlog.Count(int64(pool.Size())), slog.String("version", Version))
	logger.Info(ctx, "xserve starting", startAttrs...)

	opts := append([]xrun.Option{xrun.WithLogger(logger), xrun.WithName("xserve")}, runOpts...)
	err = xrun.RunServicesWithOptions(ctx, opts, services...)
	if errors.Is(err, xrun.ErrSignal) {
		logger.Info(ctx, "shutting down", xlog.Err(err))
		return nil
	}
	return err
}

// reloadHandler 配置文件变更时更新日志级别并失效页面缓存。
// 其余配置（监听地址、worker 数量）需重启进程生效。
func reloadHandler(ctx context.Context, logger xlog.LoggerWithLevel, srv *webserver.Server) xconf.WatchCallback {
	return func(src xconf.Config, err error) {
		if err != nil {
			logger.Warn(ctx, "config reload failed", xlog.Err(err))
			return
		}
		cfg, err := appconf.FromSource(src)
		if err != nil {
			logger.Warn(ctx, "config reload rejected", xlog.Err(err))
			return
		}
		level, _ := xlog.ParseLevel(cfg.Log.Level)
		logger.SetLevel(level)
		srv.Pages().Invalidate()
		logger.Info(ctx, "config reloaded", xlog.Operation("reload"))
	}
}
