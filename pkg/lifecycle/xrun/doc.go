// Package xrun 管理进程内多个长期运行服务的并发启动与协调关闭。
//
// 基于 errgroup + context.WithCancelCause：任一服务返回错误、收到系统信号或
// 主动 Cancel 时，其余服务的 ctx 被取消；Wait 返回第一个真实错误或退出原因。
//
//	err := xrun.RunServicesWithOptions(ctx, []xrun.Option{xrun.WithLogger(logger)},
//		server,
//		xrun.ServiceFunc(watcher.Run),
//	)
//	if errors.Is(err, xrun.ErrSignal) {
//		// 正常的信号退出
//	}
//
// 服务应在 ctx 取消后尽快返回；返回 ctx.Err() 或 nil 都被视为正常退出。
package xrun
