// Package xmetrics 提供统一的观测接口（trace + metrics），默认实现基于 OpenTelemetry。
//
// 组件只依赖 [Observer] 接口：未注入时使用 [NoopObserver]，零开销。
//
//	ctx, span := xmetrics.Start(ctx, observer, xmetrics.SpanOptions{
//		Component: "xpool",
//		Operation: "job",
//		Kind:      xmetrics.KindConsumer,
//	})
//	err := run(ctx)
//	span.End(xmetrics.Result{Err: err})
//
// OTel 实现为每次 End 记录两个指标：
//
//   - xserve.operation.total：计数，标签 component/operation/status
//   - xserve.operation.duration：耗时直方图（秒），标签同上
//
// Start 会把新建 span 的 trace_id/span_id 同步回 xctx，使同一请求的日志与追踪可关联。
package xmetrics
