// Package observability 提供可观测性相关的子包。
//
// 子包列表：
//   - xlog: 结构化日志，基于 log/slog 扩展，自动带上 xctx 中的请求字段
//   - xmetrics: 统一观测接口，OpenTelemetry 实现同时产出指标与追踪
//   - xsampling: 访问日志采样策略
//   - xrotate: 日志文件轮转
package observability
