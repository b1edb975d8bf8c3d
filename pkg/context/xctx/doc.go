// Package xctx 提供请求级 context 字段的存取。
//
// 字段分为两组：
//
// 追踪信息（Trace）：
//   - trace_id     : 追踪标识（W3C 规范，128-bit，由 xmetrics 从 OTel span 同步）
//   - span_id      : 跨度标识（W3C 规范，64-bit）
//   - request_id   : 请求标识（UUID v4）
//   - trace_flags  : 追踪标志（采样决策）
//
// 连接信息（Conn）：
//   - conn_id      : 连接序号（进程内单调递增）
//   - remote_addr  : 对端地址
//
// # 命名约定
//
//	WithXxx(ctx, value)  - 注入：将 value 写入 context，ctx 为 nil 时返回 ErrNilContext
//	Xxx(ctx)             - 读取：缺失时返回零值
//	EnsureXxx(ctx)       - 确保存在：已存在则原样返回，否则自动生成
//	AppendXxxAttrs       - 日志集成：把非空字段追加为 slog.Attr（供 xlog.EnrichHandler 使用）
package xctx
