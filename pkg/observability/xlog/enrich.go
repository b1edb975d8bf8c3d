package xlog

import (
	"context"
	"log/slog"

	"github.com/omeyang/xserve/pkg/context/xctx"
)

// maxEnrichAttrs 最大注入属性数量（trace 4 + conn 2）
const maxEnrichAttrs = 6

// EnrichHandler 从 context 提取追踪与连接字段并注入日志。
//
// 注入顺序：trace_id/span_id/request_id/trace_flags 在前，conn_id/remote_addr 在后。
// 缺失字段直接跳过。
type EnrichHandler struct {
	base slog.Handler
}

// NewEnrichHandler 包装 base handler，base 为 nil 时返回 nil。
func NewEnrichHandler(base slog.Handler) *EnrichHandler {
	if base == nil {
		return nil
	}
	return &EnrichHandler{base: base}
}

// Enabled 委托给底层 handler。
func (h *EnrichHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.base.Enabled(ctx, level)
}

// Handle 注入 context 字段后交给底层 handler。
// 按 slog 契约，修改前先 Clone record。
func (h *EnrichHandler) Handle(ctx context.Context, r slog.Record) error {
	var buf [maxEnrichAttrs]slog.Attr
	attrs := xctx.AppendTraceAttrs(buf[:0], ctx)
	attrs = xctx.AppendConnAttrs(attrs, ctx)
	if len(attrs) > 0 {
		r = r.Clone()
		r.AddAttrs(attrs...)
	}
	return h.base.Handle(ctx, r)
}

// WithAttrs 返回带额外属性的新 handler。
func (h *EnrichHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &EnrichHandler{base: h.base.WithAttrs(attrs)}
}

// WithGroup 返回带分组的新 handler。
// 分组后注入字段也会落在该分组下（slog handler 的固有行为）。
func (h *EnrichHandler) WithGroup(name string) slog.Handler {
	return &EnrichHandler{base: h.base.WithGroup(name)}
}
