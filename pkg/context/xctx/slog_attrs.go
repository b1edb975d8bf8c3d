package xctx

import (
	"context"
	"log/slog"
)

// AppendTraceAttrs 将 context 中的追踪信息追加到 attrs，只追加非空字段。
func AppendTraceAttrs(attrs []slog.Attr, ctx context.Context) []slog.Attr {
	if ctx == nil {
		return attrs
	}
	if v := TraceID(ctx); v != "" {
		attrs = append(attrs, slog.String(KeyTraceID, v))
	}
	if v := SpanID(ctx); v != "" {
		attrs = append(attrs, slog.String(KeySpanID, v))
	}
	if v := RequestID(ctx); v != "" {
		attrs = append(attrs, slog.String(KeyRequestID, v))
	}
	if v := TraceFlags(ctx); v != "" {
		attrs = append(attrs, slog.String(KeyTraceFlags, v))
	}
	return attrs
}

// AppendConnAttrs 将 context 中的连接信息追加到 attrs，只追加已设置字段。
func AppendConnAttrs(attrs []slog.Attr, ctx context.Context) []slog.Attr {
	if ctx == nil {
		return attrs
	}
	if id, ok := ConnID(ctx); ok {
		attrs = append(attrs, slog.Uint64(KeyConnID, id))
	}
	if v := RemoteAddr(ctx); v != "" {
		attrs = append(attrs, slog.String(KeyRemoteAddr, v))
	}
	return attrs
}
