package xctx

import (
	"context"
	"crypto/rand"
	"encoding/hex"

	"github.com/google/uuid"
)

const (
	// TraceIDSize W3C 规范: 128-bit (16 bytes) -> 32 hex chars
	TraceIDSize = 16

	// SpanIDSize W3C 规范: 64-bit (8 bytes) -> 16 hex chars
	SpanIDSize = 8
)

// Trace Key 常量，遵循 OpenTelemetry 语义约定（下划线分隔）
const (
	KeyTraceID    = "trace_id"
	KeySpanID     = "span_id"
	KeyRequestID  = "request_id"
	KeyTraceFlags = "trace_flags"
)

const (
	keyTraceID    = contextKey("xctx:trace_id")
	keySpanID     = contextKey("xctx:span_id")
	keyRequestID  = contextKey("xctx:request_id")
	keyTraceFlags = contextKey("xctx:trace_flags")
)

func withString(ctx context.Context, key contextKey, v string) (context.Context, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	return context.WithValue(ctx, key, v), nil
}

func stringValue(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}

// WithTraceID 将 trace ID 注入 context。
func WithTraceID(ctx context.Context, traceID string) (context.Context, error) {
	return withString(ctx, keyTraceID, traceID)
}

// TraceID 从 context 提取 trace ID，不存在返回空字符串。
func TraceID(ctx context.Context) string {
	return stringValue(ctx, keyTraceID)
}

// WithSpanID 将 span ID 注入 context。
func WithSpanID(ctx context.Context, spanID string) (context.Context, error) {
	return withString(ctx, keySpanID, spanID)
}

// SpanID 从 context 提取 span ID，不存在返回空字符串。
func SpanID(ctx context.Context) string {
	return stringValue(ctx, keySpanID)
}

// WithTraceFlags 将 trace flags 注入 context。
// 格式: 2 位十六进制字符串（"01" 表示已采样）。
func WithTraceFlags(ctx context.Context, flags string) (context.Context, error) {
	return withString(ctx, keyTraceFlags, flags)
}

// TraceFlags 从 context 提取 trace flags，不存在返回空字符串。
func TraceFlags(ctx context.Context) string {
	return stringValue(ctx, keyTraceFlags)
}

// WithRequestID 将 request ID 注入 context。
func WithRequestID(ctx context.Context, requestID string) (context.Context, error) {
	return withString(ctx, keyRequestID, requestID)
}

// RequestID 从 context 提取 request ID，不存在返回空字符串。
func RequestID(ctx context.Context) string {
	return stringValue(ctx, keyRequestID)
}

// RequireRequestID 从 context 获取 request ID，缺失时返回 ErrMissingRequestID。
func RequireRequestID(ctx context.Context) (string, error) {
	if ctx == nil {
		return "", ErrNilContext
	}
	v := RequestID(ctx)
	if v == "" {
		return "", ErrMissingRequestID
	}
	return v, nil
}

// GenerateTraceID 生成符合 W3C Trace Context 规范的 TraceID（32 位小写十六进制）。
//
// 熵源不可用时 panic：crypto/rand 失败属于系统级故障，继续运行没有意义。
func GenerateTraceID() string {
	return randomHex(TraceIDSize)
}

// GenerateSpanID 生成符合 W3C Trace Context 规范的 SpanID（16 位小写十六进制）。
func GenerateSpanID() string {
	return randomHex(SpanIDSize)
}

func randomHex(size int) string {
	buf := make([]byte, size)
	for {
		if _, err := rand.Read(buf); err != nil {
			panic("xctx: crypto/rand.Read failed: " + err.Error())
		}
		// W3C 规范禁止全零 ID
		for _, b := range buf {
			if b != 0 {
				return hex.EncodeToString(buf)
			}
		}
	}
}

// GenerateRequestID 生成 RequestID（UUID v4 字符串）。
func GenerateRequestID() string {
	return uuid.NewString()
}

// EnsureRequestID 确保 context 中存在 RequestID。
// 已存在则原样返回（不验证/不纠正），否则生成新的并注入。
func EnsureRequestID(ctx context.Context) (context.Context, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	if RequestID(ctx) != "" {
		return ctx, nil
	}
	return WithRequestID(ctx, GenerateRequestID())
}
