package xctx

import (
	"context"
	"sync/atomic"
)

// Conn Key 常量
const (
	KeyConnID     = "conn_id"
	KeyRemoteAddr = "remote_addr"
)

const (
	keyConnID     = contextKey("xctx:conn_id")
	keyRemoteAddr = contextKey("xctx:remote_addr")
)

// connSeq 进程内连接序号，从 1 开始。
var connSeq atomic.Uint64

// NextConnID 返回下一个连接序号。
func NextConnID() uint64 {
	return connSeq.Add(1)
}

// WithConnID 将连接序号注入 context。
func WithConnID(ctx context.Context, id uint64) (context.Context, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	return context.WithValue(ctx, keyConnID, id), nil
}

// ConnID 从 context 提取连接序号。
// ok 为 false 表示未设置（序号从 1 开始，0 不会出现）。
func ConnID(ctx context.Context) (id uint64, ok bool) {
	if ctx == nil {
		return 0, false
	}
	id, ok = ctx.Value(keyConnID).(uint64)
	return id, ok
}

// WithRemoteAddr 将对端地址注入 context。
func WithRemoteAddr(ctx context.Context, addr string) (context.Context, error) {
	return withString(ctx, keyRemoteAddr, addr)
}

// RemoteAddr 从 context 提取对端地址，不存在返回空字符串。
func RemoteAddr(ctx context.Context) string {
	return stringValue(ctx, keyRemoteAddr)
}
