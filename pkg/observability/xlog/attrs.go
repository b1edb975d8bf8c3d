package xlog

import (
	"log/slog"
	"time"
)

// 常用属性 Key
const (
	KeyError      = "error"
	KeyStack      = "stack"
	KeyDuration   = "duration"
	KeyCount      = "count"
	KeyComponent  = "component"
	KeyOperation  = "operation"
	KeyWorkerID   = "worker_id"
	KeyPool       = "pool"
	KeyStatusCode = "status_code"
	KeyPath       = "path"
	KeyAddr       = "addr"
)

// Err 创建错误属性，err 为 nil 时返回空属性（被 slog 忽略）。
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// Duration 创建人类可读的耗时属性（如 "1.5s"）。
func Duration(d time.Duration) slog.Attr {
	return slog.String(KeyDuration, d.String())
}

// Count 创建计数属性。
func Count(n int64) slog.Attr {
	return slog.Int64(KeyCount, n)
}

// Component 标识日志来源组件。
func Component(name string) slog.Attr {
	return slog.String(KeyComponent, name)
}

// Operation 标识当前操作。
func Operation(name string) slog.Attr {
	return slog.String(KeyOperation, name)
}

// WorkerID 标识 worker 序号。
func WorkerID(id int) slog.Attr {
	return slog.Int(KeyWorkerID, id)
}

// Pool 标识 worker pool 名称。
func Pool(name string) slog.Attr {
	return slog.String(KeyPool, name)
}

// StatusCode 创建 HTTP 状态码属性。
func StatusCode(code int) slog.Attr {
	return slog.Int(KeyStatusCode, code)
}

// Path 创建请求路径属性。
func Path(p string) slog.Attr {
	return slog.String(KeyPath, p)
}

// Addr 创建监听/对端地址属性。
func Addr(addr string) slog.Attr {
	return slog.String(KeyAddr, addr)
}
