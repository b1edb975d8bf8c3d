package xrotate

import "io"

var _ io.WriteCloser = (Rotator)(nil)

// Rotator 日志轮转器接口。所有实现都必须是并发安全的。
type Rotator interface {
	// Write 写入日志数据，达到大小上限时自动轮转。
	Write(p []byte) (n int, err error)

	// Close 关闭轮转器。重复调用返回 [ErrClosed]。
	Close() error

	// Rotate 手动触发轮转：关闭当前文件、重命名为备份并创建新文件。
	Rotate() error
}
