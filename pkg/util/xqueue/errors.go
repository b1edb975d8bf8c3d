package xqueue

import "errors"

var (
	// ErrClosed 表示队列已关闭，无法再入队。
	ErrClosed = errors.New("xqueue: queue is closed")

	// ErrDisconnected 表示队列已关闭且所有元素已被取完。
	ErrDisconnected = errors.New("xqueue: queue is closed and drained")
)
