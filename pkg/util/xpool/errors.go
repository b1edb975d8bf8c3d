package xpool

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSize 表示 worker 数量不在 [1, MaxWorkers] 内。
	ErrInvalidSize = errors.New("xpool: size must be higher than 0 and at most 65536")

	// ErrClosed 表示 pool 已开始关闭，不再接受任务。
	ErrClosed = errors.New("xpool: pool is closed")

	// ErrNilJob 表示提交了 nil 任务。
	ErrNilJob = errors.New("xpool: nil job")

	// ErrNilContext 表示 Shutdown 收到 nil context。
	ErrNilContext = errors.New("xpool: nil context")

	// ErrJobPanicked 是 PanicError 的哨兵值，可用 errors.Is 判断。
	ErrJobPanicked = errors.New("xpool: job panicked")
)

// PanicError 描述一次被 worker 捕获的任务 panic。
type PanicError struct {
	WorkerID int
	Value    any
	Stack    []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("xpool: job panicked on worker %d: %v", e.WorkerID, e.Value)
}

// Unwrap 使 errors.Is(err, ErrJobPanicked) 成立。
func (e *PanicError) Unwrap() error {
	return ErrJobPanicked
}
