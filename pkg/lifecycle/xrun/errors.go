package xrun

import (
	"errors"
	"fmt"
	"os"
)

var (
	// ErrSignal 表示因收到系统信号而终止，用 errors.Is 判断。
	ErrSignal = errors.New("xrun: received signal")

	ErrNilFunc    = errors.New("xrun: nil service func")
	ErrNilService = errors.New("xrun: nil service")
)

// SignalError 携带触发退出的信号。
type SignalError struct {
	Signal os.Signal
}

func (e *SignalError) Error() string {
	return fmt.Sprintf("xrun: received signal %v", e.Signal)
}

// Unwrap 使 errors.Is(err, ErrSignal) 成立。
func (e *SignalError) Unwrap() error {
	return ErrSignal
}
