package xrun

import "os"

// WithSignalSource 用通道替代真实信号，仅测试可见。
func WithSignalSource(c <-chan os.Signal) Option {
	return func(o *groupOptions) {
		o.sigSource = c
	}
}
