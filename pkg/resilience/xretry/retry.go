package xretry

import (
	"context"
	"errors"
	"time"

	retry "github.com/avast/retry-go/v5"
)

// ErrNilFunc 表示传入了 nil 操作。
var ErrNilFunc = errors.New("xretry: nil func")

// Option retry-go 选项。
type Option = retry.Option

// retry-go 选项与延迟策略别名。
var (
	Attempts      = retry.Attempts
	Delay         = retry.Delay
	MaxDelay      = retry.MaxDelay
	MaxJitter     = retry.MaxJitter
	DelayType     = retry.DelayType
	OnRetry       = retry.OnRetry
	RetryIf       = retry.RetryIf
	LastErrorOnly = retry.LastErrorOnly

	BackOffDelay = retry.BackOffDelay
	FixedDelay   = retry.FixedDelay

	// Unrecoverable 标记错误为不可重试。
	Unrecoverable = retry.Unrecoverable
	IsRecoverable = retry.IsRecoverable
)

// Do 带重试执行 fn。
//
// ctx 取消后不再重试。调用方传入的 RetryIf 会覆盖默认的 Unrecoverable 判断。
func Do(ctx context.Context, fn func() error, opts ...Option) error {
	if fn == nil {
		return ErrNilFunc
	}
	if ctx == nil {
		ctx = context.Background()
	}
	all := make([]Option, 0, len(opts)+2)
	all = append(all, retry.Context(ctx), retry.RetryIf(IsRecoverable))
	all = append(all, opts...)
	return retry.New(all...).Do(fn)
}

// Backoff 指数退避参数。
type Backoff struct {
	// Attempts 总尝试次数（含首次），0 视为 1。
	Attempts uint          `koanf:"attempts"`
	Initial  time.Duration `koanf:"initial"`
	Max      time.Duration `koanf:"max"`
}

// Options 转换为 retry-go 选项：指数退避、无抖动、只返回最后一次错误。
func (b Backoff) Options() []Option {
	attempts := max(b.Attempts, 1)
	opts := []Option{
		Attempts(attempts),
		Delay(b.Initial),
		MaxJitter(0),
		DelayType(BackOffDelay),
		LastErrorOnly(true),
	}
	if b.Max > 0 {
		opts = append(opts, MaxDelay(b.Max))
	}
	return opts
}
