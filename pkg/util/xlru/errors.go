package xlru

import "errors"

var (
	ErrInvalidSize    = errors.New("xlru: size must be greater than 0")
	ErrSizeExceedsMax = errors.New("xlru: size must not exceed 16777216")
	ErrInvalidTTL     = errors.New("xlru: TTL must not be negative")
	ErrClosed         = errors.New("xlru: cache is closed")
	ErrNilLoader      = errors.New("xlru: nil loader")

	// ErrLoadPanicked 等待中的 GetOrLoad 调用方在 load panic 时收到此错误。
	ErrLoadPanicked = errors.New("xlru: loader panicked")
)
