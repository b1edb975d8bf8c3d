package xctx

import "errors"

// contextKey 包私有 key 类型，避免与其他包冲突。
type contextKey string

// ErrNilContext 表示传入的 context 为 nil。
var ErrNilContext = errors.New("xctx: nil context")

// ErrMissingRequestID 表示 context 中没有 request_id。
var ErrMissingRequestID = errors.New("xctx: missing request_id")
