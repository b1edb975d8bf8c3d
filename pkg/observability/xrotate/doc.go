// Package xrotate 提供日志文件轮转能力，底层基于 lumberjack。
//
// xlog 通过 Builder.SetRotation 使用本包；Rotator 实现 io.WriteCloser，
// 也可直接作为任意 io.Writer 的输出目标。
//
// 约定：
//   - 按文件大小自动轮转，备份按数量与天数清理（二者不能同时为 0）
//   - 父目录不存在时自动创建（0750）
//   - Close 后 Write/Rotate 返回 ErrClosed，重复 Close 也返回 ErrClosed
package xrotate
