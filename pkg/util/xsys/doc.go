// Package xsys 管理进程级资源限制。
//
// 长连接服务每个连接占用一个文件描述符，启动时调用 [RaiseFileLimit]
// 把 RLIMIT_NOFILE 的 soft limit 提升到 hard limit。非 Unix 平台返回
// [ErrUnsupportedPlatform]。
package xsys
