//go:build !unix

package webserver

import "syscall"

// socketControl 非 unix 平台使用系统默认选项，ReusePort 不生效。
func socketControl(bool) func(network, address string, c syscall.RawConn) error {
	return nil
}
