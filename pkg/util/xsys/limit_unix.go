//go:build unix

package xsys

import (
	"fmt"
	"sync"

	"golang.org/x/sys/unix"
)

// 测试中替换以覆盖错误分支，替换它们的用例不能 t.Parallel()。
var (
	getrlimit = unix.Getrlimit
	setrlimit = unix.Setrlimit
)

var limitMu sync.Mutex

// GetFileLimit 返回当前的文件描述符限制。
func GetFileLimit() (FileLimit, error) {
	var rl unix.Rlimit
	if err := getrlimit(unix.RLIMIT_NOFILE, &rl); err != nil {
		return FileLimit{}, fmt.Errorf("xsys: getrlimit RLIMIT_NOFILE: %w", err)
	}
	return FileLimit{Soft: rl.Cur, Hard: rl.Max}, nil
}

// RaiseFileLimit 把 soft limit 提升到 hard limit 并返回调整后的值。
// soft 已等于 hard 时不做系统调用。不修改 hard limit，无需特权。
func RaiseFileLimit() (FileLimit, error) {
	limitMu.Lock()
	defer limitMu.Unlock()

	var rl unix.Rlimit
	if err := getrlimit(unix.RLIMIT_NOFILE, &rl); err != nil {
		return FileLimit{}, fmt.Errorf("xsys: getrlimit RLIMIT_NOFILE: %w", err)
	}
	if rl.Cur >= rl.Max {
		return FileLimit{Soft: rl.Cur, Hard: rl.Max}, nil
	}
	raised := unix.Rlimit{Cur: rl.Max, Max: rl.Max}
	if err := setrlimit(unix.RLIMIT_NOFILE, &raised); err != nil {
		return FileLimit{Soft: rl.Cur, Hard: rl.Max}, fmt.Errorf("xsys: setrlimit RLIMIT_NOFILE: %w", err)
	}
	return FileLimit{Soft: raised.Cur, Hard: raised.Max}, nil
}
