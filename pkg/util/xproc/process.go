// Package xproc 提供当前进程的身份信息，用于启动日志与诊断。
package xproc

import (
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// 测试中替换。
var osExecutable = os.Executable

// Identity 进程身份。
type Identity struct {
	PID  int
	Name string
}

// Attrs 返回 pid 与 process 两个日志字段，Name 为空时省略 process。
func (id Identity) Attrs() []slog.Attr {
	attrs := []slog.Attr{slog.Int("pid", id.PID)}
	if id.Name != "" {
		attrs = append(attrs, slog.String("process", id.Name))
	}
	return attrs
}

var selfName = sync.OnceValue(resolveName)

// Self 返回当前进程身份。进程名在首次调用时解析并缓存。
func Self() Identity {
	return Identity{PID: os.Getpid(), Name: selfName()}
}

// resolveName 优先取可执行文件名，失败时回退 os.Args[0]。
func resolveName() string {
	if exe, err := osExecutable(); err == nil {
		if name := baseName(exe); name != "" {
			return name
		}
	}
	if len(os.Args) == 0 {
		return ""
	}
	return baseName(os.Args[0])
}

func baseName(path string) string {
	if path == "" {
		return ""
	}
	switch name := filepath.Base(path); name {
	case ".", "..", string(filepath.Separator):
		return ""
	default:
		return name
	}
}
