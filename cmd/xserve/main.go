// xserve 是基于固定大小 worker pool 的静态行协议服务。
//
// 用法:
//
//	xserve serve [选项]
//	xserve version
//
// serve 选项:
//
//	-c, --config      配置文件路径（YAML/JSON，变更后自动热加载日志级别与页面缓存）
//	    --addr        监听地址（默认 127.0.0.1:8000）
//	-w, --workers     worker 数量（默认 4）
//	    --root        页面目录（默认 web）
//	    --log-level   日志级别 debug/info/warn/error
//	    --log-format  日志格式 text/json
//
// 命令行选项优先于配置文件，配置文件优先于默认值。选项也可通过 XSERVE_* 环境变量设置。
//
// 退出码:
//
//	0: 正常退出（包括收到 SIGINT/SIGTERM 等信号）
//	1: 运行失败（如 worker pool 创建失败、端口绑定失败）
//	2: 参数错误
package main

import (
	"context"
	"os"
)

// 版本信息，可通过 -ldflags "-X main.Version=..." 注入。
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

func main() {
	os.Exit(run(context.Background(), os.Args))
}
