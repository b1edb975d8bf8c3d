// Package xlog 基于 log/slog 的结构化日志库。
//
// # 核心功能
//
//   - Builder 模式配置（输出目标、级别、格式、轮转）
//   - 自动从 context 注入 request_id、conn_id 等字段（EnrichHandler，默认启用）
//   - 动态级别调整（配置热更新时调用 SetLevel）
//   - 全局 Logger 便利函数
//
// # 创建 Logger
//
// Builder 采用 first-error-wins：遇到第一个配置错误后，后续 Set 的错误不会覆盖它，
// Build 时返回该错误。
//
//	logger, cleanup, err := xlog.New().
//		SetLevelString("debug").
//		SetFormat("json").
//		SetRotation("/var/log/xserve/xserve.log").
//		Build()
//	if err != nil {
//		return err
//	}
//	defer cleanup()
//
// # 全局 Logger
//
// [Default] 惰性初始化（stderr、Info、text）。库代码（如 xpool）在未注入 Logger 时使用它，
// 进程入口可通过 [SetDefault] 替换。
//
// # 日志级别
//
// LevelDebug(-4)、LevelInfo(0)、LevelWarn(4)、LevelError(8)，[ParseLevel] 从字符串解析，
// Level 实现 encoding.TextUnmarshaler，可直接用于配置反序列化。
package xlog
