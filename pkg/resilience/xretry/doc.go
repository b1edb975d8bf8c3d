// Package xretry 是 avast/retry-go/v5 的薄封装。
//
// Do 默认绑定 ctx（取消即停止重试）并跳过 Unrecoverable 错误；其余行为与
// retry-go 一致，常用选项以别名形式导出，调用方无需直接依赖 retry-go。
//
//	err := xretry.Do(ctx, func() error {
//		ln, err = lc.Listen(ctx, "tcp", addr)
//		return err
//	}, xretry.Attempts(5), xretry.Delay(100*time.Millisecond))
//
// Backoff 把"次数 + 初始延迟 + 最大延迟"这一最常见的组合收敛为可从配置反序列化的结构。
package xretry
