// Package xlru 提供带 TTL 的并发安全 LRU 缓存，基于 hashicorp/golang-lru/v2/expirable。
//
// 在上游之上补充了两点：
//
//   - GetOrLoad：未命中时调用 loader 填充，同一 key 的并发加载合并为一次
//   - Close：停止上游在 TTL > 0 时启动的后台清理 goroutine（上游 v2.0.7 未提供公开方法）
//
// 缓存必须通过 [New] 创建，使用完毕后调用 Close。
package xlru
