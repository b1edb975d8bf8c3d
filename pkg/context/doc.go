// Package context 提供请求与连接上下文相关的子包。
//
// 子包列表：
//   - xctx: 在 context.Context 中传递追踪 ID、请求 ID、连接 ID 与对端地址
package context
