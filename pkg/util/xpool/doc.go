// Package xpool 提供固定大小的 worker pool。
//
// Build(n) 创建 n 个常驻 worker，它们共享一个无界 FIFO 队列（xqueue）。
// Execute 把任务放入队列后立即返回，由任意一个空闲 worker 取出执行。
//
//	pool, err := xpool.Build(4, xpool.WithName("conn"))
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	if err := pool.Execute(func() { handle(conn) }); err != nil {
//		conn.Close()
//	}
//
// # 语义
//
//   - worker 数量在 Build 时确定，运行期间不增减，也不会被替换
//   - Execute 永不阻塞；同一提交方的任务按提交顺序被取出，完成顺序不保证
//   - 每个任务恰好被一个 worker 执行一次；单个 worker 串行执行任务
//   - 任务 panic 被 worker 捕获并记录（含堆栈），worker 继续处理下一个任务
//   - 进行中的任务不可取消
//
// # 关闭
//
// Close 等价于 Shutdown(context.Background())：关闭队列（仅一次），
// 队列中剩余任务仍会被执行，然后按 worker id 升序逐个等待其退出。
// Shutdown(ctx) 在 ctx 到期时返回 ctx.Err()，残留 worker 在后台继续排空队列，
// 可通过 Done() 等待其最终退出。关闭开始后 Execute 返回 ErrClosed。
//
// 不可在任务内部调用 Close/Shutdown，否则该 worker 会等待自身退出而死锁。
//
// # 设计选择说明
//
// 设计决策: 队列采用无界 FIFO 而非有缓冲 channel。Execute 的契约是
// 永不阻塞也不丢弃任务，有界 channel 只能在"阻塞"与"拒绝"之间二选一。
// 内存增长由调用方的提交速率约束。
package xpool
