// Package xqueue 提供无界的多生产者/多消费者 FIFO 队列。
//
// Queue 基于 sync.Mutex + sync.Cond 实现，特性：
//   - Enqueue 永不阻塞（无容量上限）
//   - Dequeue 阻塞直到有元素可取或队列关闭
//   - 每个元素只会交付给一个消费者（非广播）
//   - 同一生产者的入队顺序在出队时保持
//   - Close 为一次性、不可逆操作：关闭后仍会交付已入队的元素，
//     全部取完后 Dequeue 返回 ErrDisconnected
//
// # 注意事项
//
//   - 关闭后 Enqueue 返回 ErrClosed（而非 panic）
//   - 锁只在"检查/取出一个元素"期间持有，调用方处理元素时不持锁
//   - 零值不可用，必须通过 New 创建
//
// # 设计选择说明
//
// 设计决策: 不使用 channel 实现。channel 需要预设容量，而队列语义要求无界；
// 对已关闭 channel 发送会 panic，需要额外的 recover 兜底。
// Mutex + Cond 可以同时满足无界、关闭后返回错误、唤醒全部等待者三点。
package xqueue
