// Package util 提供通用工具相关的子包。
//
// 子包列表：
//   - xpool: 固定大小的 worker pool，关闭时排空队列并按序回收 worker
//   - xqueue: 无界多生产者多消费者队列，关闭后排空返回 ErrDisconnected
//   - xlru: 带 TTL 的泛型 LRU 缓存，并发未命中合并加载
//   - xfile: 受根目录约束的路径解析与父目录创建
//   - xproc: 当前进程身份信息
//   - xsys: 进程文件描述符上限管理
package util
