// Package webserver 是 worker pool 的 TCP 协作方：每个连接生成一个任务交给 pool 执行。
//
// 协议只读取请求的第一行：
//
//	GET / HTTP/1.1   → HTTP/1.1 200 OK + 首页
//	其他任意内容     → HTTP/1.1 404 NOT FOUND + 404 页面
//
// 响应格式为 "状态行\r\nContent-Length: N\r\n\r\n正文"，写完即关闭连接。
// 页面从 Root 目录读取并缓存在 xlru 中。
package webserver
