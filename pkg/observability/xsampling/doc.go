// Package xsampling 提供日志与观测事件的采样策略。
//
// [KeyBased] 对同一 key 总是给出相同决策，按 request_id 采样时一个请求的
// 全部日志要么都保留要么都丢弃。key 为空时退化为随机采样，保持近似比率。
package xsampling
