// Package xfile 提供受根目录约束的路径解析与父目录创建。
//
// [Resolve] 把不可信的相对名称解析到根目录内，拒绝绝对路径、".." 路径段、
// 空字节以及经符号链接逃逸出根目录的结果。[EnsureParent] 为日志等输出文件
// 创建父目录。
//
// 两者都只处理路径字符串，检查与打开文件之间存在 TOCTOU 窗口，
// 适用于根目录由运维控制的场景。
package xfile
