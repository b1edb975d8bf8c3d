package xfile

import "errors"

var (
	// ErrEmptyPath 路径为空。
	ErrEmptyPath = errors.New("xfile: path is required")

	// ErrNullByte 路径含空字节，内核会在此截断路径。
	ErrNullByte = errors.New("xfile: path contains null byte")

	// ErrAbsolutePath 名称不是相对路径。
	ErrAbsolutePath = errors.New("xfile: path must be relative")

	// ErrPathTraversal 名称含 ".." 路径段。
	ErrPathTraversal = errors.New("xfile: path traversal detected")

	// ErrPathEscaped 解析结果（含符号链接）落在根目录之外。
	ErrPathEscaped = errors.New("xfile: path escapes root directory")

	// ErrNotFile 名称指向目录。
	ErrNotFile = errors.New("xfile: path is a directory")
)
