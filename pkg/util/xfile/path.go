package xfile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// DirPerm EnsureParent 创建目录使用的权限。
const DirPerm = 0o750

// Resolve 返回 name 在 root 内的路径。
//
// root 可以是相对路径，会先转换为绝对路径。目标已存在时解析符号链接，
// 并要求真实路径仍位于 root 的真实路径之内；目标不存在时只做词法检查，
// 由后续的打开操作报告 fs.ErrNotExist。
func Resolve(root, name string) (string, error) {
	if root == "" || name == "" {
		return "", ErrEmptyPath
	}
	if strings.ContainsRune(root, 0) || strings.ContainsRune(name, 0) {
		return "", ErrNullByte
	}
	if filepath.IsAbs(name) || strings.HasPrefix(name, "/") || strings.HasPrefix(name, `\`) {
		return "", fmt.Errorf("%w: %q", ErrAbsolutePath, name)
	}
	if strings.HasSuffix(name, "/") || strings.HasSuffix(name, `\`) {
		return "", fmt.Errorf("%w: %q", ErrNotFile, name)
	}
	clean := filepath.Clean(name)
	if clean == "." {
		return "", fmt.Errorf("%w: %q", ErrNotFile, name)
	}
	if hasDotDot(clean) {
		return "", fmt.Errorf("%w: %q", ErrPathTraversal, name)
	}

	base, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("xfile: resolve root %q: %w", root, err)
	}
	joined := filepath.Join(base, clean)

	resolved, err := filepath.EvalSymlinks(joined)
	if errors.Is(err, fs.ErrNotExist) {
		return joined, nil
	}
	if err != nil {
		return "", fmt.Errorf("xfile: resolve %q: %w", name, err)
	}
	realBase, err := filepath.EvalSymlinks(base)
	if err != nil {
		return "", fmt.Errorf("xfile: resolve root %q: %w", root, err)
	}
	if rel, err := filepath.Rel(realBase, resolved); err != nil || hasDotDot(rel) {
		return "", fmt.Errorf("%w: %q", ErrPathEscaped, name)
	}
	return resolved, nil
}

// hasDotDot 按路径段判断，"app..log" 这类文件名不受影响。
func hasDotDot(p string) bool {
	return slices.Contains(strings.FieldsFunc(p, isSeparator), "..")
}

func isSeparator(r rune) bool {
	return r == '/' || r == '\\'
}

// EnsureParent 创建 filename 的父目录，已存在时不做修改。
func EnsureParent(filename string) error {
	if filename == "" {
		return ErrEmptyPath
	}
	if strings.ContainsRune(filename, 0) {
		return ErrNullByte
	}
	dir := filepath.Dir(filepath.Clean(filename))
	if dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, DirPerm); err != nil {
		return fmt.Errorf("xfile: create dir %s: %w", dir, err)
	}
	return nil
}
