package webserver

import (
	"fmt"
	"os"
	"time"

	"github.com/omeyang/xserve/pkg/util/xfile"
	"github.com/omeyang/xserve/pkg/util/xlru"
)

// PageStore 从根目录读取页面并缓存。
type PageStore struct {
	root  string
	cache *xlru.Cache[string, []byte]
}

// NewPageStore 创建页面存储。ttl 为 0 时缓存不过期。
func NewPageStore(root string, size int, ttl time.Duration) (*PageStore, error) {
	cache, err := xlru.New[string, []byte](xlru.Config{Size: size, TTL: ttl}, nil)
	if err != nil {
		return nil, fmt.Errorf("webserver: page cache: %w", err)
	}
	return &PageStore{root: root, cache: cache}, nil
}

// Page 返回页面内容。name 是相对根目录的路径，解析结果（含符号链接）不能跳出根目录。
func (s *PageStore) Page(name string) ([]byte, error) {
	return s.cache.GetOrLoad(name, s.read)
}

func (s *PageStore) read(name string) ([]byte, error) {
	path, err := xfile.Resolve(s.root, name)
	if err != nil {
		return nil, fmt.Errorf("webserver: page %s: %w", name, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("webserver: read page %s: %w", name, err)
	}
	return data, nil
}

// Invalidate 清空缓存，下次访问重新读取磁盘。
func (s *PageStore) Invalidate() {
	s.cache.Purge()
}

// Close 释放缓存。
func (s *PageStore) Close() {
	s.cache.Close()
}
