package webserver

import (
	"time"

	"github.com/omeyang/xserve/pkg/resilience/xretry"
)

// Config 服务配置。
type Config struct {
	Addr         string
	Root         string
	IndexPage    string
	NotFoundPage string

	// ReadTimeout/WriteTimeout 为 0 时不设置连接 deadline。
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// ReusePort 在支持的平台上设置 SO_REUSEPORT。
	ReusePort bool
	BindRetry xretry.Backoff

	CacheSize int
	CacheTTL  time.Duration
}

// DefaultConfig 返回默认配置。
func DefaultConfig() Config {
	return Config{
		Addr:         "127.0.0.1:8000",
		Root:         "web",
		IndexPage:    "hello.html",
		NotFoundPage: "404.html",
		BindRetry:    xretry.Backoff{Attempts: 1},
		CacheSize:    16,
		CacheTTL:     time.Minute,
	}
}
