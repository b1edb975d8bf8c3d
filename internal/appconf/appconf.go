// Package appconf 定义 xserve 进程的配置结构、默认值与校验。
package appconf

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/omeyang/xserve/pkg/config/xconf"
	"github.com/omeyang/xserve/pkg/observability/xlog"
	"github.com/omeyang/xserve/pkg/resilience/xretry"
)

// ErrInvalid 配置校验失败。
var ErrInvalid = errors.New("appconf: invalid config")

// Config xserve 配置根。
type Config struct {
	Server ServerConfig `koanf:"server"`
	Pool   PoolConfig   `koanf:"pool"`
	Log    LogConfig    `koanf:"log"`
	Cache  CacheConfig  `koanf:"cache"`
}

// ServerConfig 监听与页面配置。
type ServerConfig struct {
	Addr         string         `koanf:"addr"`
	Root         string         `koanf:"root"`
	IndexPage    string         `koanf:"index_page"`
	NotFoundPage string         `koanf:"not_found_page"`
	ReadTimeout  time.Duration  `koanf:"read_timeout"`
	WriteTimeout time.Duration  `koanf:"write_timeout"`
	ReusePort    bool           `koanf:"reuse_port"`
	BindRetry    xretry.Backoff `koanf:"bind_retry"`
}

// PoolConfig worker pool 配置。Workers 的范围由 xpool.Build 校验。
type PoolConfig struct {
	Workers int    `koanf:"workers"`
	Name    string `koanf:"name"`
}

// LogConfig 日志配置。File 为空时输出到 stderr。
type LogConfig struct {
	Level      string `koanf:"level"`
	Format     string `koanf:"format"`
	AddSource  bool   `koanf:"add_source"`
	File       string `koanf:"file"`
	MaxSizeMB  int    `koanf:"max_size_mb"`
	MaxBackups int    `koanf:"max_backups"`
	MaxAgeDays int    `koanf:"max_age_days"`
	Compress   bool   `koanf:"compress"`

	// AccessSampleRate 访问日志按 request_id 采样的比率，1 表示全部记录。
	AccessSampleRate float64 `koanf:"access_sample_rate"`
}

// CacheConfig 页面缓存配置。
type CacheConfig struct {
	Size int           `koanf:"size"`
	TTL  time.Duration `koanf:"ttl"`
}

// Default 返回默认配置。
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:         "127.0.0.1:8000",
			Root:         "web",
			IndexPage:    "hello.html",
			NotFoundPage: "404.html",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 5 * time.Second,
			BindRetry: xretry.Backoff{
				Attempts: 5,
				Initial:  100 * time.Millisecond,
				Max:      2 * time.Second,
			},
		},
		Pool: PoolConfig{Workers: 4, Name: "conn"},
		Log: LogConfig{
			Level:      "info",
			Format:     "text",
			MaxSizeMB:  100,
			MaxBackups: 7,
			MaxAgeDays: 30,
			Compress:   true,

			AccessSampleRate: 1,
		},
		Cache: CacheConfig{Size: 16, TTL: time.Minute},
	}
}

// Load 在默认值之上叠加 path 中的配置并校验。path 为空时返回默认配置。
func Load(path string) (Config, xconf.Config, error) {
	if path == "" {
		cfg := Default()
		return cfg, nil, cfg.Validate()
	}
	src, err := xconf.New(path)
	if err != nil {
		return Config{}, nil, err
	}
	cfg, err := FromSource(src)
	return cfg, src, err
}

// FromSource 从已加载的配置源解析，用于启动与热加载。
func FromSource(src xconf.Config) (Config, error) {
	cfg := Default()
	if err := src.Unmarshal("", &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate 校验配置。
func (c Config) Validate() error {
	var errs []error
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is empty"))
	}
	if c.Server.IndexPage == "" || c.Server.NotFoundPage == "" {
		errs = append(errs, errors.New("server pages must be set"))
	}
	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 {
		errs = append(errs, errors.New("server timeouts must not be negative"))
	}
	if _, err := xlog.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("log.format %q is not text or json", c.Log.Format))
	}
	if r := c.Log.AccessSampleRate; math.IsNaN(r) || r < 0 || r > 1 {
		errs = append(errs, fmt.Errorf("log.access_sample_rate %v is not in [0, 1]", r))
	}
	if c.Cache.Size <= 0 {
		errs = append(errs, errors.New("cache.size must be positive"))
	}
	if c.Cache.TTL < 0 {
		errs = append(errs, errors.New("cache.ttl must not be negative"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}
