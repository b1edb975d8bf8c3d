package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/xserve/internal/appconf"
	"github.com/omeyang/xserve/internal/webserver"
	"github.com/omeyang/xserve/pkg/config/xconf"
	"github.com/omeyang/xserve/pkg/lifecycle/xrun"
	"github.com/omeyang/xserve/pkg/observability/xlog"
	"github.com/omeyang/xserve/pkg/util/xpool"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestRunVersion(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := runWith(context.Background(), []string{"xserve", "version"}, &stdout, &stderr)

	assert.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), "xserve "+Version)
	assert.Empty(t, stderr.String())
}

func TestRunInvalidWorkers(t *testing.T) {
	t.Cleanup(xlog.ResetDefault)
	for _, workers := range []string{"0", "-1", "65537"} {
		t.Run(workers, func(t *testing.T) {
			var stdout discardWriter
			var stderr syncBuffer
			code := runWith(context.Background(),
				[]string{"xserve", "serve", "--addr", "127.0.0.1:0", "--workers=" + workers},
				&stdout, &stderr)

			assert.Equal(t, 1, code)
			assert.Contains(t, stderr.String(), "failed to create worker pool")
			assert.Contains(t, stderr.String(), xpool.ErrInvalidSize.Error())
		})
	}
}

func TestRunUsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown flag", []string{"xserve", "serve", "--no-such-flag"}},
		{"bad log level", []string{"xserve", "serve", "--log-level", "loud"}},
		{"bad log format", []string{"xserve", "serve", "--log-format", "xml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout discardWriter
			var stderr syncBuffer
			code := runWith(context.Background(), tt.args, &stdout, &stderr)
			assert.Equal(t, 2, code, stderr.String())
		})
	}
}

func TestRunMissingConfigFile(t *testing.T) {
	var stdout discardWriter
	var stderr syncBuffer
	code := runWith(context.Background(),
		[]string{"xserve", "serve", "--config", filepath.Join(t.TempDir(), "missing.yaml")},
		&stdout, &stderr)
	assert.Equal(t, 1, code)
}

// discardWriter 丢弃 help 等输出。
type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

func TestOverridesApply(t *testing.T) {
	addr, root, level := "127.0.0.1:9000", "/srv/pages", "debug"
	workers := 8
	cfg := appconf.Default()

	overrides{addr: &addr, root: &root, logLevel: &level, workers: &workers}.apply(&cfg)

	assert.Equal(t, addr, cfg.Server.Addr)
	assert.Equal(t, root, cfg.Server.Root)
	assert.Equal(t, level, cfg.Log.Level)
	assert.Equal(t, workers, cfg.Pool.Workers)
	assert.Equal(t, appconf.Default().Log.Format, cfg.Log.Format)
}

func TestServeStopsOnCancel(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "hello.html"), []byte("hi"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(root, "404.html"), []byte("nope"), 0o600))
	t.Cleanup(xlog.ResetDefault)

	addr, workers := "127.0.0.1:0", 2
	var stderr syncBuffer
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- serve(ctx, &stderr, overrides{addr: &addr, root: &root, workers: &workers},
			xrun.WithoutSignalHandler())
	}()

	require.Eventually(t, func() bool {
		return bytes.Contains([]byte(stderr.String()), []byte("xserve starting"))
	}, 2*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after cancel")
	}
	assert.Contains(t, stderr.String(), "shutting down worker")
}

func TestReloadHandler(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "xserve.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\n"), 0o600))
	src, err := xconf.New(path)
	require.NoError(t, err)

	var out syncBuffer
	logger, cleanup, err := xlog.New().SetOutput(&out).SetLevel(xlog.LevelInfo).Build()
	require.NoError(t, err)
	defer func() { _ = cleanup() }()

	pool, err := xpool.Build(1, xpool.WithLogger(logger))
	require.NoError(t, err)
	defer func() { _ = pool.Close() }()

	cfg := webserver.DefaultConfig()
	cfg.Root = dir
	srv, err := webserver.New(cfg, pool, webserver.WithLogger(logger))
	require.NoError(t, err)
	defer func() { _ = srv.Close() }()

	handler := reloadHandler(context.Background(), logger, srv)

	handler(src, nil)
	assert.Equal(t, xlog.LevelDebug, logger.GetLevel())
	assert.Contains(t, out.String(), "config reloaded")

	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: loud\n"), 0o600))
	require.NoError(t, src.Reload())
	handler(src, nil)
	assert.Equal(t, xlog.LevelDebug, logger.GetLevel(), "rejected config must not change the level")
	assert.Contains(t, out.String(), "config reload rejected")
}
