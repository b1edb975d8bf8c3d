package webserver

import (
	"context"
	"errors"
	"io"
	"net"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/xserve/pkg/observability/xlog"
	"github.com/omeyang/xserve/pkg/resilience/xretry"
	"github.com/omeyang/xserve/pkg/util/xpool"
)

const (
	helloBody    = "<h1>Hello!</h1>"
	notFoundBody = "<h1>Oops!</h1>"
)

func discardLogger(t *testing.T) xlog.Logger {
	t.Helper()
	logger, cleanup, err := xlog.New().SetOutput(io.Discard).Build()
	require.NoError(t, err)
	t.Cleanup(func() { _ = cleanup() })
	return logger
}

func testConfig(t *testing.T) Config {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "hello.html"), []byte(helloBody), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(root, "404.html"), []byte(notFoundBody), 0o600))

	cfg := DefaultConfig()
	cfg.Addr = "127.0.0.1:0"
	cfg.Root = root
	cfg.ReadTimeout = 2 * time.Second
	cfg.WriteTimeout = 2 * time.Second
	return cfg
}

// startServer 启动 pool + server，返回监听地址；测试结束时按 server → pool 顺序关闭。
func startServer(t *testing.T, cfg Config, exec Executor) string {
	t.Helper()
	logger := discardLogger(t)
	if exec == nil {
		pool, err := xpool.Build(4, xpool.WithLogger(logger))
		require.NoError(t, err)
		t.Cleanup(func() { _ = pool.Close() })
		exec = pool
	}

	srv, err := New(cfg, exec, WithLogger(logger))
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	ln, err := srv.Listen(ctx)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()
	t.Cleanup(func() {
		cancel()
		assert.NoError(t, <-done)
	})
	return ln.Addr().String()
}

func roundTrip(t *testing.T, addr, request string) string {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr, 2*time.Second)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetDeadline(time.Now().Add(5*time.Second)))

	if request != "" {
		_, err = io.WriteString(conn, request)
		require.NoError(t, err)
	}
	// 服务端可能已关闭连接（拒绝或空请求），此时半关闭返回 ENOTCONN 或 ECONNRESET
	if err := conn.(*net.TCPConn).CloseWrite(); !peerClosed(err) {
		require.NoError(t, err)
	}

	resp, err := io.ReadAll(conn)
	// 服务端未读完请求就关闭时，对端可能收到 RST
	if !peerClosed(err) {
		require.NoError(t, err)
	}
	return string(resp)
}

func peerClosed(err error) bool {
	return err == nil || errors.Is(err, syscall.ENOTCONN) || errors.Is(err, syscall.ECONNRESET)
}

// flakyListener 前 failures 次 Accept 返回 err，之后阻塞直到 Close。
type flakyListener struct {
	net.Listener
	err      error
	failures int32
	accepts  atomic.Int32
	closed   chan struct{}
	once     sync.Once
}

func newFlakyListener(t *testing.T, err error, failures int32) *flakyListener {
	t.Helper()
	ln, lerr := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, lerr)
	return &flakyListener{Listener: ln, err: err, failures: failures, closed: make(chan struct{})}
}

func (l *flakyListener) Accept() (net.Conn, error) {
	if l.accepts.Add(1) <= l.failures {
		return nil, l.err
	}
	<-l.closed
	return nil, net.ErrClosed
}

func (l *flakyListener) Close() error {
	l.once.Do(func() { close(l.closed) })
	return l.Listener.Close()
}

func TestServe_RetriesTemporaryAcceptErrors(t *testing.T) {
	for name, errno := range map[string]syscall.Errno{
		"EMFILE":       syscall.EMFILE,
		"ENFILE":       syscall.ENFILE,
		"ENOBUFS":      syscall.ENOBUFS,
		"ECONNABORTED": syscall.ECONNABORTED,
	} {
		t.Run(name, func(t *testing.T) {
			var buf syncBuffer
			logger, cleanup, err := xlog.New().SetOutput(&buf).SetFormat("json").Build()
			require.NoError(t, err)
			defer func() { _ = cleanup() }()

			srv, err := New(testConfig(t), &countingExecutor{}, WithLogger(logger))
			require.NoError(t, err)
			defer func() { _ = srv.Close() }()

			acceptErr := &net.OpError{Op: "accept", Net: "tcp", Err: os.NewSyscallError("accept4", errno)}
			ln := newFlakyListener(t, acceptErr, 3)

			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan error, 1)
			go func() { done <- srv.Serve(ctx, ln) }()

			require.Eventually(t, func() bool { return ln.accepts.Load() > 3 }, 2*time.Second, 5*time.Millisecond,
				"Serve must keep accepting after %v", errno)
			cancel()
			require.NoError(t, <-done)
			assert.Contains(t, buf.String(), "accept failed; retrying")
		})
	}
}

func TestServe_PermanentAcceptErrorStops(t *testing.T) {
	srv, err := New(testConfig(t), &countingExecutor{}, WithLogger(discardLogger(t)))
	require.NoError(t, err)
	defer func() { _ = srv.Close() }()

	permanent := &net.OpError{Op: "accept", Net: "tcp", Err: os.NewSyscallError("accept4", syscall.EINVAL)}
	ln := newFlakyListener(t, permanent, 1)

	err = srv.Serve(context.Background(), ln)
	require.ErrorIs(t, err, syscall.EINVAL)
	assert.Equal(t, int32(1), ln.accepts.Load())
}

func TestRetryableAccept(t *testing.T) {
	wrap := func(errno syscall.Errno) error {
		return &net.OpError{Op: "accept", Net: "tcp", Err: os.NewSyscallError("accept4", errno)}
	}
	assert.True(t, retryableAccept(wrap(syscall.EMFILE)))
	assert.True(t, retryableAccept(wrap(syscall.ENFILE)))
	assert.True(t, retryableAccept(wrap(syscall.ENOMEM)))
	assert.True(t, retryableAccept(os.ErrDeadlineExceeded))
	assert.False(t, retryableAccept(wrap(syscall.EINVAL)))
	assert.False(t, retryableAccept(net.ErrClosed))
}

func TestServe_Index(t *testing.T) {
	addr := startServer(t, testConfig(t), nil)

	resp := roundTrip(t, addr, "GET / HTTP/1.1\r\nHost: localhost\r\n\r\n")
	assert.Equal(t, "HTTP/1.1 200 OK\r\nContent-Length: 15\r\n\r\n"+helloBody, resp)
}

func TestServe_NotFound(t *testing.T) {
	addr := startServer(t, testConfig(t), nil)

	for _, req := range []string{"GET /sleep HTTP/1.1\r\n\r\n", "POST / HTTP/1.1\r\n", "garbage"} {
		resp := roundTrip(t, addr, req)
		assert.Equal(t, "HTTP/1.1 404 NOT FOUND\r\nContent-Length: 14\r\n\r\n"+notFoundBody, resp, "request %q", req)
	}
}

func TestServe_EmptyRequestClosesWithoutResponse(t *testing.T) {
	addr := startServer(t, testConfig(t), nil)
	assert.Empty(t, roundTrip(t, addr, ""))
	assert.Empty(t, roundTrip(t, addr, "\r\n"))
}

func TestServe_ManyConnections(t *testing.T) {
	addr := startServer(t, testConfig(t), nil)

	errs := make(chan error, 32)
	for range 32 {
		go func() {
			conn, err := net.Dial("tcp", addr)
			if err != nil {
				errs <- err
				return
			}
			defer conn.Close()
			_, _ = io.WriteString(conn, "GET / HTTP/1.1\r\n")
			resp, err := io.ReadAll(conn)
			if err == nil && len(resp) == 0 {
				err = errors.New("empty response")
			}
			errs <- err
		}()
	}
	for range 32 {
		assert.NoError(t, <-errs)
	}
}

// countingExecutor 记录 Execute 调用次数，rejected 时返回 xpool.ErrClosed。
type countingExecutor struct {
	calls    chan struct{}
	rejected bool
}

func (e *countingExecutor) Execute(job xpool.Job) error {
	e.calls <- struct{}{}
	if e.rejected {
		return xpool.ErrClosed
	}
	go job()
	return nil
}

func TestServe_ExecuteOncePerConnection(t *testing.T) {
	exec := &countingExecutor{calls: make(chan struct{}, 8)}
	addr := startServer(t, testConfig(t), exec)

	for range 3 {
		_ = roundTrip(t, addr, "GET / HTTP/1.1\r\n")
	}
	assert.Len(t, exec.calls, 3)
}

func TestServe_RejectedConnectionIsClosed(t *testing.T) {
	exec := &countingExecutor{calls: make(chan struct{}, 1), rejected: true}
	addr := startServer(t, testConfig(t), exec)

	assert.Empty(t, roundTrip(t, addr, "GET / HTTP/1.1\r\n"))
	assert.Len(t, exec.calls, 1)
}

func TestServe_ClosedPool(t *testing.T) {
	pool, err := xpool.Build(1, xpool.WithLogger(discardLogger(t)))
	require.NoError(t, err)
	require.NoError(t, pool.Close())

	addr := startServer(t, testConfig(t), pool)
	assert.Empty(t, roundTrip(t, addr, "GET / HTTP/1.1\r\n"))
}

func TestNew_NilExecutor(t *testing.T) {
	_, err := New(DefaultConfig(), nil)
	assert.ErrorIs(t, err, ErrNilExecutor)
}

func TestNew_InvalidCache(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CacheSize = 0
	_, err := New(cfg, &countingExecutor{})
	assert.Error(t, err)
}

func TestListen_RetriesThenFails(t *testing.T) {
	occupied, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer occupied.Close()

	cfg := testConfig(t)
	cfg.Addr = occupied.Addr().String()
	cfg.BindRetry = xretry.Backoff{Attempts: 2, Initial: time.Millisecond}

	srv, err := New(cfg, &countingExecutor{}, WithLogger(discardLogger(t)))
	require.NoError(t, err)
	defer srv.Close()

	_, err = srv.Listen(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), cfg.Addr)
}

func TestRun_StopsOnCancel(t *testing.T) {
	pool, err := xpool.Build(1, xpool.WithLogger(discardLogger(t)))
	require.NoError(t, err)
	defer pool.Close()

	srv, err := New(testConfig(t), pool, WithLogger(discardLogger(t)))
	require.NoError(t, err)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
