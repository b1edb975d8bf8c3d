package webserver

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/omeyang/xserve/pkg/observability/xlog"
	"github.com/omeyang/xserve/pkg/observability/xmetrics"
)

const (
	indexRequestLine = "GET / HTTP/1.1"
	statusOK         = "HTTP/1.1 200 OK"
	statusNotFound   = "HTTP/1.1 404 NOT FOUND"

	// maxRequestLine 请求行长度上限，超出视为无效请求
	maxRequestLine = 8 * 1024
)

// HandleConn 处理单个连接：读取请求行，写回页面，然后关闭连接。
// 读取失败或请求行为空时直接关闭，不写任何内容。
func (s *Server) HandleConn(ctx context.Context, conn net.Conn) {
	defer func() { _ = conn.Close() }()

	start := time.Now()
	ctx, span := xmetrics.Start(ctx, s.observer, xmetrics.SpanOptions{
		Component: "webserver",
		Operation: "serve",
		Kind:      xmetrics.KindServer,
	})

	line, err := s.readRequestLine(conn)
	if err != nil {
		s.logger.Debug(ctx, "connection closed without request", xlog.Err(err))
		span.End(xmetrics.Result{Err: err})
		return
	}

	status, page, code := statusNotFound, s.cfg.NotFoundPage, 404
	if line == indexRequestLine {
		status, page, code = statusOK, s.cfg.IndexPage, 200
	}

	body, err := s.pages.Page(page)
	if err != nil {
		s.logger.Error(ctx, "page unavailable", xlog.Path(page), xlog.Err(err))
		span.End(xmetrics.Result{Err: err})
		return
	}

	if s.cfg.WriteTimeout > 0 {
		_ = conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
	}
	if err := writeResponse(conn, status, body); err != nil {
		s.logger.Warn(ctx, "write response failed", xlog.Err(err))
		span.End(xmetrics.Result{Err: err})
		return
	}

	if s.access.ShouldSample(ctx) {
		s.logger.Info(ctx, "request served",
			xlog.Path(requestPath(line)), xlog.StatusCode(code), xlog.Duration(time.Since(start)))
	}
	span.End(xmetrics.Result{Attrs: []xmetrics.Attr{xmetrics.Int("status_code", code)}})
}

func (s *Server) readRequestLine(conn net.Conn) (string, error) {
	if s.cfg.ReadTimeout > 0 {
		_ = conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
	}
	r := bufio.NewReaderSize(io.LimitReader(conn, maxRequestLine), 512)
	line, err := r.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("webserver: read request line: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", fmt.Errorf("webserver: read request line: %w", io.ErrUnexpectedEOF)
	}
	return line, nil
}

// writeResponse 写出 "状态行\r\nContent-Length: N\r\n\r\n正文"。
func writeResponse(w io.Writer, status string, body []byte) error {
	buf := make([]byte, 0, len(status)+len(body)+32)
	buf = append(buf, status...)
	buf = append(buf, "\r\nContent-Length: "...)
	buf = strconv.AppendInt(buf, int64(len(body)), 10)
	buf = append(buf, "\r\n\r\n"...)
	buf = append(buf, body...)
	_, err := w.Write(buf)
	return err
}

// requestPath 取请求行第二个字段，仅用于日志。
func requestPath(line string) string {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return line
	}
	return fields[1]
}
