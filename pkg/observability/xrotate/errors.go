package xrotate

import "errors"

var (
	// ErrEmptyFilename 未指定日志文件。
	ErrEmptyFilename = errors.New("xrotate: filename is required")

	// ErrInvalidMaxSize 单文件上限超出 1~10240 MB。
	ErrInvalidMaxSize = errors.New("xrotate: invalid MaxSizeMB")

	// ErrInvalidMaxBackups 备份个数超出 0~1024。
	ErrInvalidMaxBackups = errors.New("xrotate: invalid MaxBackups")

	// ErrInvalidMaxAge 保留天数超出 0~3650。
	ErrInvalidMaxAge = errors.New("xrotate: invalid MaxAgeDays")

	// ErrNoCleanupPolicy 备份个数与保留天数都为 0 时旧文件永不清理，拒绝该配置。
	ErrNoCleanupPolicy = errors.New("xrotate: no cleanup policy configured")

	// ErrClosed 写入已关闭的轮转器。
	ErrClosed = errors.New("xrotate: rotator is closed")
)
