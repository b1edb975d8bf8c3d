package xsys

// FileLimit RLIMIT_NOFILE 的当前值。
type FileLimit struct {
	Soft uint64
	Hard uint64
}
