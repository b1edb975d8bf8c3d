//go:build !unix

package xsys

// GetFileLimit 在非 Unix 平台返回 ErrUnsupportedPlatform。
func GetFileLimit() (FileLimit, error) {
	return FileLimit{}, ErrUnsupportedPlatform
}

// RaiseFileLimit 在非 Unix 平台返回 ErrUnsupportedPlatform。
func RaiseFileLimit() (FileLimit, error) {
	return FileLimit{}, ErrUnsupportedPlatform
}
