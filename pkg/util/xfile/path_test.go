package xfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "hello.html"), []byte("hi"), 0o600))
	realRoot, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{name: "existing file", input: "hello.html", want: filepath.Join(realRoot, "hello.html")},
		{name: "missing file", input: "nope.html", want: filepath.Join(root, "nope.html")},
		{name: "nested clean", input: "a/./b.html", want: filepath.Join(root, "a", "b.html")},
		{name: "double dots inside name", input: "app..v2.html", want: filepath.Join(root, "app..v2.html")},
		{name: "empty", input: "", wantErr: ErrEmptyPath},
		{name: "null byte", input: "a\x00b", wantErr: ErrNullByte},
		{name: "absolute", input: "/etc/passwd", wantErr: ErrAbsolutePath},
		{name: "backslash absolute", input: `\etc\passwd`, wantErr: ErrAbsolutePath},
		{name: "traversal", input: "../secret", wantErr: ErrPathTraversal},
		{name: "hidden traversal", input: "a/../../secret", wantErr: ErrPathTraversal},
		{name: "directory", input: "pages/", wantErr: ErrNotFile},
		{name: "root itself", input: "./", wantErr: ErrNotFile},
		{name: "dot", input: ".", wantErr: ErrNotFile},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(root, tt.input)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve_SymlinkEscape(t *testing.T) {
	outside := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(outside, "secret"), []byte("x"), 0o600))
	root := t.TempDir()
	if err := os.Symlink(filepath.Join(outside, "secret"), filepath.Join(root, "leak.html")); err != nil {
		t.Skipf("symlink unsupported: %v", err)
	}

	_, err := Resolve(root, "leak.html")
	require.ErrorIs(t, err, ErrPathEscaped)
}

func TestResolve_SymlinkInsideRoot(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "real.html"), []byte("x"), 0o600))
	if err := os.Symlink("real.html", filepath.Join(root, "alias.html")); err != nil {
		t.Skipf("symlink unsupported: %v", err)
	}

	got, err := Resolve(root, "alias.html")
	require.NoError(t, err)
	assert.Equal(t, "real.html", filepath.Base(got))
}

func TestEnsureParent(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "logs", "nested", "xserve.log")

	require.NoError(t, EnsureParent(file))
	info, err := os.Stat(filepath.Dir(file))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	require.NoError(t, EnsureParent(file), "existing dir is fine")
	require.NoError(t, EnsureParent("bare.log"))
	require.ErrorIs(t, EnsureParent(""), ErrEmptyPath)
	require.ErrorIs(t, EnsureParent("a\x00b"), ErrNullByte)
}
