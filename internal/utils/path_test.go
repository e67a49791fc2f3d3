package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	wd, err := os.Getwd()
	require.NoError(t, err)

	tests := []struct {
		name      string
		input     string
		want      string
		wantError bool
	}{
		{name: "empty path", input: "", wantError: true},
		{name: "relative path", input: "./test", want: filepath.Join(wd, "test")},
		{name: "absolute path", input: "/tmp/../tmp/test", want: "/tmp/test"},
		{name: "tilde", input: "~/.local/share", want: filepath.Join(home, ".local/share")},
		{name: "bare tilde", input: "~", want: home},
		{name: "tilde user is literal", input: "~bob/x", want: filepath.Join(wd, "~bob/x")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ResolvePath(tt.input)
			if tt.wantError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, result)
		})
	}
}

func TestIsWithin(t *testing.T) {
	assert.True(t, IsWithin("/a/b", "/a/b/c"))
	assert.True(t, IsWithin("/a/b", "/a/b/c/d"))
	assert.False(t, IsWithin("/a/b", "/a/b"))
	assert.False(t, IsWithin("/a/b", "/a/bc"))
	assert.False(t, IsWithin("/a/b", "/a"))
	assert.False(t, IsWithin("/a/b", "/x/y"))
}

func TestEnsureParent(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "x", "y", "z.log")

	require.NoError(t, EnsureParent(p))
	assert.DirExists(t, filepath.Join(dir, "x", "y"))
	assert.NoFileExists(t, p)

	require.NoError(t, os.WriteFile(p, nil, 0o644))
	require.NoError(t, EnsureParent(p))
	assert.FileExists(t, p)
}
