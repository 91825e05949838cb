package security

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCommandPath(t *testing.T) {
	dir := t.TempDir()
	exe := filepath.Join(dir, "vim")
	require.NoError(t, os.WriteFile(exe, []byte("#!/bin/sh\n"), 0o755))
	plain := filepath.Join(dir, "notes")
	require.NoError(t, os.WriteFile(plain, []byte("x"), 0o644))

	tests := []struct {
		name    string
		cmd     string
		wantErr string
	}{
		{name: "empty", cmd: "", wantErr: "cannot be empty"},
		{name: "traversal", cmd: "../bin/vim", wantErr: "path traversal"},
		{name: "injection", cmd: "vim; rm -rf /", wantErr: "dangerous character"},
		{name: "subshell", cmd: "$(whoami)", wantErr: "dangerous character"},
		{name: "missing", cmd: filepath.Join(dir, "nope"), wantErr: "does not exist"},
		{name: "directory", cmd: dir, wantErr: "not a regular file"},
		{name: "not executable", cmd: plain, wantErr: "not executable"},
		{name: "executable", cmd: exe},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateCommandPath(tt.cmd)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.cmd, got)
		})
	}
}

func TestValidateAndResolveCommand(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"nano", "curl"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("#!/bin/sh\n"), 0o755))
	}

	got, err := ValidateAndResolveCommand(filepath.Join(dir, "nano"), "editor")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "nano"), got)

	_, err = ValidateAndResolveCommand(filepath.Join(dir, "curl"), "editor")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not allowed")

	_, err = ValidateAndResolveCommand(filepath.Join(dir, "curl"), "")
	assert.NoError(t, err)

	assert.False(t, IsAllowedCommand("vim", "pager"))
}

func TestSplitEditor(t *testing.T) {
	cmd, args := SplitEditor("  code --wait ")
	assert.Equal(t, "code", cmd)
	assert.Equal(t, []string{"--wait"}, args)

	cmd, args = SplitEditor("")
	assert.Empty(t, cmd)
	assert.Nil(t, args)
}

func TestEnsureDir(t *testing.T) {
	base := t.TempDir()
	dir := filepath.Join(base, "a", "b")
	require.NoError(t, EnsureDir(dir, 0o700))
	require.NoError(t, EnsureDir(dir, 0o700))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	file := filepath.Join(base, "file")
	require.NoError(t, os.WriteFile(file, nil, 0o600))
	err = EnsureDir(file, 0o700)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}
