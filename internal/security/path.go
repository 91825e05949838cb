package security

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureDir creates dir with perm unless it already exists as a directory
func EnsureDir(dir string, perm os.FileMode) error {
	clean := filepath.Clean(dir)
	info, err := os.Stat(clean)
	if err == nil {
		if !info.IsDir() {
			return fmt.Errorf("path exists but is not a directory: %s", clean)
		}
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat directory: %w", err)
	}
	if err := os.MkdirAll(clean, perm); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return nil
}
