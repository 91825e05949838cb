// Package fileperms provides named file permission modes for the files ctb writes.
package fileperms

import "os"

const (
	// SchemaFile is used for schema documents (rw-r--r--)
	SchemaFile os.FileMode = 0o644
	// SchemaDir is used for directories holding schema documents (rwxr-xr-x)
	SchemaDir os.FileMode = 0o755

	// ConfigFile is used for configuration files readable by group (rw-r-----)
	ConfigFile os.FileMode = 0o640
	// ConfigDir is used for configuration directories (rwxr-x---)
	ConfigDir os.FileMode = 0o750

	// LogDir is used for log directories (rwxr-x---)
	LogDir os.FileMode = 0o750
)

// HasWorldAccess checks if the file mode allows world access
func HasWorldAccess(mode os.FileMode) bool {
	return mode.Perm()&0o007 != 0
}

// HasWorldWrite checks if the file mode lets anyone write
func HasWorldWrite(mode os.FileMode) bool {
	return mode.Perm()&0o002 != 0
}
