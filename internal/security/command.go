// Package security validates external commands before ctb runs them.
package security

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// shell metacharacters refused in command paths
var dangerousChars = []string{";", "|", "&", "$", "`", ">", "<", "(", ")", "{", "}", "[", "]", "\\", "\n", "\r"}

// ValidateCommandPath checks that cmdPath names a single executable and
// returns its absolute path. Names without a directory are looked up in PATH.
func ValidateCommandPath(cmdPath string) (string, error) {
	if cmdPath == "" {
		return "", fmt.Errorf("command path cannot be empty")
	}
	if strings.Contains(cmdPath, "..") {
		return "", fmt.Errorf("command path contains path traversal: %s", cmdPath)
	}
	for _, char := range dangerousChars {
		if strings.Contains(cmdPath, char) {
			return "", fmt.Errorf("command path contains dangerous character %q: %s", char, cmdPath)
		}
	}

	if filepath.IsAbs(cmdPath) {
		info, err := os.Stat(cmdPath)
		if err != nil {
			return "", fmt.Errorf("command path does not exist: %w", err)
		}
		if !info.Mode().IsRegular() {
			return "", fmt.Errorf("command path is not a regular file: %s", cmdPath)
		}
		if info.Mode()&0111 == 0 {
			return "", fmt.Errorf("command path is not executable: %s", cmdPath)
		}
		return cmdPath, nil
	}

	absPath, err := exec.LookPath(cmdPath)
	if err != nil {
		return "", fmt.Errorf("command not found in PATH: %w", err)
	}
	return absPath, nil
}

// AllowedCommands lists, per category, the command names ctb agrees to run
var AllowedCommands = map[string][]string{
	"editor": {"vi", "vim", "nvim", "nano", "emacs", "micro", "hx", "code", "subl"},
}

// IsAllowedCommand reports whether the base name of cmdPath is listed for category
func IsAllowedCommand(cmdPath, category string) bool {
	name := filepath.Base(cmdPath)
	for _, allowed := range AllowedCommands[category] {
		if name == allowed {
			return true
		}
	}
	return false
}

// ValidateAndResolveCommand combines path validation with the allow list.
// An empty category skips the allow list.
func ValidateAndResolveCommand(cmdPath, category string) (string, error) {
	absPath, err := ValidateCommandPath(cmdPath)
	if err != nil {
		return "", err
	}
	if category != "" && !IsAllowedCommand(absPath, category) {
		return "", fmt.Errorf("command %q is not allowed for category %q", filepath.Base(absPath), category)
	}
	return absPath, nil
}

// SplitEditor separates an $EDITOR value such as "code --wait" into the
// command and its arguments.
func SplitEditor(value string) (string, []string) {
	fields := strings.Fields(value)
	if len(fields) == 0 {
		return "", nil
	}
	return fields[0], fields[1:]
}
