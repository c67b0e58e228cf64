package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// ToolDir returns the directory containing the running executable, with
// symlinks resolved. The builder directory and the default source checkout
// are located relative to it.
func ToolDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to locate executable: %w", err)
	}
	resolved, err := filepath.EvalSymlinks(exe)
	if err != nil {
		return "", fmt.Errorf("failed to resolve executable path %s: %w", exe, err)
	}
	return filepath.Dir(resolved), nil
}

// DefaultSourceDir returns the conventional location of the qemu-eos
// checkout: two levels above the tool directory, in a sibling named
// "qemu-eos".
func DefaultSourceDir(toolDir string) string {
	dir := filepath.Join(toolDir, "..", "..", "qemu-eos")
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return dir
}
