package testutil

import (
	"os"
	"path/filepath"
)

// GetTaskboardBinaryPath returns the path to the taskboard binary for
// integration tests. It checks, in order:
// 1. Current directory (./taskboard)
// 2. Parent directory (../taskboard)
// 3. bin directory (../bin/taskboard)
func GetTaskboardBinaryPath() string {
	if _, err := os.Stat("taskboard"); err == nil {
		return "./taskboard"
	}

	if _, err := os.Stat("../taskboard"); err == nil {
		return "../taskboard"
	}

	binPath := filepath.Join("..", "bin", "taskboard")
	if _, err := os.Stat(binPath); err == nil {
		return binPath
	}

	return "./taskboard"
}
