// Package project locates the level file a cmd invocation should operate
// on, the same way the original tool located a project's venture.yaml:
// walk up from the working directory until one is found.
package project

import (
	"fmt"
	"os"
	"path/filepath"
)

const defaultLevelFileName = "level.yaml"

// FindLevelFile walks up from the current working directory looking for
// level.yaml. Returns its full path, or an error if not found.
func FindLevelFile() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting current directory: %w", err)
	}

	dir := cwd
	for {
		candidate := filepath.Join(dir, defaultLevelFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%s not found in any parent directory of %s", defaultLevelFileName, cwd)
		}
		dir = parent
	}
}
