package fsutil

import (
	"os"
	"path/filepath"
	"strings"
)

// userHomeDir is swapped out in tests.
var userHomeDir = os.UserHomeDir

// ExpandHome converts a leading "~/" (or a bare "~") to the current user's
// home directory. If the home directory cannot be determined the path is
// returned unchanged and "~" is treated as a literal path segment.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}

	home, err := userHomeDir()
	if err != nil || home == "" {
		return path
	}

	if path == "~" {
		return home
	}
	return filepath.Join(home, path[2:])
}
