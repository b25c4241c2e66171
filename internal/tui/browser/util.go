package browser

import (
	"path/filepath"
	"strings"
)

// shortenPath replaces the home directory prefix with a tilde (~).
func shortenPath(path, home string) string {
	if home == "" {
		return path
	}
	if path == home {
		return "~"
	}
	if rest, ok := strings.CutPrefix(path, home+string(filepath.Separator)); ok {
		return filepath.Join("~", rest)
	}
	return path
}
