// Package pathutil provides small filesystem path helpers shared by the CLI
// and the settings store.
package pathutil

import (
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
)

// ExpandPath expands a leading tilde to the user's home directory and
// resolves the result to an absolute path. On failure the input is returned
// unchanged.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~") {
		expanded, err := homedir.Expand(path)
		if err == nil {
			path = expanded
		}
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}
