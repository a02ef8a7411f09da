// Package misc provides small helpers and embedded resources shared across
// the client: the Claude Code system-prompt prefix and OAuth callback parsing.
package misc

import (
	"fmt"
	"path/filepath"
)

// LogSavingCredentials emits a consistent message when persisting auth material.
func LogSavingCredentials(path string) {
	if path == "" {
		return
	}
	// filepath.Clean keeps the output stable even if callers pass redundant separators.
	fmt.Printf("Saving credentials to %s\n", filepath.Clean(path))
}
