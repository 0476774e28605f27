// Package identity generates and resolves the identifiers and metadata
// a launcher attaches to every transport message: launcher_id,
// session_id, project name, and the cleaned working directory.
package identity

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewLauncherID generates a monotonically-unique launcher identifier:
// a hex-encoded millisecond timestamp, matching the original
// generate_connection_id()'s "launcher-{timestamp:x}" shape.
func NewLauncherID() string {
	return fmt.Sprintf("launcher-%x", time.Now().UnixMilli())
}

// NewSessionID generates a session identifier, following the teacher's
// use of uuid.New().String() for session identifiers elsewhere in the
// codebase.
func NewSessionID() string {
	return uuid.New().String()
}

// ResolveProject applies the original main.rs precedence: a --project
// flag value if present among the child's own args, else the basename
// of the working directory.
func ResolveProject(flagValue string, toolArgs []string, workingDir string) *string {
	if flagValue != "" {
		return &flagValue
	}
	for i, a := range toolArgs {
		if a == "--project" && i+1 < len(toolArgs) {
			v := toolArgs[i+1]
			return &v
		}
	}
	base := filepath.Base(workingDir)
	if base == "." || base == string(filepath.Separator) || base == "" {
		return nil
	}
	return &base
}

// WorkingDir returns the process's current working directory with any
// trailing NUL bytes stripped, working around the same Windows
// null-terminator artifact the original launcher trims in main.rs.
func WorkingDir() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return strings.TrimRight(dir, "\x00"), nil
}
