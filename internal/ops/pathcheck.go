package ops

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hpungsan/yada/internal/errors"
)

// PathCheckMode indicates whether the path check is for reading or writing.
type PathCheckMode int

const (
	PathCheckRead  PathCheckMode = iota // for import (read file)
	PathCheckWrite                      // for export (write file)
)

// ValidatePath checks a food file path received from a remote caller:
// no ".." components, a .jsonl extension, the file directly inside
// exportsDir (no subdirectories), and neither the directory nor the file a
// symlink. Read mode also requires the file to exist.
func ValidatePath(path string, mode PathCheckMode, exportsDir string) error {
	if path == "" {
		return errors.NewInvalidRequest("path is required")
	}
	if exportsDir == "" {
		return errors.NewInvalidRequest("file access is disabled: no exports directory configured")
	}

	if containsTraversal(path) {
		return errors.NewInvalidRequest("path must not contain directory traversal (..)")
	}

	cleaned := filepath.Clean(path)
	if filepath.Ext(cleaned) != ".jsonl" {
		return errors.NewInvalidRequest("path must have .jsonl extension")
	}

	absPath, err := filepath.Abs(cleaned)
	if err != nil {
		return errors.NewInvalidRequest(fmt.Sprintf("invalid path: %v", err))
	}
	allowed, err := filepath.Abs(filepath.Clean(exportsDir))
	if err != nil {
		return errors.NewInvalidRequest(fmt.Sprintf("invalid exports directory: %v", err))
	}

	parentDir := filepath.Dir(absPath)
	if parentDir != allowed {
		return errors.NewInvalidRequest(fmt.Sprintf("file must be directly in %s", allowed))
	}
	if info, err := os.Lstat(parentDir); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return errors.NewInvalidRequest("exports directory must not be a symlink")
	}

	info, err := os.Lstat(absPath)
	if mode == PathCheckRead && os.IsNotExist(err) {
		return errors.NewNotFound(path)
	}
	if err == nil && info.Mode()&os.ModeSymlink != 0 {
		return errors.NewInvalidRequest("path must not be a symlink")
	}

	return nil
}

// ResolveExportPath joins a bare file name onto exportsDir; other paths are
// returned unchanged.
func ResolveExportPath(path, exportsDir string) string {
	if path != "" && !strings.ContainsAny(path, `/\`) {
		return filepath.Join(exportsDir, path)
	}
	return path
}

// containsTraversal checks if path contains ".." directory traversal.
func containsTraversal(path string) bool {
	for _, part := range strings.Split(path, string(filepath.Separator)) {
		if part == ".." {
			return true
		}
	}
	// Also check for forward slashes on all platforms (e.g., user input)
	if filepath.Separator != '/' {
		for _, part := range strings.Split(path, "/") {
			if part == ".." {
				return true
			}
		}
	}
	return false
}
