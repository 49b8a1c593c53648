package utils

import (
	"fmt"
	"path/filepath"
	"strings"
)

// IsIgnoredDir reports whether a directory with the given base name must be skipped.
// Names are compared exactly, so "build" never matches "buildSrc".
func IsIgnoredDir(name string, ignoreDirs []string) bool {
	for _, ignored := range ignoreDirs {
		if name == ignored {
			return true
		}
	}
	return false
}

// HasAllowedExtension reports whether the file name ends with one of the extensions.
func HasAllowedExtension(name string, extensions []string) bool {
	for _, ext := range extensions {
		if ext != "" && strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// RelativeSlashPath returns path relative to root using forward slashes.
func RelativeSlashPath(root, path string) (string, error) {
	relativePath, err := filepath.Rel(root, path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s against %s: %w", path, root, err)
	}
	relativePath = strings.ReplaceAll(relativePath, "\\", "/")
	return strings.TrimLeft(relativePath, "/"), nil
}
