package utils

import (
	"fmt"
	"os"

	"github.com/spf13/afero"
)

// DefaultOutputMode is the permission of a newly created snapshot or image.
const DefaultOutputMode os.FileMode = 0644

// OutputFileMode returns the permission the file at path should end up with: the mode of the
// regular file it replaces, or DefaultOutputMode.
func OutputFileMode(fs afero.Fs, path string) os.FileMode {
	if info, err := fs.Stat(path); err == nil && info.Mode().IsRegular() {
		return info.Mode().Perm()
	}
	return DefaultOutputMode
}

// CommitTempFile moves a closed temporary file over path, giving it the permission of the
// file it replaces. Temporary files are created 0600 and rename keeps that mode.
func CommitTempFile(fs afero.Fs, tmpName, path string) error {
	if err := fs.Chmod(tmpName, OutputFileMode(fs, path)); err != nil {
		return fmt.Errorf("failed to set permissions on %s: %w", tmpName, err)
	}
	if err := fs.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}
