package files

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// RemoveTree recursively deletes dir. It refuses the filesystem root, the
// user's home directory and symlinked paths. A missing dir is not an error.
func RemoveTree(dir string) error {
	if dir == "" {
		return fmt.Errorf("path is empty")
	}
	clean, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("failed to resolve absolute path: %w", err)
	}
	if clean == string(os.PathSeparator) {
		return fmt.Errorf("refusing to remove %s", clean)
	}
	if home, err := os.UserHomeDir(); err == nil && filepath.Clean(home) == clean {
		return fmt.Errorf("refusing to remove home directory %s", clean)
	}

	info, err := os.Lstat(clean)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if info.Mode()&os.ModeSymlink != 0 {
		return fmt.Errorf("refusing to remove symlink %s", clean)
	}
	return os.RemoveAll(clean)
}
