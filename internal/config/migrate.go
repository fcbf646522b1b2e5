package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/oukeidos/gdmount/internal/files"
	"github.com/oukeidos/gdmount/internal/logger"
)

// migrate handles two older layouts:
//   - a directory sitting where the config file belongs (left behind by an
//     old installer); it is moved aside and its inner config.json promoted;
//   - the legacy flat file, moved to the current path when no current file
//     exists.
func (s *Store) migrate() error {
	info, err := os.Lstat(s.path)
	switch {
	case err == nil && info.IsDir():
		if err := s.promoteFromDirectory(); err != nil {
			return err
		}
	case err == nil:
		return nil
	case !errors.Is(err, fs.ErrNotExist):
		return err
	}

	if _, err := os.Lstat(s.path); err == nil {
		return nil
	}
	if s.legacyPath == "" || s.legacyPath == s.path {
		return nil
	}
	legacy, err := os.Lstat(s.legacyPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if !legacy.Mode().IsRegular() {
		return fmt.Errorf("legacy config %s is not a regular file", s.legacyPath)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return err
	}
	if err := moveFile(s.legacyPath, s.path); err != nil {
		return fmt.Errorf("move legacy config: %w", err)
	}
	logger.Info("Migrated legacy config", "from", s.legacyPath, "to", s.path)
	return nil
}

func (s *Store) promoteFromDirectory() error {
	aside, err := files.FreePath(s.path, ".legacy-dir")
	if err != nil {
		return err
	}
	if err := os.Rename(s.path, aside); err != nil {
		return fmt.Errorf("move config directory aside: %w", err)
	}
	logger.Warn("Found a directory at the config path; moved it aside", "path", s.path, "moved_to", aside)

	inner := filepath.Join(aside, fileName)
	info, err := os.Lstat(inner)
	if err != nil || !info.Mode().IsRegular() {
		return nil
	}
	if err := os.Rename(inner, s.path); err != nil {
		return fmt.Errorf("promote inner config: %w", err)
	}
	logger.Info("Recovered config from directory artifact", "from", inner)
	return nil
}

func moveFile(from, to string) error {
	if err := os.Rename(from, to); err == nil {
		return nil
	}
	data, err := os.ReadFile(from)
	if err != nil {
		return err
	}
	if err := files.AtomicWrite(to, data, 0600); err != nil {
		return err
	}
	return os.Remove(from)
}
