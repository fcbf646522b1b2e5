// Package config loads and saves the persisted configuration document.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/oukeidos/gdmount/internal/account"
	"github.com/oukeidos/gdmount/internal/apperrors"
	"github.com/oukeidos/gdmount/internal/files"
	"github.com/oukeidos/gdmount/internal/logger"
)

const (
	DefaultLanguage = "es"
	fileName        = "config.json"
)

// Document is the whole persisted state. It is always rewritten wholesale.
type Document struct {
	Accounts         account.Set       `json:"accounts"`
	MountedAccounts  map[string]string `json:"mounted_accounts"`
	DeletedAccounts  account.Set       `json:"deleted_accounts"`
	AutostartEnabled bool              `json:"autostart_enabled"`
	AskBeforeDelete  bool              `json:"ask_before_delete"`
	Language         string            `json:"language"`
}

func Default() Document {
	return Document{
		Accounts:        account.Set{},
		MountedAccounts: map[string]string{},
		DeletedAccounts: account.Set{},
		AskBeforeDelete: true,
		Language:        DefaultLanguage,
	}
}

// Clone returns a deep copy so the caller may mutate maps freely.
func (d Document) Clone() Document {
	out := d
	out.Accounts = d.Accounts.Clone()
	out.DeletedAccounts = d.DeletedAccounts.Clone()
	out.MountedAccounts = make(map[string]string, len(d.MountedAccounts))
	for k, v := range d.MountedAccounts {
		out.MountedAccounts[k] = v
	}
	return out
}

func (d Document) normalized() Document {
	if d.Accounts == nil {
		d.Accounts = account.Set{}
	}
	if d.MountedAccounts == nil {
		d.MountedAccounts = map[string]string{}
	}
	if d.DeletedAccounts == nil {
		d.DeletedAccounts = account.Set{}
	}
	if d.Language == "" {
		d.Language = DefaultLanguage
	}
	return d
}

// DefaultPath is ~/.gdrivemanagerconfig/config.json.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".gdrivemanagerconfig", fileName), nil
}

// LegacyPath is the flat file used by early releases.
func LegacyPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".gdrive_manager_config.json"), nil
}

// Store reads and writes one document file. It has no cross-process
// locking; the last writer wins.
type Store struct {
	path       string
	legacyPath string

	mu sync.Mutex
}

// NewStore returns a store for path and migrates older layouts into it.
// legacyPath may be empty.
func NewStore(path, legacyPath string) *Store {
	s := &Store{path: path, legacyPath: legacyPath}
	if err := s.migrate(); err != nil {
		logger.Warn("Config migration failed", "path", path, "error", err)
	}
	return s
}

func (s *Store) Path() string { return s.path }

// Load returns the stored document, or defaults when the file is missing or
// unreadable. Missing fields take their default values.
func (s *Store) Load() Document {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return Default()
	}
	if err != nil {
		logger.Warn("Failed to read config; using defaults", "path", s.path, "error", err)
		return Default()
	}
	doc := Default()
	if err := json.Unmarshal(data, &doc); err != nil {
		logger.Warn("Failed to parse config; using defaults", "path", s.path, "error", err)
		return Default()
	}
	return doc.normalized()
}

// Save persists doc. Failures are logged and swallowed.
func (s *Store) Save(doc Document) {
	if err := s.Write(doc); err != nil {
		logger.Error("Failed to save config", "path", s.path, "error", err)
	}
}

// Write persists doc atomically with owner-only permissions.
func (s *Store) Write(doc Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc.normalized()); err != nil {
		return apperrors.Persistence(fmt.Errorf("encode config: %w", err))
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return apperrors.Persistence(fmt.Errorf("create config dir: %w", err))
	}
	if err := files.AtomicWrite(s.path, buf.Bytes(), 0600); err != nil {
		return apperrors.Persistence(err)
	}
	return nil
}
