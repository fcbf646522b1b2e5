package encryption

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/zalando/go-keyring"

	"github.com/oukeidos/gdmount/internal/files"
)

// KeyStore persists the single installation key.
type KeyStore interface {
	// Load returns ErrNoKey when no key has been stored yet.
	Load() ([]byte, error)
	// Save stores key. It returns os.ErrExist if a key is already present.
	Save(key []byte) error
}

// FileKeyStore keeps the raw key in an owner-only file inside an owner-only
// directory.
type FileKeyStore struct {
	Path string
}

func (f FileKeyStore) Load() ([]byte, error) {
	if err := files.RejectSymlinkPath(f.Path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoKey
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read key file: %w", err)
	}
	return data, nil
}

func (f FileKeyStore) Save(key []byte) error {
	if err := files.EnsurePrivateDir(filepath.Dir(f.Path), 0700); err != nil {
		return err
	}
	if err := files.RejectSymlinkPath(f.Path); err != nil {
		return err
	}
	out, err := os.OpenFile(f.Path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return err
	}
	if _, err := out.Write(key); err != nil {
		out.Close()
		os.Remove(f.Path)
		return fmt.Errorf("failed to write key file: %w", err)
	}
	if err := out.Sync(); err != nil {
		out.Close()
		os.Remove(f.Path)
		return fmt.Errorf("failed to sync key file: %w", err)
	}
	return out.Close()
}

// KeyringKeyStore keeps the key, base64 encoded, in the desktop secret
// service.
type KeyringKeyStore struct {
	Service string
	User    string
}

func (k KeyringKeyStore) Load() ([]byte, error) {
	raw, err := keyring.Get(k.Service, k.User)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil, ErrNoKey
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read key from keyring: %w", err)
	}
	key, err := base64.StdEncoding.DecodeString(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("keyring entry is not a valid key: %w", err)
	}
	return key, nil
}

func (k KeyringKeyStore) Save(key []byte) error {
	if _, err := keyring.Get(k.Service, k.User); err == nil {
		return os.ErrExist
	} else if !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to query keyring: %w", err)
	}
	return keyring.Set(k.Service, k.User, base64.StdEncoding.EncodeToString(key))
}
