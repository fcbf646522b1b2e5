// Package encryption protects client secrets at rest with a single local
// symmetric key.
package encryption

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"sync"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/oukeidos/gdmount/internal/apperrors"
	"github.com/oukeidos/gdmount/internal/logger"
)

const formatVersion byte = 1

var (
	// ErrNoKey means no key has been generated for this installation yet.
	ErrNoKey = errors.New("encryption key not found")
	// ErrMalformed means the value is not a ciphertext produced by this package.
	ErrMalformed = errors.New("malformed ciphertext")
)

type Store struct {
	keys KeyStore

	mu   sync.Mutex
	aead cipher.AEAD
}

func NewStore(keys KeyStore) *Store {
	return &Store{keys: keys}
}

// EnsureKey loads the installation key, generating and persisting it first
// when none exists.
func (s *Store) EnsureKey() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.cipherLocked(true)
	return err
}

func (s *Store) cipherLocked(create bool) (cipher.AEAD, error) {
	if s.aead != nil {
		return s.aead, nil
	}
	key, err := s.keys.Load()
	if errors.Is(err, ErrNoKey) && create {
		key, err = s.generateLocked()
	}
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("invalid encryption key: %w", err)
	}
	s.aead = aead
	return aead, nil
}

func (s *Store) generateLocked() ([]byte, error) {
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	err := s.keys.Save(key)
	if errors.Is(err, os.ErrExist) {
		// Another process won the first-run race; use its key.
		return s.keys.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to store key: %w", err)
	}
	logger.Info("Generated new encryption key")
	return key, nil
}

// Encrypt seals plaintext, creating the key on first use.
func (s *Store) Encrypt(plaintext string) (string, error) {
	s.mu.Lock()
	aead, err := s.cipherLocked(true)
	s.mu.Unlock()
	if err != nil {
		return "", err
	}

	ns := aead.NonceSize()
	out := make([]byte, 1+ns, 1+ns+len(plaintext)+aead.Overhead())
	out[0] = formatVersion
	if _, err := rand.Read(out[1:]); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	out = aead.Seal(out, out[1:1+ns], []byte(plaintext), out[:1])
	return base64.RawURLEncoding.EncodeToString(out), nil
}

// Decrypt opens a value produced by Encrypt. It never creates a key; every
// failure is reported as an apperrors decryption error.
func (s *Store) Decrypt(ciphertext string) (string, error) {
	s.mu.Lock()
	aead, err := s.cipherLocked(false)
	s.mu.Unlock()
	if err != nil {
		return "", apperrors.Decryption(err)
	}

	raw, err := base64.RawURLEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", apperrors.Decryption(ErrMalformed)
	}
	ns := aead.NonceSize()
	if len(raw) < 1+ns+aead.Overhead() || raw[0] != formatVersion {
		return "", apperrors.Decryption(ErrMalformed)
	}
	plain, err := aead.Open(nil, raw[1:1+ns], raw[1+ns:], raw[:1])
	if err != nil {
		return "", apperrors.Decryption(fmt.Errorf("authentication failed: %w", err))
	}
	return string(plain), nil
}

// EnsureEncrypted returns value unchanged when it already decrypts, and the
// encryption of value otherwise. Legacy plaintext secrets are upgraded this
// way; repeated application is a no-op.
func (s *Store) EnsureEncrypted(value string) (string, error) {
	if value == "" {
		return "", nil
	}
	if _, err := s.Decrypt(value); err == nil {
		return value, nil
	}
	return s.Encrypt(value)
}
