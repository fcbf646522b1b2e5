// Package app wires settings into a ready Manager. Both front-ends build
// their state through here.
package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/oukeidos/gdmount/internal/autostart"
	"github.com/oukeidos/gdmount/internal/cleanup"
	"github.com/oukeidos/gdmount/internal/config"
	"github.com/oukeidos/gdmount/internal/encryption"
	"github.com/oukeidos/gdmount/internal/gdfuse"
	"github.com/oukeidos/gdmount/internal/google"
	"github.com/oukeidos/gdmount/internal/httpclient"
	"github.com/oukeidos/gdmount/internal/logger"
	"github.com/oukeidos/gdmount/internal/manager"
	"github.com/oukeidos/gdmount/internal/mount"
	"github.com/oukeidos/gdmount/internal/settings"
)

// Keyring coordinates of the encryption key for the keyring backend.
const (
	KeyringService = "gdmount"
	KeyringUser    = "encryption-key"
)

// Options are the front-end specific pieces of the wiring.
type Options struct {
	// OpenBrowser shows the consent URL.
	OpenBrowser func(url string) error
	// Autostart is the Exec line of the login entry. Empty uses the
	// running executable.
	AutostartExec string
	// Table overrides the live mount table, for tests.
	Table mount.Table
	Home  string
}

type App struct {
	Settings settings.Settings
	Manager  *manager.Manager
	Tool     *gdfuse.Tool
}

// InitLogging installs the global logger from s. An opened log file is
// closed by cleanup.RunAll.
func InitLogging(s settings.Settings) error {
	level := logger.ParseLevel(s.LogLevel)
	if s.LogFile == "" {
		logger.Init(level, nil)
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.LogFile), 0o700); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(s.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	logger.Init(level, f)
	cleanup.Register("log file", f.Close)
	return nil
}

// KeyStore picks the key backend named in s.
func KeyStore(s settings.Settings) encryption.KeyStore {
	if s.KeyBackend == settings.KeyBackendKeyring {
		return encryption.KeyringKeyStore{Service: KeyringService, User: KeyringUser}
	}
	return encryption.FileKeyStore{Path: s.KeyFile}
}

// New builds the Manager. The caller owns Close; cleanup.RunAll closes it
// too.
func New(s settings.Settings, opts Options) (*App, error) {
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	legacy, err := config.LegacyPath()
	if err != nil {
		legacy = ""
	}
	store := config.NewStore(s.ConfigFile, legacy)

	tool := &gdfuse.Tool{
		Binary:        s.Tool,
		UnmountBinary: s.UnmountTool,
		ConfigDir:     s.ToolConfigDir,
		Timeout:       s.ToolTimeout,
	}

	table := opts.Table
	if table == nil {
		table = mount.ProcTable{}
	}

	exe := opts.AutostartExec
	if exe == "" {
		if p, err := os.Executable(); err == nil {
			exe = p
		}
	}

	m := manager.New(manager.Deps{
		Store:   store,
		Secrets: encryption.NewStore(KeyStore(s)),
		Tool:    tool,
		Table:   table,
		Auth: manager.OAuthFlow{
			Port:        s.OAuthPort,
			Timeout:     s.OAuthTimeout,
			OpenBrowser: opts.OpenBrowser,
		},
		Email:           &google.Userinfo{HTTPClient: httpclient.Default()},
		Autostart:       autostart.Entry{Exec: exe},
		Home:            opts.Home,
		MonitorInterval: s.MonitorInterval,
	})
	cleanup.Register("manager", func() error {
		m.Close()
		return nil
	})
	logger.Debug("Manager ready", "config", store.Path(), "tool", tool.Binary, "key_backend", s.KeyBackend)
	return &App{Settings: s, Manager: m, Tool: tool}, nil
}

func (a *App) Close() {
	a.Manager.Close()
}
