package manager

import (
	"context"
	"errors"
	"fmt"

	"github.com/oukeidos/gdmount/internal/account"
	"github.com/oukeidos/gdmount/internal/logger"
)

// StartupReport collects the non-fatal problems of Startup.
type StartupReport struct {
	Automount AutomountReport
	Warnings  []error
}

// StartupOptions selects the optional steps of Startup.
type StartupOptions struct {
	Automount    bool
	StartMonitor bool
}

// Startup prepares the key, encrypts leftover plaintext secrets, reconciles
// accounts and mounts, automounts and starts the monitor. Only a key
// failure is returned as an error.
func (m *Manager) Startup(ctx context.Context, opts StartupOptions) (StartupReport, error) {
	var report StartupReport
	if err := m.deps.Secrets.EnsureKey(); err != nil {
		return report, fmt.Errorf("prepare encryption key: %w", err)
	}
	if err := m.EncryptSecrets(); err != nil {
		report.Warnings = append(report.Warnings, err)
	}
	if err := m.RefreshAccounts(); err != nil {
		report.Warnings = append(report.Warnings, err)
	}
	if _, err := m.RefreshMounts(); err != nil {
		report.Warnings = append(report.Warnings, err)
	}
	if opts.Automount {
		report.Automount = m.Automount(ctx)
	}
	if opts.StartMonitor {
		m.StartMonitor()
	}
	return report, nil
}

// EncryptSecrets passes every stored secret, active and deleted, through
// EnsureEncrypted and persists once if anything changed.
func (m *Manager) EncryptSecrets() error {
	var errs []error
	m.do(func(st *state) {
		changed := false
		for _, set := range []account.Set{st.doc.Accounts, st.doc.DeletedAccounts} {
			for label, a := range set {
				enc, err := m.deps.Secrets.EnsureEncrypted(a.ClientSecret)
				if err != nil {
					errs = append(errs, fmt.Errorf("encrypt secret of %s: %w", label, err))
					continue
				}
				if enc != a.ClientSecret {
					a.ClientSecret = enc
					set[label] = a
					changed = true
				}
			}
		}
		if changed {
			logger.Info("Encrypted plaintext client secrets")
			m.persist(st)
		}
	})
	return errors.Join(errs...)
}
