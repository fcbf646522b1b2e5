package manager

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/oukeidos/gdmount/internal/account"
	"github.com/oukeidos/gdmount/internal/apperrors"
	"github.com/oukeidos/gdmount/internal/logger"
	"github.com/oukeidos/gdmount/internal/mount"
)

// DefaultMountPoint is ~/<label>.
func (m *Manager) DefaultMountPoint(label string) string {
	return filepath.Join(m.deps.Home, label)
}

// Mount mounts label at dir, or at its recorded or default mount point when
// dir is empty, and returns the directory used.
func (m *Manager) Mount(ctx context.Context, label, dir string) (string, error) {
	type snapshot struct {
		acc     account.Account
		mounted string
		err     error
	}
	snap, err := query(m, func(st *state) snapshot {
		a, ok := st.doc.Accounts[label]
		if !ok {
			return snapshot{err: apperrors.Validation(account.CodeNotFound, fmt.Sprintf("Account %q not found.", label))}
		}
		if !a.Configured {
			return snapshot{err: apperrors.Validation(account.CodeNotConfigured, fmt.Sprintf("Account %q is not configured.", label))}
		}
		return snapshot{acc: a, mounted: st.doc.MountedAccounts[label]}
	})
	if err != nil {
		return "", err
	}
	if snap.err != nil {
		return "", snap.err
	}
	if snap.mounted != "" {
		return snap.mounted, nil
	}

	if dir == "" {
		dir = snap.acc.MountPoint
	}
	if dir == "" {
		dir = m.DefaultMountPoint(label)
	}
	if !filepath.IsAbs(dir) {
		return "", apperrors.Validation(account.CodeInvalidMountPoint, "The mount point must be an absolute path.")
	}
	dir = filepath.Clean(dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", apperrors.Filesystem(fmt.Sprintf("Could not create %s.", dir), err)
	}
	if err := m.deps.Tool.Mount(ctx, label, dir); err != nil {
		return "", err
	}

	err = m.run(func(st *state) error {
		st.doc.MountedAccounts[label] = dir
		if a, ok := st.doc.Accounts[label]; ok {
			a.MountPoint = dir
			st.doc.Accounts[label] = a
		}
		m.persist(st)
		m.emit(Event{Kind: EventMountsChanged, Label: label, MountPoint: dir})
		return nil
	})
	if err != nil {
		return "", err
	}
	logger.Info("Mounted", "label", label, "mount_point", dir)
	return dir, nil
}

// Unmount detaches label. Busy mount points fail with the busy code.
func (m *Manager) Unmount(ctx context.Context, label string) error {
	mp, err := query(m, func(st *state) string { return st.doc.MountedAccounts[label] })
	if err != nil {
		return err
	}
	if mp == "" {
		return apperrors.Validation(account.CodeNotFound, fmt.Sprintf("Account %q is not mounted.", label))
	}
	if err := m.monitor.Unmount(ctx, label, mp); err != nil {
		return err
	}
	logger.Info("Unmounted", "label", label, "mount_point", mp)
	return nil
}

// UnmountAll detaches every tracked mount, continuing past failures.
func (m *Manager) UnmountAll(ctx context.Context) mount.UnmountReport {
	return m.monitor.UnmountAll(ctx)
}

// AutomountReport is the per-label outcome of Automount.
type AutomountReport struct {
	Mounted map[string]string
	Failed  map[string]error
}

// NeedsReauth lists failed labels whose token was rejected.
func (r AutomountReport) NeedsReauth() []string {
	var out []string
	for label, err := range r.Failed {
		if apperrors.CodeOf(err) == apperrors.CodeTokenInvalid {
			out = append(out, label)
		}
	}
	sort.Strings(out)
	return out
}

func (r AutomountReport) Err() error {
	if len(r.Failed) == 0 {
		return nil
	}
	labels := make([]string, 0, len(r.Failed))
	for label := range r.Failed {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	errs := make([]error, 0, len(labels))
	for _, label := range labels {
		errs = append(errs, fmt.Errorf("%s: %w", label, r.Failed[label]))
	}
	return fmt.Errorf("automount failed for %s: %w", strings.Join(labels, ", "), errors.Join(errs...))
}

// Automount mounts every configured automount account that is not mounted.
func (m *Manager) Automount(ctx context.Context) AutomountReport {
	labels, _ := query(m, func(st *state) []string {
		var out []string
		for _, label := range st.doc.Accounts.Labels() {
			a := st.doc.Accounts[label]
			if _, mounted := st.doc.MountedAccounts[label]; mounted {
				continue
			}
			if a.Automount && a.Configured {
				out = append(out, label)
			}
		}
		return out
	})
	report := AutomountReport{Mounted: map[string]string{}, Failed: map[string]error{}}
	for _, label := range labels {
		dir, err := m.Mount(ctx, label, "")
		if err != nil {
			logger.Warn("Automount failed", "label", label, "error", err)
			report.Failed[label] = err
			continue
		}
		report.Mounted[label] = dir
	}
	return report
}

// RefreshMounts reconciles once against the live table and reports the
// tracked mounts that went away.
func (m *Manager) RefreshMounts() ([]mount.Gone, error) {
	gone, err := m.monitor.Poll()
	if err != nil {
		return nil, fmt.Errorf("read mount table: %w", err)
	}
	for _, g := range gone {
		m.emitGone(g)
	}
	return gone, nil
}

func (m *Manager) emitGone(g mount.Gone) {
	m.emit(Event{Kind: EventExternalUnmount, Label: g.Label, MountPoint: g.MountPoint})
}

// StartMonitor begins background polling. It is a no-op when running.
func (m *Manager) StartMonitor() bool {
	return m.monitor.Start(m.deps.MonitorInterval, m.emitGone)
}

func (m *Manager) StopMonitor() { m.monitor.Stop() }

// ToolVersion reports the installed mount tool.
func (m *Manager) ToolVersion(ctx context.Context) (string, error) {
	return m.deps.Tool.Version(ctx)
}
