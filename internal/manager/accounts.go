package manager

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/oukeidos/gdmount/internal/account"
	"github.com/oukeidos/gdmount/internal/apperrors"
	"github.com/oukeidos/gdmount/internal/files"
	"github.com/oukeidos/gdmount/internal/gdfuse"
	"github.com/oukeidos/gdmount/internal/logger"
)

// RefreshAccounts merges the tool's on-disk accounts into the active set
// and persists the result.
func (m *Manager) RefreshAccounts() error {
	discovered, err := m.deps.Tool.ScanConfigs()
	if err != nil {
		return fmt.Errorf("scan tool configs: %w", err)
	}
	for i, d := range discovered {
		if d.ClientSecret == "" {
			continue
		}
		enc, err := m.deps.Secrets.Encrypt(d.ClientSecret)
		if err != nil {
			return fmt.Errorf("encrypt discovered secret of %s: %w", d.Label, err)
		}
		discovered[i].ClientSecret = enc
	}
	m.do(func(st *state) {
		st.doc.Accounts = account.Reconcile(st.doc.Accounts, discovered, st.doc.DeletedAccounts)
		m.persist(st)
		m.emit(Event{Kind: EventAccountsChanged})
	})
	return nil
}

// authorized is the outcome of a consent plus headless exchange.
type authorized struct {
	redirectURI string
	email       string
}

// authorize runs the browser consent and the tool's token exchange for
// label. The email lookup is best-effort.
func (m *Manager) authorize(ctx context.Context, label, clientID, secret string) (authorized, error) {
	grant, err := m.deps.Auth.Authenticate(ctx, clientID, m.Localizer())
	if err != nil {
		return authorized{}, err
	}
	creds := gdfuse.Credentials{Label: label, ClientID: clientID, ClientSecret: secret, RedirectURI: grant.RedirectURI}
	if err := m.deps.Tool.HeadlessAuthorize(ctx, creds, grant.Code); err != nil {
		if apperrors.CodeOf(err) == apperrors.CodeFailed {
			return authorized{}, apperrors.OAuth(apperrors.CodeOAuthError, err)
		}
		return authorized{}, err
	}
	out := authorized{redirectURI: grant.RedirectURI}
	if m.deps.Email == nil {
		return out, nil
	}
	token, err := m.deps.Tool.ReadAccessToken(label)
	if err != nil {
		logger.Warn("No access token after authorization; email unknown", "label", label, "error", err)
		return out, nil
	}
	email, err := m.deps.Email.FetchEmail(ctx, token)
	if err != nil {
		logger.Warn("Email lookup failed", "label", label, "error", err)
		return out, nil
	}
	out.email = email
	return out, nil
}

// discardToolConfig removes what a rejected authorization left behind so
// the next scan does not adopt it.
func (m *Manager) discardToolConfig(label string) {
	if err := m.deps.Tool.RemoveLabelDir(label); err != nil {
		logger.Warn("Could not remove tool config of rejected account", "label", label, "error", err)
	}
}

// SetupAccount validates d, authorizes it and commits it as configured.
func (m *Manager) SetupAccount(ctx context.Context, d account.Draft) (account.Account, error) {
	d = d.Normalized()
	if err := m.run(func(st *state) error {
		return account.Validate(d, st.doc.Accounts, st.doc.DeletedAccounts)
	}); err != nil {
		return account.Account{}, err
	}
	hadToolConfig := m.deps.Tool.HasLabelDir(d.Label)

	auth, err := m.authorize(ctx, d.Label, d.ClientID, d.ClientSecret)
	if err != nil {
		return account.Account{}, err
	}
	secret, err := m.deps.Secrets.Encrypt(d.ClientSecret)
	if err != nil {
		return account.Account{}, err
	}

	var committed account.Account
	err = m.run(func(st *state) error {
		if err := account.Validate(d, st.doc.Accounts, st.doc.DeletedAccounts); err != nil {
			return err
		}
		if other, ok := account.FindByEmail(st.doc.Accounts, auth.email, d.Label); ok {
			return apperrors.New(apperrors.KindOAuth, apperrors.CodeDuplicateEmail,
				fmt.Sprintf("Account %s already uses %s.", other, auth.email), nil)
		}
		committed = account.Account{
			ClientID:     d.ClientID,
			ClientSecret: secret,
			Configured:   true,
			Email:        auth.email,
			RedirectURI:  auth.redirectURI,
		}
		st.doc.Accounts[d.Label] = committed
		m.persist(st)
		m.emit(Event{Kind: EventAccountsChanged, Label: d.Label})
		return nil
	})
	if err != nil {
		if !hadToolConfig {
			m.discardToolConfig(d.Label)
		}
		return account.Account{}, err
	}
	logger.Info("Account configured", "label", d.Label)
	return committed, nil
}

// Reauthorize repeats the authorization for an active account. When the
// stored secret cannot be decrypted the caller must pass secretOverride.
func (m *Manager) Reauthorize(ctx context.Context, label, secretOverride string) error {
	type snapshot struct {
		acc    account.Account
		others account.Set
		ok     bool
	}
	snap, err := query(m, func(st *state) snapshot {
		a, ok := st.doc.Accounts[label]
		others := st.doc.Accounts.Clone()
		delete(others, label)
		return snapshot{acc: a, others: others, ok: ok}
	})
	if err != nil {
		return err
	}
	if !snap.ok {
		return apperrors.Validation(account.CodeNotFound, fmt.Sprintf("Account %q not found.", label))
	}

	secret := secretOverride
	if secret != "" {
		if err := account.ValidateCredentials(snap.acc.ClientID, secret, snap.others); err != nil {
			return err
		}
	} else {
		plain, err := m.deps.Secrets.Decrypt(snap.acc.ClientSecret)
		if err != nil {
			return err
		}
		secret = plain
	}

	auth, err := m.authorize(ctx, label, snap.acc.ClientID, secret)
	if err != nil {
		return err
	}
	enc, err := m.deps.Secrets.Encrypt(secret)
	if err != nil {
		return err
	}
	err = m.run(func(st *state) error {
		a, ok := st.doc.Accounts[label]
		if !ok {
			return apperrors.Validation(account.CodeNotFound, fmt.Sprintf("Account %q not found.", label))
		}
		if other, ok := account.FindByEmail(st.doc.Accounts, auth.email, label); ok {
			return apperrors.New(apperrors.KindOAuth, apperrors.CodeDuplicateEmail,
				fmt.Sprintf("Account %s already uses %s.", other, auth.email), nil)
		}
		a.ClientSecret = enc
		a.Configured = true
		a.RedirectURI = auth.redirectURI
		if auth.email != "" {
			a.Email = auth.email
		}
		st.doc.Accounts[label] = a
		m.persist(st)
		m.emit(Event{Kind: EventAccountsChanged, Label: label})
		return nil
	})
	if err == nil {
		logger.Info("Account reauthorized", "label", label)
	}
	return err
}

// DeletePlan lists the cleanup targets that exist for a delete.
type DeletePlan struct {
	Label string
	// ToolConfigDir is set when the tool keeps a config dir for the label.
	ToolConfigDir string
	// MountPoint is set when a local mount folder exists.
	MountPoint      string
	AskBeforeDelete bool
}

// PlanDelete inspects label without changing anything. Mounted accounts
// are refused.
func (m *Manager) PlanDelete(label string) (DeletePlan, error) {
	type snapshot struct {
		acc     account.Account
		ok      bool
		mounted bool
		ask     bool
	}
	snap, err := query(m, func(st *state) snapshot {
		a, ok := st.doc.Accounts[label]
		_, mounted := st.doc.MountedAccounts[label]
		return snapshot{acc: a, ok: ok, mounted: mounted, ask: st.doc.AskBeforeDelete}
	})
	if err != nil {
		return DeletePlan{}, err
	}
	if !snap.ok {
		return DeletePlan{}, apperrors.Validation(account.CodeNotFound, fmt.Sprintf("Account %q not found.", label))
	}
	if snap.mounted {
		return DeletePlan{}, apperrors.Validation(account.CodeMounted, fmt.Sprintf("Account %q is mounted.", label))
	}
	plan := DeletePlan{Label: label, AskBeforeDelete: snap.ask}
	if m.deps.Tool.HasLabelDir(label) {
		plan.ToolConfigDir = m.deps.Tool.LabelDir(label)
	}
	plan.MountPoint = m.findMountFolder(label, snap.acc)
	return plan, nil
}

// findMountFolder prefers the recorded mount point, then a live tool mount
// for the label, then ~/<label>.
func (m *Manager) findMountFolder(label string, a account.Account) string {
	candidates := []string{a.MountPoint}
	if live, err := m.deps.Table.Entries(); err == nil {
		for _, e := range live {
			if l, ok := e.DeviceLabel(); ok && l == label {
				candidates = append(candidates, e.MountPoint)
			}
		}
	}
	candidates = append(candidates, filepath.Join(m.deps.Home, label))
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if info, err := os.Stat(c); err == nil && info.IsDir() {
			return c
		}
	}
	return ""
}

type DeleteOptions struct {
	RemoveToolConfig bool
	RemoveMountPoint bool
	// DontAskAgain turns off the mount folder question for later deletes.
	DontAskAgain bool
}

// DeleteReport lists what a delete cleaned up. Cleanup failures do not undo
// the move to the deleted set.
type DeleteReport struct {
	RemovedToolConfig string
	RemovedMountPoint string
	Errors            []error
}

func (r DeleteReport) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	return apperrors.Filesystem("", errors.Join(r.Errors...))
}

// DeleteAccount moves label into the deleted set, then runs the requested
// cleanups.
func (m *Manager) DeleteAccount(label string, opts DeleteOptions) (DeleteReport, error) {
	plan, err := m.PlanDelete(label)
	if err != nil {
		return DeleteReport{}, err
	}
	err = m.run(func(st *state) error {
		if _, mounted := st.doc.MountedAccounts[label]; mounted {
			return apperrors.Validation(account.CodeMounted, fmt.Sprintf("Account %q is mounted.", label))
		}
		active, deleted, err := account.Delete(st.doc.Accounts, st.doc.DeletedAccounts, label)
		if err != nil {
			return err
		}
		st.doc.Accounts, st.doc.DeletedAccounts = active, deleted
		if opts.DontAskAgain {
			st.doc.AskBeforeDelete = false
		}
		m.persist(st)
		m.emit(Event{Kind: EventAccountsChanged, Label: label})
		return nil
	})
	if err != nil {
		return DeleteReport{}, err
	}
	logger.Info("Account moved to deleted set", "label", label)

	var report DeleteReport
	if opts.RemoveToolConfig && plan.ToolConfigDir != "" {
		if err := m.deps.Tool.RemoveLabelDir(label); err != nil {
			report.Errors = append(report.Errors, fmt.Errorf("remove %s: %w", plan.ToolConfigDir, err))
		} else {
			report.RemovedToolConfig = plan.ToolConfigDir
		}
	}
	if opts.RemoveMountPoint && plan.MountPoint != "" {
		if err := m.removeMountFolder(plan.MountPoint); err != nil {
			report.Errors = append(report.Errors, fmt.Errorf("remove %s: %w", plan.MountPoint, err))
		} else {
			report.RemovedMountPoint = plan.MountPoint
			m.do(func(st *state) {
				if a, ok := st.doc.DeletedAccounts[label]; ok && a.MountPoint == plan.MountPoint {
					a.MountPoint = ""
					st.doc.DeletedAccounts[label] = a
					m.persist(st)
				}
			})
		}
	}
	return report, nil
}

func (m *Manager) removeMountFolder(dir string) error {
	if live, err := m.deps.Table.Entries(); err == nil {
		clean := filepath.Clean(dir)
		for _, e := range live {
			if filepath.Clean(e.MountPoint) == clean {
				return fmt.Errorf("%s is still mounted", dir)
			}
		}
	}
	return files.RemoveTree(dir)
}

// RestoreAccount brings label back from the deleted set. Without
// reconfigure the account returns unconfigured and needs a reauthorization
// before it can mount. With reconfigure the authorization runs first and
// the account stays deleted if it fails.
func (m *Manager) RestoreAccount(ctx context.Context, label string, reconfigure bool) error {
	type snapshot struct {
		acc account.Account
		err error
	}
	snap, err := query(m, func(st *state) snapshot {
		_, _, err := account.Restore(st.doc.Accounts, st.doc.DeletedAccounts, label, false)
		return snapshot{acc: st.doc.DeletedAccounts[label], err: err}
	})
	if err != nil {
		return err
	}
	if snap.err != nil {
		return snap.err
	}

	configured := false
	var auth authorized
	if reconfigure {
		secret, err := m.deps.Secrets.Decrypt(snap.acc.ClientSecret)
		if err != nil {
			return err
		}
		auth, err = m.authorize(ctx, label, snap.acc.ClientID, secret)
		if err != nil {
			return err
		}
		configured = true
	}

	err = m.run(func(st *state) error {
		active, deleted, err := account.Restore(st.doc.Accounts, st.doc.DeletedAccounts, label, configured)
		if err != nil {
			return err
		}
		if reconfigure {
			a := active[label]
			if other, ok := account.FindByEmail(active, auth.email, label); ok {
				return apperrors.New(apperrors.KindOAuth, apperrors.CodeDuplicateEmail,
					fmt.Sprintf("Account %s already uses %s.", other, auth.email), nil)
			}
			a.RedirectURI = auth.redirectURI
			if auth.email != "" {
				a.Email = auth.email
			}
			active[label] = a
		}
		st.doc.Accounts, st.doc.DeletedAccounts = active, deleted
		m.persist(st)
		m.emit(Event{Kind: EventAccountsChanged, Label: label})
		return nil
	})
	if err == nil {
		logger.Info("Account restored", "label", label, "configured", configured)
	}
	return err
}

// PurgeAccount forgets a deleted account for good.
func (m *Manager) PurgeAccount(label string) error {
	return m.run(func(st *state) error {
		deleted, err := account.Purge(st.doc.DeletedAccounts, label)
		if err != nil {
			return err
		}
		st.doc.DeletedAccounts = deleted
		m.persist(st)
		m.emit(Event{Kind: EventAccountsChanged, Label: label})
		return nil
	})
}

// SetAutomount toggles automount for an active account.
func (m *Manager) SetAutomount(label string, on bool) error {
	return m.updateAccount(label, func(a *account.Account) error {
		a.Automount = on
		return nil
	})
}

// SetMountPoint records dir as label's mount point. It refuses while the
// account is mounted.
func (m *Manager) SetMountPoint(label, dir string) error {
	if dir != "" && !filepath.IsAbs(dir) {
		return apperrors.Validation(account.CodeInvalidMountPoint, "The mount point must be an absolute path.")
	}
	return m.run(func(st *state) error {
		if _, mounted := st.doc.MountedAccounts[label]; mounted {
			return apperrors.Validation(account.CodeMounted, fmt.Sprintf("Account %q is mounted.", label))
		}
		a, ok := st.doc.Accounts[label]
		if !ok {
			return apperrors.Validation(account.CodeNotFound, fmt.Sprintf("Account %q not found.", label))
		}
		if dir != "" {
			dir = filepath.Clean(dir)
		}
		a.MountPoint = dir
		st.doc.Accounts[label] = a
		m.persist(st)
		m.emit(Event{Kind: EventAccountsChanged, Label: label})
		return nil
	})
}

func (m *Manager) updateAccount(label string, fn func(a *account.Account) error) error {
	return m.run(func(st *state) error {
		a, ok := st.doc.Accounts[label]
		if !ok {
			return apperrors.Validation(account.CodeNotFound, fmt.Sprintf("Account %q not found.", label))
		}
		if err := fn(&a); err != nil {
			return err
		}
		st.doc.Accounts[label] = a
		m.persist(st)
		m.emit(Event{Kind: EventAccountsChanged, Label: label})
		return nil
	})
}
