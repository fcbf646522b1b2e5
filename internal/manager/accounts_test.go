package manager

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/oukeidos/gdmount/internal/account"
	"github.com/oukeidos/gdmount/internal/apperrors"
	"github.com/oukeidos/gdmount/internal/config"
)

func draft(label, clientID string) account.Draft {
	return account.Draft{Label: label, ClientID: clientID, ClientSecret: testSecret}
}

func TestSetupAccount_CommitsEncrypted(t *testing.T) {
	f := newFixture(t, nil)
	f.email.byToken["ya29.work"] = "work@example.com"

	got, err := f.m.SetupAccount(context.Background(), account.Draft{Label: " work ", ClientID: testClientID, ClientSecret: testSecret})
	if err != nil {
		t.Fatalf("SetupAccount: %v", err)
	}
	if !got.Configured || got.ExternallyDetected {
		t.Fatalf("flags = %+v", got)
	}
	if got.Email != "work@example.com" || got.RedirectURI != "http://localhost:8080" {
		t.Fatalf("email/redirect = %q, %q", got.Email, got.RedirectURI)
	}
	if got.ClientSecret == testSecret {
		t.Fatalf("secret stored in plaintext")
	}
	plain, err := f.secrets.Decrypt(got.ClientSecret)
	if err != nil || plain != testSecret {
		t.Fatalf("Decrypt() = (%q, %v)", plain, err)
	}

	persisted := f.store.Load()
	if persisted.Accounts["work"] != got {
		t.Fatalf("persisted = %+v, want %+v", persisted.Accounts["work"], got)
	}
	if f.sim.count("google-drive-ocamlfuse -headless") != 1 {
		t.Fatalf("headless authorization not run once: %v", f.sim.calls)
	}
	if countKind(drain(f.m), EventAccountsChanged) == 0 {
		t.Fatalf("no accounts_changed event")
	}
}

func TestSetupAccount_ValidationStopsBeforeOAuth(t *testing.T) {
	f := newFixture(t, nil)
	f.setup(t, "work", testClientID)

	_, err := f.m.SetupAccount(context.Background(), draft("work2", testClientID))
	if apperrors.CodeOf(err) != account.CodeDuplicateClientID {
		t.Fatalf("SetupAccount() error = %v, want duplicate client id", err)
	}
	if f.auth.calls != 1 {
		t.Fatalf("OAuth ran for an invalid draft: %d calls", f.auth.calls)
	}
	if _, ok := f.m.Snapshot().Accounts["work2"]; ok {
		t.Fatalf("invalid account committed")
	}
}

func TestSetupAccount_DuplicateEmail(t *testing.T) {
	f := newFixture(t, nil)
	f.email.byToken["ya29.work"] = "same@example.com"
	f.email.byToken["ya29.home"] = "Same@Example.com"
	f.setup(t, "work", testClientID)

	_, err := f.m.SetupAccount(context.Background(), draft("home", otherID))
	if apperrors.CodeOf(err) != apperrors.CodeDuplicateEmail {
		t.Fatalf("SetupAccount() error = %v, want duplicate_email", err)
	}
	if _, ok := f.m.Snapshot().Accounts["home"]; ok {
		t.Fatalf("duplicate account committed")
	}
	if f.tool.HasLabelDir("home") {
		t.Fatalf("rejected account left tool config behind")
	}
	if err := f.m.RefreshAccounts(); err != nil {
		t.Fatalf("RefreshAccounts: %v", err)
	}
	if _, ok := f.m.Snapshot().Accounts["home"]; ok {
		t.Fatalf("rejected account resurfaced from disk")
	}
}

func TestSetupAccount_EmailLookupIsBestEffort(t *testing.T) {
	f := newFixture(t, nil)
	f.email.err = errors.New("network down")
	got, err := f.m.SetupAccount(context.Background(), draft("work", testClientID))
	if err != nil {
		t.Fatalf("SetupAccount: %v", err)
	}
	if got.Email != "" || !got.Configured {
		t.Fatalf("account = %+v", got)
	}
}

func TestSetupAccount_OAuthFailures(t *testing.T) {
	tests := []struct {
		name string
		auth error
		ctx  func() context.Context
		want string
	}{
		{"timeout", apperrors.OAuth(apperrors.CodeTimeout, nil), context.Background, apperrors.CodeTimeout},
		{"server error", apperrors.OAuth(apperrors.CodeServerError, nil), context.Background, apperrors.CodeServerError},
		{"user cancel", nil, func() context.Context {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			return ctx
		}, apperrors.CodeUserCancel},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, nil)
			f.auth.err = tc.auth
			_, err := f.m.SetupAccount(tc.ctx(), draft("work", testClientID))
			if apperrors.CodeOf(err) != tc.want {
				t.Fatalf("SetupAccount() error = %v, want %s", err, tc.want)
			}
			if !apperrors.IsRecoverable(err) {
				t.Fatalf("oauth failure should be recoverable")
			}
			if len(f.m.Snapshot().Accounts) != 0 {
				t.Fatalf("account committed after failure")
			}
			if f.sim.count("google-drive-ocamlfuse -headless") != 0 {
				t.Fatalf("headless ran without a code")
			}
		})
	}
}

func TestSetupAccount_HeadlessFailure(t *testing.T) {
	f := newFixture(t, nil)
	f.sim.fail("authorize", "Error: invalid client")
	_, err := f.m.SetupAccount(context.Background(), draft("work", testClientID))
	if apperrors.CodeOf(err) != apperrors.CodeOAuthError {
		t.Fatalf("SetupAccount() error = %v, want oauth_error", err)
	}
}

func TestRefreshAccounts_AdoptsExternalAndHonoursBlacklist(t *testing.T) {
	f := newFixture(t, nil)
	f.writeToolConfig(t, "external", testClientID, testSecret)
	if err := f.m.RefreshAccounts(); err != nil {
		t.Fatalf("RefreshAccounts: %v", err)
	}
	a, ok := f.m.Snapshot().Accounts["external"]
	if !ok || !a.Configured || !a.ExternallyDetected {
		t.Fatalf("external account = %+v, %v", a, ok)
	}
	if a.ClientSecret == testSecret {
		t.Fatalf("discovered secret kept in plaintext")
	}

	if _, err := f.m.DeleteAccount("external", DeleteOptions{}); err != nil {
		t.Fatalf("DeleteAccount: %v", err)
	}
	f.writeToolConfig(t, "external", otherID, testSecret)
	if err := f.m.RefreshAccounts(); err != nil {
		t.Fatalf("RefreshAccounts: %v", err)
	}
	if _, ok := f.m.Snapshot().Accounts["external"]; ok {
		t.Fatalf("blacklisted label resurfaced")
	}
}

func TestReauthorize(t *testing.T) {
	f := newFixture(t, nil)
	f.setup(t, "work", testClientID)
	f.email.byToken["ya29.work"] = "new@example.com"

	if err := f.m.SetAutomount("work", true); err != nil {
		t.Fatalf("SetAutomount: %v", err)
	}
	if err := f.m.Reauthorize(context.Background(), "work", ""); err != nil {
		t.Fatalf("Reauthorize: %v", err)
	}
	a := f.m.Snapshot().Accounts["work"]
	if a.Email != "new@example.com" || !a.Configured || !a.Automount {
		t.Fatalf("account after reauth = %+v", a)
	}
	if f.auth.calls != 2 {
		t.Fatalf("auth calls = %d", f.auth.calls)
	}
}

func TestReauthorize_UndecryptableSecretNeedsOverride(t *testing.T) {
	seed := config.Default()
	seed.Accounts["work"] = account.Account{ClientID: testClientID, ClientSecret: "AW-not-a-valid-ciphertext", Configured: false}
	f := newFixture(t, &seed)
	if err := f.secrets.EnsureKey(); err != nil {
		t.Fatalf("EnsureKey: %v", err)
	}

	err := f.m.Reauthorize(context.Background(), "work", "")
	if kind, _ := apperrors.KindOf(err); kind != apperrors.KindDecryption {
		t.Fatalf("Reauthorize() error = %v, want decryption", err)
	}
	if f.auth.calls != 0 {
		t.Fatalf("OAuth ran with an unusable secret")
	}

	if err := f.m.Reauthorize(context.Background(), "work", "short"); apperrors.CodeOf(err) != account.CodeInvalidClientSecret {
		t.Fatalf("Reauthorize(bad override) error = %v", err)
	}
	if err := f.m.Reauthorize(context.Background(), "work", testSecret); err != nil {
		t.Fatalf("Reauthorize(override): %v", err)
	}
	a := f.m.Snapshot().Accounts["work"]
	plain, err := f.secrets.Decrypt(a.ClientSecret)
	if err != nil || plain != testSecret || !a.Configured {
		t.Fatalf("account = %+v, decrypt = (%q, %v)", a, plain, err)
	}
}

func TestDelete_RefusedWhileMounted(t *testing.T) {
	f := newFixture(t, nil)
	f.setup(t, "work", testClientID)
	if _, err := f.m.Mount(context.Background(), "work", ""); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	if _, err := f.m.DeleteAccount("work", DeleteOptions{}); apperrors.CodeOf(err) != account.CodeMounted {
		t.Fatalf("DeleteAccount() error = %v, want mounted", err)
	}
	if _, ok := f.m.Snapshot().Accounts["work"]; !ok {
		t.Fatalf("mounted account was deleted")
	}
}

func TestDelete_PlanAndCleanups(t *testing.T) {
	f := newFixture(t, nil)
	f.setup(t, "work", testClientID)
	mp := filepath.Join(f.home, "work")
	if err := os.MkdirAll(filepath.Join(mp, "cache"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	plan, err := f.m.PlanDelete("work")
	if err != nil {
		t.Fatalf("PlanDelete: %v", err)
	}
	if plan.ToolConfigDir != f.tool.LabelDir("work") || plan.MountPoint != mp || !plan.AskBeforeDelete {
		t.Fatalf("plan = %+v", plan)
	}

	report, err := f.m.DeleteAccount("work", DeleteOptions{RemoveToolConfig: true, RemoveMountPoint: true, DontAskAgain: true})
	if err != nil {
		t.Fatalf("DeleteAccount: %v", err)
	}
	if report.Err() != nil || report.RemovedToolConfig == "" || report.RemovedMountPoint != mp {
		t.Fatalf("report = %+v", report)
	}
	if _, err := os.Stat(mp); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("mount folder still present: %v", err)
	}
	if f.tool.HasLabelDir("work") {
		t.Fatalf("tool config still present")
	}

	snap := f.m.Snapshot()
	if _, ok := snap.Accounts["work"]; ok {
		t.Fatalf("account still active")
	}
	if d := snap.Deleted["work"]; !d.Blacklist || d.MountPoint != "" {
		t.Fatalf("deleted entry = %+v", d)
	}
	if snap.AskBeforeDelete {
		t.Fatalf("ask_before_delete not cleared")
	}
}

func TestDelete_CleanupFailureKeepsLedgerMove(t *testing.T) {
	f := newFixture(t, nil)
	f.setup(t, "work", testClientID)
	target := filepath.Join(f.home, "real-folder")
	if err := os.MkdirAll(target, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	link := filepath.Join(f.home, "work")
	if err := os.Symlink(target, link); err != nil {
		t.Fatalf("symlink: %v", err)
	}

	report, err := f.m.DeleteAccount("work", DeleteOptions{RemoveMountPoint: true})
	if err != nil {
		t.Fatalf("DeleteAccount: %v", err)
	}
	if kind, _ := apperrors.KindOf(report.Err()); kind != apperrors.KindFilesystem {
		t.Fatalf("report.Err() = %v, want filesystem", report.Err())
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("symlink target was removed: %v", err)
	}
	if _, ok := f.m.Snapshot().Deleted["work"]; !ok {
		t.Fatalf("ledger move rolled back")
	}
}

func TestRestore(t *testing.T) {
	t.Run("kept tool config still restores unconfigured", func(t *testing.T) {
		f := newFixture(t, nil)
		f.setup(t, "work", testClientID)
		if _, err := f.m.DeleteAccount("work", DeleteOptions{}); err != nil {
			t.Fatalf("DeleteAccount: %v", err)
		}
		if err := f.m.RestoreAccount(context.Background(), "work", false); err != nil {
			t.Fatalf("RestoreAccount: %v", err)
		}
		snap := f.m.Snapshot()
		a := snap.Accounts["work"]
		if a.Configured || a.Blacklist {
			t.Fatalf("restored = %+v", a)
		}
		if _, ok := snap.Deleted["work"]; ok {
			t.Fatalf("label in both sets")
		}
		if _, err := f.m.Mount(context.Background(), "work", ""); apperrors.CodeOf(err) != account.CodeNotConfigured {
			t.Fatalf("Mount() error = %v, want not_configured", err)
		}
		if f.auth.calls != 1 {
			t.Fatalf("restore without reconfigure ran OAuth")
		}
	})

	t.Run("partial restore is unconfigured", func(t *testing.T) {
		f := newFixture(t, nil)
		f.setup(t, "work", testClientID)
		if _, err := f.m.DeleteAccount("work", DeleteOptions{RemoveToolConfig: true}); err != nil {
			t.Fatalf("DeleteAccount: %v", err)
		}
		if err := f.m.RestoreAccount(context.Background(), "work", false); err != nil {
			t.Fatalf("RestoreAccount: %v", err)
		}
		if a := f.m.Snapshot().Accounts["work"]; a.Configured {
			t.Fatalf("partial restore marked configured: %+v", a)
		}
		if _, err := f.m.Mount(context.Background(), "work", ""); apperrors.CodeOf(err) != account.CodeNotConfigured {
			t.Fatalf("Mount() error = %v, want not_configured", err)
		}
	})

	t.Run("reconfigure runs oauth", func(t *testing.T) {
		f := newFixture(t, nil)
		f.setup(t, "work", testClientID)
		if _, err := f.m.DeleteAccount("work", DeleteOptions{RemoveToolConfig: true}); err != nil {
			t.Fatalf("DeleteAccount: %v", err)
		}
		if err := f.m.RestoreAccount(context.Background(), "work", true); err != nil {
			t.Fatalf("RestoreAccount: %v", err)
		}
		if a := f.m.Snapshot().Accounts["work"]; !a.Configured {
			t.Fatalf("reconfigured restore not configured: %+v", a)
		}
		if f.auth.calls != 2 {
			t.Fatalf("auth calls = %d", f.auth.calls)
		}
	})

	t.Run("client id conflict", func(t *testing.T) {
		f := newFixture(t, nil)
		f.setup(t, "work", testClientID)
		if _, err := f.m.DeleteAccount("work", DeleteOptions{}); err != nil {
			t.Fatalf("DeleteAccount: %v", err)
		}
		f.setup(t, "work2", testClientID)

		err := f.m.RestoreAccount(context.Background(), "work", true)
		if kind, _ := apperrors.KindOf(err); kind != apperrors.KindConflict {
			t.Fatalf("RestoreAccount() error = %v, want conflict", err)
		}
		if f.auth.calls != 2 {
			t.Fatalf("OAuth ran for a conflicting restore")
		}
		if _, ok := f.m.Snapshot().Deleted["work"]; !ok {
			t.Fatalf("conflicting restore left the deleted set")
		}
	})
}

func TestPurge(t *testing.T) {
	f := newFixture(t, nil)
	f.setup(t, "work", testClientID)
	if _, err := f.m.DeleteAccount("work", DeleteOptions{}); err != nil {
		t.Fatalf("DeleteAccount: %v", err)
	}
	if err := f.m.PurgeAccount("work"); err != nil {
		t.Fatalf("PurgeAccount: %v", err)
	}
	if _, ok := f.store.Load().DeletedAccounts["work"]; ok {
		t.Fatalf("purged entry persisted")
	}
	if err := f.m.PurgeAccount("work"); apperrors.CodeOf(err) != account.CodeNotFound {
		t.Fatalf("second PurgeAccount() error = %v", err)
	}
}

func TestSetMountPoint(t *testing.T) {
	f := newFixture(t, nil)
	f.setup(t, "work", testClientID)
	if err := f.m.SetMountPoint("work", "relative/dir"); apperrors.CodeOf(err) != account.CodeInvalidMountPoint {
		t.Fatalf("relative mount point error = %v", err)
	}
	dir := filepath.Join(f.home, "Drive", "Work")
	if err := f.m.SetMountPoint("work", dir+"/"); err != nil {
		t.Fatalf("SetMountPoint: %v", err)
	}
	if got := f.m.Snapshot().Accounts["work"].MountPoint; got != dir {
		t.Fatalf("mount point = %q", got)
	}
	if err := f.m.SetMountPoint("missing", dir); apperrors.CodeOf(err) != account.CodeNotFound {
		t.Fatalf("missing account error = %v", err)
	}
}
