package manager

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/oukeidos/gdmount/internal/apperrors"
	"github.com/oukeidos/gdmount/internal/autostart"
	"github.com/oukeidos/gdmount/internal/config"
	"github.com/oukeidos/gdmount/internal/encryption"
	"github.com/oukeidos/gdmount/internal/gdfuse"
	"github.com/oukeidos/gdmount/internal/i18n"
	"github.com/oukeidos/gdmount/internal/mount"
	"github.com/oukeidos/gdmount/internal/oauth"
)

const (
	testClientID = "123456-abc123XYZ.apps.googleusercontent.com"
	testSecret   = "GOCSPX-abcdefghijklmnopqr"
	otherID      = "654321-zyx987CBA.apps.googleusercontent.com"
)

// liveTable is a mutable mount table.
type liveTable struct {
	mu      sync.Mutex
	entries []mount.Entry
}

func (l *liveTable) Entries() ([]mount.Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]mount.Entry(nil), l.entries...), nil
}

func (l *liveTable) add(label, mp string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, mount.Entry{Device: label + "@google-drive-ocamlfuse", MountPoint: mp, FSType: "fuse.google-drive-ocamlfuse"})
}

func (l *liveTable) remove(mp string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := l.entries[:0]
	for _, e := range l.entries {
		if e.MountPoint != mp {
			out = append(out, e)
		}
	}
	l.entries = out
}

// toolSim plays the mount tool: headless runs write the label's config and
// tokens, mounts land in the live table.
type toolSim struct {
	root  string
	table *liveTable

	mu       sync.Mutex
	calls    []string
	failWith map[string]string // op -> stderr
	tokens   map[string]string // label -> access token written on authorize
}

func (s *toolSim) fail(op, stderr string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWith[op] = stderr
}

func (s *toolSim) Run(_ context.Context, stdin, name string, args ...string) (string, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, name+" "+strings.Join(args, " "))

	op := "mount"
	switch {
	case name == "fusermount":
		op = "unmount"
	case len(args) > 0 && args[0] == "-headless":
		op = "authorize"
	case len(args) > 0 && args[0] == "-version":
		op = "version"
	}
	if stderr, ok := s.failWith[op]; ok {
		return "", stderr, errors.New("exit status 1")
	}

	switch op {
	case "authorize":
		flags := map[string]string{}
		for i := 1; i+1 < len(args); i += 2 {
			flags[args[i]] = args[i+1]
		}
		if strings.TrimSpace(stdin) == "" {
			return "", "no code", errors.New("exit status 2")
		}
		dir := filepath.Join(s.root, flags["-label"])
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return "", err.Error(), err
		}
		cfg := fmt.Sprintf("client_id=%s\nclient_secret=%s\n", flags["-id"], flags["-secret"])
		_ = os.WriteFile(filepath.Join(dir, "config"), []byte(cfg), 0o600)
		tok := s.tokens[flags["-label"]]
		if tok == "" {
			tok = "ya29." + flags["-label"]
		}
		_ = os.WriteFile(filepath.Join(dir, "tokens.json"), []byte(`{"access_token":"`+tok+`"}`), 0o600)
	case "mount":
		s.table.add(args[1], args[2])
	case "unmount":
		s.table.remove(args[1])
	case "version":
		return "google-drive-ocamlfuse, version 0.7.32\n", "", nil
	}
	return "", "", nil
}

func (s *toolSim) count(prefix string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

type fakeAuth struct {
	mu    sync.Mutex
	err   error
	calls int
}

func (f *fakeAuth) Authenticate(ctx context.Context, clientID string, _ *i18n.Localizer) (oauth.Grant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return oauth.Grant{}, f.err
	}
	if err := ctx.Err(); err != nil {
		return oauth.Grant{}, apperrors.OAuth(apperrors.CodeUserCancel, err)
	}
	return oauth.Grant{Code: "4/captured-code", RedirectURI: oauth.RedirectURI(oauth.DefaultPort)}, nil
}

type fakeEmail struct {
	byToken map[string]string
	err     error
}

func (f *fakeEmail) FetchEmail(_ context.Context, token string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.byToken[token], nil
}

type fixture struct {
	m       *Manager
	home    string
	store   *config.Store
	secrets *encryption.Store
	tool    *gdfuse.Tool
	sim     *toolSim
	table   *liveTable
	auth    *fakeAuth
	email   *fakeEmail
	auto    autostart.Entry
}

func newFixture(t *testing.T, seed *config.Document) *fixture {
	t.Helper()
	root := t.TempDir()
	f := &fixture{home: filepath.Join(root, "home")}
	if err := os.MkdirAll(f.home, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	f.table = &liveTable{}
	f.sim = &toolSim{
		root:     filepath.Join(root, "gdfuse"),
		table:    f.table,
		failWith: map[string]string{},
		tokens:   map[string]string{},
	}
	f.tool = &gdfuse.Tool{ConfigDir: f.sim.root, Timeout: 5 * time.Second, Runner: f.sim}
	f.store = config.NewStore(filepath.Join(root, "cfg", "config.json"), "")
	if seed != nil {
		if err := f.store.Write(*seed); err != nil {
			t.Fatalf("seed config: %v", err)
		}
	}
	f.secrets = encryption.NewStore(encryption.FileKeyStore{Path: filepath.Join(root, "cfg", ".secure_key", "gdmount.key")})
	f.auth = &fakeAuth{}
	f.email = &fakeEmail{byToken: map[string]string{}}
	f.auto = autostart.Entry{Dir: filepath.Join(root, "autostart"), Exec: "/usr/bin/gdmount-gui"}
	f.m = New(Deps{
		Store:     f.store,
		Secrets:   f.secrets,
		Tool:      f.tool,
		Table:     f.table,
		Auth:      f.auth,
		Email:     f.email,
		Autostart: f.auto,
		Home:      f.home,
	})
	t.Cleanup(f.m.Close)
	return f
}

// writeToolConfig simulates an account configured outside the application.
func (f *fixture) writeToolConfig(t *testing.T, label, clientID, secret string) {
	t.Helper()
	dir := filepath.Join(f.sim.root, label)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	cfg := fmt.Sprintf("client_id=%s\nclient_secret=%s\n", clientID, secret)
	if err := os.WriteFile(filepath.Join(dir, "config"), []byte(cfg), 0o600); err != nil {
		t.Fatalf("write tool config: %v", err)
	}
}

func (f *fixture) setup(t *testing.T, label, clientID string) {
	t.Helper()
	if _, err := f.m.SetupAccount(context.Background(), draft(label, clientID)); err != nil {
		t.Fatalf("SetupAccount(%s): %v", label, err)
	}
}

func drain(m *Manager) []Event {
	var out []Event
	for {
		select {
		case e := <-m.Events():
			out = append(out, e)
		default:
			return out
		}
	}
}

func countKind(events []Event, kind EventKind) int {
	n := 0
	for _, e := range events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}
