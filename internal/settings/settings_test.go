package settings

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	s, err := Load(nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Tool != "google-drive-ocamlfuse" || s.UnmountTool != "fusermount" {
		t.Fatalf("tools = %q, %q", s.Tool, s.UnmountTool)
	}
	if s.OAuthPort != 8080 || s.OAuthTimeout != 120*time.Second || s.ToolTimeout != 30*time.Second || s.MonitorInterval != 5*time.Second {
		t.Fatalf("unexpected numeric defaults: %+v", s)
	}
	if s.KeyBackend != KeyBackendFile || s.InstanceBackend != "socket" {
		t.Fatalf("backends = %q, %q", s.KeyBackend, s.InstanceBackend)
	}
	if !strings.HasSuffix(s.ConfigFile, filepath.Join(".gdrivemanagerconfig", "config.json")) {
		t.Fatalf("config file = %q", s.ConfigFile)
	}
	if !strings.HasSuffix(s.ToolConfigDir, ".gdfuse") {
		t.Fatalf("tool config dir = %q", s.ToolConfigDir)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("GDMOUNT_OAUTH_PORT", "9090")
	t.Setenv("GDMOUNT_TOOL_TIMEOUT", "45s")
	t.Setenv("GDMOUNT_KEY_BACKEND", "KEYRING")
	t.Setenv("GDMOUNT_TOOL_CONFIG_DIR", "~/alt-gdfuse")

	s, err := Load(nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.OAuthPort != 9090 || s.ToolTimeout != 45*time.Second || s.KeyBackend != KeyBackendKeyring {
		t.Fatalf("env not applied: %+v", s)
	}
	if s.ToolConfigDir != filepath.Join(home, "alt-gdfuse") {
		t.Fatalf("tool config dir = %q", s.ToolConfigDir)
	}
}

func TestLoad_FlagsBeatEnv(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("GDMOUNT_OAUTH_PORT", "9090")
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	if err := fs.Parse([]string{"--oauth-port", "7070", "--instance-backend", "dbus"}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	s, err := Load(fs)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.OAuthPort != 7070 {
		t.Fatalf("port = %d, want flag value", s.OAuthPort)
	}
	if s.InstanceBackend != "dbus" {
		t.Fatalf("instance backend = %q", s.InstanceBackend)
	}
}

func TestLoad_UnsetFlagsKeepEnv(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("GDMOUNT_OAUTH_PORT", "9090")
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	_ = fs.Parse(nil)
	s, err := Load(fs)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.OAuthPort != 9090 {
		t.Fatalf("port = %d, want env value", s.OAuthPort)
	}
}

func TestValidate(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	base, err := Load(nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	tests := []struct {
		name   string
		mutate func(*Settings)
	}{
		{"empty tool", func(s *Settings) { s.Tool = "" }},
		{"bad port", func(s *Settings) { s.OAuthPort = 70000 }},
		{"zero timeout", func(s *Settings) { s.OAuthTimeout = 0 }},
		{"bad key backend", func(s *Settings) { s.KeyBackend = "vault" }},
		{"bad instance backend", func(s *Settings) { s.InstanceBackend = "pidfile" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := base
			tc.mutate(&s)
			if err := s.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}
