// Package settings resolves runtime options from command-line flags,
// GDMOUNT_* environment variables and built-in defaults, in that order.
package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/oukeidos/gdmount/internal/config"
	"github.com/oukeidos/gdmount/internal/gdfuse"
	"github.com/oukeidos/gdmount/internal/instance"
	"github.com/oukeidos/gdmount/internal/mount"
	"github.com/oukeidos/gdmount/internal/oauth"
)

const EnvPrefix = "GDMOUNT"

const (
	KeyBackendFile    = "file"
	KeyBackendKeyring = "keyring"
)

// Settings are the resolved runtime options. They are not persisted; the
// config document holds user state.
type Settings struct {
	Tool            string
	UnmountTool     string
	OAuthPort       int
	OAuthTimeout    time.Duration
	ToolTimeout     time.Duration
	MonitorInterval time.Duration
	ConfigFile      string
	KeyFile         string
	KeyBackend      string
	ToolConfigDir   string
	InstanceBackend string
	LogLevel        string
	LogFile         string
}

type option struct {
	key   string
	flag  string
	usage string
}

var options = []option{
	{"tool", "tool", "mount tool binary"},
	{"unmount_tool", "unmount-tool", "unmount binary"},
	{"oauth_port", "oauth-port", "local port for the OAuth redirect"},
	{"oauth_timeout", "oauth-timeout", "how long to wait for the browser consent"},
	{"tool_timeout", "tool-timeout", "timeout for each mount tool call"},
	{"monitor_interval", "monitor-interval", "mount table polling interval"},
	{"config_file", "config-file", "config document path"},
	{"key_file", "key-file", "encryption key path (file backend)"},
	{"key_backend", "key-backend", "where the encryption key is kept: file or keyring"},
	{"tool_config_dir", "tool-config-dir", "mount tool per-label config root"},
	{"instance_backend", "instance-backend", "single instance backend: socket or dbus"},
	{"log_level", "log-level", "debug, info, warn or error"},
	{"log_file", "log-file", "also write JSON logs to this file"},
}

func home() string {
	h, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return h
}

// DefaultKeyPath is the key file next to the config document.
func DefaultKeyPath() string {
	return filepath.Join(home(), ".gdrivemanagerconfig", ".secure_key", "gdmount.key")
}

func defaults() map[string]any {
	cfgPath, err := config.DefaultPath()
	if err != nil {
		cfgPath = filepath.Join(home(), ".gdrivemanagerconfig", "config.json")
	}
	return map[string]any{
		"tool":             gdfuse.DefaultBinary,
		"unmount_tool":     gdfuse.DefaultUnmountBinary,
		"oauth_port":       oauth.DefaultPort,
		"oauth_timeout":    oauth.DefaultTimeout,
		"tool_timeout":     gdfuse.DefaultTimeout,
		"monitor_interval": mount.DefaultInterval,
		"config_file":      cfgPath,
		"key_file":         DefaultKeyPath(),
		"key_backend":      KeyBackendFile,
		"tool_config_dir":  filepath.Join(home(), ".gdfuse"),
		"instance_backend": instance.BackendSocket,
		"log_level":        "info",
		"log_file":         "",
	}
}

// RegisterFlags adds one flag per option to fs. Flag defaults are shown in
// help output only; resolution happens in Load.
func RegisterFlags(fs *pflag.FlagSet) {
	d := defaults()
	for _, o := range options {
		switch v := d[o.key].(type) {
		case int:
			fs.Int(o.flag, v, o.usage)
		case time.Duration:
			fs.Duration(o.flag, v, o.usage)
		default:
			fs.String(o.flag, fmt.Sprint(v), o.usage)
		}
	}
}

// Load resolves every option. fs may be nil.
func Load(fs *pflag.FlagSet) (Settings, error) {
	v := viper.New()
	for key, val := range defaults() {
		v.SetDefault(key, val)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if fs != nil {
		for _, o := range options {
			if f := fs.Lookup(o.flag); f != nil {
				if err := v.BindPFlag(o.key, f); err != nil {
					return Settings{}, fmt.Errorf("bind flag %s: %w", o.flag, err)
				}
			}
		}
	}

	s := Settings{
		Tool:            strings.TrimSpace(v.GetString("tool")),
		UnmountTool:     strings.TrimSpace(v.GetString("unmount_tool")),
		OAuthPort:       v.GetInt("oauth_port"),
		OAuthTimeout:    v.GetDuration("oauth_timeout"),
		ToolTimeout:     v.GetDuration("tool_timeout"),
		MonitorInterval: v.GetDuration("monitor_interval"),
		ConfigFile:      expandHome(v.GetString("config_file")),
		KeyFile:         expandHome(v.GetString("key_file")),
		KeyBackend:      strings.ToLower(strings.TrimSpace(v.GetString("key_backend"))),
		ToolConfigDir:   expandHome(v.GetString("tool_config_dir")),
		InstanceBackend: strings.ToLower(strings.TrimSpace(v.GetString("instance_backend"))),
		LogLevel:        v.GetString("log_level"),
		LogFile:         expandHome(v.GetString("log_file")),
	}
	return s, s.Validate()
}

func (s Settings) Validate() error {
	switch {
	case s.Tool == "":
		return fmt.Errorf("tool must not be empty")
	case s.OAuthPort < 0 || s.OAuthPort > 65535:
		return fmt.Errorf("oauth_port %d out of range", s.OAuthPort)
	case s.OAuthTimeout <= 0:
		return fmt.Errorf("oauth_timeout must be positive")
	case s.ToolTimeout <= 0:
		return fmt.Errorf("tool_timeout must be positive")
	case s.MonitorInterval <= 0:
		return fmt.Errorf("monitor_interval must be positive")
	case s.KeyBackend != KeyBackendFile && s.KeyBackend != KeyBackendKeyring:
		return fmt.Errorf("key_backend must be %q or %q, got %q", KeyBackendFile, KeyBackendKeyring, s.KeyBackend)
	case s.InstanceBackend != instance.BackendSocket && s.InstanceBackend != instance.BackendDBus:
		return fmt.Errorf("instance_backend must be %q or %q, got %q", instance.BackendSocket, instance.BackendDBus, s.InstanceBackend)
	}
	return nil
}

func expandHome(p string) string {
	p = strings.TrimSpace(p)
	if p == "~" {
		return home()
	}
	if strings.HasPrefix(p, "~/") {
		return filepath.Join(home(), p[2:])
	}
	return p
}
