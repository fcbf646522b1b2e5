// Package autostart manages the XDG autostart entry that launches the GUI
// minimized at login.
package autostart

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/oukeidos/gdmount/internal/files"
)

const FileName = "gdmount.desktop"

// Entry locates the desktop file. Zero fields resolve to the XDG autostart
// directory and the running executable.
type Entry struct {
	Dir  string
	Exec string
}

func (e Entry) dir() (string, error) {
	if e.Dir != "" {
		return e.Dir, nil
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "autostart"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home: %w", err)
	}
	return filepath.Join(home, ".config", "autostart"), nil
}

func (e Entry) Path() (string, error) {
	dir, err := e.dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}

func (e Entry) exec() (string, error) {
	if e.Exec != "" {
		return e.Exec, nil
	}
	return os.Executable()
}

// Enabled reports whether the desktop file exists.
func (e Entry) Enabled() bool {
	p, err := e.Path()
	if err != nil {
		return false
	}
	_, err = os.Stat(p)
	return err == nil
}

// Set writes or removes the entry.
func (e Entry) Set(enabled bool) error {
	if enabled {
		return e.enable()
	}
	return e.disable()
}

func (e Entry) enable() error {
	dir, err := e.dir()
	if err != nil {
		return err
	}
	exe, err := e.exec()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create autostart dir: %w", err)
	}
	return files.AtomicWrite(filepath.Join(dir, FileName), []byte(Render(exe)), 0o644)
}

func (e Entry) disable() error {
	p, err := e.Path()
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove autostart entry: %w", err)
	}
	return nil
}

// Render returns the desktop file contents for exe.
func Render(exe string) string {
	var b strings.Builder
	b.WriteString("[Desktop Entry]\n")
	b.WriteString("Type=Application\n")
	b.WriteString("Name=gdmount\n")
	b.WriteString("Comment=Google Drive accounts mounted with google-drive-ocamlfuse\n")
	fmt.Fprintf(&b, "Exec=%s --minimized\n", quoteExec(exe))
	b.WriteString("Icon=drive-harddisk\n")
	b.WriteString("Terminal=false\n")
	b.WriteString("X-GNOME-Autostart-enabled=true\n")
	return b.String()
}

// quoteExec applies the desktop entry Exec quoting rules.
func quoteExec(s string) string {
	if !strings.ContainsAny(s, " \t\"'\\$`") {
		return s
	}
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "`", "\\`", `$`, `\$`)
	return `"` + r.Replace(s) + `"`
}
