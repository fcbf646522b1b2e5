package autostart

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSet_EnableDisable(t *testing.T) {
	e := Entry{Dir: filepath.Join(t.TempDir(), "autostart"), Exec: "/usr/bin/gdmount-gui"}
	if e.Enabled() {
		t.Fatalf("entry enabled before Set")
	}
	if err := e.Set(true); err != nil {
		t.Fatalf("Set(true): %v", err)
	}
	if !e.Enabled() {
		t.Fatalf("entry not enabled")
	}
	p, _ := e.Path()
	data, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(data), "Exec=/usr/bin/gdmount-gui --minimized\n") {
		t.Fatalf("unexpected entry:\n%s", data)
	}
	if err := e.Set(false); err != nil {
		t.Fatalf("Set(false): %v", err)
	}
	if e.Enabled() {
		t.Fatalf("entry still enabled")
	}
	if err := e.Set(false); err != nil {
		t.Fatalf("disabling twice: %v", err)
	}
}

func TestPath_XDGConfigHome(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	p, err := Entry{}.Path()
	if err != nil {
		t.Fatalf("Path: %v", err)
	}
	if p != filepath.Join(xdg, "autostart", FileName) {
		t.Fatalf("Path() = %q", p)
	}
}

func TestRender_QuotesExec(t *testing.T) {
	got := Render(`/opt/my apps/gdmount-gui`)
	if !strings.Contains(got, `Exec="/opt/my apps/gdmount-gui" --minimized`) {
		t.Fatalf("exec not quoted:\n%s", got)
	}
}
