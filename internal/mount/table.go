// Package mount reads the OS mount table, reconciles it with the tracked
// mounted-account map and watches for mounts that disappear.
package mount

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const toolName = "google-drive-ocamlfuse"

// Entry is one line of the mount table.
type Entry struct {
	Device     string
	MountPoint string
	FSType     string
}

// IsTool reports whether the entry was mounted by the Drive FUSE tool.
func (e Entry) IsTool() bool {
	return strings.Contains(e.FSType, toolName) || strings.Contains(e.Device, toolName)
}

// DeviceLabel extracts L from a "L@google-drive-ocamlfuse" style device.
func (e Entry) DeviceLabel() (string, bool) {
	label, rest, ok := strings.Cut(e.Device, "@")
	if !ok || label == "" || !strings.Contains(rest, toolName) {
		return "", false
	}
	return label, true
}

// Table yields the current mounts.
type Table interface {
	Entries() ([]Entry, error)
}

// ProcTable reads a /proc/mounts formatted file.
type ProcTable struct {
	Path string
}

func (p ProcTable) Entries() ([]Entry, error) {
	path := p.Path
	if path == "" {
		path = "/proc/self/mounts"
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open mount table: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads mount lines ("device mountpoint fstype options ..."). Octal
// escapes such as \040 are decoded.
func Parse(r io.Reader) ([]Entry, error) {
	var out []Entry
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 3 {
			continue
		}
		out = append(out, Entry{
			Device:     unescape(fields[0]),
			MountPoint: filepath.Clean(unescape(fields[1])),
			FSType:     fields[2],
		})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read mount table: %w", err)
	}
	return out, nil
}

func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+4 <= len(s) {
			if n, err := strconv.ParseUint(s[i+1:i+4], 8, 8); err == nil {
				b.WriteByte(byte(n))
				i += 3
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
