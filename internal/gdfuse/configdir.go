package gdfuse

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/oukeidos/gdmount/internal/account"
	"github.com/oukeidos/gdmount/internal/files"
	"github.com/oukeidos/gdmount/internal/logger"
)

// LabelDir is the tool's state directory for label.
func (t *Tool) LabelDir(label string) string {
	return filepath.Join(t.configDir(), label)
}

// HasLabelDir reports whether the tool has state for label.
func (t *Tool) HasLabelDir(label string) bool {
	info, err := os.Stat(t.LabelDir(label))
	return err == nil && info.IsDir()
}

// RemoveLabelDir deletes the tool's state for label, tokens included.
func (t *Tool) RemoveLabelDir(label string) error {
	if label == "" || strings.ContainsAny(label, `/\`) || label == "." || label == ".." {
		return fmt.Errorf("invalid label %q", label)
	}
	return files.RemoveTree(t.LabelDir(label))
}

// readKeyValues parses the tool's line-oriented key=value files.
func readKeyValues(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	out := make(map[string]string)
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if _, dup := out[key]; dup || key == "" {
			continue
		}
		out[key] = strings.TrimSpace(value)
	}
	return out, sc.Err()
}

// ScanConfigs lists every label directory that carries a config file with a
// client_id. Unreadable entries are logged and skipped. A missing config dir
// yields no accounts.
func (t *Tool) ScanConfigs() ([]account.Discovered, error) {
	root := t.configDir()
	entries, err := os.ReadDir(root)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", root, err)
	}

	var out []account.Discovered
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		label := e.Name()
		kv, err := readKeyValues(filepath.Join(root, label, "config"))
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				logger.Warn("Failed to read tool config", "label", label, "error", err)
			}
			continue
		}
		if kv["client_id"] == "" {
			continue
		}
		out = append(out, account.Discovered{
			Label:        label,
			ClientID:     kv["client_id"],
			ClientSecret: kv["client_secret"],
			MountPoint:   kv["mount_point"],
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out, nil
}

// LabelForMountPoint finds the label whose tool config records mountPoint.
func (t *Tool) LabelForMountPoint(mountPoint string) (string, bool) {
	want := filepath.Clean(mountPoint)
	root := t.configDir()
	entries, err := os.ReadDir(root)
	if err != nil {
		return "", false
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		kv, err := readKeyValues(filepath.Join(root, e.Name(), "config"))
		if err != nil {
			continue
		}
		if mp := kv["mount_point"]; mp != "" && filepath.Clean(mp) == want {
			return e.Name(), true
		}
	}
	return "", false
}

// ReadAccessToken returns the access token the tool stored after a headless
// authorization. It checks tokens.json first, then the key=value state file.
func (t *Tool) ReadAccessToken(label string) (string, error) {
	dir := t.LabelDir(label)
	if data, err := os.ReadFile(filepath.Join(dir, "tokens.json")); err == nil {
		var tokens struct {
			AccessToken string `json:"access_token"`
		}
		if err := json.Unmarshal(data, &tokens); err == nil && tokens.AccessToken != "" {
			return tokens.AccessToken, nil
		}
	}
	kv, err := readKeyValues(filepath.Join(dir, "state"))
	if err != nil {
		return "", fmt.Errorf("no token state for %s: %w", label, err)
	}
	if tok := kv["access_token"]; tok != "" {
		return tok, nil
	}
	return "", fmt.Errorf("no access token recorded for %s", label)
}
