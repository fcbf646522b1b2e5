// Package gdfuse drives the external google-drive-ocamlfuse binary and reads
// the per-label state it keeps on disk.
package gdfuse

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/oukeidos/gdmount/internal/apperrors"
	"github.com/oukeidos/gdmount/internal/logger"
)

const (
	DefaultBinary        = "google-drive-ocamlfuse"
	DefaultUnmountBinary = "fusermount"
	DefaultTimeout       = 30 * time.Second
)

// Tool is a configured handle on the mount tool. The zero value uses the
// defaults above and ~/.gdfuse.
type Tool struct {
	Binary        string
	UnmountBinary string
	// ConfigDir holds one sub-directory per label.
	ConfigDir string
	Timeout   time.Duration
	Runner    Runner
}

// Credentials are the inputs of a headless authorization.
type Credentials struct {
	Label        string
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

func (t *Tool) binary() string {
	if t.Binary != "" {
		return t.Binary
	}
	return DefaultBinary
}

func (t *Tool) unmountBinary() string {
	if t.UnmountBinary != "" {
		return t.UnmountBinary
	}
	return DefaultUnmountBinary
}

func (t *Tool) runner() Runner {
	if t.Runner != nil {
		return t.Runner
	}
	return ExecRunner{}
}

func (t *Tool) timeout() time.Duration {
	if t.Timeout > 0 {
		return t.Timeout
	}
	return DefaultTimeout
}

func (t *Tool) configDir() string {
	if t.ConfigDir != "" {
		return t.ConfigDir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".gdfuse"
	}
	return filepath.Join(home, ".gdfuse")
}

func (t *Tool) run(ctx context.Context, op, stdin, name string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout())
	defer cancel()

	start := time.Now()
	stdout, stderr, err := t.runner().Run(ctx, stdin, name, args...)
	if err == nil {
		logger.Debug("Tool command finished", "op", op, "elapsed", time.Since(start).Round(time.Millisecond))
		return stdout, nil
	}
	classified := classify(ctx, op, stderr, err)
	logger.Warn("Tool command failed", "op", op, "code", apperrors.CodeOf(classified), "stderr", strings.TrimSpace(stderr), "error", err)
	return stdout, classified
}

func classify(ctx context.Context, op, stderr string, err error) error {
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
		return apperrors.ExternalTool(apperrors.CodeNotInstalled, "", err)
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return apperrors.ExternalTool(apperrors.CodeTimeout, "", fmt.Errorf("%s: %w", op, ctx.Err()))
	}
	if errors.Is(ctx.Err(), context.Canceled) {
		return apperrors.ExternalTool(apperrors.CodeFailed, "Operation cancelled.", ctx.Err())
	}

	msg := logger.RedactString(strings.TrimSpace(stderr))
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "invalid_grant") || strings.Contains(lower, "access_token"):
		return apperrors.ExternalTool(apperrors.CodeTokenInvalid, "", err)
	case strings.Contains(lower, "busy") || strings.Contains(lower, "in use"):
		return apperrors.ExternalTool(apperrors.CodeBusy, "", err)
	}
	if msg == "" {
		msg = fmt.Sprintf("%s failed: %v", op, err)
	}
	return apperrors.ExternalTool(apperrors.CodeFailed, msg, err)
}

// Mount exposes label at dir. dir must exist.
func (t *Tool) Mount(ctx context.Context, label, dir string) error {
	_, err := t.run(ctx, "mount", "", t.binary(), "-label", label, dir)
	return err
}

// HeadlessAuthorize exchanges code for tokens, feeding it on stdin.
func (t *Tool) HeadlessAuthorize(ctx context.Context, c Credentials, code string) error {
	_, err := t.run(ctx, "authorize", code+"\n", t.binary(),
		"-headless",
		"-id", c.ClientID,
		"-secret", c.ClientSecret,
		"-label", c.Label,
		"-redirect_uri", c.RedirectURI,
	)
	return err
}

// Unmount detaches the FUSE filesystem at dir.
func (t *Tool) Unmount(ctx context.Context, dir string) error {
	_, err := t.run(ctx, "unmount", "", t.unmountBinary(), "-u", dir)
	return err
}

// Version returns the tool's version line; a not_installed error means the
// binary is missing.
func (t *Tool) Version(ctx context.Context) (string, error) {
	out, err := t.run(ctx, "version", "", t.binary(), "-version")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}
