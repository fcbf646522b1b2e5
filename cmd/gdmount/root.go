package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"github.com/oukeidos/gdmount/internal/app"
	"github.com/oukeidos/gdmount/internal/cleanup"
	"github.com/oukeidos/gdmount/internal/i18n"
	"github.com/oukeidos/gdmount/internal/logger"
	"github.com/oukeidos/gdmount/internal/manager"
	"github.com/oukeidos/gdmount/internal/prompt"
	"github.com/oukeidos/gdmount/internal/settings"
	"github.com/oukeidos/gdmount/internal/version"
)

// Replaced in tests.
var (
	openBrowser  = browser.OpenURL
	appOptions   = defaultAppOptions
	newConfirmer = prompt.DefaultConfirmer
)

func defaultAppOptions() app.Options {
	opts := app.Options{OpenBrowser: openBrowser}
	if exe, err := os.Executable(); err == nil {
		opts.AutostartExec = filepath.Join(filepath.Dir(exe), "gdmount-gui")
	}
	return opts
}

func execute() {
	cmd := newRootCmd()
	err := cmd.Execute()
	var done reported
	if err != nil && !errors.As(err, &done) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	if cleanupErr := cleanup.RunAll(); cleanupErr != nil {
		fmt.Fprintln(os.Stderr, cleanupErr)
		if err == nil {
			err = cleanupErr
		}
	}
	if err != nil {
		os.Exit(1)
	}
}

// session is the per-invocation state shared by subcommands.
type session struct {
	app *app.App
	loc *i18n.Localizer
}

func (s *session) manager() *manager.Manager { return s.app.Manager }

// reported marks an error already printed in the user's language.
type reported struct{ error }

func (r reported) Unwrap() error { return r.error }

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "gdmount",
		Short:         "Manage Google Drive accounts mounted with google-drive-ocamlfuse",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.Version = version.Info("")
	cmd.SetVersionTemplate("{{.Version}}\n")
	cmd.SetUsageTemplate(usageTemplate)
	settings.RegisterFlags(cmd.PersistentFlags())

	cmd.AddCommand(
		newListCmd(),
		newAddCmd(),
		newReauthCmd(),
		newDeleteCmd(),
		newRestoreCmd(),
		newPurgeCmd(),
		newMountCmd(),
		newUnmountCmd(),
		newAutomountCmd(),
		newSetCmd(),
		newMonitorCmd(),
		newPrefsCmd(),
		newCheckCmd(),
		newVersionCmd(),
		newAboutCmd(),
		newLicensesCmd(),
	)

	cmd.InitDefaultCompletionCmd()
	for _, sub := range cmd.Commands() {
		sub.SetUsageTemplate(usageTemplate)
	}
	return cmd
}

// withSession loads settings and state, runs fn and reports its error in
// the configured language.
func withSession(fn func(ctx context.Context, cmd *cobra.Command, s *session) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		st, err := settings.Load(cmd.Root().PersistentFlags())
		if err != nil {
			return err
		}
		if err := app.InitLogging(st); err != nil {
			return err
		}
		a, err := app.New(st, appOptions())
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		report, err := a.Manager.Startup(ctx, manager.StartupOptions{})
		if err != nil {
			return err
		}
		for _, w := range report.Warnings {
			logger.Warn("Startup step failed", "error", w)
		}
		s := &session{app: a, loc: a.Manager.Localizer()}
		if err := fn(ctx, cmd, s); err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), s.loc.Error(err))
			return reported{err}
		}
		return nil
	}
}

// labelArg wraps withSession for commands taking exactly one label.
func labelArg(fn func(ctx context.Context, cmd *cobra.Command, s *session, label string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		return withSession(func(ctx context.Context, cmd *cobra.Command, s *session) error {
			return fn(ctx, cmd, s, args[0])
		})(cmd, args)
	}
}
