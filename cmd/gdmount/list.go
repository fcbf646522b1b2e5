package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/oukeidos/gdmount/internal/account"
	"github.com/oukeidos/gdmount/internal/display"
	"github.com/oukeidos/gdmount/internal/i18n"
	"github.com/oukeidos/gdmount/internal/manager"
)

const (
	labelWidth    = 18
	statusWidth   = 14
	emailWidth    = 28
	clientIDWidth = 24
)

func newListCmd() *cobra.Command {
	var deleted bool
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List accounts and their mount state",
		Args:    cobra.NoArgs,
		RunE: withSession(func(_ context.Context, cmd *cobra.Command, s *session) error {
			snap := s.manager().Snapshot()
			if deleted {
				printDeleted(cmd.OutOrStdout(), s.loc, snap)
				return nil
			}
			printAccounts(cmd.OutOrStdout(), s.loc, snap)
			return nil
		}),
	}
	cmd.Flags().BoolVar(&deleted, "deleted", false, "List deleted accounts instead")
	return cmd
}

func statusOf(loc *i18n.Localizer, label string, a account.Account, st manager.State) (string, *color.Color) {
	switch {
	case st.Mounted[label] != "":
		return loc.T("mounted"), color.New(color.FgGreen)
	case a.Configured:
		return loc.T("configured"), color.New(color.FgYellow)
	default:
		return loc.T("unconfigured"), color.New(color.FgRed)
	}
}

func printAccounts(w io.Writer, loc *i18n.Localizer, st manager.State) {
	if len(st.Accounts) == 0 {
		fmt.Fprintln(w, loc.T("No accounts configured."))
		return
	}
	header := []string{
		display.Pad(loc.T("LABEL"), labelWidth),
		display.Pad(loc.T("STATUS"), statusWidth),
		display.Pad(loc.T("AUTO"), 5),
		display.Pad(loc.T("EMAIL"), emailWidth),
		display.Pad(loc.T("CLIENT ID"), clientIDWidth),
		loc.T("MOUNT POINT"),
	}
	fmt.Fprintln(w, strings.TrimRight(strings.Join(header, " "), " "))
	for _, label := range st.Accounts.Labels() {
		a := st.Accounts[label]
		status, paint := statusOf(loc, label, a, st)
		mp := st.Mounted[label]
		if mp == "" {
			mp = a.MountPoint
		}
		auto := "-"
		if a.Automount {
			auto = loc.T("yes")
		}
		email := a.Email
		if email == "" {
			email = "-"
		}
		if a.ExternallyDetected {
			label += "*"
		}
		row := []string{
			display.Pad(display.Truncate(label, labelWidth), labelWidth),
			paint.Sprint(display.Pad(status, statusWidth)),
			display.Pad(auto, 5),
			display.Pad(display.Truncate(email, emailWidth), emailWidth),
			display.Pad(display.Middle(a.ClientID, clientIDWidth), clientIDWidth),
			mp,
		}
		fmt.Fprintln(w, strings.TrimRight(strings.Join(row, " "), " "))
	}
}

func printDeleted(w io.Writer, loc *i18n.Localizer, st manager.State) {
	if len(st.Deleted) == 0 {
		fmt.Fprintln(w, loc.T("No deleted accounts."))
		return
	}
	fmt.Fprintln(w, display.Pad(loc.T("LABEL"), labelWidth)+" "+display.Pad(loc.T("EMAIL"), emailWidth)+" "+loc.T("CLIENT ID"))
	for _, label := range st.Deleted.Labels() {
		a := st.Deleted[label]
		email := a.Email
		if email == "" {
			email = "-"
		}
		fmt.Fprintln(w, display.Pad(display.Truncate(label, labelWidth), labelWidth)+" "+
			display.Pad(display.Truncate(email, emailWidth), emailWidth)+" "+a.ClientID)
	}
}
