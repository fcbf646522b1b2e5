package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oukeidos/gdmount/internal/config"
)

func newPrefsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show or change preferences",
		Args:  cobra.NoArgs,
		RunE: withSession(func(_ context.Context, cmd *cobra.Command, s *session) error {
			snap := s.manager().Snapshot()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "language=%s\n", snap.Language)
			fmt.Fprintf(out, "ask_before_delete=%t\n", snap.AskBeforeDelete)
			fmt.Fprintf(out, "autostart=%t\n", snap.AutostartEnabled)
			return nil
		}),
	}
	set := &cobra.Command{
		Use:   "set <language|ask_before_delete|autostart> <value>",
		Short: "Change one preference",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(func(_ context.Context, cmd *cobra.Command, s *session) error {
				if err := setPreference(s, args[0], args[1]); err != nil {
					return err
				}
				// Messages after a language change use the new language.
				s.loc = s.manager().Localizer()
				fmt.Fprintln(cmd.OutOrStdout(), s.loc.T("Saved."))
				return nil
			})(cmd, args)
		},
	}
	set.SetUsageTemplate(usageTemplate)
	cmd.AddCommand(set)
	return cmd
}

func setPreference(s *session, key, value string) error {
	m := s.manager()
	switch strings.ReplaceAll(strings.ToLower(key), "-", "_") {
	case "language", "lang":
		if value == "" {
			value = config.DefaultLanguage
		}
		return m.SetLanguage(value)
	case "ask_before_delete":
		on, err := parseSwitch(value)
		if err != nil {
			return err
		}
		return m.SetAskBeforeDelete(on)
	case "autostart", "autostart_enabled":
		on, err := parseSwitch(value)
		if err != nil {
			return err
		}
		return m.SetAutostart(on)
	}
	return fmt.Errorf("unknown preference %q", key)
}
