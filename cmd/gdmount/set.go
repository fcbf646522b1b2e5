package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change per-account options",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "automount <label> <on|off>",
			Short: "Mount the account at startup",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				on, err := parseSwitch(args[1])
				if err != nil {
					return err
				}
				return withSession(func(_ context.Context, cmd *cobra.Command, s *session) error {
					if err := s.manager().SetAutomount(args[0], on); err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), s.loc.T("Saved."))
					return nil
				})(cmd, args)
			},
		},
		&cobra.Command{
			Use:   "mount-point <label> <dir>",
			Short: "Record where the account is mounted; an empty dir resets to ~/<label>",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withSession(func(_ context.Context, cmd *cobra.Command, s *session) error {
					if err := s.manager().SetMountPoint(args[0], args[1]); err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), s.loc.T("Saved."))
					return nil
				})(cmd, args)
			},
		},
	)
	for _, sub := range cmd.Commands() {
		sub.SetUsageTemplate(usageTemplate)
	}
	return cmd
}

// parseSwitch accepts on/off and anything strconv.ParseBool does.
func parseSwitch(v string) (bool, error) {
	switch v {
	case "on", "yes":
		return true, nil
	case "off", "no":
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid value %q: use on or off", v)
	}
	return b, nil
}
