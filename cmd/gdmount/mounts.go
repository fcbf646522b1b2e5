package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/oukeidos/gdmount/internal/manager"
)

func newMountCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "mount <label>",
		Short: "Mount an account",
		Args:  cobra.ExactArgs(1),
		RunE: labelArg(func(ctx context.Context, cmd *cobra.Command, s *session, label string) error {
			mp, err := s.manager().Mount(ctx, label, dir)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), s.loc.T("%s mounted at %s.", label, mp))
			return nil
		}),
	}
	cmd.Flags().StringVar(&dir, "dir", "", "Mount point (default: the recorded one, else ~/<label>)")
	return cmd
}

func newUnmountCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "unmount [label]",
		Short: "Unmount one account, or every account with --all",
		Args: func(cmd *cobra.Command, args []string) error {
			if all {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(func(ctx context.Context, cmd *cobra.Command, s *session) error {
				if all {
					report := s.manager().UnmountAll(ctx)
					for _, label := range report.Unmounted {
						fmt.Fprintln(cmd.OutOrStdout(), s.loc.T("%s unmounted.", label))
					}
					return report.Err()
				}
				if err := s.manager().Unmount(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), s.loc.T("%s unmounted.", args[0]))
				return nil
			})(cmd, args)
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Unmount every tracked account")
	return cmd
}

func newAutomountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "automount",
		Short: "Mount every account marked for automount",
		Args:  cobra.NoArgs,
		RunE: withSession(func(ctx context.Context, cmd *cobra.Command, s *session) error {
			report := s.manager().Automount(ctx)
			printAutomount(cmd, s, report)
			return report.Err()
		}),
	}
}

func printAutomount(cmd *cobra.Command, s *session, report manager.AutomountReport) {
	labels := make([]string, 0, len(report.Mounted))
	for label := range report.Mounted {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	for _, label := range labels {
		fmt.Fprintln(cmd.OutOrStdout(), s.loc.T("%s mounted at %s.", label, report.Mounted[label]))
	}
	for _, label := range report.NeedsReauth() {
		fmt.Fprintln(cmd.ErrOrStderr(), s.loc.T("%s needs to be reauthorized: gdmount reauth %s", label, label))
	}
}

func newMonitorCmd() *cobra.Command {
	var automount bool
	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Watch the mount table and report external unmounts until interrupted",
		Args:  cobra.NoArgs,
		RunE: withSession(func(ctx context.Context, cmd *cobra.Command, s *session) error {
			m := s.manager()
			if automount {
				report := m.Automount(ctx)
				printAutomount(cmd, s, report)
				if err := report.Err(); err != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), s.loc.Error(err))
				}
			}
			m.StartMonitor()
			defer m.StopMonitor()
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, s.loc.T("Watching mounts. Press Ctrl+C to stop."))
			for {
				select {
				case <-ctx.Done():
					return nil
				case e := <-m.Events():
					if e.Kind == manager.EventExternalUnmount {
						fmt.Fprintln(out, s.loc.T("%s was unmounted from %s outside the application.", e.Label, e.MountPoint))
					}
				}
			}
		}),
	}
	cmd.Flags().BoolVar(&automount, "automount", false, "Run automount before watching")
	return cmd
}
