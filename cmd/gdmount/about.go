package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oukeidos/gdmount/internal/apperrors"
	"github.com/oukeidos/gdmount/internal/licenses"
	"github.com/oukeidos/gdmount/internal/version"
)

func newAboutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "about",
		Short: "Show a short description and link",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "gdmount: Google Drive accounts on google-drive-ocamlfuse")
			fmt.Fprintln(out, "https://github.com/oukeidos/gdmount")
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the gdmount and mount tool versions",
		Args:  cobra.NoArgs,
		RunE: withSession(func(ctx context.Context, cmd *cobra.Command, s *session) error {
			tool, err := s.manager().ToolVersion(ctx)
			if err != nil {
				tool = s.loc.Error(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), version.Info(tool))
			return nil
		}),
	}
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check that the mount tool is installed",
		Args:  cobra.NoArgs,
		RunE: withSession(func(ctx context.Context, cmd *cobra.Command, s *session) error {
			v, err := s.manager().ToolVersion(ctx)
			if err != nil {
				if apperrors.CodeOf(err) == apperrors.CodeNotInstalled {
					fmt.Fprintln(cmd.ErrOrStderr(), s.loc.T("Install it from https://github.com/astrada/google-drive-ocamlfuse."))
				}
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), v)
			return nil
		}),
	}
}

func newLicensesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "licenses",
		Short: "Show third-party license notices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprint(cmd.OutOrStdout(), licenses.NoticesText())
			return err
		},
	}
}
