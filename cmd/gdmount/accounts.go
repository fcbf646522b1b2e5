package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oukeidos/gdmount/internal/account"
	"github.com/oukeidos/gdmount/internal/manager"
	"github.com/oukeidos/gdmount/internal/oauth"
)

type addOptions struct {
	clientID        string
	credentialsJSON string
}

func newAddCmd() *cobra.Command {
	opts := addOptions{}
	cmd := &cobra.Command{
		Use:   "add <label>",
		Short: "Register an account and authorize it in the browser",
		Long: "Register an account and authorize it in the browser.\n\n" +
			"The client secret is read from --credentials-json or prompted for;\n" +
			"it is never accepted as a flag.",
		Args: cobra.ExactArgs(1),
		RunE: labelArg(func(ctx context.Context, cmd *cobra.Command, s *session, label string) error {
			return runAdd(ctx, cmd, s, label, opts)
		}),
	}
	cmd.Flags().StringVar(&opts.clientID, "client-id", "", "OAuth client ID")
	cmd.Flags().StringVar(&opts.credentialsJSON, "credentials-json", "", "Client secret JSON downloaded from Google Cloud")
	return cmd
}

func runAdd(ctx context.Context, cmd *cobra.Command, s *session, label string, opts addOptions) error {
	d := account.Draft{Label: label, ClientID: opts.clientID}
	if opts.credentialsJSON != "" {
		id, secret, err := oauth.LoadClientCredentials(opts.credentialsJSON)
		if err != nil {
			return err
		}
		if d.ClientID != "" && !strings.EqualFold(strings.TrimSpace(d.ClientID), id) {
			return fmt.Errorf("--client-id does not match the credentials file")
		}
		d.ClientID, d.ClientSecret = id, secret
	}
	if d.ClientSecret == "" {
		secret, err := newConfirmer().Secret(s.loc.T("Client Secret"))
		if err != nil {
			return err
		}
		d.ClientSecret = secret
	}

	fmt.Fprintln(cmd.OutOrStdout(), s.loc.T("Waiting for the authorization in the browser..."))
	a, err := s.manager().SetupAccount(ctx, d)
	if err != nil {
		return err
	}
	if a.Email != "" {
		fmt.Fprintln(cmd.OutOrStdout(), s.loc.T("Account %s configured (%s).", strings.TrimSpace(label), a.Email))
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), s.loc.T("Account %s configured.", strings.TrimSpace(label)))
	}
	return nil
}

func newReauthCmd() *cobra.Command {
	var askSecret bool
	cmd := &cobra.Command{
		Use:   "reauth <label>",
		Short: "Repeat the browser authorization of an account",
		Args:  cobra.ExactArgs(1),
		RunE: labelArg(func(ctx context.Context, cmd *cobra.Command, s *session, label string) error {
			var secret string
			if askSecret {
				v, err := newConfirmer().Secret(s.loc.T("Client Secret"))
				if err != nil {
					return err
				}
				secret = v
			}
			fmt.Fprintln(cmd.OutOrStdout(), s.loc.T("Waiting for the authorization in the browser..."))
			if err := s.manager().Reauthorize(ctx, label, secret); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), s.loc.T("Account %s reauthorized.", label))
			return nil
		}),
	}
	cmd.Flags().BoolVar(&askSecret, "secret", false, "Prompt for the client secret instead of using the stored one")
	return cmd
}

type deleteFlags struct {
	yes          bool
	toolConfig   string
	mountFolder  string
	dontAskAgain bool
}

// answer resolves a yes/no/ask cleanup flag. With --yes an unanswered
// cleanup keeps the files.
func answer(flag, question string, yes bool) (bool, error) {
	switch flag {
	case "yes":
		return true, nil
	case "no":
		return false, nil
	case "ask":
		if yes {
			return false, nil
		}
		return newConfirmer().Confirm(question, false)
	}
	return false, fmt.Errorf("invalid answer %q: use yes, no or ask", flag)
}

func newDeleteCmd() *cobra.Command {
	opts := deleteFlags{}
	cmd := &cobra.Command{
		Use:     "delete <label>",
		Aliases: []string{"rm"},
		Short:   "Move an account to the deleted set",
		Args:    cobra.ExactArgs(1),
		RunE: labelArg(func(_ context.Context, cmd *cobra.Command, s *session, label string) error {
			plan, err := s.manager().PlanDelete(label)
			if err != nil {
				return err
			}
			ok, err := newConfirmer().Confirm(s.loc.T("Delete account %s?", label), opts.yes)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), s.loc.T("Nothing changed."))
				return nil
			}

			del := manager.DeleteOptions{DontAskAgain: opts.dontAskAgain}
			if plan.ToolConfigDir != "" {
				del.RemoveToolConfig, err = answer(opts.toolConfig, s.loc.T("Also remove %s?", plan.ToolConfigDir), opts.yes)
				if err != nil {
					return err
				}
			}
			if plan.MountPoint != "" {
				flag := opts.mountFolder
				if flag == "ask" && !plan.AskBeforeDelete {
					flag = "no"
				}
				del.RemoveMountPoint, err = answer(flag, s.loc.T("Also remove the mount folder %s?", plan.MountPoint), opts.yes)
				if err != nil {
					return err
				}
			}

			report, err := s.manager().DeleteAccount(label, del)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, s.loc.T("Account %s moved to the deleted accounts.", label))
			for _, p := range []string{report.RemovedToolConfig, report.RemovedMountPoint} {
				if p != "" {
					fmt.Fprintln(out, s.loc.T("Removed %s.", p))
				}
			}
			return report.Err()
		}),
	}
	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "Delete without asking; cleanups follow --tool-config and --mount-folder")
	cmd.Flags().StringVar(&opts.toolConfig, "tool-config", "ask", "Remove the tool's config dir: yes, no or ask")
	cmd.Flags().StringVar(&opts.mountFolder, "mount-folder", "ask", "Remove the mount folder: yes, no or ask")
	cmd.Flags().BoolVar(&opts.dontAskAgain, "dont-ask-again", false, "Stop asking about the mount folder on later deletes")
	return cmd
}

func newRestoreCmd() *cobra.Command {
	var reconfigure bool
	cmd := &cobra.Command{
		Use:   "restore <label>",
		Short: "Bring back a deleted account",
		Args:  cobra.ExactArgs(1),
		RunE: labelArg(func(ctx context.Context, cmd *cobra.Command, s *session, label string) error {
			if reconfigure {
				fmt.Fprintln(cmd.OutOrStdout(), s.loc.T("Waiting for the authorization in the browser..."))
			}
			if err := s.manager().RestoreAccount(ctx, label, reconfigure); err != nil {
				return err
			}
			if reconfigure {
				fmt.Fprintln(cmd.OutOrStdout(), s.loc.T("Account %s restored.", label))
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), s.loc.T("Account %s restored without configuration. Run reauth before mounting.", label))
			}
			return nil
		}),
	}
	cmd.Flags().BoolVar(&reconfigure, "reconfigure", false, "Run the browser authorization again")
	return cmd
}

func newPurgeCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "purge <label>",
		Short: "Forget a deleted account permanently",
		Args:  cobra.ExactArgs(1),
		RunE: labelArg(func(_ context.Context, cmd *cobra.Command, s *session, label string) error {
			ok, err := newConfirmer().Confirm(s.loc.T("Permanently delete %s? This cannot be undone.", label), yes)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), s.loc.T("Nothing changed."))
				return nil
			}
			if err := s.manager().PurgeAccount(label); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), s.loc.T("Account %s permanently deleted.", label))
			return nil
		}),
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}
