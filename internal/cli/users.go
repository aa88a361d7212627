package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"input-portal/internal/app"
	"input-portal/internal/credentials"
	"input-portal/internal/models"
)

func (r *runner) bootstrapCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bootstrap",
		Short: "Create the admin account if it is missing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withApp(cmd.Context(), func(a *app.App) error {
				created, err := a.Credentials.EnsureAdminBootstrap(cmd.Context())
				if err != nil {
					return err
				}
				if created {
					fmt.Fprintln(r.streams.Out, "admin account created")
				}
				set, err := a.Credentials.AdminPasswordSet(cmd.Context())
				if err != nil {
					return err
				}
				if set {
					fmt.Fprintln(r.streams.Out, "admin account ready")
				} else {
					fmt.Fprintln(r.streams.Out, "admin account present, password not set; run set-admin-password")
				}
				return nil
			})
		},
	}
}

func (r *runner) setAdminPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-admin-password",
		Short: "Set or replace the admin password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			password, confirm, err := r.readNewPassword()
			if err != nil {
				return err
			}
			if err := credentials.CheckConfirmation(password, confirm); err != nil {
				return err
			}
			return r.withApp(cmd.Context(), func(a *app.App) error {
				if err := a.Credentials.SetPassword(cmd.Context(), models.AdminUsername, models.RoleAdmin, password); err != nil {
					return err
				}
				fmt.Fprintln(r.streams.Out, "admin password updated")
				return nil
			})
		},
	}
}

func (r *runner) createUserCmd() *cobra.Command {
	var company, username string
	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create a client user (password read from the terminal or stdin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			password, confirm, err := r.readNewPassword()
			if err != nil {
				return err
			}
			if password != confirm {
				return credentials.ErrPasswordMismatch
			}
			return r.withApp(cmd.Context(), func(a *app.App) error {
				u, err := a.Credentials.CreateClientUser(cmd.Context(), company, username, password)
				if err != nil {
					return err
				}
				fmt.Fprintf(r.streams.Out, "created %s (%s)\n", u.Username, u.Company)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&company, "company", "", "company the user reports for")
	cmd.Flags().StringVar(&username, "username", "", "login name")
	_ = cmd.MarkFlagRequired("company")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func (r *runner) listUsersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-users",
		Short: "List registry records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withApp(cmd.Context(), func(a *app.App) error {
				users, err := a.Credentials.LoadRegistry(cmd.Context())
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(r.streams.Out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "COMPANY\tUSERNAME\tROLE\tPASSWORD")
				for _, u := range users {
					state := "set"
					if !u.HasPassword() {
						state = "unset"
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", u.Company, u.Username, u.Role, state)
				}
				return tw.Flush()
			})
		},
	}
}
