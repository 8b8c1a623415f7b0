package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/dogwalk/internal/client/client"
	"github.com/dmitrijs2005/dogwalk/internal/common"
)

func loginCmd(a *app) *cobra.Command {
	var passwordStdin bool
	cmd := &cobra.Command{
		Use:     "login [email]",
		Short:   "Sign in and store the session",
		Example: "  dogwalk login walker@dog.walk\n  echo secret | dogwalk login walker@dog.walk --password-stdin",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var email string
			if len(args) == 1 {
				email = args[0]
			} else {
				var err error
				if email, err = GetSimpleText(a.stdin, "Email", a.env.Stderr); err != nil {
					return err
				}
			}

			var password []byte
			var err error
			if passwordStdin {
				password, err = readSecretLine(a.stdin)
			} else {
				password, err = a.env.ReadPassword(a.env.Stderr)
			}
			if err != nil {
				return err
			}
			defer common.WipeByteArray(password)

			return a.withClient(cmd.Context(), func(c *client.Client) error {
				creds, err := c.Auth.EmailLogin(cmd.Context(), email, password)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.env.Stdout, "Logged in as %s (%s)\n", creds.Nick, creds.UserID)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password from stdin")
	return cmd
}

func logoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withClient(cmd.Context(), func(c *client.Client) error {
				if err := c.Auth.Logout(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(a.env.Stdout, "Logged out")
				return nil
			})
		},
	}
}

func whoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withClient(cmd.Context(), func(c *client.Client) error {
				creds, ok := c.Auth.Whoami()
				if !ok {
					return common.ErrorNotLoggedIn
				}
				fmt.Fprintf(a.env.Stdout, "%s (%s)\n", creds.Nick, creds.UserID)
				return nil
			})
		},
	}
}
