package console

import (
	"errors"
	"fmt"

	"github.com/ghaggin/randomtables/internal/form"
	"github.com/ghaggin/randomtables/internal/model"
	"github.com/ghaggin/randomtables/internal/template"
	"github.com/spf13/cobra"
)

// commandError carries the text to show the user.
type commandError struct {
	msg string
	err error
}

func (e *commandError) Error() string { return e.msg }
func (e *commandError) Unwrap() error { return e.err }

func message(err error) string {
	var ce *commandError
	if errors.As(err, &ce) {
		return ce.msg
	}
	return template.ErrorMessage(err)
}

func (c *Console) newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "rtw",
		Short:         "Random Tables Web account console",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	root.AddCommand(
		c.newSignupCmd(),
		c.newLoginCmd(),
		c.newLogoutCmd(),
		c.newWhoisCmd(),
		c.newPasswdCmd(),
		c.newRenameCmd(),
		c.newAccountCmd(),
		c.newHomeCmd(),
		c.newStatusCmd(),
	)

	return root
}

func (c *Console) newSignupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "signup <username> <password>",
		Short: "Create an account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := form.Signup{Username: args[0], Password: args[1]}
			if err := f.Validate(); err != nil {
				return err
			}

			err := c.accounts.CreateAccount(cmd.Context(), model.Credentials{Username: f.Username, Password: f.Password})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Account %s created\n", f.Username)
			return nil
		},
	}
}

func (c *Console) newLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login <username> <password>",
		Short: "Log in",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.sessions.Session().LoggedIn() {
				return template.Render(cmd.OutOrStdout(), "home.tmpl", template.Home{User: c.sessions.Session().User})
			}

			id, err := c.sessions.Login(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return template.Render(cmd.OutOrStdout(), "home.tmpl", template.Home{User: id})
		},
	}
}

func (c *Console) newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.sessions.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func (c *Console) newWhoisCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whois",
		Short: "Ask the backend who the session belongs to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, err := c.sessions.Whois(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id.Username)
			return nil
		},
	}
}

func (c *Console) newPasswdCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "passwd <password> <confirm>",
		Short: "Change the password of the logged in account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := form.ChangePassword{Password: args[0], Confirm: args[1]}
			if err := f.Validate(); err != nil {
				return err
			}

			if err := c.sessions.ChangePassword(cmd.Context(), f.Password); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Password changed")
			return nil
		},
	}
}

func (c *Console) newRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <username>",
		Short: "Change the account name of the logged in account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := c.sessions.ChangeUsername(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Account renamed to %s\n", id.Username)
			return nil
		},
	}
}

func (c *Console) newAccountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "account <id>",
		Short: "Show an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), "Loading account...")

			acct, err := c.accounts.GetAccount(cmd.Context(), args[0])
			if err != nil {
				return &commandError{msg: template.AccountErrorMessage(err), err: err}
			}
			return template.Render(cmd.OutOrStdout(), "account.tmpl", template.Account{Account: acct})
		},
	}
}

func (c *Console) newHomeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "home",
		Short: "Show the greeting",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return template.Render(cmd.OutOrStdout(), "home.tmpl", template.Home{User: c.sessions.Session().User})
		},
	}
}

func (c *Console) newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the session state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return template.Render(cmd.OutOrStdout(), "status.tmpl", template.Status{Session: c.sessions.Session()})
		},
	}
}
