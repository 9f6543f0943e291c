package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/BuzzLyutic/taskpad/internal/auth"
	"github.com/BuzzLyutic/taskpad/internal/statefile"
)

func NewWhoamiCommand(root *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, root)
			if err != nil {
				return err
			}
			if err := a.resolveSession(); err != nil {
				return err
			}
			st := a.session.State()
			if a.json() {
				return a.printJSON(st)
			}
			name := st.User.DisplayName
			if name == "" {
				name = st.User.Email
			}
			_, err = fmt.Fprintf(a.out, "%s <%s> (%s)\n", name, st.User.Email, st.User.ID)
			return err
		},
	}
}

type signInOptions struct {
	redirect string
	token    string
}

func NewSignInCommand(root *RootOptions) *cobra.Command {
	opts := &signInOptions{}

	cmd := &cobra.Command{
		Use:   "signin",
		Short: "Sign in",
		Long: `Sign in to taskpad.

Without flags, prints the identity provider URL to open in a browser.
With --token, verifies the token returned by the provider and saves it
for later commands.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, root)
			if err != nil {
				return err
			}
			if opts.token == "" {
				u, err := a.session.SignIn(cmd.Context(), opts.redirect)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(a.out, "Open %s to sign in, then run `taskpad signin --with-token <token>`\n", u)
				return err
			}

			if err := a.session.Resolve(opts.token); err != nil {
				return fmt.Errorf("sign in: %w", err)
			}
			if err := statefile.Save(root.Config.SessionFile, sessionState{Token: opts.token}); err != nil {
				return err
			}
			st := a.session.State()
			_, err = fmt.Fprintf(a.out, "Signed in as %s\n", st.User.Email)
			return err
		},
	}
	cmd.Flags().StringVar(&opts.redirect, "redirect", "", "URL the provider returns to after sign-in")
	cmd.Flags().StringVar(&opts.token, "with-token", "", "token issued by the identity provider")
	return cmd
}

func NewSignOutCommand(root *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "signout",
		Short: "Sign out and forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, root)
			if err != nil {
				return err
			}
			if err := a.session.SignOut(cmd.Context()); err != nil {
				return err
			}
			if err := statefile.Remove(root.Config.SessionFile); err != nil {
				return err
			}
			_, err = fmt.Fprintln(a.out, "Signed out")
			return err
		},
	}
}

type tokenOptions struct {
	user  string
	email string
	name  string
}

// NewTokenCommand mints a token signed with the local secret, for
// development against a server sharing that secret.
func NewTokenCommand(root *RootOptions) *cobra.Command {
	opts := &tokenOptions{}

	cmd := &cobra.Command{
		Use:    "token",
		Short:  "Issue a development token",
		Args:   cobra.NoArgs,
		Hidden: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, root)
			if err != nil {
				return err
			}
			token, err := a.tokens.Issue(auth.Identity{UserID: opts.user, Email: opts.email, DisplayName: opts.name})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(a.out, token)
			return err
		},
	}
	cmd.Flags().StringVar(&opts.user, "user", "", "user id (token subject)")
	cmd.Flags().StringVar(&opts.email, "email", "", "email")
	cmd.Flags().StringVar(&opts.name, "name", "", "display name")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
