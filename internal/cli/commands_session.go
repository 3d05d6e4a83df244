package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"fintrack/internal/session"
)

func registerCommand(s *settings) *cobra.Command {
	var username, email, secret string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an identity and log in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := s.app
			pw, err := readSecret(secret, cmd.InOrStdin(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			id, err := a.session.Register(cmd.Context(), username, email, pw)
			if err != nil {
				return err
			}
			a.view.success("Registered and logged in as %s", id.Username)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "Username")
	cmd.Flags().StringVarP(&email, "email", "e", "", "Email address")
	cmd.Flags().StringVar(&secret, "secret", "", "Secret (default: $"+EnvSecret+" or prompt)")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func loginCommand(s *settings) *cobra.Command {
	var secret string
	cmd := &cobra.Command{
		Use:   "login <username-or-email>",
		Short: "Log in by username or email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := s.app
			pw, err := readSecret(secret, cmd.InOrStdin(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			id, err := a.session.Login(cmd.Context(), args[0], pw)
			if err != nil {
				return err
			}
			a.view.success("Logged in as %s", id.Username)
			return nil
		},
	}
	cmd.Flags().StringVar(&secret, "secret", "", "Secret (default: $"+EnvSecret+" or prompt)")
	return cmd
}

func logoutCommand(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := s.app
			err := a.session.Logout(cmd.Context())
			if errors.Is(err, session.ErrNotActive) {
				a.view.info("Not logged in")
				return nil
			}
			if err != nil {
				return err
			}
			a.view.success("Logged out")
			return nil
		},
	}
}

func whoamiCommand(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in identity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, err := s.app.active()
			if err != nil {
				return err
			}
			s.app.view.identity(id)
			return nil
		},
	}
}

