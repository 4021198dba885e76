package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tendant/nota-dashboard/pkg/nota"
)

// prompt reads one line from the command input when value is empty.
func prompt(cmd *cobra.Command, reader *bufio.Reader, label, value string) (string, error) {
	if value != "" {
		return value, nil
	}
	cmd.Printf("%s: ", label)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimSpace(line), nil
}

func newLoginCommand(a *app) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the Nota API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reader := bufio.NewReader(cmd.InOrStdin())
			var err error
			if email, err = prompt(cmd, reader, "Email", email); err != nil {
				return err
			}
			if password, err = prompt(cmd, reader, "Password", password); err != nil {
				return err
			}

			cl, err := a.cfg.BuildClient(a.logger)
			if err != nil {
				return err
			}
			session := nota.NewSession(cl, nota.WithLogger(a.logger))
			if err := session.Login(cmd.Context(), nota.Credentials{Email: email, Password: password}); err != nil {
				return err
			}
			if err := saveSession(a.cfg.SessionFile, newSavedSession(cl.BaseURL(), email, cl.Cookies())); err != nil {
				return err
			}
			cmd.Printf("Logged in as %s\n", email)
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password (prompted when empty)")
	return cmd
}

func newLogoutCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := deleteSession(a.cfg.SessionFile); err != nil {
				return err
			}
			cmd.Println("Logged out")
			return nil
		},
	}
}

func newSignupCommand(a *app) *cobra.Command {
	var email, password, confirm string

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Register an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reader := bufio.NewReader(cmd.InOrStdin())
			var err error
			if email, err = prompt(cmd, reader, "Email", email); err != nil {
				return err
			}
			if password, err = prompt(cmd, reader, "Password", password); err != nil {
				return err
			}
			if confirm, err = prompt(cmd, reader, "Confirm password", confirm); err != nil {
				return err
			}

			cl, err := a.cfg.BuildClient(a.logger)
			if err != nil {
				return err
			}
			session := nota.NewSession(cl, nota.WithLogger(a.logger))
			creds := nota.Credentials{Email: email, Password: password, ConfirmPassword: confirm}
			if err := session.Signup(cmd.Context(), creds); err != nil {
				return err
			}
			cmd.Println(`Account created, run "notactl login" to continue`)
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password")
	cmd.Flags().StringVar(&confirm, "confirm", "", "password confirmation")
	return cmd
}

func newWhoamiCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "whoami",
		Aliases: []string{"verify"},
		Short:   "Check the saved session",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, err := a.newClient()
			if err != nil {
				return err
			}
			session := nota.NewSession(cl, nota.WithLogger(a.logger))
			status := session.Verify(cmd.Context())
			if !status.Auth {
				return errors.New(`not logged in, run "notactl login"`)
			}
			email := ""
			if status.User != nil {
				email = status.User.Email
			}
			cmd.Printf("Logged in as %s\n", email)
			return nil
		},
	}
}
