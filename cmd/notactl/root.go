package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tendant/nota-dashboard/internal/logging"
	"github.com/tendant/nota-dashboard/pkg/nota"
	"github.com/tendant/nota-dashboard/pkg/nota/client"
	"github.com/tendant/nota-dashboard/pkg/nota/config"
)

// app carries the state shared by every command of one invocation.
type app struct {
	configFile  string
	apiURL      string
	sessionFile string
	logLevel    string
	output      string

	cfg    *config.Config
	logger *zap.Logger
}

// NewRootCommand builds the notactl command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "notactl",
		Short: "Nota CMS dashboard client",
		Long: `Command line interface for the Nota CMS dashboard.

Manage schemas and the content records rendered from them against a Nota API.
Run "notactl shell" for an interactive editing session.`,
		Version:           fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.preload,
	}

	rootCmd.PersistentFlags().StringVarP(&a.configFile, "config", "c", "", "config file (optional)")
	rootCmd.PersistentFlags().StringVar(&a.apiURL, "api-url", "", "Nota API base URL")
	rootCmd.PersistentFlags().StringVar(&a.sessionFile, "session-file", "", "file holding the session cookies")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "debug, info, warn or error")
	rootCmd.PersistentFlags().StringVarP(&a.output, "output", "o", "", "output format: table (default), json or yaml")

	rootCmd.AddCommand(newLoginCommand(a))
	rootCmd.AddCommand(newLogoutCommand(a))
	rootCmd.AddCommand(newSignupCommand(a))
	rootCmd.AddCommand(newWhoamiCommand(a))
	rootCmd.AddCommand(newSchemaCommand(a))
	rootCmd.AddCommand(newContentCommand(a))
	rootCmd.AddCommand(newShellCommand(a))
	rootCmd.AddCommand(newConfigCommand(a))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

// preload reads .env, the config file, NOTA_* variables and flags, in that
// order of increasing precedence.
func (a *app) preload(cmd *cobra.Command, _ []string) error {
	_ = godotenv.Load()

	opts := []config.Option{config.WithFile(a.configFile), config.WithEnv()}
	if a.apiURL != "" {
		opts = append(opts, config.WithAPIURL(a.apiURL))
	}
	if a.sessionFile != "" {
		opts = append(opts, config.WithSessionFile(a.sessionFile))
	}
	opts = append(opts, config.WithLogging(a.logLevel, ""))

	cfg, err := config.Load(opts...)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}

// newClient builds a client and restores the saved session when it belongs
// to the configured API.
func (a *app) newClient() (*client.Client, error) {
	cl, err := a.cfg.BuildClient(a.logger)
	if err != nil {
		return nil, err
	}
	saved, err := loadSession(a.cfg.SessionFile)
	if err != nil {
		return nil, err
	}
	if saved.APIURL == cl.BaseURL() {
		cl.SetCookies(saved.httpCookies())
	}
	return cl, nil
}

// newSession builds a dashboard session with the schema registry loaded.
func (a *app) newSession(ctx context.Context) (*nota.Session, *client.Client, error) {
	cl, err := a.newClient()
	if err != nil {
		return nil, nil, err
	}
	session := nota.NewSession(cl, nota.WithLogger(a.logger))
	if err := session.Bootstrap(ctx); err != nil {
		if errors.Is(err, nota.ErrUnauthorized) {
			return nil, nil, errors.New(`not logged in, run "notactl login"`)
		}
		return nil, nil, fmt.Errorf("load schemas: %w", err)
	}
	return session, cl, nil
}

// newEditor opens an editor on schemaName.
func (a *app) newEditor(ctx context.Context, schemaName string) (*nota.Editor, error) {
	session, _, err := a.newSession(ctx)
	if err != nil {
		return nil, err
	}
	editor := session.NewEditor()
	if err := editor.SelectSchema(ctx, schemaName); err != nil {
		return nil, err
	}
	return editor, nil
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version of notactl",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.Printf("notactl %s (commit: %s, built: %s)\n", version, commit, date)
			return nil
		},
	}
}

func newConfigCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return render(cmd, a.output, a.cfg, func() string {
				tw := newTable()
				tw.AppendHeader(table.Row{"KEY", "VALUE"})
				tw.AppendRows([]table.Row{
					{"api_url", a.cfg.APIURL},
					{"timeout", a.cfg.Timeout},
					{"signup_path", a.cfg.SignupPath},
					{"update_by_id", a.cfg.UpdateByID},
					{"retries", a.cfg.Retries},
					{"log_level", a.cfg.LogLevel},
					{"log_format", a.cfg.LogFormat},
					{"session_file", a.cfg.SessionFile},
				})
				desc, err := config.Description()
				if err != nil {
					return tw.Render()
				}
				return tw.Render() + "\n\n" + desc
			})
		},
	}
}
