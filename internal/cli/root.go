package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"activities-cli/internal/client"
	"activities-cli/internal/config"
	"activities-cli/internal/dispatch"
	"activities-cli/internal/format"
	"activities-cli/internal/logging"
	"activities-cli/internal/tui"

	"github.com/spf13/cobra"
)

type App struct {
	Config config.Config
	Format string
	Pretty bool

	logger   *slog.Logger
	logClose io.Closer
}

func NewRootCmd() *cobra.Command {
	app := &App{}
	cfg, cfgErr := config.Load()
	app.Config = cfg

	cmd := &cobra.Command{
		Use:           "activities",
		Short:         "Extracurricular activity sign-up client (terminal, web and scriptable)",
		SilenceUsage:  true,
		SilenceErrors: true,
		Example: strings.TrimSpace(`
  # Start the interactive terminal client
  activities

  # Scriptable commands
  activities list --format md
  activities signup --activity "Chess Club" --email michael@mergington.edu
  activities unregister --activity "Chess Club" --email michael@mergington.edu --yes

  # Browser client and a local reference server
  activities web
  activities dev-server
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive client.
			if len(args) > 0 {
				return cmd.Help()
			}
			return runTUI(cmd, app)
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if cfgErr != nil {
			return writeErr(cmd, cfgErr)
		}
		if err := app.Config.Validate(); err != nil {
			return writeErr(cmd, err)
		}
		// The terminal client owns the screen; without a log file it logs nowhere.
		var fallback io.Writer = cmd.ErrOrStderr()
		if cmd == cmd.Root() {
			fallback = io.Discard
		}
		logger, closer, err := logging.Open(logging.Config{
			Level:  app.Config.LogLevel,
			Format: app.Config.LogFormat,
			File:   app.Config.LogFile,
		}, fallback)
		if err != nil {
			return writeErr(cmd, fmt.Errorf("open log: %w", err))
		}
		app.logger = logger
		app.logClose = closer
		return nil
	}
	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		if app.logClose != nil {
			return app.logClose.Close()
		}
		return nil
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&app.Config.BaseURL, "url", cfg.BaseURL, "Activity service base URL (env ACTIVITIES_URL)")
	pf.DurationVar(&app.Config.Timeout, "timeout", cfg.Timeout, "Per-request timeout (env ACTIVITIES_TIMEOUT)")
	pf.DurationVar(&app.Config.FeedbackTTL, "feedback-ttl", cfg.FeedbackTTL, "How long feedback stays visible; 0 keeps the per-action defaults (env ACTIVITIES_FEEDBACK_TTL)")
	pf.StringVar(&app.Config.LogLevel, "log-level", cfg.LogLevel, "Log level (debug|info|warn|error)")
	pf.StringVar(&app.Config.LogFormat, "log-format", cfg.LogFormat, "Log format (text|json)")
	pf.StringVar(&app.Config.LogFile, "log-file", cfg.LogFile, "Append logs to this file")

	cmd.AddCommand(newListCmd(app))
	cmd.AddCommand(newSignupCmd(app))
	cmd.AddCommand(newUnregisterCmd(app))
	cmd.AddCommand(newWebCmd(app))
	cmd.AddCommand(newDevServerCmd(app))

	return cmd
}

func runTUI(cmd *cobra.Command, app *App) error {
	c := app.client()
	err := tui.Run(commandContext(cmd), tui.Options{
		Fetcher: c,
		Mutator: app.dispatcher(c),
		Logger:  app.logger,
	})
	if err != nil {
		return writeErr(cmd, err)
	}
	return nil
}

func (app *App) log() *slog.Logger {
	if app.logger == nil {
		return logging.Discard()
	}
	return app.logger
}

func (app *App) client() *client.Client {
	return client.New(client.Options{
		BaseURL: app.Config.BaseURL,
		Timeout: app.Config.Timeout,
		Logger:  app.log(),
	})
}

func (app *App) dispatcher(c *client.Client) *dispatch.Dispatcher {
	return dispatch.New(c,
		dispatch.WithLogger(app.log()),
		dispatch.WithFeedbackTTL(app.Config.FeedbackTTL),
	)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.Pretty)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

// shutdownGrace bounds how long servers wait for open requests on exit.
const shutdownGrace = 5 * time.Second
