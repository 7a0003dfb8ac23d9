// Command ticker polls ESPN for the matches of tracked teams and pushes goal,
// card and phase alerts to the configured channels.
//
// Usage:
//
//	ticker run
//	ticker poll --verbose
//	ticker schedule --days 7 --team arsenal
//	ticker teams
//	ticker search "real madrid"
//	ticker leagues
//	ticker add "Tottenham Hotspur" --espn-id 367 --league eng.1
//	ticker migrate up
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/riskibarqy/sports-ticker/internal/app"
	"github.com/riskibarqy/sports-ticker/internal/config"
	"github.com/riskibarqy/sports-ticker/internal/platform/logging"
	"github.com/spf13/cobra"
)

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load(".env")

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "ticker",
		Short:         "Live football alerts for the teams you follow",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.AddCommand(runCmd())
	root.AddCommand(pollCmd())
	root.AddCommand(scheduleCmd())
	root.AddCommand(teamsCmd())
	root.AddCommand(searchCmd())
	root.AddCommand(leaguesCmd())
	root.AddCommand(addCmd())
	root.AddCommand(migrateCmd())
	return root
}

// env bundles what every command needs before it touches the app.
type env struct {
	cfg    config.Config
	logger *logging.Logger
}

func loadEnv() (env, error) {
	cfg, err := config.Load()
	if err != nil {
		return env{}, err
	}

	// Logs go to stderr so command output on stdout stays pipeable.
	logger := logging.New(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Output: os.Stderr,
	}).With("service", cfg.ServiceName, "env", cfg.AppEnv)
	logging.SetDefault(logger)

	return env{cfg: cfg, logger: logger}, nil
}

// withApp loads config, wires the app and runs fn with a signal-aware context.
func withApp(cmd *cobra.Command, opts app.Options, fn func(ctx context.Context, a *app.App) error) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	defer func() { _ = e.logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if opts.Stdout == nil {
		opts.Stdout = cmd.OutOrStdout()
	}
	a, err := app.New(ctx, e.cfg, e.logger, opts)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			e.logger.Warn("close app", "error", err)
		}
	}()

	return fn(ctx, a)
}
