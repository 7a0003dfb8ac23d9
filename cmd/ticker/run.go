package main

import (
	"context"
	"time"

	"github.com/riskibarqy/sports-ticker/internal/app"
	"github.com/riskibarqy/sports-ticker/internal/observability"
	"github.com/spf13/cobra"
)

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Poll continuously on the live/idle cadence and serve the status API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, app.Options{}, func(ctx context.Context, a *app.App) error {
				telemetry, err := observability.Start(ctx, a.Config, a.Logger)
				if err != nil {
					return err
				}
				defer func() {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					_ = telemetry.Shutdown(shutdownCtx)
				}()

				a.Logger.Info("ticker starting",
					"teams", len(a.Tracker.Teams),
					"notifiers", a.DeliveryService.NotifierNames(),
					"state_store", a.Config.StateStore,
					"http_enabled", a.Config.HTTPEnabled,
					"telemetry", telemetry.Enabled(),
				)
				err = a.Run(ctx)
				a.Logger.Info("ticker stopped")
				return err
			})
		},
	}
}
