package main

import (
	"context"
	"fmt"

	"github.com/riskibarqy/sports-ticker/internal/app"
	"github.com/spf13/cobra"
)

func pollCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "poll",
		Short: "Run one poll cycle and deliver any alerts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, app.Options{}, func(ctx context.Context, a *app.App) error {
				result, err := a.TickerService.Trigger(ctx)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if verbose && len(result.Cycle.Notifications) == 0 {
					fmt.Fprintln(out, "No live updates.")
				}
				if verbose {
					for _, item := range result.Cycle.Errors {
						fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s (%s)\n", item.TeamID, item.Message, item.Kind)
					}
				}
				if result.Delivery.Failed > 0 {
					return fmt.Errorf("%d of %d deliveries failed", result.Delivery.Failed, result.Delivery.Attempted)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Report quiet cycles and per-team failures")
	return cmd
}
