package main

import (
	"context"
	"fmt"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/sports-ticker/internal/app"
	"github.com/riskibarqy/sports-ticker/internal/config"
	"github.com/riskibarqy/sports-ticker/internal/domain/fixture"
	"github.com/riskibarqy/sports-ticker/internal/domain/team"
	"github.com/spf13/cobra"
)

func scheduleCmd() *cobra.Command {
	var (
		days     int
		teamName string
		asJSON   bool
		compact  bool
	)
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Show upcoming fixtures of tracked teams",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, app.Options{SkipDelivery: true}, func(ctx context.Context, a *app.App) error {
				teams := a.Tracker.Teams
				if strings.TrimSpace(teamName) != "" {
					found, ok := config.FindTeam(teams, teamName)
					if !ok {
						return fmt.Errorf("team %q is not tracked", teamName)
					}
					teams = []team.Team{found}
				}

				items, err := a.ScheduleService.Upcoming(ctx, teams, days)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if asJSON {
					raw, err := sonic.ConfigStd.MarshalIndent(items, "", "  ")
					if err != nil {
						return err
					}
					_, err = fmt.Fprintln(out, string(raw))
					return err
				}

				byTeam := make(map[string][]fixture.Fixture, len(teams))
				for _, item := range items {
					byTeam[item.TeamID] = append(byTeam[item.TeamID], item)
				}
				sections := make([]string, 0, len(teams))
				for _, tracked := range teams {
					if !tracked.Trackable() {
						continue
					}
					sections = append(sections, a.Renderer.RenderSchedule(tracked, byTeam[tracked.ID], compact))
				}
				_, err = fmt.Fprintln(out, a.Renderer.RenderDigest(sections))
				return err
			})
		},
	}
	cmd.Flags().IntVarP(&days, "days", "d", 0, "Days ahead to include (0 uses POLL_SCHEDULE_DAYS)")
	cmd.Flags().StringVarP(&teamName, "team", "t", "", "Only show this tracked team")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print fixtures as JSON")
	cmd.Flags().BoolVarP(&compact, "compact", "c", false, "One line per fixture")
	return cmd
}
