package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/riskibarqy/sports-ticker/external/espn"
	"github.com/riskibarqy/sports-ticker/internal/app"
	"github.com/riskibarqy/sports-ticker/internal/config"
	"github.com/spf13/cobra"
)

func teamsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "teams",
		Short: "List tracked teams",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, app.Options{SkipDelivery: true}, func(ctx context.Context, a *app.App) error {
				teams, err := a.TeamService.List(ctx)
				if err != nil {
					return err
				}
				if len(teams) == 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "No teams tracked. Add one with: ticker add <name> --espn-id <id>\n")
					return nil
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tTEAM\tESPN ID\tLEAGUES")
				for _, item := range teams {
					espnID := item.ESPNID
					if espnID == "" {
						espnID = "-"
					}
					fmt.Fprintf(w, "%s\t%s %s\t%s\t%s\n", item.ID, item.Emoji, item.Name, espnID, strings.Join(item.Leagues, ","))
				}
				return w.Flush()
			})
		},
	}
}

func searchCmd() *cobra.Command {
	var leagues []string
	cmd := &cobra.Command{
		Use:   "search <name>",
		Short: "Find ESPN team ids by name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}
			if len(leagues) == 0 {
				leagues = e.cfg.SearchLeagues
			}

			client := app.NewESPNClient(e.cfg, e.logger)
			results, err := client.SearchTeams(cmd.Context(), strings.Join(args, " "), leagues)
			if err != nil {
				return err
			}
			if len(results) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No teams found for %q.\n", strings.Join(args, " "))
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ESPN ID\tTEAM\tLEAGUE")
			for _, item := range results {
				fmt.Fprintf(w, "%s\t%s\t%s (%s)\n", item.ID, item.Name, item.LeagueName, item.LeagueID)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringSliceVarP(&leagues, "league", "l", nil, "ESPN league ids to search (default ESPN_SEARCH_LEAGUES)")
	return cmd
}

func leaguesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "leagues",
		Short: "List known ESPN league ids",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME")
			for _, item := range espn.Leagues() {
				fmt.Fprintf(w, "%s\t%s\n", item.ID, item.Name)
			}
			return w.Flush()
		},
	}
}

func addCmd() *cobra.Command {
	var item config.TrackerTeam
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a team to the tracker file",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}
			item.Name = strings.Join(args, " ")
			if err := config.AddTrackedTeam(e.cfg.TrackerFile, item); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s to %s\n", item.Name, e.cfg.TrackerFile)
			return nil
		},
	}
	cmd.Flags().StringVar(&item.ESPNID, "espn-id", "", "ESPN team id (see: ticker search)")
	cmd.Flags().StringVar(&item.ShortName, "short-name", "", "Short display name")
	cmd.Flags().StringVar(&item.Emoji, "emoji", "", "Emoji shown in alerts")
	cmd.Flags().StringSliceVarP(&item.Leagues, "league", "l", nil, "ESPN league ids to watch")
	return cmd
}
