package espn

import (
	"context"
	"strings"

	crerr "github.com/cockroachdb/errors"
)

type TeamSearchResult struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	ShortName  string `json:"short_name"`
	LeagueID   string `json:"league_id"`
	LeagueName string `json:"league_name"`
}

// SearchTeams matches query against team names in each league. Leagues that
// fail to load are skipped.
func (c *Client) SearchTeams(ctx context.Context, query string, leagues []string) ([]TeamSearchResult, error) {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return nil, crerr.New("search query is required")
	}
	leagues = normalizeLeagues(leagues)
	if len(leagues) == 0 {
		leagues = DefaultSearchLeagues
	}

	out := make([]TeamSearchResult, 0)
	for _, league := range leagues {
		entries, err := c.leagueTeams(ctx, league)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.logger.WarnContext(ctx, "list league teams failed", "league", league, "error", err)
			continue
		}
		for _, entry := range entries {
			item := entry.Team
			if !matchesTeam(item, needle) {
				continue
			}
			out = append(out, TeamSearchResult{
				ID:         strings.TrimSpace(item.ID),
				Name:       strings.TrimSpace(item.DisplayName),
				ShortName:  strings.TrimSpace(item.ShortDisplayName),
				LeagueID:   league,
				LeagueName: LeagueName(league),
			})
		}
	}
	return out, nil
}

func (c *Client) leagueTeams(ctx context.Context, league string) ([]teamEntry, error) {
	return c.teamLists.GetOrLoad(ctx, league, func(ctx context.Context) ([]teamEntry, error) {
		var payload teamsEnvelope
		if err := c.doJSON(ctx, "/soccer/"+league+"/teams", nil, &payload); err != nil {
			return nil, err
		}
		if len(payload.Sports) == 0 || len(payload.Sports[0].Leagues) == 0 {
			return []teamEntry{}, nil
		}
		return payload.Sports[0].Leagues[0].Teams, nil
	})
}

func matchesTeam(item teamPayload, needle string) bool {
	for _, candidate := range []string{item.DisplayName, item.ShortDisplayName, item.Nickname} {
		if strings.Contains(strings.ToLower(candidate), needle) {
			return true
		}
	}
	return false
}
