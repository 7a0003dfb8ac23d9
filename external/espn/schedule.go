package espn

import (
	"context"
	"net/url"
	"sort"
	"strings"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/sports-ticker/internal/domain/fixture"
	"github.com/riskibarqy/sports-ticker/internal/domain/team"
)

// ListByTeam returns the team's fixtures across its leagues sorted by
// kickoff. A league that fails is logged and skipped unless every league fails.
func (c *Client) ListByTeam(ctx context.Context, tracked team.Team) ([]fixture.Fixture, error) {
	espnID := strings.TrimSpace(tracked.ESPNID)
	if espnID == "" {
		return nil, crerr.Newf("team %s has no espn id", tracked.ID)
	}

	leagues := normalizeLeagues(tracked.Leagues)
	out := make([]fixture.Fixture, 0)
	seen := make(map[string]struct{})
	var errs error
	failed := 0
	for _, league := range leagues {
		var payload teamScheduleEnvelope
		query := url.Values{}
		query.Set("fixture", "true")
		path := "/soccer/" + league + "/teams/" + url.PathEscape(espnID) + "/schedule"
		if err := c.doJSON(ctx, path, query, &payload); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			failed++
			errs = crerr.CombineErrors(errs, crerr.Wrapf(err, "team schedule league=%s", league))
			c.logger.WarnContext(ctx, "fetch team schedule failed", "team_id", tracked.ID, "league", league, "error", err)
			continue
		}

		for _, event := range payload.Events {
			item, ok := toFixture(league, tracked.ID, event)
			if !ok {
				continue
			}
			if _, dup := seen[item.MatchID]; dup {
				continue
			}
			seen[item.MatchID] = struct{}{}
			out = append(out, item)
		}
	}

	if len(leagues) > 0 && failed == len(leagues) {
		return nil, errs
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].KickoffAt.Before(out[j].KickoffAt)
	})
	return out, nil
}

func toFixture(league, teamID string, event eventPayload) (fixture.Fixture, bool) {
	matchID := strings.TrimSpace(event.ID)
	if matchID == "" || len(event.Competitions) == 0 {
		return fixture.Fixture{}, false
	}
	competition := event.Competitions[0]

	kickoff, ok := parseEventTime(firstNonEmpty(competition.Date, event.Date))
	if !ok {
		return fixture.Fixture{}, false
	}

	status := event.Status
	if competition.Status != nil && competition.Status.Type.State != "" {
		status = *competition.Status
	}

	item := fixture.Fixture{
		MatchID:    matchID,
		LeagueID:   league,
		LeagueName: LeagueName(league),
		TeamID:     teamID,
		KickoffAt:  kickoff,
		Venue:      strings.TrimSpace(competition.Venue.FullName),
		Status:     mapFixtureStatus(status.Type),
	}
	if event.League != nil && strings.TrimSpace(event.League.Name) != "" && item.LeagueName == league {
		item.LeagueName = strings.TrimSpace(event.League.Name)
	}

	for _, competitor := range competition.Competitors {
		name := firstNonEmpty(competitor.Team.DisplayName, competitor.Team.ShortDisplayName)
		if strings.EqualFold(competitor.HomeAway, "home") {
			item.HomeTeam = name
			item.HomeTeamID = competitorTeamID(competitor)
			item.HomeScore = competitor.Score.Int()
		} else {
			item.AwayTeam = name
			item.AwayTeamID = competitorTeamID(competitor)
			item.AwayScore = competitor.Score.Int()
		}
	}
	if item.Status == fixture.StatusScheduled {
		item.HomeScore = nil
		item.AwayScore = nil
	}
	return item, true
}
