package espn

import (
	"context"
	"net/url"
	"strings"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/sports-ticker/internal/domain/fixture"
	"github.com/riskibarqy/sports-ticker/internal/domain/match"
	"github.com/riskibarqy/sports-ticker/internal/domain/team"
	"github.com/sourcegraph/conc/pool"
)

type leagueBoard struct {
	league string
	board  scoreboardEnvelope
	err    error
}

// FetchSnapshot finds the match the team is playing today across its leagues,
// in configured order, and loads its key events. found is false when no
// scoreboard lists the team.
func (c *Client) FetchSnapshot(ctx context.Context, tracked team.Team) (match.Snapshot, bool, error) {
	espnID := strings.TrimSpace(tracked.ESPNID)
	if espnID == "" {
		return match.Snapshot{}, false, crerr.Newf("team %s has no espn id", tracked.ID)
	}

	var errs error
	for _, board := range c.scoreboardsFor(ctx, normalizeLeagues(tracked.Leagues)) {
		if board.err != nil {
			errs = crerr.CombineErrors(errs, crerr.Wrapf(board.err, "scoreboard league=%s", board.league))
			continue
		}

		event, competition, ok := findTeamEvent(board.board.Events, espnID)
		if !ok {
			continue
		}

		var summary summaryEnvelope
		query := url.Values{}
		query.Set("event", event.ID)
		if err := c.doJSON(ctx, "/soccer/"+board.league+"/summary", query, &summary); err != nil {
			return match.Snapshot{}, false, crerr.Wrapf(err, "summary league=%s event=%s", board.league, event.ID)
		}

		return buildSnapshot(board.league, event, competition, espnID, summary.KeyEvents), true, nil
	}

	if errs != nil {
		return match.Snapshot{}, false, errs
	}
	return match.Snapshot{}, false, nil
}

// scoreboardsFor loads every league's scoreboard concurrently. Results keep
// the order of leagues.
func (c *Client) scoreboardsFor(ctx context.Context, leagues []string) []leagueBoard {
	out := make([]leagueBoard, len(leagues))
	if len(leagues) == 0 {
		return out
	}

	workers := pool.New().WithMaxGoroutines(len(leagues))
	for idx, league := range leagues {
		idx, league := idx, league
		workers.Go(func() {
			board, err := c.scoreboard(ctx, league)
			out[idx] = leagueBoard{league: league, board: board, err: err}
		})
	}
	workers.Wait()

	stats := c.scoreboards.Stats()
	c.logger.DebugContext(ctx, "scoreboards fetched", "leagues", len(leagues), "cache_hits", stats.Hits, "cache_misses", stats.Misses)
	return out
}

// scoreboard is cached briefly so teams sharing a league cost one request per cycle.
func (c *Client) scoreboard(ctx context.Context, league string) (scoreboardEnvelope, error) {
	return c.scoreboards.GetOrLoad(ctx, league, func(ctx context.Context) (scoreboardEnvelope, error) {
		var board scoreboardEnvelope
		if err := c.doJSON(ctx, "/soccer/"+league+"/scoreboard", nil, &board); err != nil {
			return scoreboardEnvelope{}, err
		}
		return board, nil
	})
}

func findTeamEvent(events []eventPayload, espnID string) (eventPayload, competitionPayload, bool) {
	for _, event := range events {
		for _, competition := range event.Competitions {
			for _, competitor := range competition.Competitors {
				if competitorTeamID(competitor) == espnID {
					return event, competition, true
				}
			}
		}
	}
	return eventPayload{}, competitionPayload{}, false
}

func competitorTeamID(competitor competitorPayload) string {
	return firstNonEmpty(competitor.Team.ID, competitor.ID)
}

func buildSnapshot(league string, event eventPayload, competition competitionPayload, espnID string, keyEvents []keyEventPayload) match.Snapshot {
	status := event.Status
	if competition.Status != nil && competition.Status.Type.State != "" {
		status = *competition.Status
	}
	phase := mapPhase(status.Type)

	snapshot := match.Snapshot{
		MatchID:  strings.TrimSpace(event.ID),
		LeagueID: league,
		Phase:    phase,
		Clock:    strings.TrimSpace(status.DisplayClock),
		Events:   make([]match.RawEvent, 0, len(keyEvents)),
	}

	for _, competitor := range competition.Competitors {
		ref := match.TeamRef{
			ID:   competitorTeamID(competitor),
			Name: firstNonEmpty(competitor.Team.DisplayName, competitor.Team.ShortDisplayName),
		}
		goals := competitor.Score.Int()
		if goals == nil && phase == match.PhaseScheduled {
			zero := 0
			goals = &zero
		}

		side := match.SideAway
		if strings.EqualFold(competitor.HomeAway, string(match.SideHome)) {
			side = match.SideHome
		}
		if side == match.SideHome {
			snapshot.Home = ref
			snapshot.HomeScore = goals
		} else {
			snapshot.Away = ref
			snapshot.AwayScore = goals
		}
		if ref.ID == espnID {
			snapshot.TrackedSide = side
		}
	}

	for _, item := range keyEvents {
		snapshot.Events = append(snapshot.Events, toRawEvent(item))
	}
	return snapshot
}

func toRawEvent(item keyEventPayload) match.RawEvent {
	participants := make([]string, 0, len(item.Participants))
	for _, participant := range item.Participants {
		if name := strings.TrimSpace(participant.Athlete.DisplayName); name != "" {
			participants = append(participants, name)
		}
	}
	return match.RawEvent{
		ID:         strings.TrimSpace(item.ID),
		Type:       firstNonEmpty(item.Type.Text, item.Type.Type),
		Clock:      strings.TrimSpace(item.Clock.DisplayValue),
		ClockValue: item.Clock.Value,
		Team: match.TeamRef{
			ID:   strings.TrimSpace(item.Team.ID),
			Name: firstNonEmpty(item.Team.DisplayName, item.Team.ShortDisplayName),
		},
		Participants: participants,
	}
}

// mapPhase folds ESPN's status into the match lifecycle. An unrecognised
// state yields the empty phase, which the detector rejects as malformed.
func mapPhase(status statusTypePayload) match.Phase {
	switch strings.ToLower(strings.TrimSpace(status.State)) {
	case "pre":
		return match.PhaseScheduled
	case "in":
		if isHalftime(status) {
			return match.PhaseHalftime
		}
		return match.PhaseInProgress
	case "post":
		if isCalledOff(status) {
			return match.PhaseScheduled
		}
		return match.PhaseFinal
	default:
		return ""
	}
}

// mapFixtureStatus is the schedule view of the same status.
func mapFixtureStatus(status statusTypePayload) string {
	switch strings.ToLower(strings.TrimSpace(status.State)) {
	case "in":
		if isHalftime(status) {
			return fixture.StatusHalftime
		}
		return fixture.StatusLive
	case "post":
		if isCalledOff(status) {
			text := statusText(status)
			if strings.Contains(text, "postpone") {
				return fixture.StatusPostponed
			}
			return fixture.StatusCancelled
		}
		return fixture.StatusFinished
	default:
		return fixture.StatusScheduled
	}
}

func isHalftime(status statusTypePayload) bool {
	text := statusText(status)
	return strings.Contains(text, "halftime") || strings.Contains(text, "half time")
}

func isCalledOff(status statusTypePayload) bool {
	text := statusText(status)
	for _, marker := range []string{"postpone", "cancel", "abandon", "suspend"} {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}

func statusText(status statusTypePayload) string {
	return strings.ToLower(strings.Join([]string{status.Name, status.Description, status.Detail}, " "))
}
