package httpapi

import (
	"time"

	"github.com/riskibarqy/sports-ticker/internal/domain/fixture"
	"github.com/riskibarqy/sports-ticker/internal/domain/match"
	"github.com/riskibarqy/sports-ticker/internal/domain/team"
)

type teamDTO struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	ShortName string   `json:"shortName"`
	Emoji     string   `json:"emoji"`
	ESPNID    string   `json:"espnId,omitempty"`
	Leagues   []string `json:"leagues"`
	Trackable bool     `json:"trackable"`
}

type fixtureDTO struct {
	MatchID    string `json:"matchId"`
	LeagueID   string `json:"leagueId"`
	LeagueName string `json:"leagueName,omitempty"`
	TeamID     string `json:"teamId"`
	HomeTeam   string `json:"homeTeam"`
	AwayTeam   string `json:"awayTeam"`
	KickoffAt  string `json:"kickoffAt"`
	Venue      string `json:"venue,omitempty"`
	Status     string `json:"status"`
	HomeScore  *int   `json:"homeScore,omitempty"`
	AwayScore  *int   `json:"awayScore,omitempty"`
}

type matchStateDTO struct {
	MatchID      string   `json:"matchId"`
	Phase        string   `json:"phase"`
	HomeScore    int      `json:"homeScore"`
	AwayScore    int      `json:"awayScore"`
	SeenEventIDs []string `json:"seenEventIds"`
}

func teamToDTO(v team.Team) teamDTO {
	return teamDTO{
		ID:        v.ID,
		Name:      v.Name,
		ShortName: v.ShortName,
		Emoji:     v.Emoji,
		ESPNID:    v.ESPNID,
		Leagues:   append([]string(nil), v.Leagues...),
		Trackable: v.Trackable(),
	}
}

func fixtureToDTO(v fixture.Fixture) fixtureDTO {
	return fixtureDTO{
		MatchID:    v.MatchID,
		LeagueID:   v.LeagueID,
		LeagueName: v.LeagueName,
		TeamID:     v.TeamID,
		HomeTeam:   v.HomeTeam,
		AwayTeam:   v.AwayTeam,
		KickoffAt:  v.KickoffAt.UTC().Format(time.RFC3339),
		Venue:      v.Venue,
		Status:     v.Status,
		HomeScore:  v.HomeScore,
		AwayScore:  v.AwayScore,
	}
}

func matchStateToDTO(v match.State) matchStateDTO {
	ids := v.SeenEventIDs
	if ids == nil {
		ids = []string{}
	}
	return matchStateDTO{
		MatchID:      v.MatchID,
		Phase:        string(v.Phase),
		HomeScore:    v.HomeScore,
		AwayScore:    v.AwayScore,
		SeenEventIDs: ids,
	}
}
