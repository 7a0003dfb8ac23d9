package fixture

import (
	"strings"
	"time"
)

const (
	StatusScheduled = "SCHEDULED"
	StatusLive      = "LIVE"
	StatusHalftime  = "HALFTIME"
	StatusFinished  = "FINISHED"
	StatusCancelled = "CANCELLED"
	StatusPostponed = "POSTPONED"
)

// Fixture is one upcoming or recent match of a tracked team.
type Fixture struct {
	MatchID    string     `json:"match_id"`
	LeagueID   string     `json:"league_id"`
	LeagueName string     `json:"league_name"`
	TeamID     string     `json:"team_id"`
	HomeTeam   string     `json:"home_team"`
	AwayTeam   string     `json:"away_team"`
	HomeTeamID string     `json:"home_team_id,omitempty"`
	AwayTeamID string     `json:"away_team_id,omitempty"`
	KickoffAt  time.Time  `json:"kickoff_at"`
	Venue      string     `json:"venue,omitempty"`
	Status     string     `json:"status"`
	HomeScore  *int       `json:"home_score,omitempty"`
	AwayScore  *int       `json:"away_score,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

func NormalizeStatus(value string) string {
	status := strings.ToUpper(strings.TrimSpace(value))
	if status == "" {
		return StatusScheduled
	}
	return status
}

func IsLiveStatus(status string) bool {
	switch NormalizeStatus(status) {
	case StatusLive, StatusHalftime, "IN_PROGRESS", "IN_PLAY", "HT", "1H", "2H", "ET":
		return true
	default:
		return false
	}
}

func IsFinishedStatus(status string) bool {
	switch NormalizeStatus(status) {
	case StatusFinished, "FINAL", "FT", "AET", "PEN":
		return true
	default:
		return false
	}
}

func IsCancelledLikeStatus(status string) bool {
	switch NormalizeStatus(status) {
	case StatusCancelled, StatusPostponed, "CANCELED", "ABANDONED", "SUSPENDED":
		return true
	default:
		return false
	}
}

// IsUpcoming reports whether the fixture still has to be played at or after now.
func (f Fixture) IsUpcoming(now time.Time) bool {
	if IsFinishedStatus(f.Status) || IsCancelledLikeStatus(f.Status) {
		return false
	}
	return IsLiveStatus(f.Status) || !f.KickoffAt.Before(now)
}
