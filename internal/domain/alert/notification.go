package alert

// Kind tags one variant of Notification.
type Kind string

const (
	KindKickoff  Kind = "KICKOFF"
	KindGoal     Kind = "GOAL"
	KindOwnGoal  Kind = "OWN_GOAL"
	KindPenalty  Kind = "PENALTY"
	KindRedCard  Kind = "RED_CARD"
	KindHalftime Kind = "HALFTIME"
	KindFulltime Kind = "FULLTIME"
)

// Result classifies a finished match from the tracked team's point of view.
type Result string

const (
	ResultWin  Result = "WIN"
	ResultLoss Result = "LOSS"
	ResultDraw Result = "DRAW"
)

// Notification is one detected occurrence worth alerting on. It carries
// everything a formatter needs and is never persisted.
type Notification struct {
	Kind      Kind   `json:"kind"`
	MatchID   string `json:"match_id"`
	LeagueID  string `json:"league_id,omitempty"`
	TeamID    string `json:"team_id,omitempty"`
	Home      string `json:"home"`
	Away      string `json:"away"`
	HomeScore int    `json:"home_score"`
	AwayScore int    `json:"away_score"`
	Clock     string `json:"clock,omitempty"`
	Player    string `json:"player,omitempty"`
	Team      string `json:"team,omitempty"`
	// ForTrackedTeam is set on event notifications raised by the tracked side.
	ForTrackedTeam bool   `json:"for_tracked_team,omitempty"`
	Result         Result `json:"result,omitempty"`
}

// Category maps a notification kind to the toggle that controls it.
func (k Kind) Category() Category {
	switch k {
	case KindKickoff:
		return CategoryKickoff
	case KindGoal, KindOwnGoal, KindPenalty:
		return CategoryGoals
	case KindRedCard:
		return CategoryRedCards
	case KindHalftime:
		return CategoryHalftime
	case KindFulltime:
		return CategoryFulltime
	default:
		return ""
	}
}

func (k Kind) IsPhase() bool {
	return k == KindKickoff || k == KindHalftime || k == KindFulltime
}
