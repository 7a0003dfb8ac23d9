package match

import (
	"sort"
	"strings"
)

// Phase is the coarse lifecycle stage of a match.
type Phase string

const (
	// PhaseUnknown marks the absence of an observed phase. It never appears
	// in a snapshot; Detect uses it as the prior phase on cold start.
	PhaseUnknown    Phase = "UNKNOWN"
	PhaseScheduled  Phase = "SCHEDULED"
	PhaseInProgress Phase = "IN_PROGRESS"
	PhaseHalftime   Phase = "HALFTIME"
	PhaseFinal      Phase = "FINAL"
)

func (p Phase) Valid() bool {
	switch p {
	case PhaseScheduled, PhaseInProgress, PhaseHalftime, PhaseFinal:
		return true
	default:
		return false
	}
}

func ParsePhase(raw string) Phase {
	value := Phase(strings.ToUpper(strings.TrimSpace(raw)))
	if value.Valid() {
		return value
	}
	return PhaseUnknown
}

// Side is the home/away role of a team inside one match.
type Side string

const (
	SideHome Side = "home"
	SideAway Side = "away"
)

type TeamRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// RawEvent is one entry of a snapshot's event log as reported upstream.
type RawEvent struct {
	ID           string
	Type         string
	Clock        string
	ClockValue   float64
	Team         TeamRef
	Participants []string
}

func (e RawEvent) FirstParticipant() string {
	for _, name := range e.Participants {
		if name = strings.TrimSpace(name); name != "" {
			return name
		}
	}
	return ""
}

// Snapshot is one fetched view of a match. HomeScore and AwayScore are nil
// when the provider omitted them.
type Snapshot struct {
	MatchID     string
	LeagueID    string
	Phase       Phase
	Clock       string
	HomeScore   *int
	AwayScore   *int
	Home        TeamRef
	Away        TeamRef
	TrackedSide Side
	Events      []RawEvent
}

// State is the persisted summary of the last processed snapshot of a match.
type State struct {
	MatchID      string   `json:"match_id"`
	Phase        Phase    `json:"status"`
	HomeScore    int      `json:"home_score"`
	AwayScore    int      `json:"away_score"`
	SeenEventIDs []string `json:"event_ids"`
}

// Clone returns a deep copy with SeenEventIDs sorted and de-duplicated.
func (s State) Clone() State {
	out := s
	out.SeenEventIDs = normalizeIDs(s.SeenEventIDs)
	return out
}

func normalizeIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	out = append(out, ids...)
	sort.Strings(out)

	unique := out[:0]
	for i, id := range out {
		if i > 0 && id == out[i-1] {
			continue
		}
		unique = append(unique, id)
	}
	return unique
}
