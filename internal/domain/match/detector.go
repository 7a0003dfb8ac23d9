package match

import (
	"strings"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/sports-ticker/internal/domain/alert"
)

var ErrMalformedSnapshot = crerr.New("malformed snapshot")

// Detect compares a fresh snapshot with the prior state of the same match
// and returns the notifications that became due plus the state to persist.
// A nil prior means the match has never been observed.
//
// Notifications are ordered kickoff first, then event notifications in
// snapshot order, then halftime or fulltime. Detect is pure: the same inputs
// always produce the same outputs, and feeding the returned state back with
// the same snapshot yields no notifications.
func Detect(snapshot Snapshot, prior *State) ([]alert.Notification, State, error) {
	if err := validateSnapshot(snapshot); err != nil {
		return nil, State{}, err
	}

	priorPhase := PhaseUnknown
	var priorIDs []string
	if prior != nil {
		if prior.MatchID != "" && prior.MatchID != snapshot.MatchID {
			return nil, State{}, crerr.Wrapf(ErrMalformedSnapshot, "snapshot match %s does not match stored state %s", snapshot.MatchID, prior.MatchID)
		}
		if prior.Phase.Valid() {
			priorPhase = prior.Phase
		}
		priorIDs = prior.SeenEventIDs
	}

	seen := make(map[string]struct{}, len(priorIDs)+len(snapshot.Events))
	for _, id := range priorIDs {
		seen[id] = struct{}{}
	}

	homeScore, awayScore := *snapshot.HomeScore, *snapshot.AwayScore
	tracked := snapshot.trackedTeam()
	base := alert.Notification{
		MatchID:   snapshot.MatchID,
		LeagueID:  snapshot.LeagueID,
		TeamID:    tracked.ID,
		Home:      snapshot.Home.Name,
		Away:      snapshot.Away.Name,
		HomeScore: homeScore,
		AwayScore: awayScore,
	}

	out := make([]alert.Notification, 0, 2)
	if snapshot.Phase == PhaseInProgress && priorPhase == PhaseScheduled {
		kickoff := base
		kickoff.Kind = alert.KindKickoff
		kickoff.Clock = snapshot.Clock
		out = append(out, kickoff)
	}

	processed := make([]string, 0, len(snapshot.Events))
	for _, event := range snapshot.Events {
		key := EventKey(event)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		processed = append(processed, key)

		kind, ok := ClassifyEvent(event.Type)
		if !ok {
			continue
		}
		item := base
		item.Kind = kind
		item.Clock = strings.TrimSpace(event.Clock)
		item.Player = event.FirstParticipant()
		item.Team = strings.TrimSpace(event.Team.Name)
		item.ForTrackedTeam = sameTeam(tracked, event.Team)
		out = append(out, item)
	}

	switch {
	case snapshot.Phase == PhaseHalftime && priorPhase != PhaseHalftime && priorPhase != PhaseFinal:
		halftime := base
		halftime.Kind = alert.KindHalftime
		out = append(out, halftime)
	case snapshot.Phase == PhaseFinal && priorPhase != PhaseFinal && priorPhase != PhaseUnknown:
		fulltime := base
		fulltime.Kind = alert.KindFulltime
		fulltime.Result = classifyResult(snapshot.side(), homeScore, awayScore)
		out = append(out, fulltime)
	}

	ids := make([]string, 0, len(priorIDs)+len(processed))
	ids = append(ids, priorIDs...)
	ids = append(ids, processed...)

	phase := snapshot.Phase
	if priorPhase == PhaseFinal {
		// A finished match stays finished even if the provider flaps back to live.
		phase = PhaseFinal
	}
	next := State{
		MatchID:      snapshot.MatchID,
		Phase:        phase,
		HomeScore:    homeScore,
		AwayScore:    awayScore,
		SeenEventIDs: normalizeIDs(ids),
	}
	return out, next, nil
}

// ClassifyEvent maps a provider event type tag to a notification kind.
// Goal subtypes are checked own goal first, then penalty, then plain goal.
func ClassifyEvent(eventType string) (alert.Kind, bool) {
	value := strings.ToLower(strings.TrimSpace(eventType))
	if value == "" {
		return "", false
	}

	switch {
	case strings.Contains(value, "disallowed"), strings.Contains(value, "no goal"):
		return "", false
	case strings.Contains(value, "own goal"):
		return alert.KindOwnGoal, true
	case strings.Contains(value, "penalty"):
		if strings.Contains(value, "miss") || strings.Contains(value, "saved") {
			return "", false
		}
		if strings.Contains(value, "goal") || strings.Contains(value, "scored") {
			return alert.KindPenalty, true
		}
		return "", false
	case strings.Contains(value, "goal"):
		return alert.KindGoal, true
	case strings.Contains(value, "red card"), strings.Contains(value, "second yellow"), strings.Contains(value, "yellow-red"), value == "red":
		return alert.KindRedCard, true
	default:
		return "", false
	}
}

func validateSnapshot(snapshot Snapshot) error {
	matchID := strings.TrimSpace(snapshot.MatchID)
	if matchID == "" {
		return crerr.Wrap(ErrMalformedSnapshot, "match id is missing")
	}
	if !snapshot.Phase.Valid() {
		if strings.TrimSpace(string(snapshot.Phase)) == "" {
			return crerr.Wrapf(ErrMalformedSnapshot, "match %s: phase is missing", matchID)
		}
		return crerr.Wrapf(ErrMalformedSnapshot, "match %s: unsupported phase %q", matchID, snapshot.Phase)
	}
	if snapshot.HomeScore == nil || snapshot.AwayScore == nil {
		return crerr.Wrapf(ErrMalformedSnapshot, "match %s: score is missing", matchID)
	}
	if *snapshot.HomeScore < 0 || *snapshot.AwayScore < 0 {
		return crerr.Wrapf(ErrMalformedSnapshot, "match %s: negative score %d-%d", matchID, *snapshot.HomeScore, *snapshot.AwayScore)
	}
	switch snapshot.TrackedSide {
	case "", SideHome, SideAway:
	default:
		return crerr.Wrapf(ErrMalformedSnapshot, "match %s: unsupported tracked side %q", matchID, snapshot.TrackedSide)
	}
	return nil
}

// side defaults to home when the fetcher could not tell.
func (s Snapshot) side() Side {
	if s.TrackedSide == SideAway {
		return SideAway
	}
	return SideHome
}

func (s Snapshot) trackedTeam() TeamRef {
	if s.side() == SideAway {
		return s.Away
	}
	return s.Home
}

func classifyResult(side Side, homeScore, awayScore int) alert.Result {
	ours, theirs := homeScore, awayScore
	if side == SideAway {
		ours, theirs = awayScore, homeScore
	}
	switch {
	case ours > theirs:
		return alert.ResultWin
	case ours < theirs:
		return alert.ResultLoss
	default:
		return alert.ResultDraw
	}
}

func sameTeam(tracked, candidate TeamRef) bool {
	trackedID, candidateID := strings.TrimSpace(tracked.ID), strings.TrimSpace(candidate.ID)
	if trackedID != "" && candidateID != "" {
		return trackedID == candidateID
	}
	trackedName := strings.ToLower(strings.TrimSpace(tracked.Name))
	candidateName := strings.ToLower(strings.TrimSpace(candidate.Name))
	if trackedName == "" || candidateName == "" {
		return false
	}
	return strings.Contains(candidateName, trackedName)
}
