package match

import (
	"errors"
	"reflect"
	"testing"

	"github.com/riskibarqy/sports-ticker/internal/domain/alert"
)

func intPtr(v int) *int {
	return &v
}

func baseSnapshot(phase Phase, home, away int, events ...RawEvent) Snapshot {
	return Snapshot{
		MatchID:     "401",
		LeagueID:    "eng.1",
		Phase:       phase,
		HomeScore:   intPtr(home),
		AwayScore:   intPtr(away),
		Home:        TeamRef{ID: "359", Name: "Arsenal"},
		Away:        TeamRef{ID: "363", Name: "Chelsea"},
		TrackedSide: SideHome,
		Events:      events,
	}
}

func kinds(items []alert.Notification) []alert.Kind {
	out := make([]alert.Kind, 0, len(items))
	for _, item := range items {
		out = append(out, item.Kind)
	}
	return out
}

func TestDetectIsIdempotent(t *testing.T) {
	t.Parallel()

	snapshot := baseSnapshot(PhaseInProgress, 1, 0,
		RawEvent{ID: "e1", Type: "Goal", Clock: "12'", Team: TeamRef{ID: "359", Name: "Arsenal"}, Participants: []string{"Saka"}},
		RawEvent{Type: "Yellow Card", Clock: "30'", Team: TeamRef{ID: "363", Name: "Chelsea"}, Participants: []string{"Caicedo"}},
	)
	prior := &State{MatchID: "401", Phase: PhaseScheduled}

	first, next, err := Detect(snapshot, prior)
	if err != nil {
		t.Fatalf("first detect: %v", err)
	}
	if got, want := kinds(first), []alert.Kind{alert.KindKickoff, alert.KindGoal}; !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected first kinds: got=%v want=%v", got, want)
	}

	second, again, err := Detect(snapshot, &next)
	if err != nil {
		t.Fatalf("second detect: %v", err)
	}
	if len(second) != 0 {
		t.Fatalf("expected no notifications on replay, got %v", kinds(second))
	}
	if !reflect.DeepEqual(again, next) {
		t.Fatalf("expected identical state on replay: got=%+v want=%+v", again, next)
	}
}

func TestDetectColdStartFinal(t *testing.T) {
	t.Parallel()

	snapshot := baseSnapshot(PhaseFinal, 2, 1,
		RawEvent{ID: "g1", Type: "Goal", Clock: "10'", Team: TeamRef{ID: "359"}, Participants: []string{"Saka"}},
		RawEvent{ID: "g2", Type: "Goal", Clock: "50'", Team: TeamRef{ID: "363"}, Participants: []string{"Palmer"}},
		RawEvent{ID: "g3", Type: "Goal", Clock: "88'", Team: TeamRef{ID: "359"}, Participants: []string{"Rice"}},
	)

	got, next, err := Detect(snapshot, nil)
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	want := []alert.Kind{alert.KindGoal, alert.KindGoal, alert.KindGoal}
	if !reflect.DeepEqual(kinds(got), want) {
		t.Fatalf("unexpected kinds: got=%v want=%v", kinds(got), want)
	}
	if next.Phase != PhaseFinal || next.HomeScore != 2 || next.AwayScore != 1 {
		t.Fatalf("unexpected next state: %+v", next)
	}
	if !reflect.DeepEqual(next.SeenEventIDs, []string{"g1", "g2", "g3"}) {
		t.Fatalf("unexpected seen ids: %v", next.SeenEventIDs)
	}
}

func TestDetectColdStartHalftime(t *testing.T) {
	t.Parallel()

	items, next, err := Detect(baseSnapshot(PhaseHalftime, 0, 0), nil)
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if got, want := kinds(items), []alert.Kind{alert.KindHalftime}; !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected kinds: got=%v want=%v", got, want)
	}
	if next.Phase != PhaseHalftime {
		t.Fatalf("unexpected next phase: %s", next.Phase)
	}

	items, _, err = Detect(baseSnapshot(PhaseHalftime, 0, 0), &next)
	if err != nil {
		t.Fatalf("second detect: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected halftime once, got %v", kinds(items))
	}
}

func TestDetectFinalIsTerminal(t *testing.T) {
	t.Parallel()

	prior := &State{MatchID: "401", Phase: PhaseInProgress}
	counts := map[alert.Kind]int{}
	for _, phase := range []Phase{PhaseFinal, PhaseInProgress, PhaseHalftime, PhaseFinal} {
		items, next, err := Detect(baseSnapshot(phase, 2, 0), prior)
		if err != nil {
			t.Fatalf("detect phase %s: %v", phase, err)
		}
		if next.Phase != PhaseFinal {
			t.Fatalf("phase %s: expected stored phase to stay final, got %s", phase, next.Phase)
		}
		for _, item := range items {
			counts[item.Kind]++
		}
		state := next
		prior = &state
	}

	if want := map[alert.Kind]int{alert.KindFulltime: 1}; !reflect.DeepEqual(counts, want) {
		t.Fatalf("unexpected phase alerts after flapping: got=%v want=%v", counts, want)
	}
}

func TestDetectKickoffFiresOnce(t *testing.T) {
	t.Parallel()

	sequence := []Phase{PhaseScheduled, PhaseInProgress, PhaseInProgress, PhaseHalftime, PhaseInProgress, PhaseFinal}
	counts := map[alert.Kind]int{}

	var prior *State
	for _, phase := range sequence {
		items, next, err := Detect(baseSnapshot(phase, 0, 0), prior)
		if err != nil {
			t.Fatalf("detect phase %s: %v", phase, err)
		}
		for _, item := range items {
			counts[item.Kind]++
		}
		state := next
		prior = &state
	}

	want := map[alert.Kind]int{alert.KindKickoff: 1, alert.KindHalftime: 1, alert.KindFulltime: 1}
	if !reflect.DeepEqual(counts, want) {
		t.Fatalf("unexpected phase alerts: got=%v want=%v", counts, want)
	}
}

func TestDetectNewEventWithRealID(t *testing.T) {
	t.Parallel()

	prior := &State{MatchID: "401", Phase: PhaseInProgress, HomeScore: 1, SeenEventIDs: []string{"e1"}}
	snapshot := baseSnapshot(PhaseInProgress, 1, 1,
		RawEvent{ID: "e1", Type: "Goal", Clock: "12'", Team: TeamRef{ID: "359"}, Participants: []string{"Saka"}},
		RawEvent{ID: "e2", Type: "Goal", Clock: "67'", Team: TeamRef{ID: "363", Name: "Chelsea"}, Participants: []string{"Palmer"}},
	)

	got, next, err := Detect(snapshot, prior)
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected exactly one notification, got %d", len(got))
	}
	goal := got[0]
	if goal.Kind != alert.KindGoal || goal.Player != "Palmer" || goal.Clock != "67'" || goal.Team != "Chelsea" {
		t.Fatalf("unexpected goal notification: %+v", goal)
	}
	if goal.ForTrackedTeam {
		t.Fatalf("expected opponent goal, got tracked team goal")
	}
	if goal.HomeScore != 1 || goal.AwayScore != 1 {
		t.Fatalf("expected snapshot score on notification, got %d-%d", goal.HomeScore, goal.AwayScore)
	}
	if !reflect.DeepEqual(next.SeenEventIDs, []string{"e1", "e2"}) {
		t.Fatalf("unexpected seen ids: %v", next.SeenEventIDs)
	}
}

func TestDetectPolicyDoesNotAffectState(t *testing.T) {
	t.Parallel()

	goalsOff, _ := alert.NewPolicy(map[string]bool{"goals": false})
	prior := &State{MatchID: "401", Phase: PhaseInProgress}
	snapshot := baseSnapshot(PhaseInProgress, 1, 0,
		RawEvent{ID: "e1", Type: "Goal", Clock: "5'", Team: TeamRef{ID: "359"}},
	)

	items, next, err := Detect(snapshot, prior)
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if filtered := goalsOff.Filter(items); len(filtered) != 0 {
		t.Fatalf("expected goal to be filtered, got %v", kinds(filtered))
	}

	items, _, err = Detect(snapshot, &next)
	if err != nil {
		t.Fatalf("second detect: %v", err)
	}
	if filtered := alert.DefaultPolicy().Filter(items); len(filtered) != 0 {
		t.Fatalf("expected no retroactive goal after enabling goals, got %v", kinds(filtered))
	}
}

func TestDetectRejectsMalformedSnapshot(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		snapshot Snapshot
		prior    *State
	}{
		{name: "missing phase", snapshot: baseSnapshot("", 0, 0)},
		{name: "unknown phase", snapshot: baseSnapshot(PhaseUnknown, 0, 0)},
		{name: "missing match id", snapshot: func() Snapshot { s := baseSnapshot(PhaseInProgress, 0, 0); s.MatchID = " "; return s }()},
		{name: "missing home score", snapshot: func() Snapshot { s := baseSnapshot(PhaseInProgress, 0, 0); s.HomeScore = nil; return s }()},
		{name: "negative away score", snapshot: baseSnapshot(PhaseInProgress, 0, -1)},
		{name: "prior for other match", snapshot: baseSnapshot(PhaseInProgress, 0, 0), prior: &State{MatchID: "999", Phase: PhaseScheduled}},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			items, next, err := Detect(tc.snapshot, tc.prior)
			if !errors.Is(err, ErrMalformedSnapshot) {
				t.Fatalf("expected ErrMalformedSnapshot, got %v", err)
			}
			if items != nil || !reflect.DeepEqual(next, State{}) {
				t.Fatalf("expected no partial output, got items=%v next=%+v", items, next)
			}
		})
	}
}

func TestDetectFulltimeResult(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		side   Side
		home   int
		away   int
		result alert.Result
	}{
		{name: "home win", side: SideHome, home: 2, away: 1, result: alert.ResultWin},
		{name: "draw", side: SideHome, home: 1, away: 1, result: alert.ResultDraw},
		{name: "home loss", side: SideHome, home: 0, away: 3, result: alert.ResultLoss},
		{name: "away win", side: SideAway, home: 0, away: 1, result: alert.ResultWin},
		{name: "away loss", side: SideAway, home: 4, away: 2, result: alert.ResultLoss},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			snapshot := baseSnapshot(PhaseFinal, tc.home, tc.away)
			snapshot.TrackedSide = tc.side
			items, _, err := Detect(snapshot, &State{MatchID: "401", Phase: PhaseInProgress})
			if err != nil {
				t.Fatalf("detect: %v", err)
			}
			if len(items) != 1 || items[0].Kind != alert.KindFulltime {
				t.Fatalf("expected single fulltime notification, got %v", kinds(items))
			}
			if items[0].Result != tc.result {
				t.Fatalf("unexpected result: got=%s want=%s", items[0].Result, tc.result)
			}
		})
	}
}

func TestDetectOrderingAndDuplicates(t *testing.T) {
	t.Parallel()

	snapshot := baseSnapshot(PhaseHalftime, 1, 1,
		RawEvent{ID: "a", Type: "Own Goal", Clock: "20'", Team: TeamRef{ID: "363", Name: "Chelsea"}, Participants: []string{"Colwill"}},
		RawEvent{ID: "a", Type: "Own Goal", Clock: "20'", Team: TeamRef{ID: "363", Name: "Chelsea"}, Participants: []string{"Colwill"}},
		RawEvent{ID: "b", Type: "Red Card", Clock: "33'", Team: TeamRef{ID: "359", Name: "Arsenal"}, Participants: []string{"White"}},
		RawEvent{ID: "c", Type: "Penalty - Scored", Clock: "45'+2'", Team: TeamRef{ID: "363", Name: "Chelsea"}, Participants: []string{"Palmer"}},
	)

	items, next, err := Detect(snapshot, &State{MatchID: "401", Phase: PhaseInProgress})
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	want := []alert.Kind{alert.KindOwnGoal, alert.KindRedCard, alert.KindPenalty, alert.KindHalftime}
	if !reflect.DeepEqual(kinds(items), want) {
		t.Fatalf("unexpected order: got=%v want=%v", kinds(items), want)
	}
	if !items[1].ForTrackedTeam {
		t.Fatalf("expected red card to belong to tracked team")
	}
	if !reflect.DeepEqual(next.SeenEventIDs, []string{"a", "b", "c"}) {
		t.Fatalf("unexpected seen ids: %v", next.SeenEventIDs)
	}
}

func TestDetectSyntheticKeysAreStable(t *testing.T) {
	t.Parallel()

	event := RawEvent{Type: "Goal", Clock: "71'", Team: TeamRef{Name: "Arsenal"}, Participants: []string{"Havertz"}}
	snapshot := baseSnapshot(PhaseInProgress, 1, 0, event)

	items, next, err := Detect(snapshot, &State{MatchID: "401", Phase: PhaseInProgress})
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if len(items) != 1 || !items[0].ForTrackedTeam {
		t.Fatalf("expected one tracked goal, got %+v", items)
	}
	if len(next.SeenEventIDs) != 1 || !IsSyntheticKey(next.SeenEventIDs[0]) {
		t.Fatalf("expected a synthetic key, got %v", next.SeenEventIDs)
	}

	items, _, err = Detect(snapshot, &next)
	if err != nil {
		t.Fatalf("second detect: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected synthetic key to suppress replay, got %v", kinds(items))
	}
}

func TestDetectSyntheticKeysKeepSameClockEventsApart(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		events []RawEvent
		want   []alert.Kind
	}{
		{
			name: "different types",
			events: []RawEvent{
				{Type: "Goal", Clock: "45'", Team: TeamRef{ID: "359", Name: "Arsenal"}, Participants: []string{"Saka"}},
				{Type: "Red Card", Clock: "45'", Team: TeamRef{ID: "359", Name: "Arsenal"}, Participants: []string{"White"}},
			},
			want: []alert.Kind{alert.KindGoal, alert.KindRedCard},
		},
		{
			name: "same type different scorer",
			events: []RawEvent{
				{Type: "Goal", Clock: "45'", Team: TeamRef{ID: "359", Name: "Arsenal"}, Participants: []string{"Saka"}},
				{Type: "Goal", Clock: "45'", Team: TeamRef{ID: "359", Name: "Arsenal"}, Participants: []string{"Odegaard"}},
			},
			want: []alert.Kind{alert.KindGoal, alert.KindGoal},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			snapshot := baseSnapshot(PhaseInProgress, 1, 0, tc.events...)
			items, next, err := Detect(snapshot, &State{MatchID: "401", Phase: PhaseInProgress})
			if err != nil {
				t.Fatalf("detect: %v", err)
			}
			if !reflect.DeepEqual(kinds(items), tc.want) {
				t.Fatalf("unexpected kinds: got=%v want=%v", kinds(items), tc.want)
			}
			if items[0].Player == items[1].Player {
				t.Fatalf("expected both players to be reported, got %q twice", items[0].Player)
			}

			first, second := EventKey(tc.events[0]), EventKey(tc.events[1])
			if first == second || !IsSyntheticKey(first) || !IsSyntheticKey(second) {
				t.Fatalf("expected two distinct synthetic keys, got %q and %q", first, second)
			}
			if len(next.SeenEventIDs) != 2 {
				t.Fatalf("expected both keys recorded, got %v", next.SeenEventIDs)
			}

			replay, _, err := Detect(snapshot, &next)
			if err != nil {
				t.Fatalf("replay detect: %v", err)
			}
			if len(replay) != 0 {
				t.Fatalf("expected no notifications on replay, got %v", kinds(replay))
			}
		})
	}
}

func TestClassifyEvent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		kind alert.Kind
		ok   bool
	}{
		{raw: "Goal", kind: alert.KindGoal, ok: true},
		{raw: "Goal - Header", kind: alert.KindGoal, ok: true},
		{raw: "Own Goal", kind: alert.KindOwnGoal, ok: true},
		{raw: "Penalty - Scored", kind: alert.KindPenalty, ok: true},
		{raw: "Penalty Goal", kind: alert.KindPenalty, ok: true},
		{raw: "Penalty - Missed", ok: false},
		{raw: "Penalty - Saved", ok: false},
		{raw: "Red Card", kind: alert.KindRedCard, ok: true},
		{raw: "Second Yellow Card", kind: alert.KindRedCard, ok: true},
		{raw: "Yellow Card", ok: false},
		{raw: "Goal Disallowed", ok: false},
		{raw: "Substitution", ok: false},
		{raw: " ", ok: false},
	}

	for _, tc := range tests {
		kind, ok := ClassifyEvent(tc.raw)
		if ok != tc.ok || kind != tc.kind {
			t.Fatalf("classify %q: got=(%s,%v) want=(%s,%v)", tc.raw, kind, ok, tc.kind, tc.ok)
		}
	}
}
