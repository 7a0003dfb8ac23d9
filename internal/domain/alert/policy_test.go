package alert

import (
	"reflect"
	"testing"
)

func TestNewPolicy(t *testing.T) {
	t.Parallel()

	policy, unknown := NewPolicy(map[string]bool{
		"goals":      false,
		"Red_Cards":  true,
		"penalties":  false,
		"substitute": true,
	})

	if !reflect.DeepEqual(unknown, []string{"penalties", "substitute"}) {
		t.Fatalf("unexpected unknown keys: %v", unknown)
	}
	if policy.Allow(CategoryGoals) {
		t.Fatalf("expected goals to be disabled")
	}
	for _, category := range []Category{CategoryKickoff, CategoryRedCards, CategoryHalftime, CategoryFulltime} {
		if !policy.Allow(category) {
			t.Fatalf("expected %s to keep its default", category)
		}
	}
	if policy.Allow("") {
		t.Fatalf("expected empty category to be rejected")
	}
}

func TestPolicyFilterKeepsOrder(t *testing.T) {
	t.Parallel()

	policy, _ := NewPolicy(map[string]bool{"red_cards": false, "halftime": false})
	items := []Notification{
		{Kind: KindKickoff},
		{Kind: KindRedCard},
		{Kind: KindOwnGoal},
		{Kind: KindPenalty},
		{Kind: KindHalftime},
		{Kind: KindFulltime},
	}

	got := policy.Filter(items)
	want := []Kind{KindKickoff, KindOwnGoal, KindPenalty, KindFulltime}
	if len(got) != len(want) {
		t.Fatalf("unexpected filtered size: got=%d want=%d", len(got), len(want))
	}
	for i := range want {
		if got[i].Kind != want[i] {
			t.Fatalf("unexpected kind at %d: got=%s want=%s", i, got[i].Kind, want[i])
		}
	}
}

func TestPolicyToggles(t *testing.T) {
	t.Parallel()

	if got := DefaultPolicy().Toggles(); len(got) != len(AllCategories) {
		t.Fatalf("unexpected toggles: %v", got)
	}
	policy, _ := NewPolicy(map[string]bool{"kickoff": false})
	toggles := policy.Toggles()
	if toggles["kickoff"] || !toggles["goals"] {
		t.Fatalf("unexpected toggles: %v", toggles)
	}
}
