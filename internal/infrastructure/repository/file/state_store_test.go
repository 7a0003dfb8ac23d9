package file

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/riskibarqy/sports-ticker/internal/domain/match"
)

func TestStateStorePersistsAcrossInstances(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state", "live_state.json")

	store := NewStateStore(path)
	state := match.State{MatchID: "401", Phase: match.PhaseHalftime, HomeScore: 1, AwayScore: 0, SeenEventIDs: []string{"e2", "e1"}}
	if err := store.Put(ctx, state); err != nil {
		t.Fatalf("put: %v", err)
	}

	reopened := NewStateStore(path)
	got, ok, err := reopened.Get(ctx, "401")
	if err != nil || !ok {
		t.Fatalf("expected stored state, ok=%v err=%v", ok, err)
	}
	want := match.State{MatchID: "401", Phase: match.PhaseHalftime, HomeScore: 1, SeenEventIDs: []string{"e1", "e2"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected state: got=%+v want=%+v", got, want)
	}
}

func TestStateStoreWritesDeterministicBytes(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := t.TempDir()
	first := NewStateStore(filepath.Join(dir, "a.json"))
	second := NewStateStore(filepath.Join(dir, "b.json"))

	states := []match.State{
		{MatchID: "2", Phase: match.PhaseFinal, HomeScore: 3, SeenEventIDs: []string{"x", "y"}},
		{MatchID: "1", Phase: match.PhaseScheduled},
	}
	for _, state := range states {
		if err := first.Put(ctx, state); err != nil {
			t.Fatalf("put first: %v", err)
		}
	}
	for i := len(states) - 1; i >= 0; i-- {
		if err := second.Put(ctx, states[i]); err != nil {
			t.Fatalf("put second: %v", err)
		}
	}

	a, err := os.ReadFile(first.Path())
	if err != nil {
		t.Fatalf("read first: %v", err)
	}
	b, err := os.ReadFile(second.Path())
	if err != nil {
		t.Fatalf("read second: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Fatalf("expected identical bytes:\n%s\n---\n%s", a, b)
	}
}

func TestStateStoreFailedWriteKeepsPreviousState(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "live_state.json")
	store := NewStateStore(path)

	original := match.State{MatchID: "401", Phase: match.PhaseInProgress, SeenEventIDs: []string{"e1"}}
	if err := store.Put(ctx, original); err != nil {
		t.Fatalf("put: %v", err)
	}

	// A directory in place of the file makes the rename fail.
	if err := os.Remove(path); err != nil {
		t.Fatalf("remove state file: %v", err)
	}
	if err := os.Mkdir(path, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	if err := store.Put(ctx, match.State{MatchID: "401", Phase: match.PhaseFinal}); err == nil {
		t.Fatalf("expected write failure")
	}
	if err := store.Put(ctx, match.State{MatchID: "402", Phase: match.PhaseScheduled}); err == nil {
		t.Fatalf("expected write failure for new match")
	}

	got, ok, err := store.Get(ctx, "401")
	if err != nil || !ok {
		t.Fatalf("expected previous state, ok=%v err=%v", ok, err)
	}
	if got.Phase != match.PhaseInProgress {
		t.Fatalf("expected previous phase to survive, got %s", got.Phase)
	}
	if _, ok, _ := store.Get(ctx, "402"); ok {
		t.Fatalf("expected failed insert to be rolled back")
	}
}

func TestStateStoreRejectsCorruptFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "live_state.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, _, err := NewStateStore(path).Get(context.Background(), "401"); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestStateStoreReadsLegacyLayout(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "live_state.json")
	legacy := `{"760": {"status": "IN_PROGRESS", "home_score": 1, "away_score": 2, "event_ids": ["b", "a"]}}`
	if err := os.WriteFile(path, []byte(legacy), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, ok, err := NewStateStore(path).Get(context.Background(), "760")
	if err != nil || !ok {
		t.Fatalf("expected state, ok=%v err=%v", ok, err)
	}
	if got.MatchID != "760" || got.AwayScore != 2 || !reflect.DeepEqual(got.SeenEventIDs, []string{"a", "b"}) {
		t.Fatalf("unexpected state: %+v", got)
	}
}
