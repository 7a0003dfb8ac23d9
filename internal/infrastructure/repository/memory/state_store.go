package memory

import (
	"context"
	"strings"
	"sync"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/sports-ticker/internal/domain/match"
)

// StateStore keeps match state in process memory. State is lost on restart,
// so a restarted ticker treats every match as a cold start.
type StateStore struct {
	mu     sync.RWMutex
	states map[string]match.State
}

func NewStateStore() *StateStore {
	return &StateStore{states: make(map[string]match.State)}
}

func (s *StateStore) Get(_ context.Context, matchID string) (match.State, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.states[strings.TrimSpace(matchID)]
	if !ok {
		return match.State{}, false, nil
	}
	return state.Clone(), true, nil
}

func (s *StateStore) Put(_ context.Context, state match.State) error {
	matchID := strings.TrimSpace(state.MatchID)
	if matchID == "" {
		return crerr.New("match id is required")
	}

	s.mu.Lock()
	s.states[matchID] = state.Clone()
	s.mu.Unlock()
	return nil
}

func (s *StateStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.states)
}
