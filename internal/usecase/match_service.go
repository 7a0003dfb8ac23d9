package usecase

import (
	"context"
	"strings"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/sports-ticker/internal/domain/match"
)

// MatchService exposes read access to persisted match state.
type MatchService struct {
	store match.StateStore
}

func NewMatchService(store match.StateStore) *MatchService {
	return &MatchService{store: store}
}

func (s *MatchService) GetState(ctx context.Context, matchID string) (match.State, error) {
	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return match.State{}, crerr.Wrap(ErrInvalidInput, "match id is required")
	}

	state, exists, err := s.store.Get(ctx, matchID)
	if err != nil {
		return match.State{}, classify(ErrStoreFailure, err, "get state for match %s", matchID)
	}
	if !exists {
		return match.State{}, crerr.Wrapf(ErrNotFound, "match=%s", matchID)
	}
	return state.Clone(), nil
}
