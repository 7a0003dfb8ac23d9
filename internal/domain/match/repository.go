package match

import "context"

// StateStore is a keyed get/put store of match states. Implementations must
// make Put for one match ID atomic; callers serialise get-then-put per match.
type StateStore interface {
	Get(ctx context.Context, matchID string) (State, bool, error)
	Put(ctx context.Context, state State) error
}
