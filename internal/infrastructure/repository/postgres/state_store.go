package postgres

import (
	"context"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/riskibarqy/sports-ticker/internal/domain/match"
	qb "github.com/riskibarqy/sports-ticker/internal/platform/querybuilder"
)

const matchStateTable = "match_states"

var matchStateColumns = mustColumns(matchStateTableModel{})

func mustColumns(model any) []string {
	cols, err := qb.Columns(model)
	if err != nil {
		panic(err)
	}
	return cols
}

// StateStore persists match state in the match_states table. A put is a
// single upsert statement, so a failed put leaves the previous row intact.
type StateStore struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewStateStore(db *sqlx.DB) *StateStore {
	return &StateStore{db: db, now: time.Now}
}

func (s *StateStore) Get(ctx context.Context, matchID string) (match.State, bool, error) {
	query, args, err := qb.Select(matchStateColumns...).
		From(matchStateTable).
		Where(qb.Eq("match_id", strings.TrimSpace(matchID))).
		Limit(1).
		ToSQL()
	if err != nil {
		return match.State{}, false, crerr.Wrap(err, "build select match state query")
	}

	var row matchStateTableModel
	if err := s.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return match.State{}, false, nil
		}
		return match.State{}, false, crerr.Wrapf(describeSQLError(err, matchStateTable), "select match state match=%s", matchID)
	}

	return stateFromRow(row), true, nil
}

func (s *StateStore) Put(ctx context.Context, state match.State) error {
	state = state.Clone()
	if strings.TrimSpace(state.MatchID) == "" {
		return crerr.New("match id is required")
	}

	row := matchStateTableModel{
		MatchID:      state.MatchID,
		Phase:        string(state.Phase),
		HomeScore:    state.HomeScore,
		AwayScore:    state.AwayScore,
		SeenEventIDs: pq.StringArray(nonNilIDs(state.SeenEventIDs)),
		UpdatedAt:    s.now().UTC(),
	}
	query, args, err := qb.UpsertModel(matchStateTable, row, "match_id")
	if err != nil {
		return crerr.Wrap(err, "build upsert match state query")
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return crerr.Wrapf(describeSQLError(err, matchStateTable), "upsert match state match=%s", state.MatchID)
	}
	return nil
}

// List returns stored states ordered by most recent update.
func (s *StateStore) List(ctx context.Context, limit int) ([]match.State, error) {
	query, args, err := qb.Select(matchStateColumns...).
		From(matchStateTable).
		OrderBy("updated_at DESC", "match_id").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, crerr.Wrap(err, "build list match states query")
	}

	var rows []matchStateTableModel
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, crerr.Wrap(err, "select match states")
	}

	out := make([]match.State, 0, len(rows))
	for _, row := range rows {
		out = append(out, stateFromRow(row))
	}
	return out, nil
}

func stateFromRow(row matchStateTableModel) match.State {
	return match.State{
		MatchID:      row.MatchID,
		Phase:        match.Phase(row.Phase),
		HomeScore:    row.HomeScore,
		AwayScore:    row.AwayScore,
		SeenEventIDs: []string(row.SeenEventIDs),
	}.Clone()
}

func nonNilIDs(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
