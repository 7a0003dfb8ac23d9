package postgres

import (
	"time"

	"github.com/lib/pq"
)

type matchStateTableModel struct {
	MatchID      string         `db:"match_id"`
	Phase        string         `db:"phase"`
	HomeScore    int            `db:"home_score"`
	AwayScore    int            `db:"away_score"`
	SeenEventIDs pq.StringArray `db:"seen_event_ids"`
	UpdatedAt    time.Time      `db:"updated_at"`
}
