package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/riskibarqy/sports-ticker/internal/domain/team"
)

// TeamRepository serves tracked teams loaded from the tracker file.
type TeamRepository struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]team.Team
}

func NewTeamRepository(teams []team.Team) *TeamRepository {
	repo := &TeamRepository{byID: make(map[string]team.Team, len(teams))}
	repo.Replace(teams)
	return repo
}

func (r *TeamRepository) List(_ context.Context) ([]team.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]team.Team, 0, len(r.order))
	for _, teamID := range r.order {
		out = append(out, cloneTeam(r.byID[teamID]))
	}
	return out, nil
}

func (r *TeamRepository) GetByID(_ context.Context, teamID string) (team.Team, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.byID[strings.TrimSpace(teamID)]
	if !ok {
		return team.Team{}, false, nil
	}
	return cloneTeam(item), true, nil
}

// Replace swaps the whole team list, keeping input order. Later duplicates of
// an id overwrite earlier ones in place.
func (r *TeamRepository) Replace(teams []team.Team) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.order = r.order[:0]
	r.byID = make(map[string]team.Team, len(teams))
	for _, item := range teams {
		teamID := strings.TrimSpace(item.ID)
		if teamID == "" {
			continue
		}
		if _, exists := r.byID[teamID]; !exists {
			r.order = append(r.order, teamID)
		}
		r.byID[teamID] = cloneTeam(item)
	}
}

func cloneTeam(item team.Team) team.Team {
	item.Leagues = append([]string(nil), item.Leagues...)
	return item
}
