package usecase

import (
	"context"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/sports-ticker/internal/domain/fixture"
	"github.com/riskibarqy/sports-ticker/internal/domain/team"
)

type FixtureService struct {
	teams    *TeamService
	schedule *ScheduleService
}

func NewFixtureService(teams *TeamService, schedule *ScheduleService) *FixtureService {
	return &FixtureService{
		teams:    teams,
		schedule: schedule,
	}
}

// ListByTeam returns upcoming fixtures of one tracked team.
func (s *FixtureService) ListByTeam(ctx context.Context, teamID string, days int) ([]fixture.Fixture, error) {
	tracked, err := s.teams.Get(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if !tracked.Trackable() {
		return nil, crerr.Wrapf(ErrInvalidInput, "team %s is disabled or has no espn id", tracked.ID)
	}

	items, err := s.schedule.Upcoming(ctx, []team.Team{tracked}, days)
	if err != nil {
		return nil, crerr.Wrap(err, "list fixtures by team")
	}
	return items, nil
}

// ListAll returns upcoming fixtures of every tracked team.
func (s *FixtureService) ListAll(ctx context.Context, days int) ([]fixture.Fixture, error) {
	teams, err := s.teams.List(ctx)
	if err != nil {
		return nil, err
	}
	return s.schedule.Upcoming(ctx, teams, days)
}

// NextKickoff returns the earliest upcoming kickoff across the given fixtures.
func NextKickoff(items []fixture.Fixture, now time.Time) (fixture.Fixture, bool) {
	var best fixture.Fixture
	found := false
	for _, item := range items {
		if !item.IsUpcoming(now) {
			continue
		}
		if !found || item.KickoffAt.Before(best.KickoffAt) {
			best = item
			found = true
		}
	}
	return best, found
}
