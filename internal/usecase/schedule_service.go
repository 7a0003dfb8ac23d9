package usecase

import (
	"context"
	"sort"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/sports-ticker/internal/domain/fixture"
	"github.com/riskibarqy/sports-ticker/internal/domain/team"
	"github.com/riskibarqy/sports-ticker/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

type ScheduleConfig struct {
	LiveInterval   time.Duration
	IdleInterval   time.Duration
	PreKickoffLead time.Duration
	LookaheadDays  int
}

// ScheduleService answers "what is coming up" and "when should we poll next".
type ScheduleService struct {
	fixtures fixture.Repository
	cfg      ScheduleConfig
	logger   *logging.Logger
	now      func() time.Time
}

func NewScheduleService(fixtures fixture.Repository, cfg ScheduleConfig, logger *logging.Logger) *ScheduleService {
	if cfg.LiveInterval <= 0 {
		cfg.LiveInterval = 60 * time.Second
	}
	if cfg.IdleInterval <= 0 {
		cfg.IdleInterval = 30 * time.Minute
	}
	if cfg.PreKickoffLead < 0 {
		cfg.PreKickoffLead = 0
	}
	if cfg.LookaheadDays <= 0 {
		cfg.LookaheadDays = 14
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &ScheduleService{
		fixtures: fixtures,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *ScheduleService) Config() ScheduleConfig {
	return s.cfg
}

// Upcoming returns fixtures of the given teams kicking off within days,
// sorted by kickoff and then team name. A team whose fixtures cannot be
// loaded is logged and skipped.
func (s *ScheduleService) Upcoming(ctx context.Context, teams []team.Team, days int) ([]fixture.Fixture, error) {
	ctx, span := startUsecaseSpan(ctx, "ScheduleService.Upcoming", attribute.Int("schedule.teams", len(teams)), attribute.Int("schedule.days", days))
	defer span.End()

	if s.fixtures == nil {
		return nil, crerr.Wrap(ErrDependencyUnavailable, "fixture source is not configured")
	}
	if days < 0 {
		return nil, crerr.Wrapf(ErrInvalidInput, "days must be >= 0, got %d", days)
	}
	if days == 0 {
		days = s.cfg.LookaheadDays
	}

	now := s.now()
	until := now.Add(time.Duration(days) * 24 * time.Hour)

	out := make([]fixture.Fixture, 0)
	seen := make(map[string]struct{})
	for _, tracked := range teams {
		if !tracked.Trackable() {
			continue
		}
		items, err := s.fixtures.ListByTeam(ctx, tracked)
		if err != nil {
			s.logger.WarnContext(ctx, "list fixtures failed", "team_id", tracked.ID, "error", err)
			continue
		}
		for _, item := range items {
			if !item.IsUpcoming(now) || item.KickoffAt.After(until) {
				continue
			}
			key := item.MatchID + "|" + item.TeamID
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, item)
		}
	}

	names := make(map[string]string, len(teams))
	for _, tracked := range teams {
		names[tracked.ID] = tracked.Name
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].KickoffAt.Equal(out[j].KickoffAt) {
			return out[i].KickoffAt.Before(out[j].KickoffAt)
		}
		return strings.ToLower(names[out[i].TeamID]) < strings.ToLower(names[out[j].TeamID])
	})
	return out, nil
}

// NextDelay picks how long to wait before the next poll cycle. Live or
// imminent matches poll at the live interval; otherwise the ticker sleeps
// until the pre-kickoff window opens, capped at the idle interval.
func (s *ScheduleService) NextDelay(ctx context.Context, teams []team.Team) (time.Duration, string) {
	now := s.now()
	fixtures := make([]fixture.Fixture, 0)
	if s.fixtures != nil {
		for _, tracked := range teams {
			if !tracked.Trackable() {
				continue
			}
			items, err := s.fixtures.ListByTeam(ctx, tracked)
			if err != nil {
				s.logger.WarnContext(ctx, "list fixtures for cadence failed", "team_id", tracked.ID, "error", err)
				continue
			}
			fixtures = append(fixtures, items...)
		}
	}

	hasLive, nearestUpcoming := analyzeFixtures(fixtures, now)
	return s.delayFor(now, hasLive, nearestUpcoming)
}

func (s *ScheduleService) delayFor(now time.Time, hasLive bool, nearestUpcoming *time.Time) (time.Duration, string) {
	if hasLive {
		return s.cfg.LiveInterval, "live"
	}
	if nearestUpcoming == nil {
		return s.cfg.IdleInterval, "idle"
	}

	liveAt := nearestUpcoming.Add(-s.cfg.PreKickoffLead)
	delay := liveAt.Sub(now)
	if delay <= 0 {
		return s.cfg.LiveInterval, "pre_kickoff"
	}
	if delay > s.cfg.IdleInterval {
		return s.cfg.IdleInterval, "idle"
	}
	return maxDuration(delay, s.cfg.LiveInterval), "until_kickoff"
}

func analyzeFixtures(items []fixture.Fixture, now time.Time) (bool, *time.Time) {
	var nearestUpcoming *time.Time
	hasLive := false
	for _, item := range items {
		status := strings.TrimSpace(item.Status)
		if fixture.IsLiveStatus(status) {
			hasLive = true
		}

		if item.KickoffAt.IsZero() {
			continue
		}
		if item.KickoffAt.Before(now) {
			continue
		}
		if fixture.IsFinishedStatus(status) || fixture.IsCancelledLikeStatus(status) {
			continue
		}
		if nearestUpcoming == nil || item.KickoffAt.Before(*nearestUpcoming) {
			next := item.KickoffAt
			nearestUpcoming = &next
		}
	}

	return hasLive, nearestUpcoming
}

func maxDuration(left, right time.Duration) time.Duration {
	if left > right {
		return left
	}
	return right
}
