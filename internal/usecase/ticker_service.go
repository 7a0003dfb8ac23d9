package usecase

import (
	"context"
	"sync/atomic"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/sports-ticker/internal/domain/team"
	"github.com/riskibarqy/sports-ticker/internal/platform/logging"
)

// TickResult is one cycle plus the delivery of its alerts.
type TickResult struct {
	Cycle     CycleReport    `json:"cycle"`
	Delivery  DeliveryReport `json:"delivery"`
	NextDelay string         `json:"next_delay,omitempty"`
	Reason    string         `json:"reason,omitempty"`
}

// TickerService drives poll cycles on the cadence picked by ScheduleService.
type TickerService struct {
	teams    team.Repository
	poll     *PollService
	schedule *ScheduleService
	delivery *DeliveryService
	logger   *logging.Logger

	last  atomic.Pointer[TickResult]
	sleep func(ctx context.Context, d time.Duration) error
}

func NewTickerService(
	teams team.Repository,
	poll *PollService,
	schedule *ScheduleService,
	delivery *DeliveryService,
	logger *logging.Logger,
) *TickerService {
	if logger == nil {
		logger = logging.Default()
	}
	return &TickerService{
		teams:    teams,
		poll:     poll,
		schedule: schedule,
		delivery: delivery,
		logger:   logger,
		sleep:    sleepContext,
	}
}

// Trigger runs one cycle now and delivers its alerts.
func (s *TickerService) Trigger(ctx context.Context) (TickResult, error) {
	ctx, span := startTickSpan(ctx, "TickerService.Trigger")
	defer span.End()

	if s.teams == nil || s.poll == nil {
		return TickResult{}, crerr.Wrap(ErrDependencyUnavailable, "ticker is not fully configured")
	}

	teams, err := s.teams.List(ctx)
	if err != nil {
		return TickResult{}, crerr.Wrap(err, "list tracked teams")
	}

	cycle, err := s.poll.RunCycle(ctx, teams)
	if err != nil {
		return TickResult{}, err
	}

	result := TickResult{Cycle: cycle}
	if s.delivery != nil {
		result.Delivery = s.delivery.Deliver(ctx, cycle.Notifications, teams)
	}
	s.last.Store(&result)
	return result, nil
}

// Last returns the most recent tick, if any ran.
func (s *TickerService) Last() (TickResult, bool) {
	last := s.last.Load()
	if last == nil {
		return TickResult{}, false
	}
	return *last, true
}

// Run loops until ctx is cancelled. A failed tick is logged and retried on
// the next scheduled tick.
func (s *TickerService) Run(ctx context.Context) error {
	for {
		result, err := s.Trigger(ctx)
		switch {
		case err == nil:
		case crerr.Is(err, ErrCycleInProgress):
			s.logger.InfoContext(ctx, "skip tick, cycle already in progress")
		default:
			s.logger.ErrorContext(ctx, "tick failed", "error", err)
		}
		if ctx.Err() != nil {
			return nil
		}

		delay, reason := s.nextDelay(ctx)
		if err == nil {
			result.NextDelay = delay.String()
			result.Reason = reason
			s.last.Store(&result)
		}
		s.logger.InfoContext(ctx, "next tick scheduled", "delay", delay, "reason", reason)

		if err := s.sleep(ctx, delay); err != nil {
			return nil
		}
	}
}

func (s *TickerService) nextDelay(ctx context.Context) (time.Duration, string) {
	if s.schedule == nil {
		return time.Minute, "default"
	}
	teams, err := s.teams.List(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "list tracked teams for cadence failed", "error", err)
		return s.schedule.Config().LiveInterval, "fallback"
	}
	return s.schedule.NextDelay(ctx, teams)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
