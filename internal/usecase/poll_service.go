package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/sports-ticker/internal/domain/alert"
	"github.com/riskibarqy/sports-ticker/internal/domain/match"
	"github.com/riskibarqy/sports-ticker/internal/domain/team"
	"github.com/riskibarqy/sports-ticker/internal/platform/id"
	"github.com/riskibarqy/sports-ticker/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

// SnapshotFetcher returns the current snapshot of the match a tracked team is
// playing. found is false when the team has no match in its leagues right now.
type SnapshotFetcher interface {
	FetchSnapshot(ctx context.Context, tracked team.Team) (snapshot match.Snapshot, found bool, err error)
}

const (
	EntityStatusSuccess = "success"
	EntityStatusNoMatch = "no_match"
	EntityStatusSkipped = "skipped"
	EntityStatusFailed  = "failed"

	ErrorKindFetch     = "fetch_failure"
	ErrorKindMalformed = "malformed_snapshot"
	ErrorKindStore     = "store_failure"
	ErrorKindInternal  = "internal"
)

type PollConfig struct {
	MaxWorkers   int
	CycleTimeout time.Duration
}

type CycleReport struct {
	ID            string               `json:"id"`
	StartedAt     time.Time            `json:"started_at"`
	FinishedAt    time.Time            `json:"finished_at"`
	EntityCount   int                  `json:"entity_count"`
	SuccessCount  int                  `json:"success_count"`
	NoMatchCount  int                  `json:"no_match_count"`
	SkippedCount  int                  `json:"skipped_count"`
	FailedCount   int                  `json:"failed_count"`
	WorkerCount   int                  `json:"worker_count"`
	Notifications []alert.Notification `json:"notifications"`
	Entities      []EntityResult       `json:"entities"`
	Errors        []EntityError        `json:"errors,omitempty"`
}

type EntityResult struct {
	TeamID        string `json:"team_id"`
	TeamName      string `json:"team_name"`
	MatchID       string `json:"match_id,omitempty"`
	Status        string `json:"status"`
	Notifications int    `json:"notifications"`
	DurationMs    int64  `json:"duration_ms"`
	Message       string `json:"message,omitempty"`
}

type EntityError struct {
	TeamID  string `json:"team_id"`
	MatchID string `json:"match_id,omitempty"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e EntityError) Error() string {
	return e.Message
}

func (e EntityError) Unwrap() error {
	return e.Err
}

type entityOutcome struct {
	result        EntityResult
	notifications []alert.Notification
	err           *EntityError
}

// PollService runs poll cycles: fetch, detect, filter and persist for every
// tracked team. One PollService runs at most one cycle at a time.
type PollService struct {
	fetcher SnapshotFetcher
	store   match.StateStore
	policy  alert.Policy
	cfg     PollConfig
	ids     id.Generator
	logger  *logging.Logger
	locks   *keyedMutex
	running atomic.Bool
	now     func() time.Time
}

func NewPollService(
	fetcher SnapshotFetcher,
	store match.StateStore,
	policy alert.Policy,
	cfg PollConfig,
	ids id.Generator,
	logger *logging.Logger,
) *PollService {
	if logger == nil {
		logger = logging.Default()
	}
	if ids == nil {
		ids = id.NewRandomGenerator("cyc")
	}
	return &PollService{
		fetcher: fetcher,
		store:   store,
		policy:  policy,
		cfg:     cfg,
		ids:     ids,
		logger:  logger,
		locks:   newKeyedMutex(),
		now:     time.Now,
	}
}

func (s *PollService) Policy() alert.Policy {
	return s.policy
}

// RunCycle polls every team once. Per-team failures are collected in the
// report and never abort the cycle; the returned error is reserved for
// cycle-level problems such as ErrCycleInProgress.
func (s *PollService) RunCycle(ctx context.Context, teams []team.Team) (CycleReport, error) {
	if s.fetcher == nil || s.store == nil {
		return CycleReport{}, crerr.Wrap(ErrDependencyUnavailable, "poll service is not fully configured")
	}
	if !s.running.CompareAndSwap(false, true) {
		return CycleReport{}, ErrCycleInProgress
	}
	defer s.running.Store(false)

	ctx, span := startUsecaseSpan(ctx, "PollService.RunCycle", attribute.Int("poll.teams", len(teams)))
	defer span.End()

	cycleID, err := s.ids.NewID()
	if err != nil {
		return CycleReport{}, crerr.Wrap(err, "generate cycle id")
	}

	report := CycleReport{
		ID:            cycleID,
		StartedAt:     s.now().UTC(),
		EntityCount:   len(teams),
		Notifications: make([]alert.Notification, 0),
		Entities:      make([]EntityResult, 0, len(teams)),
	}

	cycleCtx := ctx
	if s.cfg.CycleTimeout > 0 {
		var cancel context.CancelFunc
		cycleCtx, cancel = context.WithTimeout(ctx, s.cfg.CycleTimeout)
		defer cancel()
	}

	outcomes := make([]entityOutcome, len(teams))
	pending := make([]int, 0, len(teams))
	for idx, tracked := range teams {
		if !tracked.Trackable() {
			outcomes[idx] = entityOutcome{result: EntityResult{
				TeamID:   tracked.ID,
				TeamName: tracked.Name,
				Status:   EntityStatusSkipped,
				Message:  "team is disabled or has no espn id",
			}}
			continue
		}
		pending = append(pending, idx)
	}

	workerCount := normalizePollWorkerCount(s.cfg.MaxWorkers, len(pending))
	report.WorkerCount = workerCount
	if len(pending) > 0 {
		if err := s.runPending(cycleCtx, teams, pending, workerCount, outcomes); err != nil {
			return CycleReport{}, err
		}
	}

	for _, outcome := range outcomes {
		report.Entities = append(report.Entities, outcome.result)
		switch outcome.result.Status {
		case EntityStatusSuccess:
			report.SuccessCount++
			report.Notifications = append(report.Notifications, outcome.notifications...)
		case EntityStatusNoMatch:
			report.NoMatchCount++
		case EntityStatusSkipped:
			report.SkippedCount++
		default:
			report.FailedCount++
		}
		if outcome.err != nil {
			report.Errors = append(report.Errors, *outcome.err)
		}
	}
	report.FinishedAt = s.now().UTC()

	span.SetAttributes(
		attribute.String("cycle.id", report.ID),
		attribute.Int("cycle.entities", report.EntityCount),
		attribute.Int("cycle.failed", report.FailedCount),
		attribute.Int("cycle.notifications", len(report.Notifications)),
	)
	s.logger.InfoContext(ctx, "poll cycle finished",
		"cycle_id", report.ID,
		"entities", report.EntityCount,
		"success", report.SuccessCount,
		"no_match", report.NoMatchCount,
		"skipped", report.SkippedCount,
		"failed", report.FailedCount,
		"notifications", len(report.Notifications),
		"duration_ms", report.FinishedAt.Sub(report.StartedAt).Milliseconds(),
	)
	return report, nil
}

func (s *PollService) runPending(ctx context.Context, teams []team.Team, pending []int, workerCount int, outcomes []entityOutcome) error {
	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return crerr.Wrap(err, "create worker pool")
	}
	defer pool.Release()

	var workers sync.WaitGroup
	for _, idx := range pending {
		idx := idx
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()
			outcomes[idx] = s.pollEntity(ctx, teams[idx])
		}); err != nil {
			workers.Done()
			tracked := teams[idx]
			outcomes[idx] = failedOutcome(tracked, "", ErrorKindInternal, crerr.Wrap(err, "submit task to worker pool"), 0)
		}
	}
	workers.Wait()
	return nil
}

func (s *PollService) pollEntity(ctx context.Context, tracked team.Team) (outcome entityOutcome) {
	start := time.Now()
	defer func() {
		outcome.result.DurationMs = time.Since(start).Milliseconds()
		if outcome.err != nil {
			s.logger.WarnContext(ctx, "poll entity failed",
				"team_id", tracked.ID,
				"match_id", outcome.err.MatchID,
				"kind", outcome.err.Kind,
				"error", outcome.err.Err,
			)
		}
	}()

	if err := ctx.Err(); err != nil {
		return failedOutcome(tracked, "", ErrorKindFetch, classify(ErrFetchFailure, err, "poll team %s", tracked.ID), 0)
	}

	snapshot, found, err := s.fetcher.FetchSnapshot(ctx, tracked)
	if err != nil {
		return failedOutcome(tracked, "", ErrorKindFetch, classify(ErrFetchFailure, err, "fetch snapshot for team %s", tracked.ID), 0)
	}
	if !found {
		return entityOutcome{result: EntityResult{
			TeamID:   tracked.ID,
			TeamName: tracked.Name,
			Status:   EntityStatusNoMatch,
		}}
	}

	matchID := strings.TrimSpace(snapshot.MatchID)
	if matchID == "" {
		_, _, detectErr := match.Detect(snapshot, nil)
		return failedOutcome(tracked, "", ErrorKindMalformed, detectErr, 0)
	}

	unlock := s.locks.Lock(matchID)
	defer unlock()

	stored, exists, err := s.store.Get(ctx, matchID)
	if err != nil {
		return failedOutcome(tracked, matchID, ErrorKindStore, classify(ErrStoreFailure, err, "get state for match %s", matchID), 0)
	}
	var prior *match.State
	if exists {
		prior = &stored
	}

	items, next, err := match.Detect(snapshot, prior)
	if err != nil {
		return failedOutcome(tracked, matchID, ErrorKindMalformed, crerr.Wrapf(err, "detect events for team %s", tracked.ID), 0)
	}
	allowed := s.policy.Filter(items)

	if err := s.store.Put(ctx, next); err != nil {
		// Dropped alerts are re-detected next cycle because the state was not advanced.
		return failedOutcome(tracked, matchID, ErrorKindStore, classify(ErrStoreFailure, err, "put state for match %s", matchID), len(items))
	}

	return entityOutcome{
		result: EntityResult{
			TeamID:        tracked.ID,
			TeamName:      tracked.Name,
			MatchID:       matchID,
			Status:        EntityStatusSuccess,
			Notifications: len(allowed),
		},
		notifications: allowed,
	}
}

func failedOutcome(tracked team.Team, matchID, kind string, err error, dropped int) entityOutcome {
	message := err.Error()
	result := EntityResult{
		TeamID:   tracked.ID,
		TeamName: tracked.Name,
		MatchID:  matchID,
		Status:   EntityStatusFailed,
		Message:  message,
	}
	if dropped > 0 {
		result.Message = crerr.Wrapf(err, "%d detected notifications dropped", dropped).Error()
	}
	return entityOutcome{
		result: result,
		err: &EntityError{
			TeamID:  tracked.ID,
			MatchID: matchID,
			Kind:    kind,
			Message: message,
			Err:     err,
		},
	}
}

// classify keeps both the failure kind and the cause reachable through errors.Is.
func classify(kind, cause error, format string, args ...any) error {
	return fmt.Errorf("%w: %w", kind, crerr.Wrapf(cause, format, args...))
}

func normalizePollWorkerCount(value int, taskCount int) int {
	if taskCount <= 0 {
		return 1
	}
	if value <= 0 {
		value = 4
	}
	if value > taskCount {
		value = taskCount
	}
	return value
}
