package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/sports-ticker/external/espn"
	"github.com/riskibarqy/sports-ticker/internal/config"
	"github.com/riskibarqy/sports-ticker/internal/domain/fixture"
	"github.com/riskibarqy/sports-ticker/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/sports-ticker/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/sports-ticker/internal/interfaces/httpapi"
	"github.com/riskibarqy/sports-ticker/internal/interfaces/message"
	basecache "github.com/riskibarqy/sports-ticker/internal/platform/cache"
	idgen "github.com/riskibarqy/sports-ticker/internal/platform/id"
	"github.com/riskibarqy/sports-ticker/internal/platform/logging"
	"github.com/riskibarqy/sports-ticker/internal/platform/resilience"
	"github.com/riskibarqy/sports-ticker/internal/usecase"
	"golang.org/x/sync/errgroup"
)

type Options struct {
	// Stdout receives the stdout notifier output; nil means os.Stdout.
	Stdout io.Writer
	// SkipDelivery builds no notifiers, for read-only commands.
	SkipDelivery bool
}

// App holds the wired services of one ticker process.
type App struct {
	Config   config.Config
	Logger   *logging.Logger
	Tracker  config.Tracker
	Teams    *memory.TeamRepository
	ESPN     *espn.Client
	Renderer *message.Renderer

	TeamService     *usecase.TeamService
	FixtureService  *usecase.FixtureService
	MatchService    *usecase.MatchService
	ScheduleService *usecase.ScheduleService
	PollService     *usecase.PollService
	DeliveryService *usecase.DeliveryService
	TickerService   *usecase.TickerService

	closers []func() error
}

// NewESPNClient builds the ESPN client from config. Commands that only
// search ESPN use it without loading the tracker file.
func NewESPNClient(cfg config.Config, logger *logging.Logger) *espn.Client {
	return espn.NewClient(espn.ClientConfig{
		BaseURL:           cfg.ESPNBaseURL,
		Timeout:           cfg.ESPNTimeout,
		RequestsPerMinute: cfg.ESPNRequestsPerMinute,
		ScoreboardTTL:     cfg.ESPNScoreboardTTL,
		Logger:            logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.ESPNCircuitEnabled,
			FailureThreshold: cfg.ESPNCircuitFailureCount,
			OpenTimeout:      cfg.ESPNCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.ESPNCircuitHalfOpenMaxReq,
		},
	})
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger, opts Options) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}

	tracker, err := config.LoadTracker(cfg.TrackerFile)
	if err != nil {
		return nil, err
	}
	if len(tracker.UnknownAlertKeys) > 0 {
		logger.Warn("unknown alert toggles ignored", "keys", tracker.UnknownAlertKeys)
	}
	logger.Info("tracker loaded", "path", cfg.TrackerFile, "teams", len(tracker.Teams))

	store, closeStore, err := newStateStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	var notifiers []usecase.Notifier
	if !opts.SkipDelivery {
		if notifiers, err = buildNotifiers(cfg, stdout); err != nil {
			_ = closeStore()
			return nil, err
		}
	}

	teams := memory.NewTeamRepository(tracker.Teams)
	espnClient := NewESPNClient(cfg, logger)
	fixtures := cache.NewFixtureRepository(espnClient, basecache.NewStore[[]fixture.Fixture](cfg.FixtureCacheTTL))
	renderer := message.NewRenderer(
		message.WithLeagueNames(espn.LeagueName),
		message.WithLocation(cfg.DisplayTimezone),
	)

	teamService := usecase.NewTeamService(teams)
	scheduleService := usecase.NewScheduleService(fixtures, usecase.ScheduleConfig{
		LiveInterval:   cfg.PollLiveInterval,
		IdleInterval:   cfg.PollIdleInterval,
		PreKickoffLead: cfg.PollPreKickoffLead,
		LookaheadDays:  cfg.PollScheduleDays,
	}, logger.Named("schedule"))
	pollService := usecase.NewPollService(espnClient, store, tracker.Policy, usecase.PollConfig{
		MaxWorkers:   cfg.PollMaxWorkers,
		CycleTimeout: cfg.PollCycleTimeout,
	}, idgen.NewRandomGenerator("cyc"), logger.Named("poll"))
	deliveryService := usecase.NewDeliveryService(renderer, notifiers, logger.Named("delivery"))

	return &App{
		Config:          cfg,
		Logger:          logger,
		Tracker:         tracker,
		Teams:           teams,
		ESPN:            espnClient,
		Renderer:        renderer,
		TeamService:     teamService,
		FixtureService:  usecase.NewFixtureService(teamService, scheduleService),
		MatchService:    usecase.NewMatchService(store),
		ScheduleService: scheduleService,
		PollService:     pollService,
		DeliveryService: deliveryService,
		TickerService:   usecase.NewTickerService(teams, pollService, scheduleService, deliveryService, logger.Named("ticker")),
		closers:         []func() error{closeStore},
	}, nil
}

func (a *App) NewHTTPServer() (*http.Server, error) {
	handler := httpapi.NewHandler(a.TeamService, a.FixtureService, a.MatchService, a.TickerService, a.Logger.Named("http"))
	router := httpapi.NewRouter(handler, a.Logger.Named("http"), a.Config.InternalJobToken)

	server := &http.Server{
		Addr:         a.Config.HTTPAddr,
		Handler:      router,
		ReadTimeout:  a.Config.ReadTimeout,
		WriteTimeout: a.Config.WriteTimeout,
	}

	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, nil
}

// Run drives the ticker loop and, when enabled, the status API until ctx is
// cancelled.
func (a *App) Run(ctx context.Context) error {
	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return a.TickerService.Run(groupCtx)
	})

	if a.Config.HTTPEnabled {
		srv, err := a.NewHTTPServer()
		if err != nil {
			return err
		}
		group.Go(func() error {
			a.Logger.Info("http server starting", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return crerr.Wrap(err, "http server failed")
			}
			return nil
		})
		group.Go(func() error {
			<-groupCtx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return crerr.Wrap(err, "graceful shutdown failed")
			}
			a.Logger.Info("http server stopped")
			return nil
		})
	}

	err := group.Wait()
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
