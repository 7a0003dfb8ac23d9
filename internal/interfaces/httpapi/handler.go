package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/sports-ticker/internal/platform/logging"
	"github.com/riskibarqy/sports-ticker/internal/usecase"
)

type Handler struct {
	teamService    *usecase.TeamService
	fixtureService *usecase.FixtureService
	matchService   *usecase.MatchService
	tickerService  *usecase.TickerService
	logger         *logging.Logger
	validator      *validator.Validate
}

func NewHandler(
	teamService *usecase.TeamService,
	fixtureService *usecase.FixtureService,
	matchService *usecase.MatchService,
	tickerService *usecase.TickerService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		teamService:    teamService,
		fixtureService: fixtureService,
		matchService:   matchService,
		tickerService:  tickerService,
		logger:         logger,
		validator:      validator.New(),
	}
}

// Healthz is never traced; otelhttp filters probe paths.
func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) GetLastCycle(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "GetLastCycle")
	defer span.End()

	if h.tickerService == nil {
		writeError(ctx, w, fmt.Errorf("%w: ticker is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	last, ok := h.tickerService.Last()
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: no poll cycle has run yet", usecase.ErrNotFound))
		return
	}
	writeSuccess(w, http.StatusOK, last)
}

func (h *Handler) ListTeams(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "ListTeams")
	defer span.End()

	teams, err := h.teamService.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list teams failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]teamDTO, 0, len(teams))
	for _, item := range teams {
		items = append(items, teamToDTO(item))
	}
	writeSuccess(w, http.StatusOK, items)
}

func (h *Handler) ListFixturesByTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "ListFixturesByTeam")
	defer span.End()

	teamID := r.PathValue("teamID")
	days, err := h.parseDays(ctx, r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	items, err := h.fixtureService.ListByTeam(ctx, teamID, days)
	if err != nil {
		h.logger.WarnContext(ctx, "list fixtures failed", "team_id", teamID, "days", days, "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]fixtureDTO, 0, len(items))
	for _, item := range items {
		out = append(out, fixtureToDTO(item))
	}
	writeSuccess(w, http.StatusOK, out)
}

func (h *Handler) GetMatchState(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "GetMatchState")
	defer span.End()

	matchID := r.PathValue("matchID")
	state, err := h.matchService.GetState(ctx, matchID)
	if err != nil {
		h.logger.WarnContext(ctx, "get match state failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(w, http.StatusOK, matchStateToDTO(state))
}

type daysQuery struct {
	Days int `validate:"gte=0,lte=60"`
}

func (h *Handler) parseDays(ctx context.Context, r *http.Request) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("days"))
	if raw == "" {
		return 0, nil
	}
	days, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: days must be an integer", usecase.ErrInvalidInput)
	}
	if err := h.validateRequest(ctx, daysQuery{Days: days}); err != nil {
		return 0, err
	}
	return days, nil
}

func (h *Handler) validateRequest(_ context.Context, payload any) error {
	if err := h.validator.Struct(payload); err != nil {
		return fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}
