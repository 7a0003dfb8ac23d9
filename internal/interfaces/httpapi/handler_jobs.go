package httpapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/riskibarqy/sports-ticker/internal/usecase"
)

// RunPollJob runs one poll cycle on demand. The cycle is detached from the
// request so a dropped client does not abort it half-way.
func (h *Handler) RunPollJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "RunPollJob")
	defer span.End()

	if h.tickerService == nil {
		writeError(ctx, w, fmt.Errorf("%w: ticker is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	result, err := h.tickerService.Trigger(context.WithoutCancel(ctx))
	if err != nil {
		h.logger.WarnContext(ctx, "run poll job failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	h.logger.InfoContext(ctx, "run poll job completed",
		"cycle_id", result.Cycle.ID,
		"notifications", len(result.Cycle.Notifications),
		"delivered", result.Delivery.Delivered,
		"failed_entities", result.Cycle.FailedCount,
	)
	writeSuccess(w, http.StatusOK, result)
}
