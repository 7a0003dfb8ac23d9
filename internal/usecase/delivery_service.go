package usecase

import (
	"context"
	"strings"
	"sync"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/sports-ticker/internal/domain/alert"
	"github.com/riskibarqy/sports-ticker/internal/domain/team"
	"github.com/riskibarqy/sports-ticker/internal/platform/logging"
	"github.com/sourcegraph/conc/pool"
	"go.opentelemetry.io/otel/attribute"
)

// Notifier pushes one rendered alert to a channel.
type Notifier interface {
	Name() string
	Send(ctx context.Context, text string) error
}

// Renderer turns a notification into channel text. tracked is the team the
// alert was raised for; it may be the zero Team when unknown.
type Renderer interface {
	Render(item alert.Notification, tracked team.Team) string
}

type DeliveryReport struct {
	Messages  int             `json:"messages"`
	Attempted int             `json:"attempted"`
	Delivered int             `json:"delivered"`
	Failed    int             `json:"failed"`
	Errors    []DeliveryError `json:"errors,omitempty"`
}

type DeliveryError struct {
	Notifier string     `json:"notifier"`
	MatchID  string     `json:"match_id"`
	Kind     alert.Kind `json:"kind"`
	Message  string     `json:"message"`
}

// DeliveryService fans rendered alerts out to every notifier. Delivery runs
// after state is persisted and is never retried, so each alert is delivered
// at most once per notifier.
type DeliveryService struct {
	renderer  Renderer
	notifiers []Notifier
	logger    *logging.Logger
}

func NewDeliveryService(renderer Renderer, notifiers []Notifier, logger *logging.Logger) *DeliveryService {
	if logger == nil {
		logger = logging.Default()
	}
	active := make([]Notifier, 0, len(notifiers))
	for _, notifier := range notifiers {
		if notifier != nil {
			active = append(active, notifier)
		}
	}
	return &DeliveryService{
		renderer:  renderer,
		notifiers: active,
		logger:    logger,
	}
}

func (s *DeliveryService) NotifierNames() []string {
	out := make([]string, 0, len(s.notifiers))
	for _, notifier := range s.notifiers {
		out = append(out, notifier.Name())
	}
	return out
}

// Deliver sends items in order to each notifier. Notifiers run concurrently
// with each other; a failure on one notifier never blocks the others.
func (s *DeliveryService) Deliver(ctx context.Context, items []alert.Notification, teams []team.Team) DeliveryReport {
	ctx, span := startUsecaseSpan(ctx, "DeliveryService.Deliver", attribute.Int("delivery.messages", len(items)))
	defer span.End()

	report := DeliveryReport{Messages: len(items)}
	if len(items) == 0 || len(s.notifiers) == 0 || s.renderer == nil {
		return report
	}

	byID := make(map[string]team.Team, len(teams))
	for _, tracked := range teams {
		byID[tracked.ID] = tracked
	}
	texts := make([]string, len(items))
	for idx, item := range items {
		texts[idx] = s.renderer.Render(item, byID[item.TeamID])
	}

	var mu sync.Mutex
	workers := pool.New().WithMaxGoroutines(len(s.notifiers))
	for _, notifier := range s.notifiers {
		notifier := notifier
		workers.Go(func() {
			for idx, text := range texts {
				err := notifier.Send(ctx, text)

				mu.Lock()
				report.Attempted++
				if err != nil {
					report.Failed++
					report.Errors = append(report.Errors, DeliveryError{
						Notifier: notifier.Name(),
						MatchID:  items[idx].MatchID,
						Kind:     items[idx].Kind,
						Message:  err.Error(),
					})
				} else {
					report.Delivered++
				}
				mu.Unlock()

				if err != nil {
					s.logger.WarnContext(ctx, "deliver notification failed",
						"notifier", notifier.Name(),
						"match_id", items[idx].MatchID,
						"kind", string(items[idx].Kind),
						"error", err,
					)
				}
			}
		})
	}
	workers.Wait()

	return report
}

// SendText pushes a free-form message, e.g. a schedule digest, to every notifier.
func (s *DeliveryService) SendText(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return crerr.Wrap(ErrInvalidInput, "message text is empty")
	}

	var errs error
	for _, notifier := range s.notifiers {
		if err := notifier.Send(ctx, text); err != nil {
			errs = crerr.CombineErrors(errs, crerr.Wrapf(err, "notifier %s", notifier.Name()))
		}
	}
	return errs
}
