package app

import (
	"io"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/sports-ticker/external/notify"
	"github.com/riskibarqy/sports-ticker/internal/config"
	"github.com/riskibarqy/sports-ticker/internal/usecase"
)

// buildNotifiers returns the enabled channels in a fixed order: stdout,
// telegram, discord, webhook.
func buildNotifiers(cfg config.Config, stdout io.Writer) ([]usecase.Notifier, error) {
	out := make([]usecase.Notifier, 0, 4)
	if cfg.StdoutNotifierEnabled {
		out = append(out, notify.NewStdout(stdout))
	}

	if cfg.TelegramEnabled {
		telegram, err := notify.NewTelegram(notify.TelegramConfig{
			Token:  cfg.TelegramBotToken,
			ChatID: cfg.TelegramChatID,
		})
		if err != nil {
			return nil, crerr.Wrap(err, "build telegram notifier")
		}
		out = append(out, telegram)
	}

	if cfg.DiscordWebhookURL != "" {
		discord, err := notify.NewDiscord(notify.DiscordConfig{
			WebhookURL: cfg.DiscordWebhookURL,
			Username:   cfg.DiscordUsername,
		})
		if err != nil {
			return nil, crerr.Wrap(err, "build discord notifier")
		}
		out = append(out, discord)
	}

	if cfg.WebhookURL != "" {
		webhook, err := notify.NewWebhook(notify.WebhookConfig{
			URL:        cfg.WebhookURL,
			AuthHeader: cfg.WebhookAuthHeader,
			AuthValue:  cfg.WebhookAuthValue,
			Timeout:    cfg.WebhookTimeout,
			Source:     cfg.ServiceName,
		})
		if err != nil {
			return nil, crerr.Wrap(err, "build webhook notifier")
		}
		out = append(out, webhook)
	}

	return out, nil
}
