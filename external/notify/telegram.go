package notify

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	crerr "github.com/cockroachdb/errors"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Telegram allows roughly 30 messages a minute per chat.
const defaultTelegramInterval = 2 * time.Second

type TelegramConfig struct {
	Token       string
	ChatID      int64
	APIEndpoint string
	HTTPClient  *http.Client
	MinInterval time.Duration
}

type Telegram struct {
	bot      *tgbotapi.BotAPI
	chatID   int64
	interval time.Duration

	mu       sync.Mutex
	lastSend time.Time
}

// NewTelegram connects to the bot API once to validate the token.
func NewTelegram(cfg TelegramConfig) (*Telegram, error) {
	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, crerr.New("telegram bot token is required")
	}
	if cfg.ChatID == 0 {
		return nil, crerr.New("telegram chat id is required")
	}

	endpoint := strings.TrimSpace(cfg.APIEndpoint)
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}

	bot, err := tgbotapi.NewBotAPIWithClient(token, endpoint, client)
	if err != nil {
		return nil, crerr.Wrap(err, "create telegram bot")
	}
	bot.Debug = false

	interval := cfg.MinInterval
	if interval < 0 {
		interval = 0
	} else if interval == 0 {
		interval = defaultTelegramInterval
	}

	return &Telegram{bot: bot, chatID: cfg.ChatID, interval: interval}, nil
}

func (n *Telegram) Name() string {
	return "telegram"
}

// Send spaces messages by the configured interval to stay under the chat rate limit.
func (n *Telegram) Send(ctx context.Context, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if wait := n.interval - time.Since(n.lastSend); !n.lastSend.IsZero() && wait > 0 {
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	msg := tgbotapi.NewMessage(n.chatID, toTelegramMarkdown(text))
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.DisableWebPagePreview = true

	_, err := n.bot.Send(msg)
	n.lastSend = time.Now()
	if err != nil {
		return crerr.Wrap(err, "send telegram message")
	}
	return nil
}

// toTelegramMarkdown maps **bold** to the legacy Markdown *bold*.
func toTelegramMarkdown(text string) string {
	return strings.ReplaceAll(text, "**", "*")
}
