package notify

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	crerr "github.com/cockroachdb/errors"
)

// Discord caps message content at 2000 characters.
const discordMaxContent = 2000

type DiscordConfig struct {
	WebhookURL string
	Username   string
	HTTPClient *http.Client
}

// Discord posts to a channel webhook. No bot gateway connection is opened.
type Discord struct {
	session   *discordgo.Session
	webhookID string
	token     string
	username  string
}

func NewDiscord(cfg DiscordConfig) (*Discord, error) {
	webhookID, token, err := parseWebhookURL(cfg.WebhookURL)
	if err != nil {
		return nil, err
	}

	session, err := discordgo.New("")
	if err != nil {
		return nil, crerr.Wrap(err, "create discord session")
	}
	if cfg.HTTPClient != nil {
		session.Client = cfg.HTTPClient
	} else {
		session.Client = &http.Client{Timeout: 15 * time.Second}
	}
	session.ShouldRetryOnRateLimit = false

	return &Discord{
		session:   session,
		webhookID: webhookID,
		token:     token,
		username:  strings.TrimSpace(cfg.Username),
	}, nil
}

func (n *Discord) Name() string {
	return "discord"
}

func (n *Discord) Send(ctx context.Context, text string) error {
	content := text
	if len([]rune(content)) > discordMaxContent {
		content = string([]rune(content)[:discordMaxContent-1]) + "…"
	}

	params := &discordgo.WebhookParams{
		Content:  content,
		Username: n.username,
	}
	if _, err := n.session.WebhookExecute(n.webhookID, n.token, false, params, discordgo.WithContext(ctx)); err != nil {
		return crerr.Wrap(err, "execute discord webhook")
	}
	return nil
}

// parseWebhookURL extracts id and token from .../api/webhooks/{id}/{token}.
func parseWebhookURL(raw string) (string, string, error) {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || parsed.Host == "" {
		return "", "", crerr.Newf("invalid discord webhook url %q", raw)
	}

	parts := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	for idx := 0; idx+2 < len(parts); idx++ {
		if parts[idx] == "webhooks" && parts[idx+1] != "" && parts[idx+2] != "" {
			return parts[idx+1], parts[idx+2], nil
		}
	}
	return "", "", crerr.Newf("discord webhook url %q has no id/token", raw)
}
