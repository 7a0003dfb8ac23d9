package notify

import (
	"context"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/fasthttp"
)

type WebhookConfig struct {
	URL        string
	AuthHeader string
	AuthValue  string
	Timeout    time.Duration
	Source     string
}

type webhookPayload struct {
	Source string    `json:"source"`
	Text   string    `json:"text"`
	SentAt time.Time `json:"sent_at"`
}

// Webhook posts alerts as JSON to an arbitrary endpoint.
type Webhook struct {
	client     *fasthttp.Client
	url        string
	authHeader string
	authValue  string
	timeout    time.Duration
	source     string
	now        func() time.Time
}

func NewWebhook(cfg WebhookConfig) (*Webhook, error) {
	target := strings.TrimSpace(cfg.URL)
	if !strings.HasPrefix(target, "http://") && !strings.HasPrefix(target, "https://") {
		return nil, crerr.Newf("webhook url must be http(s), got %q", cfg.URL)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	source := strings.TrimSpace(cfg.Source)
	if source == "" {
		source = "sports-ticker"
	}

	return &Webhook{
		client: &fasthttp.Client{
			Name:                "sports-ticker",
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxIdleConnDuration: time.Minute,
		},
		url:        target,
		authHeader: strings.TrimSpace(cfg.AuthHeader),
		authValue:  strings.TrimSpace(cfg.AuthValue),
		timeout:    timeout,
		source:     source,
		now:        time.Now,
	}, nil
}

func (n *Webhook) Name() string {
	return "webhook"
}

func (n *Webhook) Send(ctx context.Context, text string) error {
	body, err := sonic.Marshal(webhookPayload{Source: n.source, Text: text, SentAt: n.now().UTC()})
	if err != nil {
		return crerr.Wrap(err, "encode webhook payload")
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(n.url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	if n.authHeader != "" && n.authValue != "" {
		req.Header.Set(n.authHeader, n.authValue)
	}
	req.SetBody(body)

	timeout := n.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if timeout <= 0 {
		return crerr.Wrap(context.DeadlineExceeded, "webhook deadline passed")
	}

	if err := n.client.DoTimeout(req, resp, timeout); err != nil {
		return crerr.Wrap(err, "post webhook")
	}
	if code := resp.StatusCode(); code < 200 || code >= 300 {
		return crerr.Newf("webhook status=%d body=%s", code, abbreviate(resp.Body()))
	}
	return nil
}

func abbreviate(raw []byte) string {
	value := strings.TrimSpace(string(raw))
	if len(value) > 200 {
		return value[:200] + "..."
	}
	return value
}
