package notify

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/stretchr/testify/require"
)

func TestStdout_SendAppendsSeparator(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	notifier := NewStdout(&buf)
	require.NoError(t, notifier.Send(context.Background(), "🏟️ **KICK OFF!**\n"))
	require.NoError(t, notifier.Send(context.Background(), "⏸️ **HALFTIME**"))
	require.Equal(t, "🏟️ **KICK OFF!**\n---\n⏸️ **HALFTIME**\n---\n", buf.String())
	require.Equal(t, "stdout", notifier.Name())
}

type telegramServer struct {
	mu    sync.Mutex
	texts []string
	modes []string
}

func (s *telegramServer) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/getMe"):
			_, _ = w.Write([]byte(`{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"ticker","username":"ticker_bot"}}`))
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			if err := r.ParseForm(); err != nil {
				t.Errorf("parse form: %v", err)
			}
			s.mu.Lock()
			s.texts = append(s.texts, r.Form.Get("text"))
			s.modes = append(s.modes, r.Form.Get("parse_mode"))
			s.mu.Unlock()
			_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":7,"date":0,"chat":{"id":42,"type":"private"}}}`))
		default:
			http.NotFound(w, r)
		}
	})
}

func TestTelegram_Send(t *testing.T) {
	t.Parallel()

	state := &telegramServer{}
	server := httptest.NewServer(state.handler(t))
	defer server.Close()

	notifier, err := NewTelegram(TelegramConfig{
		Token:       "123:abc",
		ChatID:      42,
		APIEndpoint: server.URL + "/bot%s/%s",
		HTTPClient:  server.Client(),
		MinInterval: -1,
	})
	require.NoError(t, err)

	require.NoError(t, notifier.Send(context.Background(), "🎉 **GOAL!** 9'"))
	require.Equal(t, []string{"🎉 *GOAL!* 9'"}, state.texts)
	require.Equal(t, []string{"Markdown"}, state.modes)
}

func TestTelegram_RequiresCredentials(t *testing.T) {
	t.Parallel()

	_, err := NewTelegram(TelegramConfig{ChatID: 1})
	require.Error(t, err)
	_, err = NewTelegram(TelegramConfig{Token: "x"})
	require.Error(t, err)
}

type rewriteTransport struct {
	target *url.URL
}

func (rt rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.URL.Scheme = rt.target.Scheme
	clone.URL.Host = rt.target.Host
	clone.Host = rt.target.Host
	return http.DefaultTransport.RoundTrip(clone)
}

func TestDiscord_Send(t *testing.T) {
	t.Parallel()

	var (
		mu      sync.Mutex
		gotPath string
		gotBody map[string]any
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		mu.Lock()
		gotPath = r.URL.Path
		_ = sonic.Unmarshal(raw, &gotBody)
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()
	target, _ := url.Parse(server.URL)

	notifier, err := NewDiscord(DiscordConfig{
		WebhookURL: "https://discord.com/api/webhooks/1234/secret-token",
		Username:   "Ticker",
		HTTPClient: &http.Client{Transport: rewriteTransport{target: target}, Timeout: 5 * time.Second},
	})
	require.NoError(t, err)

	require.NoError(t, notifier.Send(context.Background(), "🏁 **FULL TIME - WIN!**"))
	require.True(t, strings.HasSuffix(gotPath, "/webhooks/1234/secret-token"), gotPath)
	require.Equal(t, "🏁 **FULL TIME - WIN!**", gotBody["content"])
	require.Equal(t, "Ticker", gotBody["username"])
}

func TestParseWebhookURL(t *testing.T) {
	t.Parallel()

	id, token, err := parseWebhookURL("https://discord.com/api/webhooks/99/tok")
	require.NoError(t, err)
	require.Equal(t, "99", id)
	require.Equal(t, "tok", token)

	for _, raw := range []string{"", "not a url", "https://discord.com/api/webhooks/99", "https://example.com/hooks/1/2"} {
		_, _, err := parseWebhookURL(raw)
		require.Error(t, err, raw)
	}
}

func TestWebhook_Send(t *testing.T) {
	t.Parallel()

	var (
		mu      sync.Mutex
		payload webhookPayload
		auth    string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		mu.Lock()
		defer mu.Unlock()
		auth = r.Header.Get("X-Ticker-Token")
		if err := sonic.Unmarshal(raw, &payload); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	notifier, err := NewWebhook(WebhookConfig{URL: server.URL, AuthHeader: "X-Ticker-Token", AuthValue: "s3cret"})
	require.NoError(t, err)
	notifier.now = func() time.Time { return time.Date(2026, 10, 18, 14, 0, 0, 0, time.UTC) }

	require.NoError(t, notifier.Send(context.Background(), "⏸️ **HALFTIME**"))
	require.Equal(t, "s3cret", auth)
	require.Equal(t, "⏸️ **HALFTIME**", payload.Text)
	require.Equal(t, "sports-ticker", payload.Source)
}

func TestWebhook_SendRejectsErrorStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer server.Close()

	notifier, err := NewWebhook(WebhookConfig{URL: server.URL})
	require.NoError(t, err)
	err = notifier.Send(context.Background(), "x")
	require.Error(t, err)
	require.Contains(t, err.Error(), "status=401")

	_, err = NewWebhook(WebhookConfig{URL: "ftp://example.com"})
	require.Error(t, err)
}
