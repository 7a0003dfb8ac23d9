package espn

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/sports-ticker/internal/platform/cache"
	"github.com/riskibarqy/sports-ticker/internal/platform/logging"
	"github.com/riskibarqy/sports-ticker/internal/platform/resilience"
	"github.com/riskibarqy/sports-ticker/internal/usecase"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL           = "https://site.api.espn.com/apis/site/v2/sports"
	defaultTimeout           = 15 * time.Second
	defaultRequestsPerMinute = 120
	defaultScoreboardTTL     = 15 * time.Second
	defaultUserAgent         = "Mozilla/5.0 (compatible; sports-ticker)"
	maxResponseBytes         = 6 << 20
)

var errTransient = crerr.New("espn transient failure")

type ClientConfig struct {
	HTTPClient        *http.Client
	BaseURL           string
	Timeout           time.Duration
	RequestsPerMinute int
	ScoreboardTTL     time.Duration
	Logger            *logging.Logger
	CircuitBreaker    resilience.CircuitBreakerConfig
}

// Client talks to the public ESPN site API. It never retries; a failed
// request surfaces to the caller and is retried on the next poll cycle.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	limiter     *rate.Limiter
	breaker     *resilience.CircuitBreaker
	logger      *logging.Logger
	scoreboards *cache.Store[scoreboardEnvelope]
	teamLists   *cache.Store[[]teamEntry]
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	logger = logger.Named("espn")

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	perMinute := cfg.RequestsPerMinute
	if perMinute <= 0 {
		perMinute = defaultRequestsPerMinute
	}
	ttl := cfg.ScoreboardTTL
	if ttl <= 0 {
		ttl = defaultScoreboardTTL
	}
	logger.Debug("espn client configured", "base_url", baseURL, "per_minute", perMinute, "circuit", cfg.CircuitBreaker.String())

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		limiter:    rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 4),
		breaker: resilience.NewFromConfig("espn", cfg.CircuitBreaker, func(name string, from, to resilience.CircuitState) {
			logger.Warn("circuit breaker state changed", "breaker", name, "from", string(from), "to", string(to))
		}),
		logger:      logger,
		scoreboards: cache.NewStore[scoreboardEnvelope](ttl),
		teamLists:   cache.NewStore[[]teamEntry](time.Hour),
	}
}

type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("espn status=%d body=%s", e.code, e.body)
}

// StatusCode exposes the upstream HTTP status of a failed request.
func (e *statusError) StatusCode() int {
	return e.code
}

func (c *Client) doJSON(ctx context.Context, path string, query url.Values, target any) error {
	fullURL := c.baseURL + path
	if encoded := query.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	var raw []byte
	err := c.breaker.Execute(ctx, func(ctx context.Context) error {
		if err := c.limiter.Wait(ctx); err != nil {
			return crerr.Wrap(err, "wait for rate limiter")
		}
		body, reqErr := c.executeRequest(ctx, fullURL)
		raw = body
		return reqErr
	}, isCircuitFailure)
	if err != nil {
		if crerr.Is(err, resilience.ErrCircuitOpen) {
			c.logger.WarnContext(ctx, "espn circuit breaker rejected request", "path", path)
			return crerr.Wrap(usecase.ErrDependencyUnavailable, "espn is temporarily unavailable")
		}
		return err
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return crerr.Wrapf(err, "decode espn payload path=%s", path)
	}
	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, crerr.Wrap(err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", defaultUserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, crerr.Mark(crerr.Wrap(err, "send request"), errTransient)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, crerr.Mark(crerr.Wrap(err, "read response body"), errTransient)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := &statusError{code: resp.StatusCode, body: abbreviateBody(raw)}
		c.logger.WarnContext(ctx, "espn request failed", "url", fullURL, "status", resp.StatusCode)
		if isRetryableStatus(resp.StatusCode) {
			return nil, crerr.Mark(statusErr, errTransient)
		}
		return nil, statusErr
	}
	return raw, nil
}

// isCircuitFailure keeps client-side mistakes (404, 400) from opening the breaker.
func isCircuitFailure(err error) bool {
	if err == nil {
		return false
	}
	if crerr.Is(err, context.Canceled) || crerr.Is(err, context.DeadlineExceeded) {
		return false
	}
	if crerr.Is(err, errTransient) {
		return true
	}
	var netErr net.Error
	return crerr.As(err, &netErr)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func abbreviateBody(raw []byte) string {
	value := strings.TrimSpace(string(raw))
	if len(value) > 256 {
		return value[:256] + "..."
	}
	return value
}
