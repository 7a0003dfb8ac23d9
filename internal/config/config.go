package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/sports-ticker/internal/platform/logging"
)

const (
	StateStoreFile     = "file"
	StateStoreMemory   = "memory"
	StateStorePostgres = "postgres"
	StateStoreRedis    = "redis"
)

// Config stores runtime configuration for the ticker.
type Config struct {
	AppEnv         string
	ServiceName    string
	ServiceVersion string
	LogLevel       logging.Level
	LogFormat      string

	HTTPEnabled  bool
	HTTPAddr     string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	TrackerFile     string
	DisplayTimezone *time.Location

	StateStore        string
	StateFile         string
	DBURL             string
	DBApplicationName string
	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	RedisKeyPrefix    string
	RedisStateTTL     time.Duration

	ESPNBaseURL               string
	ESPNTimeout               time.Duration
	ESPNRequestsPerMinute     int
	ESPNScoreboardTTL         time.Duration
	ESPNCircuitEnabled        bool
	ESPNCircuitFailureCount   int
	ESPNCircuitOpenTimeout    time.Duration
	ESPNCircuitHalfOpenMaxReq int
	FixtureCacheTTL           time.Duration
	SearchLeagues             []string

	PollMaxWorkers     int
	PollCycleTimeout   time.Duration
	PollLiveInterval   time.Duration
	PollIdleInterval   time.Duration
	PollPreKickoffLead time.Duration
	PollScheduleDays   int

	InternalJobToken string

	StdoutNotifierEnabled bool
	TelegramEnabled       bool
	TelegramBotToken      string
	TelegramChatID        int64
	DiscordWebhookURL     string
	DiscordUsername       string
	WebhookURL            string
	WebhookAuthHeader     string
	WebhookAuthValue      string
	WebhookTimeout        time.Duration

	UptraceEnabled             bool
	UptraceDSN                 string
	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration
	PprofEnabled               bool
	PprofAddr                  string
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppEnv:                     appEnv,
		ServiceName:                getEnv("APP_SERVICE_NAME", "sports-ticker"),
		ServiceVersion:             getEnv("APP_SERVICE_VERSION", "dev"),
		LogLevel:                   parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),
		HTTPAddr:                   getEnv("APP_HTTP_ADDR", ":8080"),
		TrackerFile:                strings.TrimSpace(getEnv("TRACKER_FILE", "config/teams.yaml")),
		StateFile:                  strings.TrimSpace(getEnv("STATE_FILE", "data/match_states.json")),
		DBURL:                      strings.TrimSpace(getEnv("DB_URL", "")),
		RedisAddr:                  strings.TrimSpace(getEnv("REDIS_ADDR", "localhost:6379")),
		RedisPassword:              getEnv("REDIS_PASSWORD", ""),
		RedisKeyPrefix:             getEnv("REDIS_KEY_PREFIX", "ticker:"),
		ESPNBaseURL:                strings.TrimSpace(getEnv("ESPN_BASE_URL", "https://site.api.espn.com/apis/site/v2/sports")),
		InternalJobToken:           strings.TrimSpace(getEnv("INTERNAL_JOB_TOKEN", "")),
		TelegramBotToken:           strings.TrimSpace(getEnv("TELEGRAM_BOT_TOKEN", "")),
		DiscordWebhookURL:          strings.TrimSpace(getEnv("DISCORD_WEBHOOK_URL", "")),
		DiscordUsername:            strings.TrimSpace(getEnv("DISCORD_USERNAME", "Sports Ticker")),
		WebhookURL:                 strings.TrimSpace(getEnv("WEBHOOK_URL", "")),
		WebhookAuthHeader:          strings.TrimSpace(getEnv("WEBHOOK_AUTH_HEADER", "")),
		WebhookAuthValue:           strings.TrimSpace(getEnv("WEBHOOK_AUTH_VALUE", "")),
		UptraceDSN:                 strings.TrimSpace(getEnv("UPTRACE_DSN", "")),
		PyroscopeServerAddress:     strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", "")),
		PyroscopeAuthToken:         strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:     strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword: strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		PprofAddr:                  strings.TrimSpace(getEnv("PPROF_ADDR", ":6060")),
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))

	cfg.LogFormat = strings.ToLower(strings.TrimSpace(getEnv("APP_LOG_FORMAT", logging.FormatJSON)))
	if cfg.LogFormat != logging.FormatJSON && cfg.LogFormat != logging.FormatConsole {
		return Config{}, fmt.Errorf("invalid APP_LOG_FORMAT %q: valid values are %s, %s", cfg.LogFormat, logging.FormatJSON, logging.FormatConsole)
	}

	if cfg.HTTPEnabled, err = getEnvAsBool("APP_HTTP_ENABLED", true); err != nil {
		return Config{}, err
	}
	if cfg.ReadTimeout, err = getEnvAsPositiveDuration("APP_READ_TIMEOUT", "10s"); err != nil {
		return Config{}, err
	}
	if cfg.WriteTimeout, err = getEnvAsPositiveDuration("APP_WRITE_TIMEOUT", "15s"); err != nil {
		return Config{}, err
	}

	zone := strings.TrimSpace(getEnv("DISPLAY_TIMEZONE", "UTC"))
	cfg.DisplayTimezone, err = time.LoadLocation(zone)
	if err != nil {
		return Config{}, fmt.Errorf("parse DISPLAY_TIMEZONE: %w", err)
	}

	if err := loadStateStore(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadESPN(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadPoll(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadNotifiers(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadObservability(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func loadStateStore(cfg *Config) error {
	cfg.StateStore = strings.ToLower(strings.TrimSpace(getEnv("STATE_STORE", StateStoreFile)))
	switch cfg.StateStore {
	case StateStoreFile:
		if cfg.StateFile == "" {
			return fmt.Errorf("STATE_FILE is required when STATE_STORE=file")
		}
	case StateStoreMemory:
	case StateStorePostgres:
		if cfg.DBURL == "" {
			return fmt.Errorf("DB_URL is required when STATE_STORE=postgres")
		}
	case StateStoreRedis:
		if cfg.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required when STATE_STORE=redis")
		}
	default:
		return fmt.Errorf("invalid STATE_STORE %q: valid values are %s, %s, %s, %s",
			cfg.StateStore, StateStoreFile, StateStoreMemory, StateStorePostgres, StateStoreRedis)
	}

	cfg.DBApplicationName = getEnv("DB_APPLICATION_NAME", cfg.ServiceName)

	var err error
	if cfg.RedisDB, err = getEnvAsInt("REDIS_DB", 0); err != nil {
		return fmt.Errorf("parse REDIS_DB: %w", err)
	}
	if cfg.RedisDB < 0 {
		return fmt.Errorf("REDIS_DB must be >= 0")
	}
	if cfg.RedisStateTTL, err = time.ParseDuration(getEnv("REDIS_STATE_TTL", "0s")); err != nil {
		return fmt.Errorf("parse REDIS_STATE_TTL: %w", err)
	}
	if cfg.RedisStateTTL < 0 {
		return fmt.Errorf("REDIS_STATE_TTL must be >= 0")
	}
	return nil
}

func loadESPN(cfg *Config) error {
	var err error
	if cfg.ESPNTimeout, err = getEnvAsPositiveDuration("ESPN_TIMEOUT", "15s"); err != nil {
		return err
	}
	if cfg.ESPNRequestsPerMinute, err = getEnvAsInt("ESPN_REQUESTS_PER_MINUTE", 120); err != nil {
		return fmt.Errorf("parse ESPN_REQUESTS_PER_MINUTE: %w", err)
	}
	if cfg.ESPNRequestsPerMinute < 1 {
		return fmt.Errorf("ESPN_REQUESTS_PER_MINUTE must be >= 1")
	}
	if cfg.ESPNScoreboardTTL, err = getEnvAsPositiveDuration("ESPN_SCOREBOARD_TTL", "15s"); err != nil {
		return err
	}
	if cfg.ESPNCircuitEnabled, err = getEnvAsBool("ESPN_CIRCUIT_ENABLED", true); err != nil {
		return err
	}
	if cfg.ESPNCircuitFailureCount, err = getEnvAsInt("ESPN_CIRCUIT_FAILURE_COUNT", 5); err != nil {
		return fmt.Errorf("parse ESPN_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if cfg.ESPNCircuitFailureCount < 1 {
		return fmt.Errorf("ESPN_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	if cfg.ESPNCircuitOpenTimeout, err = getEnvAsPositiveDuration("ESPN_CIRCUIT_OPEN_TIMEOUT", "30s"); err != nil {
		return err
	}
	if cfg.ESPNCircuitHalfOpenMaxReq, err = getEnvAsInt("ESPN_CIRCUIT_HALF_OPEN_MAX_REQ", 2); err != nil {
		return fmt.Errorf("parse ESPN_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if cfg.ESPNCircuitHalfOpenMaxReq < 1 {
		return fmt.Errorf("ESPN_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}
	if cfg.FixtureCacheTTL, err = getEnvAsPositiveDuration("FIXTURE_CACHE_TTL", "10m"); err != nil {
		return err
	}
	cfg.SearchLeagues = splitCSV(getEnv("ESPN_SEARCH_LEAGUES", "eng.1,esp.1,ger.1,ita.1,fra.1,uefa.champions"))
	if len(cfg.SearchLeagues) == 0 {
		return fmt.Errorf("ESPN_SEARCH_LEAGUES cannot be empty")
	}
	return nil
}

func loadPoll(cfg *Config) error {
	var err error
	if cfg.PollMaxWorkers, err = getEnvAsInt("POLL_MAX_WORKERS", 4); err != nil {
		return fmt.Errorf("parse POLL_MAX_WORKERS: %w", err)
	}
	if cfg.PollMaxWorkers < 1 {
		return fmt.Errorf("POLL_MAX_WORKERS must be >= 1")
	}
	if cfg.PollCycleTimeout, err = getEnvAsPositiveDuration("POLL_CYCLE_TIMEOUT", "45s"); err != nil {
		return err
	}
	if cfg.PollLiveInterval, err = getEnvAsPositiveDuration("POLL_LIVE_INTERVAL", "60s"); err != nil {
		return err
	}
	if cfg.PollIdleInterval, err = getEnvAsPositiveDuration("POLL_IDLE_INTERVAL", "30m"); err != nil {
		return err
	}
	if cfg.PollIdleInterval < cfg.PollLiveInterval {
		return fmt.Errorf("POLL_IDLE_INTERVAL must be >= POLL_LIVE_INTERVAL")
	}
	if cfg.PollPreKickoffLead, err = time.ParseDuration(getEnv("POLL_PRE_KICKOFF_LEAD", "15m")); err != nil {
		return fmt.Errorf("parse POLL_PRE_KICKOFF_LEAD: %w", err)
	}
	if cfg.PollPreKickoffLead < 0 {
		return fmt.Errorf("POLL_PRE_KICKOFF_LEAD must be >= 0")
	}
	if cfg.PollScheduleDays, err = getEnvAsInt("POLL_SCHEDULE_DAYS", 14); err != nil {
		return fmt.Errorf("parse POLL_SCHEDULE_DAYS: %w", err)
	}
	if cfg.PollScheduleDays < 1 {
		return fmt.Errorf("POLL_SCHEDULE_DAYS must be >= 1")
	}
	return nil
}

func loadNotifiers(cfg *Config) error {
	var err error
	if cfg.StdoutNotifierEnabled, err = getEnvAsBool("STDOUT_NOTIFIER_ENABLED", true); err != nil {
		return err
	}

	if cfg.TelegramEnabled, err = getEnvAsBool("TELEGRAM_ENABLED", false); err != nil {
		return err
	}
	rawChatID := strings.TrimSpace(getEnv("TELEGRAM_CHAT_ID", ""))
	if rawChatID != "" {
		if cfg.TelegramChatID, err = strconv.ParseInt(rawChatID, 10, 64); err != nil {
			return fmt.Errorf("parse TELEGRAM_CHAT_ID: %w", err)
		}
	}
	if cfg.TelegramEnabled {
		if cfg.TelegramBotToken == "" {
			return fmt.Errorf("TELEGRAM_BOT_TOKEN is required when TELEGRAM_ENABLED=true")
		}
		if cfg.TelegramChatID == 0 {
			return fmt.Errorf("TELEGRAM_CHAT_ID is required when TELEGRAM_ENABLED=true")
		}
	}

	if cfg.WebhookTimeout, err = getEnvAsPositiveDuration("WEBHOOK_TIMEOUT", "10s"); err != nil {
		return err
	}
	if cfg.WebhookURL != "" && !strings.HasPrefix(cfg.WebhookURL, "http://") && !strings.HasPrefix(cfg.WebhookURL, "https://") {
		return fmt.Errorf("WEBHOOK_URL must start with http:// or https://")
	}
	if (cfg.WebhookAuthHeader == "") != (cfg.WebhookAuthValue == "") {
		return fmt.Errorf("WEBHOOK_AUTH_HEADER and WEBHOOK_AUTH_VALUE must be set together")
	}
	return nil
}

func loadObservability(cfg *Config) error {
	var err error
	if cfg.UptraceEnabled, err = getEnvAsBool("UPTRACE_ENABLED", false); err != nil {
		return err
	}
	if cfg.UptraceDSN == "" {
		cfg.UptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if cfg.UptraceEnabled && cfg.UptraceDSN == "" {
		return fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	if cfg.PyroscopeEnabled, err = getEnvAsBool("PYROSCOPE_ENABLED", false); err != nil {
		return err
	}
	if cfg.PyroscopeEnabled && cfg.PyroscopeServerAddress == "" {
		return fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	if cfg.PyroscopeEnabled && cfg.PyroscopeAppName == "" {
		return fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
	}
	if cfg.PyroscopeUploadRate, err = getEnvAsPositiveDuration("PYROSCOPE_UPLOAD_RATE", "15s"); err != nil {
		return err
	}

	if cfg.PprofEnabled, err = getEnvAsBool("PPROF_ENABLED", false); err != nil {
		return err
	}
	if cfg.PprofEnabled && cfg.PprofAddr == "" {
		return fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}
	return nil
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func getEnvAsBool(key string, fallback bool) (bool, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", key, err)
	}
	return out, nil
}

func getEnvAsPositiveDuration(key, fallback string) (time.Duration, error) {
	out, err := time.ParseDuration(getEnv(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if out <= 0 {
		return 0, fmt.Errorf("%s must be > 0", key)
	}
	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
