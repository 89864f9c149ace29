package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration for jobsearch.
type Config struct {
	Search    SearchConfig
	Providers ProvidersConfig
	AI        AIConfig
	Cache     CacheConfig
	RunLog    RunLogConfig
	Watch     WatchConfig
	Server    ServerConfig
}

// SearchConfig tunes the pipeline itself.
type SearchConfig struct {
	AttemptTimeout  time.Duration // per provider attempt
	HTTPTimeout     time.Duration // http.Client timeout shared by adapters
	FallbackQueries []string      // nil means the built-in list
	ResultLimit     int
}

// ProvidersConfig holds one section per provider family.
type ProvidersConfig struct {
	Remotive   RemotiveConfig
	Metasearch MetasearchConfig
	Adzuna     AdzunaConfig
}

// RemotiveConfig configures the free source. Enabled defaults to true.
type RemotiveConfig struct {
	Enabled bool
	BaseURL string
	Limit   int
}

// MetasearchConfig configures the paid multi-engine provider. It is active
// only when APIKey is set. Engines defaults to defaultMetasearchEngines.
type MetasearchConfig struct {
	APIKey  string
	APIHost string
	BaseURL string
	Engines []string
}

// Configured reports whether credentials are present.
func (m MetasearchConfig) Configured() bool { return m.APIKey != "" && len(m.Engines) > 0 }

// AdzunaConfig configures the salary-aware aggregator. It is active only
// when both AppID and AppKey are set.
type AdzunaConfig struct {
	AppID          string
	AppKey         string
	Country        string
	ResultsPerPage int
	BaseURL        string
}

// Configured reports whether credentials are present.
func (a AdzunaConfig) Configured() bool { return a.AppID != "" && a.AppKey != "" }

// AIConfig controls the optional LLM query enhancement and scoring.
type AIConfig struct {
	Enabled      bool
	Provider     string // "openai" or "gemini"
	BaseURL      string // OpenAI-compatible endpoint; ignored for gemini
	Model        string
	APIKey       string
	Timeout      time.Duration
	BatchSize    int
	EnhanceQuery bool
}

// CacheConfig enables the Redis response cache when RedisURL is set.
type CacheConfig struct {
	RedisURL string
	TTL      time.Duration
}

// RunLogConfig selects where search run diagnostics are stored.
type RunLogConfig struct {
	Driver string // "sqlite", "postgres" or "none"
	DSN    string // file path for sqlite, connection URL for postgres
}

// WatchConfig drives the scheduled watch mode.
type WatchConfig struct {
	Schedule     string // cron spec, e.g. "@every 30m"
	Retention    time.Duration
	DBPath       string
	Searches     []SavedSearch
	Filters      FilterConfig
	Notification NotificationConfig
}

// SavedSearch is one search re-run on every watch cycle.
type SavedSearch struct {
	Name       string   `yaml:"name"`
	Skills     []string `yaml:"skills"`
	Query      string   `yaml:"query"`
	ResumeFile string   `yaml:"resume_file"`
}

// FilterConfig holds keyword and location filter settings for watch mode.
type FilterConfig struct {
	ExcludeKeywords []string `yaml:"exclude_keywords"`
	Locations       []string `yaml:"locations"`
}

// NotificationConfig controls which notifier is used and its settings.
type NotificationConfig struct {
	Type       string `yaml:"type"`        // "log" or "slack"
	WebhookURL string `yaml:"webhook_url"` // required if type is "slack"
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

const (
	defaultAttemptTimeout = 30 * time.Second
	defaultHTTPTimeout    = 30 * time.Second
	defaultResultLimit    = 50
	defaultAIProvider     = "openai"
	defaultAITimeout      = 30 * time.Second
	defaultCacheTTL       = 15 * time.Minute
	defaultRunLogDriver   = "sqlite"
	defaultRunLogDSN      = "jobsearch.db"
	defaultWatchSchedule  = "@every 30m"
	defaultRetention      = 7 * 24 * time.Hour
	defaultServerAddr     = ":8080"
	defaultReadTimeout    = 10 * time.Second
	defaultWriteTimeout   = 120 * time.Second
	slackWebhookPrefix    = "https://hooks.slack.com/"
)

// defaultMetasearchEngines are searched when credentials are present but
// providers.metasearch.engines is empty.
var defaultMetasearchEngines = []string{"linkedin", "indeed", "glassdoor", "ziprecruiter"}

// rawConfig is used for YAML unmarshaling (snake_case fields and durations
// as strings).
type rawConfig struct {
	Search    rawSearchConfig    `yaml:"search"`
	Providers rawProvidersConfig `yaml:"providers"`
	AI        rawAIConfig        `yaml:"ai"`
	Cache     rawCacheConfig     `yaml:"cache"`
	RunLog    rawRunLogConfig    `yaml:"runlog"`
	Watch     rawWatchConfig     `yaml:"watch"`
	Server    rawServerConfig    `yaml:"server"`
}

type rawSearchConfig struct {
	AttemptTimeout  string   `yaml:"attempt_timeout"`
	HTTPTimeout     string   `yaml:"http_timeout"`
	FallbackQueries []string `yaml:"fallback_queries"`
	ResultLimit     int      `yaml:"result_limit"`
}

type rawProvidersConfig struct {
	Remotive struct {
		Enabled *bool  `yaml:"enabled"`
		BaseURL string `yaml:"base_url"`
		Limit   int    `yaml:"limit"`
	} `yaml:"remotive"`
	Metasearch struct {
		APIKey  string   `yaml:"api_key"`
		APIHost string   `yaml:"api_host"`
		BaseURL string   `yaml:"base_url"`
		Engines []string `yaml:"engines"`
	} `yaml:"metasearch"`
	Adzuna struct {
		AppID          string `yaml:"app_id"`
		AppKey         string `yaml:"app_key"`
		Country        string `yaml:"country"`
		ResultsPerPage int    `yaml:"results_per_page"`
		BaseURL        string `yaml:"base_url"`
	} `yaml:"adzuna"`
}

type rawAIConfig struct {
	Enabled      bool   `yaml:"enabled"`
	Provider     string `yaml:"provider"`
	BaseURL      string `yaml:"base_url"`
	Model        string `yaml:"model"`
	APIKey       string `yaml:"api_key"`
	Timeout      string `yaml:"timeout"`
	BatchSize    int    `yaml:"batch_size"`
	EnhanceQuery *bool  `yaml:"enhance_query"`
}

type rawCacheConfig struct {
	RedisURL string `yaml:"redis_url"`
	TTL      string `yaml:"ttl"`
}

type rawRunLogConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

type rawWatchConfig struct {
	Schedule     string             `yaml:"schedule"`
	Retention    string             `yaml:"retention"`
	DBPath       string             `yaml:"db_path"`
	Searches     []SavedSearch      `yaml:"searches"`
	Filters      FilterConfig       `yaml:"filters"`
	Notification NotificationConfig `yaml:"notification"`
}

type rawServerConfig struct {
	Addr         string `yaml:"addr"`
	ReadTimeout  string `yaml:"read_timeout"`
	WriteTimeout string `yaml:"write_timeout"`
}

// LoadDotEnv loads a .env file from the working directory into the process
// environment. A missing file is not an error.
func LoadDotEnv() {
	_ = godotenv.Load()
}

// Load reads and parses the YAML config file at path, fills credentials
// from the environment, validates it, and returns Config. An empty path
// yields the defaults plus environment credentials.
func Load(path string) (*Config, error) {
	var raw rawConfig
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}

		// Expand environment variables
		expanded := os.ExpandEnv(string(data))

		if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg, err := fromRaw(raw)
	if err != nil {
		return nil, err
	}
	applyEnv(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func fromRaw(raw rawConfig) (*Config, error) {
	var err error
	cfg := &Config{}

	if cfg.Search.AttemptTimeout, err = parseDuration("search.attempt_timeout", raw.Search.AttemptTimeout, defaultAttemptTimeout); err != nil {
		return nil, err
	}
	if cfg.Search.HTTPTimeout, err = parseDuration("search.http_timeout", raw.Search.HTTPTimeout, defaultHTTPTimeout); err != nil {
		return nil, err
	}
	cfg.Search.FallbackQueries = raw.Search.FallbackQueries
	cfg.Search.ResultLimit = orInt(raw.Search.ResultLimit, defaultResultLimit)

	p := raw.Providers
	cfg.Providers.Remotive = RemotiveConfig{
		Enabled: p.Remotive.Enabled == nil || *p.Remotive.Enabled,
		BaseURL: p.Remotive.BaseURL,
		Limit:   p.Remotive.Limit,
	}
	cfg.Providers.Metasearch = MetasearchConfig{
		APIKey:  p.Metasearch.APIKey,
		APIHost: p.Metasearch.APIHost,
		BaseURL: p.Metasearch.BaseURL,
		Engines: cleanList(p.Metasearch.Engines),
	}
	if len(cfg.Providers.Metasearch.Engines) == 0 {
		cfg.Providers.Metasearch.Engines = append([]string(nil), defaultMetasearchEngines...)
	}
	cfg.Providers.Adzuna = AdzunaConfig{
		AppID:          p.Adzuna.AppID,
		AppKey:         p.Adzuna.AppKey,
		Country:        p.Adzuna.Country,
		ResultsPerPage: p.Adzuna.ResultsPerPage,
		BaseURL:        p.Adzuna.BaseURL,
	}

	aiTimeout, err := parseDuration("ai.timeout", raw.AI.Timeout, defaultAITimeout)
	if err != nil {
		return nil, err
	}
	cfg.AI = AIConfig{
		Enabled:      raw.AI.Enabled,
		Provider:     strings.ToLower(orString(raw.AI.Provider, defaultAIProvider)),
		BaseURL:      raw.AI.BaseURL,
		Model:        raw.AI.Model,
		APIKey:       raw.AI.APIKey,
		Timeout:      aiTimeout,
		BatchSize:    raw.AI.BatchSize,
		EnhanceQuery: raw.AI.EnhanceQuery == nil || *raw.AI.EnhanceQuery,
	}

	cacheTTL, err := parseDuration("cache.ttl", raw.Cache.TTL, defaultCacheTTL)
	if err != nil {
		return nil, err
	}
	cfg.Cache = CacheConfig{RedisURL: raw.Cache.RedisURL, TTL: cacheTTL}

	cfg.RunLog = RunLogConfig{
		Driver: strings.ToLower(orString(raw.RunLog.Driver, defaultRunLogDriver)),
		DSN:    raw.RunLog.DSN,
	}
	if cfg.RunLog.Driver == "sqlite" && cfg.RunLog.DSN == "" {
		cfg.RunLog.DSN = defaultRunLogDSN
	}

	retention, err := parseDuration("watch.retention", raw.Watch.Retention, defaultRetention)
	if err != nil {
		return nil, err
	}
	cfg.Watch = WatchConfig{
		Schedule:     orString(raw.Watch.Schedule, defaultWatchSchedule),
		Retention:    retention,
		DBPath:       orString(raw.Watch.DBPath, defaultRunLogDSN),
		Searches:     raw.Watch.Searches,
		Filters:      raw.Watch.Filters,
		Notification: raw.Watch.Notification,
	}
	if cfg.Watch.Notification.Type == "" {
		cfg.Watch.Notification.Type = "log"
	}

	readTimeout, err := parseDuration("server.read_timeout", raw.Server.ReadTimeout, defaultReadTimeout)
	if err != nil {
		return nil, err
	}
	writeTimeout, err := parseDuration("server.write_timeout", raw.Server.WriteTimeout, defaultWriteTimeout)
	if err != nil {
		return nil, err
	}
	cfg.Server = ServerConfig{
		Addr:         orString(raw.Server.Addr, defaultServerAddr),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	return cfg, nil
}

// applyEnv fills credentials the config file left blank from well-known
// environment variables.
func applyEnv(cfg *Config) {
	setFromEnv(&cfg.Providers.Metasearch.APIKey, "METASEARCH_API_KEY")
	setFromEnv(&cfg.Providers.Metasearch.APIHost, "METASEARCH_API_HOST")
	setFromEnv(&cfg.Providers.Adzuna.AppID, "ADZUNA_APP_ID")
	setFromEnv(&cfg.Providers.Adzuna.AppKey, "ADZUNA_APP_KEY")
	switch cfg.AI.Provider {
	case "openai":
		setFromEnv(&cfg.AI.APIKey, "OPENAI_API_KEY")
	case "gemini":
		setFromEnv(&cfg.AI.APIKey, "GEMINI_API_KEY")
	}
}

func setFromEnv(dst *string, key string) {
	if *dst == "" {
		*dst = os.Getenv(key)
	}
}

func validate(cfg *Config) error {
	if cfg.Search.AttemptTimeout <= 0 {
		return fmt.Errorf("search.attempt_timeout must be positive, got %v", cfg.Search.AttemptTimeout)
	}
	if cfg.Search.ResultLimit < 1 {
		return fmt.Errorf("search.result_limit must be at least 1, got %d", cfg.Search.ResultLimit)
	}
	if cfg.Providers.Remotive.Limit < 0 {
		return fmt.Errorf("providers.remotive.limit must not be negative, got %d", cfg.Providers.Remotive.Limit)
	}

	if cfg.AI.Enabled {
		switch cfg.AI.Provider {
		case "openai", "gemini":
		default:
			return fmt.Errorf("ai.provider must be \"openai\" or \"gemini\", got %q", cfg.AI.Provider)
		}
		if cfg.AI.APIKey == "" {
			return fmt.Errorf("ai.api_key is required when ai.enabled is true")
		}
		if cfg.AI.BatchSize < 0 {
			return fmt.Errorf("ai.batch_size must not be negative, got %d", cfg.AI.BatchSize)
		}
	}

	switch cfg.RunLog.Driver {
	case "sqlite", "none":
	case "postgres":
		if cfg.RunLog.DSN == "" {
			return fmt.Errorf("runlog.dsn is required when runlog.driver is \"postgres\"")
		}
	default:
		return fmt.Errorf("runlog.driver must be sqlite, postgres or none, got %q", cfg.RunLog.Driver)
	}

	switch cfg.Watch.Notification.Type {
	case "log":
	case "slack":
		if cfg.Watch.Notification.WebhookURL == "" {
			return fmt.Errorf("watch.notification.webhook_url is required when type is \"slack\"")
		}
		if !strings.HasPrefix(cfg.Watch.Notification.WebhookURL, slackWebhookPrefix) {
			return fmt.Errorf("watch.notification.webhook_url must start with %s", slackWebhookPrefix)
		}
	default:
		return fmt.Errorf("watch.notification.type must be \"log\" or \"slack\", got %q", cfg.Watch.Notification.Type)
	}

	for i, s := range cfg.Watch.Searches {
		if strings.TrimSpace(s.Name) == "" {
			return fmt.Errorf("watch.searches[%d].name is required", i)
		}
	}

	return nil
}

func parseDuration(field, raw string, def time.Duration) (time.Duration, error) {
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s %q: %w", field, raw, err)
	}
	return d, nil
}

func orString(s, def string) string {
	if s = strings.TrimSpace(s); s == "" {
		return def
	}
	return s
}

func orInt(n, def int) int {
	if n == 0 {
		return def
	}
	return n
}

func cleanList(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
