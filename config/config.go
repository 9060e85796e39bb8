package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"
)

// Version is the SDK release; it is reported to the service through the c parameter.
const Version = "1.0.0"

// Default configuration values.
const (
	DefaultServiceURL         = "ac.cnstrc.com"
	DefaultQuizServiceURL     = "quizzes.cnstrc.com"
	DefaultServiceScheme      = "https"
	DefaultServicePort        = 443
	DefaultItemSection        = "Products"
	DefaultClientVersion      = "cio-go-" + Version
	DefaultTimeout            = 15 * time.Second
	DefaultTrackingAttempts   = 2
	DefaultFailureThreshold   = 5
	DefaultBreakerTimeout     = 30 * time.Second
	DefaultStoreDriver        = StoreDriverMemory
	DefaultRedisKeyPrefix     = "constructorio:"
	DefaultLoggingLevel       = "warn"
	DefaultLoggingFormat      = "json"
	defaultSuggestionsSection = "Search Suggestions"
	defaultSuggestionsCount   = 10
)

// Store drivers.
const (
	StoreDriverMemory = "memory"
	StoreDriverSQLite = "sqlite"
	StoreDriverRedis  = "redis"
)

// Config holds the SDK configuration.
type Config struct {
	APIKey             string         `env:"CONSTRUCTORIO_API_KEY"          yaml:"api_key"`
	ServiceURL         string         `env:"CONSTRUCTORIO_SERVICE_URL"      yaml:"service_url"`
	QuizServiceURL     string         `env:"CONSTRUCTORIO_QUIZ_SERVICE_URL" yaml:"quiz_service_url"`
	ServiceScheme      string         `env:"CONSTRUCTORIO_SERVICE_SCHEME"   yaml:"service_scheme"`
	ServicePort        int            `env:"CONSTRUCTORIO_SERVICE_PORT"     yaml:"service_port"`
	DefaultItemSection string         `yaml:"default_item_section"`
	ClientVersion      string         `yaml:"client_version"`
	UserID             string         `env:"CONSTRUCTORIO_USER_ID"          yaml:"user_id"`
	Segments           []string       `env:"CONSTRUCTORIO_SEGMENTS"         yaml:"segments"`
	TestCells          []TestCell     `yaml:"test_cells"`
	AutocompleteCounts map[string]int `yaml:"autocomplete_result_count"`
	HTTP               HTTPConfig     `yaml:"http"`
	Tracking           TrackingConfig `yaml:"tracking"`
	Store              StoreConfig    `yaml:"store"`
	Logging            LoggingConfig  `yaml:"logging"`
}

// TestCell is an experiment assignment declared in configuration.
type TestCell struct {
	Key   string `yaml:"key"`
	Value string `yaml:"value"`
}

// HTTPConfig holds transport settings.
type HTTPConfig struct {
	Timeout time.Duration `env:"CONSTRUCTORIO_HTTP_TIMEOUT" yaml:"timeout"`
}

// TrackingConfig holds settings for event dispatch.
type TrackingConfig struct {
	// MaxAttempts bounds sends of one event; only transport failures are retried.
	MaxAttempts      int           `yaml:"max_attempts"`
	FailureThreshold int           `yaml:"failure_threshold"`
	BreakerTimeout   time.Duration `yaml:"breaker_timeout"`
}

// StoreConfig selects where identity and session state is persisted.
type StoreConfig struct {
	Driver string      `env:"CONSTRUCTORIO_STORE"      yaml:"driver"`
	Path   string      `env:"CONSTRUCTORIO_STORE_PATH" yaml:"path"`
	Redis  RedisConfig `yaml:"redis"`
}

// RedisConfig holds Redis connection settings for the redis store driver.
type RedisConfig struct {
	Address   string `env:"CONSTRUCTORIO_REDIS_ADDRESS"  yaml:"address"`
	Password  string `env:"CONSTRUCTORIO_REDIS_PASSWORD" yaml:"password"`
	DB        int    `env:"CONSTRUCTORIO_REDIS_DB"       yaml:"db"`
	KeyPrefix string `yaml:"key_prefix"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `env:"CONSTRUCTORIO_LOG_LEVEL"  yaml:"level"`
	Format string `env:"CONSTRUCTORIO_LOG_FORMAT" yaml:"format"`
}

// Load loads configuration from path. An empty path uses only the environment.
func Load(path string) (*Config, error) {
	return LoadWithDefaults[Config](path, SetDefaults)
}

// NewDefault returns a config for apiKey with every default applied.
func NewDefault(apiKey string) *Config {
	cfg := &Config{APIKey: apiKey}
	SetDefaults(cfg)
	return cfg
}

// SetDefaults fills unset fields.
func SetDefaults(cfg *Config) {
	if cfg.ServiceURL == "" {
		cfg.ServiceURL = DefaultServiceURL
	}
	if cfg.QuizServiceURL == "" {
		cfg.QuizServiceURL = DefaultQuizServiceURL
	}
	if cfg.ServiceScheme == "" {
		cfg.ServiceScheme = DefaultServiceScheme
	}
	if cfg.ServicePort == 0 {
		cfg.ServicePort = DefaultServicePort
	}
	if cfg.DefaultItemSection == "" {
		cfg.DefaultItemSection = DefaultItemSection
	}
	if cfg.ClientVersion == "" {
		cfg.ClientVersion = DefaultClientVersion
	}
	if cfg.AutocompleteCounts == nil {
		cfg.AutocompleteCounts = map[string]int{
			defaultSuggestionsSection: defaultSuggestionsCount,
			DefaultItemSection:        0,
		}
	}
	if cfg.HTTP.Timeout == 0 {
		cfg.HTTP.Timeout = DefaultTimeout
	}
	setTrackingDefaults(&cfg.Tracking)
	setStoreDefaults(&cfg.Store)
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLoggingFormat
	}
}

func setTrackingDefaults(t *TrackingConfig) {
	if t.MaxAttempts == 0 {
		t.MaxAttempts = DefaultTrackingAttempts
	}
	if t.FailureThreshold == 0 {
		t.FailureThreshold = DefaultFailureThreshold
	}
	if t.BreakerTimeout == 0 {
		t.BreakerTimeout = DefaultBreakerTimeout
	}
}

func setStoreDefaults(s *StoreConfig) {
	if s.Driver == "" {
		s.Driver = DefaultStoreDriver
	}
	if s.Redis.KeyPrefix == "" {
		s.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := ValidateRequired("api_key", c.APIKey); err != nil {
		return err
	}
	if err := ValidateRequired("service_url", c.ServiceURL); err != nil {
		return err
	}
	if err := ValidatePort("service_port", c.ServicePort); err != nil {
		return err
	}
	if c.ServiceScheme != "http" && c.ServiceScheme != "https" {
		return &ValidationError{Field: "service_scheme", Message: "must be http or https"}
	}
	for i, cell := range c.TestCells {
		if cell.Key == "" {
			return &ValidationError{Field: fmt.Sprintf("test_cells[%d].key", i), Message: "is required"}
		}
	}
	if err := c.Store.Validate(); err != nil {
		return err
	}
	if c.Logging.Level != "" {
		return ValidateLogLevel(c.Logging.Level)
	}
	return nil
}

// Validate checks the store settings for the selected driver.
func (s *StoreConfig) Validate() error {
	switch s.Driver {
	case StoreDriverMemory:
		return nil
	case StoreDriverSQLite:
		return ValidateRequired("store.path", s.Path)
	case StoreDriverRedis:
		return ValidateRequired("store.redis.address", s.Redis.Address)
	default:
		return &ValidationError{Field: "store.driver", Message: "must be one of: memory, sqlite, redis"}
	}
}

// BaseURL returns the root URL for search, browse, recommendations and tracking.
func (c *Config) BaseURL() (*url.URL, error) {
	return c.serviceURL(c.ServiceURL)
}

// QuizBaseURL returns the root URL for quiz endpoints.
func (c *Config) QuizBaseURL() (*url.URL, error) {
	return c.serviceURL(c.QuizServiceURL)
}

func (c *Config) serviceURL(host string) (*url.URL, error) {
	u := &url.URL{Scheme: c.ServiceScheme, Host: host, Path: "/"}
	if c.ServicePort != 0 && !isDefaultPort(c.ServiceScheme, c.ServicePort) {
		u.Host = net.JoinHostPort(host, strconv.Itoa(c.ServicePort))
	}
	if u.Hostname() == "" {
		return nil, &ValidationError{Field: "service_url", Message: "is not a valid host"}
	}
	return u, nil
}

func isDefaultPort(scheme string, port int) bool {
	return (scheme == "https" && port == 443) || (scheme == "http" && port == 80)
}
