package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/codegate/pkg/codex"
	"github.com/aussiebroadwan/codegate/pkg/httpx"
	"github.com/aussiebroadwan/codegate/pkg/jwtx"
	"gopkg.in/yaml.v3"
)

// Session profiles.
const (
	ProfileStandard = "standard" // 48h sessions
	ProfileExtended = "extended" // 7 day sessions
)

// Config is read from an optional YAML file (CODEGATE_CONFIG_FILE) and then
// overridden by environment variables.
type Config struct {
	Profile    string        `yaml:"profile"`     // standard or extended (default: standard)
	SessionTTL time.Duration `yaml:"session_ttl"` // Optional: overrides the profile TTL
	Retention  time.Duration `yaml:"retention"`   // How long claimed records are kept after expiry (default: 24h)
	AppTag     string        `yaml:"app_tag"`     // Token audience (default: codegate)

	CodeAlphabet        string `yaml:"code_alphabet"`         // numeric, unambiguous or a literal alphabet (default: numeric)
	CodeLength          int    `yaml:"code_length"`           // default: 6
	CodeAllowOverrides  bool   `yaml:"code_allow_overrides"`  // per-batch formats; claims then only get a shape check
	GenerateMaxAttempts int    `yaml:"generate_max_attempts"` // draws per code before giving up (default: 16)

	SigningKeySource string `yaml:"signing_key_source"` // env or file (default: env)
	SigningKeyVar    string `yaml:"signing_key_var"`    // env var holding the secret (default: CODEGATE_SIGNING_KEY)
	SigningKeyFile   string `yaml:"signing_key_file"`   // file holding the secret

	Store         string        `yaml:"store"`          // sqlite, redis or postgres (default: sqlite)
	DatabaseFile  string        `yaml:"database_file"`  // SQLite file (default: codegate.db)
	RedisAddr     string        `yaml:"redis_addr"`     // host:port
	RedisPassword string        `yaml:"redis_password"` // Optional
	RedisDB       int           `yaml:"redis_db"`       // default: 0
	RedisPrefix   string        `yaml:"redis_prefix"`   // key prefix (default: codegate:code:)
	PostgresURL   string        `yaml:"postgres_url"`   // postgres://...
	StoreTimeout  time.Duration `yaml:"store_timeout"`  // per store call (default: 3s)

	AdminToken      string `yaml:"admin_token"`       // Optional: enables POST /v1/codes
	AdminTOTPSecret string `yaml:"admin_totp_secret"` // Optional: second factor for admin calls
	TrustedProxies  string `yaml:"trusted_proxies"`   // Optional: CIDRs allowed to set X-Forwarded-For

	Env                  string        `yaml:"env"`                   // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        `yaml:"log_level"`             // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        `yaml:"log_format"`            // Log format (json, text) (default: json)
	Port                 int           `yaml:"port"`                  // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration `yaml:"shutdown_grace_period"` // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration `yaml:"housekeeping_interval"` // Housekeeping interval (default: 1h)
	MetricsEnabled       bool          `yaml:"metrics_enabled"`       // Expose /metrics (default: true)
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		Profile:              ProfileStandard,
		Retention:            24 * time.Hour,
		AppTag:               "codegate",
		CodeAlphabet:         "numeric",
		CodeLength:           codex.DefaultLength,
		GenerateMaxAttempts:  16,
		SigningKeySource:     "env",
		SigningKeyVar:        "CODEGATE_SIGNING_KEY",
		Store:                "sqlite",
		DatabaseFile:         "codegate.db",
		StoreTimeout:         3 * time.Second,
		Env:                  "dev",
		LogLevel:             "info",
		LogFormat:            "json",
		Port:                 8080,
		ShutdownGracePeriod:  10 * time.Second,
		HousekeepingInterval: time.Hour,
		MetricsEnabled:       true,
	}
}

// LoadConfig layers defaults, the YAML file and the environment.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()

	if path := os.Getenv("CODEGATE_CONFIG_FILE"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.Profile = getEnvOrDefault("CODEGATE_PROFILE", cfg.Profile)
	cfg.SessionTTL = getEnvDurationOrDefault("CODEGATE_SESSION_TTL", cfg.SessionTTL)
	cfg.Retention = getEnvDurationOrDefault("CODEGATE_RETENTION", cfg.Retention)
	cfg.AppTag = getEnvOrDefault("CODEGATE_APP_TAG", cfg.AppTag)

	cfg.CodeAlphabet = getEnvOrDefault("CODEGATE_CODE_ALPHABET", cfg.CodeAlphabet)
	cfg.CodeLength = getEnvIntOrDefault("CODEGATE_CODE_LENGTH", cfg.CodeLength)
	cfg.CodeAllowOverrides = getEnvBoolOrDefault("CODEGATE_CODE_ALLOW_OVERRIDES", cfg.CodeAllowOverrides)
	cfg.GenerateMaxAttempts = getEnvIntOrDefault("CODEGATE_GENERATE_MAX_ATTEMPTS", cfg.GenerateMaxAttempts)

	cfg.SigningKeySource = getEnvOrDefault("CODEGATE_SIGNING_KEY_SOURCE", cfg.SigningKeySource)
	cfg.SigningKeyFile = getEnvOrDefault("CODEGATE_SIGNING_KEY_FILE", cfg.SigningKeyFile)

	cfg.Store = getEnvOrDefault("CODEGATE_STORE", cfg.Store)
	cfg.DatabaseFile = getEnvOrDefault("CODEGATE_DATABASE_FILE", cfg.DatabaseFile)
	cfg.RedisAddr = getEnvOrDefault("CODEGATE_REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisPassword = getEnvOrDefault("CODEGATE_REDIS_PASSWORD", cfg.RedisPassword)
	cfg.RedisDB = getEnvIntOrDefault("CODEGATE_REDIS_DB", cfg.RedisDB)
	cfg.RedisPrefix = getEnvOrDefault("CODEGATE_REDIS_PREFIX", cfg.RedisPrefix)
	cfg.PostgresURL = getEnvOrDefault("CODEGATE_POSTGRES_URL", cfg.PostgresURL)
	cfg.StoreTimeout = getEnvDurationOrDefault("CODEGATE_STORE_TIMEOUT", cfg.StoreTimeout)

	cfg.AdminToken = getEnvOrDefault("CODEGATE_ADMIN_TOKEN", cfg.AdminToken)
	cfg.AdminTOTPSecret = getEnvOrDefault("CODEGATE_ADMIN_TOTP_SECRET", cfg.AdminTOTPSecret)
	cfg.TrustedProxies = getEnvOrDefault("CODEGATE_TRUSTED_PROXIES", cfg.TrustedProxies)

	cfg.Env = getEnvOrDefault("ENV", cfg.Env)
	cfg.LogLevel = getEnvOrDefault("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnvOrDefault("LOG_FORMAT", cfg.LogFormat)
	cfg.Port = getEnvIntOrDefault("PORT", cfg.Port)
	cfg.ShutdownGracePeriod = getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", cfg.ShutdownGracePeriod)
	cfg.HousekeepingInterval = getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", cfg.HousekeepingInterval)
	cfg.MetricsEnabled = getEnvBoolOrDefault("CODEGATE_METRICS_ENABLED", cfg.MetricsEnabled)

	return cfg, nil
}

// TTL is the session lifetime: the explicit override, else the profile's.
func (c Config) TTL() time.Duration {
	if c.SessionTTL > 0 {
		return c.SessionTTL
	}
	if c.Profile == ProfileExtended {
		return jwtx.ExtendedSessionTTL
	}
	return jwtx.StandardSessionTTL
}

// CodeFormat builds the configured default code format.
func (c Config) CodeFormat() (codex.Format, error) {
	return codex.NewFormat(codex.ResolveAlphabet(c.CodeAlphabet), c.CodeLength, "")
}

// Validate reports every problem at once.
func (c Config) Validate() error {
	var errs []error

	switch c.Profile {
	case ProfileStandard, ProfileExtended:
	default:
		errs = append(errs, fmt.Errorf("profile must be %q or %q, got %q", ProfileStandard, ProfileExtended, c.Profile))
	}
	if c.SessionTTL < 0 {
		errs = append(errs, errors.New("session TTL must not be negative"))
	}
	if c.Retention < 0 {
		errs = append(errs, errors.New("retention must not be negative"))
	}
	if strings.TrimSpace(c.AppTag) == "" {
		errs = append(errs, errors.New("app tag is required"))
	}
	if _, err := c.CodeFormat(); err != nil {
		errs = append(errs, fmt.Errorf("code format: %w", err))
	}
	if _, err := httpx.ParseTrustedProxies(c.TrustedProxies); err != nil {
		errs = append(errs, err)
	}
	if c.GenerateMaxAttempts < 1 {
		errs = append(errs, errors.New("generate max attempts must be at least 1"))
	}

	switch c.SigningKeySource {
	case "env":
		if c.SigningKeyVar == "" {
			errs = append(errs, errors.New("signing key env var name is required"))
		}
	case "file":
		if c.SigningKeyFile == "" {
			errs = append(errs, errors.New("CODEGATE_SIGNING_KEY_FILE is required when the key source is file"))
		}
	default:
		errs = append(errs, fmt.Errorf("signing key source must be env or file, got %q", c.SigningKeySource))
	}

	switch c.Store {
	case "sqlite":
		if c.DatabaseFile == "" {
			errs = append(errs, errors.New("database file is required for the sqlite store"))
		}
	case "redis":
		if c.RedisAddr == "" {
			errs = append(errs, errors.New("CODEGATE_REDIS_ADDR is required for the redis store"))
		}
	case "postgres":
		if c.PostgresURL == "" {
			errs = append(errs, errors.New("CODEGATE_POSTGRES_URL is required for the postgres store"))
		}
	default:
		errs = append(errs, fmt.Errorf("store must be sqlite, redis or postgres, got %q", c.Store))
	}
	if c.StoreTimeout <= 0 {
		errs = append(errs, errors.New("store timeout must be positive"))
	}

	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	switch strings.ToLower(c.LogFormat) {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("log format must be json or text, got %q", c.LogFormat))
	}

	return errors.Join(errs...)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer minutes (for backwards compatibility)
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
