package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Log       LogConfig
	Wix       WixConfig
	Migration MigrationConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings for the token cache
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// WixConfig holds settings for the remote platform API client
type WixConfig struct {
	APIBaseURL     string
	TimeoutSeconds int
	// Retry policy for 429/5xx responses
	RetryMaxAttempts int
	RetryBaseDelay   time.Duration
	RetryJitter      time.Duration
	RetryMaxDelay    time.Duration
	// Pagination
	PageSize      int
	MaxPages      int
	TokenCacheTTL time.Duration
	// AccountTokens maps external account IDs to API access tokens. In
	// production these come from environment or the config file, never
	// from source.
	AccountTokens map[string]string
}

// MigrationConfig holds migration engine settings
type MigrationConfig struct {
	// DefaultMode is the reference resolution mode when a run does not
	// specify one: "strict" or "lenient".
	DefaultMode string
	// ClaimRetries bounds lock-contention retries when claiming a record
	ClaimRetries int
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with WSM_ prefix (e.g., WSM_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("WSM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Wix: WixConfig{
			APIBaseURL:       v.GetString("wix.api_base_url"),
			TimeoutSeconds:   v.GetInt("wix.timeout_seconds"),
			RetryMaxAttempts: v.GetInt("wix.retry_max_attempts"),
			RetryBaseDelay:   v.GetDuration("wix.retry_base_delay"),
			RetryJitter:      v.GetDuration("wix.retry_jitter"),
			RetryMaxDelay:    v.GetDuration("wix.retry_max_delay"),
			PageSize:         v.GetInt("wix.page_size"),
			MaxPages:         v.GetInt("wix.max_pages"),
			TokenCacheTTL:    v.GetDuration("wix.token_cache_ttl"),
			AccountTokens:    v.GetStringMapString("wix.account_tokens"),
		},
		Migration: MigrationConfig{
			DefaultMode:  v.GetString("migration.default_mode"),
			ClaimRetries: v.GetInt("migration.claim_retries"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "wix-store-migrator"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "store_migrator"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.Wix.APIBaseURL == "" {
		cfg.Wix.APIBaseURL = "https://www.wixapis.com"
	}
	if cfg.Wix.TimeoutSeconds == 0 {
		cfg.Wix.TimeoutSeconds = 30
	}
	if cfg.Wix.RetryMaxAttempts == 0 {
		cfg.Wix.RetryMaxAttempts = 3
	}
	if cfg.Wix.RetryBaseDelay == 0 {
		cfg.Wix.RetryBaseDelay = 500 * time.Millisecond
	}
	if cfg.Wix.RetryJitter == 0 {
		cfg.Wix.RetryJitter = 400 * time.Millisecond
	}
	if cfg.Wix.RetryMaxDelay == 0 {
		cfg.Wix.RetryMaxDelay = 5 * time.Second
	}
	if cfg.Wix.PageSize == 0 {
		cfg.Wix.PageSize = 100
	}
	if cfg.Wix.MaxPages == 0 {
		cfg.Wix.MaxPages = 10000
	}
	if cfg.Wix.TokenCacheTTL == 0 {
		cfg.Wix.TokenCacheTTL = 5 * time.Minute
	}
	if cfg.Migration.DefaultMode == "" {
		cfg.Migration.DefaultMode = "strict"
	}
	if cfg.Migration.ClaimRetries == 0 {
		cfg.Migration.ClaimRetries = 3
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}
	if c.Migration.DefaultMode != "strict" && c.Migration.DefaultMode != "lenient" {
		return fmt.Errorf("migration.default_mode must be 'strict' or 'lenient', got %q", c.Migration.DefaultMode)
	}
	if c.Wix.RetryMaxAttempts < 1 {
		return fmt.Errorf("wix.retry_max_attempts must be at least 1")
	}

	if c.App.Env == "production" {
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
	}

	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// Addr returns the host:port address for the Redis connection
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
