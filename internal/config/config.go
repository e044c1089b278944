package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string `mapstructure:"PORT"`
	Env         string `mapstructure:"ENV"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	DBMaxConns  int32  `mapstructure:"DB_MAX_CONNS"`
	DBMinConns  int32  `mapstructure:"DB_MIN_CONNS"`
	RedisURL    string `mapstructure:"REDIS_URL"`

	JWTSecret    string   `mapstructure:"JWT_SECRET"`
	CORSOrigins  []string `mapstructure:"CORS_ORIGINS"`
	WebhookURLs  []string `mapstructure:"WEBHOOK_URLS"`

	// Autosave/recovery tuning. Local snapshots are written on a short
	// interval; the parallel remote draft write runs on a longer one.
	AutosaveIntervalSeconds    int `mapstructure:"AUTOSAVE_INTERVAL_SECONDS"`
	RemoteDraftIntervalSeconds int `mapstructure:"REMOTE_DRAFT_INTERVAL_SECONDS"`
	SnapshotFreshnessMinutes   int `mapstructure:"SNAPSHOT_FRESHNESS_MINUTES"`

	// DepthWarningRatio controls the disproportionate-depth warning: depth
	// greater than ratio * min(length, width) is flagged. There is no firm
	// clinical rule behind the default, so it stays configurable.
	DepthWarningRatio float64 `mapstructure:"DEPTH_WARNING_RATIO"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("AUTOSAVE_INTERVAL_SECONDS", 30)
	v.SetDefault("REMOTE_DRAFT_INTERVAL_SECONDS", 120)
	v.SetDefault("SNAPSHOT_FRESHNESS_MINUTES", 30)
	v.SetDefault("DEPTH_WARNING_RATIO", 2.0)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("REDIS_URL")
	v.BindEnv("JWT_SECRET")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("WEBHOOK_URLS")
	v.BindEnv("AUTOSAVE_INTERVAL_SECONDS")
	v.BindEnv("REMOTE_DRAFT_INTERVAL_SECONDS")
	v.BindEnv("SNAPSHOT_FRESHNESS_MINUTES")
	v.BindEnv("DEPTH_WARNING_RATIO")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		if origins := v.GetString("CORS_ORIGINS"); origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}
	if cfg.WebhookURLs == nil {
		if urls := v.GetString("WEBHOOK_URLS"); urls != "" {
			cfg.WebhookURLs = strings.Split(urls, ",")
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.IsDev() {
		log.Println("WARNING: Server is running in DEVELOPMENT mode (ENV=development).")
		log.Println("WARNING: DevAuthMiddleware is active — all requests get admin access.")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// AutosaveInterval is the period between local snapshot writes.
func (c *Config) AutosaveInterval() time.Duration {
	return time.Duration(c.AutosaveIntervalSeconds) * time.Second
}

// RemoteDraftInterval is the period between remote draft persistence writes.
func (c *Config) RemoteDraftInterval() time.Duration {
	return time.Duration(c.RemoteDraftIntervalSeconds) * time.Second
}

// SnapshotFreshness is the maximum age a snapshot may have and still be
// offered for recovery.
func (c *Config) SnapshotFreshness() time.Duration {
	return time.Duration(c.SnapshotFreshnessMinutes) * time.Minute
}

// Validate checks that the configuration is safe to run. Outside development
// a JWT secret is required so real authentication is enforced, and the
// autosave timings must be sane.
func (c *Config) Validate() error {
	if !c.IsDev() && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required when ENV is not development (current ENV=%q)", c.Env)
	}
	if c.AutosaveIntervalSeconds <= 0 {
		return fmt.Errorf("AUTOSAVE_INTERVAL_SECONDS must be positive, got %d", c.AutosaveIntervalSeconds)
	}
	if c.RemoteDraftIntervalSeconds < c.AutosaveIntervalSeconds {
		return fmt.Errorf("REMOTE_DRAFT_INTERVAL_SECONDS (%d) must not be shorter than AUTOSAVE_INTERVAL_SECONDS (%d)",
			c.RemoteDraftIntervalSeconds, c.AutosaveIntervalSeconds)
	}
	if c.SnapshotFreshnessMinutes <= 0 {
		return fmt.Errorf("SNAPSHOT_FRESHNESS_MINUTES must be positive, got %d", c.SnapshotFreshnessMinutes)
	}
	if c.DepthWarningRatio <= 0 {
		return fmt.Errorf("DEPTH_WARNING_RATIO must be positive, got %v", c.DepthWarningRatio)
	}
	return nil
}
