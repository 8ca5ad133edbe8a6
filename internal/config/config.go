package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	// Server
	Port               int    `mapstructure:"PORT"`
	Env                string `mapstructure:"APP_ENV"` // development | production
	WorkerPoolSize     int    `mapstructure:"WORKER_POOL_SIZE"`
	CORSOrigin         string `mapstructure:"CORS_ORIGIN"`
	RateLimitPerMinute int    `mapstructure:"RATE_LIMIT_PER_MINUTE"`
	Timezone           string `mapstructure:"TIMEZONE"`

	// Firebase
	FirebaseProjectID       string `mapstructure:"FIREBASE_PROJECT_ID"`
	FirebaseCredentialsFile string `mapstructure:"FIREBASE_CREDENTIALS_FILE"`

	// Redis
	RedisURL                 string `mapstructure:"REDIS_URL"`
	DashboardCacheTTLSeconds int    `mapstructure:"DASHBOARD_CACHE_TTL_SECONDS"`

	// WooCommerce
	WooURL            string `mapstructure:"WOO_URL"`
	WooConsumerKey    string `mapstructure:"WOO_CONSUMER_KEY"`
	WooConsumerSecret string `mapstructure:"WOO_CONSUMER_SECRET"`
	WooWebhookSecret  string `mapstructure:"WOO_WEBHOOK_SECRET"`
	WooSyncSchedule   string `mapstructure:"WOO_SYNC_SCHEDULE"`
	WooPushStock      bool   `mapstructure:"WOO_PUSH_STOCK"`

	// Alerts
	LowStockDigestSchedule string `mapstructure:"LOW_STOCK_DIGEST_SCHEDULE"`
	AlertEmail             string `mapstructure:"ALERT_EMAIL"`

	// SMTP
	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     int    `mapstructure:"SMTP_PORT"`
	SMTPUser     string `mapstructure:"SMTP_USER"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`

	// Logging
	LogFile       string `mapstructure:"LOG_FILE"`
	LogMaxSizeMB  int    `mapstructure:"LOG_MAX_SIZE_MB"`
	LogMaxBackups int    `mapstructure:"LOG_MAX_BACKUPS"`
	LogMaxAgeDays int    `mapstructure:"LOG_MAX_AGE_DAYS"`
}

// Load reads configuration from environment variables (and optional .env file).
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	setDefaults(v)

	// Optional .env file for local development; missing is fine
	_ = v.ReadInConfig()

	// AutomaticEnv only resolves keys viper already knows about, so every
	// key without a default has to be bound explicitly.
	for _, key := range []string{
		"FIREBASE_PROJECT_ID", "FIREBASE_CREDENTIALS_FILE",
		"WOO_URL", "WOO_CONSUMER_KEY", "WOO_CONSUMER_SECRET", "WOO_WEBHOOK_SECRET",
		"ALERT_EMAIL", "SMTP_HOST", "SMTP_USER", "SMTP_PASSWORD", "LOG_FILE",
	} {
		_ = v.BindEnv(key)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", 8000)
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("WORKER_POOL_SIZE", 4)
	v.SetDefault("CORS_ORIGIN", "*")
	v.SetDefault("RATE_LIMIT_PER_MINUTE", 600)
	v.SetDefault("TIMEZONE", "UTC")
	v.SetDefault("REDIS_URL", "redis://localhost:6379/0")
	v.SetDefault("DASHBOARD_CACHE_TTL_SECONDS", 300)
	v.SetDefault("WOO_SYNC_SCHEDULE", "@every 15m")
	v.SetDefault("WOO_PUSH_STOCK", true)
	v.SetDefault("LOW_STOCK_DIGEST_SCHEDULE", "0 8 * * *")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("LOG_MAX_SIZE_MB", 50)
	v.SetDefault("LOG_MAX_BACKUPS", 5)
	v.SetDefault("LOG_MAX_AGE_DAYS", 28)
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool { return c.Env == "production" }

// WooEnabled is true only when every credential needed to reach the shop is set.
func (c *Config) WooEnabled() bool {
	return c.WooURL != "" && c.WooConsumerKey != "" && c.WooConsumerSecret != ""
}

// DashboardCacheTTL returns the dashboard cache lifetime.
func (c *Config) DashboardCacheTTL() time.Duration {
	return time.Duration(c.DashboardCacheTTLSeconds) * time.Second
}

// Location resolves Timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
