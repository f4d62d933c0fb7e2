package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all runtime settings for the portal.
type Config struct {
	Port     string `mapstructure:"PORT"`
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	// Remote billing API.
	BillingAPIURL     string        `mapstructure:"BILLING_API_URL"`
	BillingAPITimeout time.Duration `mapstructure:"BILLING_API_TIMEOUT"`

	CookieSecure     bool     `mapstructure:"COOKIE_SECURE"`
	// TrustProxy takes the client address from X-Forwarded-For / X-Real-IP.
	// Enable only behind a proxy that overwrites those headers.
	TrustProxy       bool     `mapstructure:"TRUST_PROXY"`
	AllowedOrigins   []string `mapstructure:"ALLOWED_ORIGINS"`
	AccessPolicyFile string   `mapstructure:"ACCESS_POLICY_FILE"`

	// Optional Redis for the payment instruction cache.
	RedisAddr           string        `mapstructure:"REDIS_ADDR"`
	RedisPassword       string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB             int           `mapstructure:"REDIS_DB"`
	InstructionCacheTTL time.Duration `mapstructure:"INSTRUCTION_CACHE_TTL"`

	SignInRatePerMin int `mapstructure:"SIGNIN_RATE_PER_MIN"`
	SignInBurst      int `mapstructure:"SIGNIN_BURST"`

	ShutdownTimeout time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`
}

var (
	ErrMissingBillingURL = errors.New("BILLING_API_URL environment variable is required")
	ErrInvalidBillingURL = errors.New("BILLING_API_URL must be an absolute http(s) URL")
	ErrInvalidRateLimit  = errors.New("SIGNIN_RATE_PER_MIN and SIGNIN_BURST must be positive")
)

// Load reads .env.local (if present), an optional config.yaml and the process
// environment, in increasing order of precedence.
func Load() (Config, error) {
	_ = godotenv.Load(".env.local")
	return FromEnv()
}

// FromEnv resolves the configuration without touching .env files.
func FromEnv() (Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()

	v.SetDefault("PORT", "5050")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("BILLING_API_URL", "")
	v.SetDefault("BILLING_API_TIMEOUT", 30*time.Second)
	v.SetDefault("COOKIE_SECURE", false)
	v.SetDefault("TRUST_PROXY", false)
	v.SetDefault("ALLOWED_ORIGINS", []string{})
	v.SetDefault("ACCESS_POLICY_FILE", "")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("INSTRUCTION_CACHE_TTL", 10*time.Minute)
	v.SetDefault("SIGNIN_RATE_PER_MIN", 20)
	v.SetDefault("SIGNIN_BURST", 5)
	v.SetDefault("SHUTDOWN_TIMEOUT", 5*time.Second)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.AllowedOrigins = splitOrigins(cfg.AllowedOrigins)
	return cfg, nil
}

// Validate checks the settings the portal cannot start without.
func (c Config) Validate() error {
	if c.BillingAPIURL == "" {
		return ErrMissingBillingURL
	}
	u, err := url.Parse(c.BillingAPIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidBillingURL
	}
	if c.SignInRatePerMin <= 0 || c.SignInBurst <= 0 {
		return ErrInvalidRateLimit
	}
	return nil
}

// IsProduction reports whether ENV selects the production logger.
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// splitOrigins normalises ALLOWED_ORIGINS whether it arrived as one
// comma-separated string or as a YAML list.
func splitOrigins(in []string) []string {
	var out []string
	for _, item := range in {
		for _, origin := range strings.Split(item, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				out = append(out, strings.TrimRight(origin, "/"))
			}
		}
	}
	return out
}
