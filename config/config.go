package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	API       APIConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Portal    PortalConfig
	RateLimit RateLimitConfig
}

type AppConfig struct {
	Port        string
	Env         string
	LogLevel    string
	CORSOrigins []string
}

// APIConfig points at the clinic REST backend that owns all durable state.
type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
}

// JWTConfig holds the optional shared secret. When Secret is empty tokens are
// inspected without signature verification and only their expiry is checked.
type JWTConfig struct {
	Secret string
}

type PortalConfig struct {
	RosterCacheTTL time.Duration
	ViewIdleTTL    time.Duration
}

// RateLimitConfig controls the per-client limiter. TrustProxy makes the
// limiter key on X-Forwarded-For / X-Real-IP; enable it only behind a proxy
// that overwrites those headers.
type RateLimitConfig struct {
	RPS        float64
	Burst      int
	TrustProxy bool
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("REDIS_ENABLED", false)
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("RATE_LIMIT_RPS", 20.0)
	viper.SetDefault("RATE_LIMIT_BURST", 40)
	viper.SetDefault("RATE_LIMIT_TRUST_PROXY", false)

	// The .env file is optional; plain environment variables are enough.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	config := &Config{
		App: AppConfig{
			Port:        viper.GetString("APP_PORT"),
			Env:         viper.GetString("APP_ENV"),
			LogLevel:    viper.GetString("LOG_LEVEL"),
			CORSOrigins: splitList(viper.GetString("CORS_ALLOWED_ORIGINS")),
		},
		API: APIConfig{
			BaseURL: viper.GetString("API_BASE_URL"),
			Timeout: parseDuration("API_TIMEOUT", 15*time.Second),
		},
		Redis: RedisConfig{
			Enabled:  viper.GetBool("REDIS_ENABLED"),
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret: viper.GetString("JWT_SECRET"),
		},
		Portal: PortalConfig{
			RosterCacheTTL: parseDuration("ROSTER_CACHE_TTL", 10*time.Minute),
			ViewIdleTTL:    parseDuration("VIEW_IDLE_TTL", 30*time.Minute),
		},
		RateLimit: RateLimitConfig{
			RPS:        viper.GetFloat64("RATE_LIMIT_RPS"),
			Burst:      viper.GetInt("RATE_LIMIT_BURST"),
			TrustProxy: viper.GetBool("RATE_LIMIT_TRUST_PROXY"),
		},
	}

	if config.API.BaseURL == "" {
		return nil, errors.New("API_BASE_URL is required")
	}

	return config, nil
}

func parseDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(viper.GetString(key))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// splitList parses a comma-separated env value, dropping blanks.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
