package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	Upstream      UpstreamConfig
	Cookie        CookieConfig
	Session       SessionConfig
	Redis         RedisConfig
	AuthRateLimit AuthRateLimitConfig
	CORS          CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Upstream.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Session.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"PORTAL_APP_ENV" required:"true"`
	Port         string `envconfig:"PORTAL_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"PORTAL_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PORTAL_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev) || strings.EqualFold(a.Env, "dev")
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd) || strings.EqualFold(a.Env, "prod")
}

// UpstreamConfig points the portal at the platform REST API.
type UpstreamConfig struct {
	BaseURL string        `envconfig:"PORTAL_UPSTREAM_BASE_URL" required:"true"`
	Timeout time.Duration `envconfig:"PORTAL_UPSTREAM_TIMEOUT" default:"15s"`
}

func (u UpstreamConfig) validate() error {
	parsed, err := url.Parse(u.BaseURL)
	if err != nil {
		return fmt.Errorf("parsing upstream base url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("upstream base url must be absolute, got %q", u.BaseURL)
	}
	if u.Timeout <= 0 {
		return fmt.Errorf("upstream timeout must be positive")
	}
	return nil
}

// CookieConfig describes the credential cookies the portal reads and writes.
// The refresh cookie is set HTTP-only by the upstream; the portal only
// forwards and clears it.
type CookieConfig struct {
	AccessName  string `envconfig:"PORTAL_COOKIE_ACCESS_NAME" default:"access_token"`
	RefreshName string `envconfig:"PORTAL_COOKIE_REFRESH_NAME" default:"refresh_token"`
	TTLDays     int    `envconfig:"PORTAL_COOKIE_TTL_DAYS" default:"7"`
	Domain      string `envconfig:"PORTAL_COOKIE_DOMAIN"`
	Secure      bool   `envconfig:"PORTAL_COOKIE_SECURE" default:"false"`
}

// TTL returns the nominal access cookie lifetime. The embedded token expiry
// is much shorter; the cookie outliving it is what makes silent refresh work.
func (c CookieConfig) TTL() time.Duration {
	if c.TTLDays <= 0 {
		return 0
	}
	return time.Duration(c.TTLDays) * 24 * time.Hour
}

// SessionConfig tunes the refresh coordinator.
type SessionConfig struct {
	RefreshInterval time.Duration `envconfig:"PORTAL_SESSION_REFRESH_INTERVAL" default:"13m"`
	AccessTokenTTL  time.Duration `envconfig:"PORTAL_SESSION_ACCESS_TOKEN_TTL" default:"15m"`
}

func (s SessionConfig) validate() error {
	if s.RefreshInterval <= 0 {
		return fmt.Errorf("session refresh interval must be positive")
	}
	if s.AccessTokenTTL <= 0 {
		return fmt.Errorf("access token ttl must be positive")
	}
	if s.RefreshInterval >= s.AccessTokenTTL {
		return fmt.Errorf("refresh interval (%s) must be shorter than the access token ttl (%s)", s.RefreshInterval, s.AccessTokenTTL)
	}
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"PORTAL_REDIS_URL" required:"true"`
	Address      string        `envconfig:"PORTAL_REDIS_ADDR"`
	Password     string        `envconfig:"PORTAL_REDIS_PASSWORD"`
	DB           int           `envconfig:"PORTAL_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PORTAL_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PORTAL_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PORTAL_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PORTAL_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PORTAL_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// CORSConfig lists the browser origins allowed to hit the API surface.
type CORSConfig struct {
	AllowedOrigins []string `envconfig:"PORTAL_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"PORTAL_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginPhoneLimit int           `envconfig:"PORTAL_AUTH_RATE_LIMIT_LOGIN_PHONE_LIMIT" default:"5"`
	LoginIPLimit    int           `envconfig:"PORTAL_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	ResetWindow     time.Duration `envconfig:"PORTAL_AUTH_RATE_LIMIT_RESET_WINDOW" default:"5m"`
	ResetPhoneLimit int           `envconfig:"PORTAL_AUTH_RATE_LIMIT_RESET_PHONE_LIMIT" default:"3"`
	ResetIPLimit    int           `envconfig:"PORTAL_AUTH_RATE_LIMIT_RESET_IP_LIMIT" default:"20"`
}
