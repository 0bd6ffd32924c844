package config

// EnvPrefix is passed to envconfig; tags carry the full variable names.
const EnvPrefix = ""

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv          = "PORTAL_APP_ENV"
	EnvPort            = "PORTAL_APP_PORT"
	EnvLogLevel        = "PORTAL_LOG_LEVEL"
	EnvUpstreamBaseURL = "PORTAL_UPSTREAM_BASE_URL"
	EnvUpstreamTimeout = "PORTAL_UPSTREAM_TIMEOUT"
	EnvRedisURL        = "PORTAL_REDIS_URL"
	EnvCookieTTLDays   = "PORTAL_COOKIE_TTL_DAYS"
	EnvRefreshInterval = "PORTAL_SESSION_REFRESH_INTERVAL"
	EnvAccessTokenTTL  = "PORTAL_SESSION_ACCESS_TOKEN_TTL"
)
