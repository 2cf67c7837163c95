package config

// EnvPrefix is intentionally empty; every field names its variable explicitly.
const EnvPrefix = ""

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv          = "GASTROHUB_APP_ENV"
	EnvPort            = "GASTROHUB_APP_PORT"
	EnvDBDSN           = "GASTROHUB_DB_DSN"
	EnvDBHost          = "GASTROHUB_DB_HOST"
	EnvDBUser          = "GASTROHUB_DB_USER"
	EnvDBName          = "GASTROHUB_DB_NAME"
	EnvRedisURL        = "GASTROHUB_REDIS_URL"
	EnvPlatformBaseURL = "GASTROHUB_PLATFORM_BASE_URL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
