package config

// EnvPrefix namespaces every environment variable the service reads.
const EnvPrefix = "TIENDAPOS"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

const (
	EnvAppEnv   = "TIENDAPOS_APP_ENV"
	EnvPort     = "TIENDAPOS_APP_PORT"
	EnvDBDSN    = "TIENDAPOS_DB_DSN"
	EnvDBHost   = "TIENDAPOS_DB_HOST"
	EnvDBUser   = "TIENDAPOS_DB_USER"
	EnvDBName   = "TIENDAPOS_DB_NAME"
	EnvRedisURL = "TIENDAPOS_REDIS_URL"

	EnvJWTSecret              = "TIENDAPOS_JWT_SECRET"
	EnvJWTIssuer              = "TIENDAPOS_JWT_ISSUER"
	EnvJWTExpMins             = "TIENDAPOS_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "TIENDAPOS_REFRESH_TOKEN_TTL_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
