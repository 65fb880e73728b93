package config

// EnvPrefix is handed to envconfig; every field also carries its full name.
const EnvPrefix = "REVIEWS"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv   = "REVIEWS_APP_ENV"
	EnvPort     = "REVIEWS_APP_PORT"
	EnvLogLevel = "REVIEWS_LOG_LEVEL"

	EnvDBDSN  = "REVIEWS_DB_DSN"
	EnvDBHost = "REVIEWS_DB_HOST"
	EnvDBPort = "REVIEWS_DB_PORT"
	EnvDBUser = "REVIEWS_DB_USER"
	EnvDBPass = "REVIEWS_DB_PASSWORD"
	EnvDBName = "REVIEWS_DB_NAME"

	EnvRedisURL = "REVIEWS_REDIS_URL"

	EnvJWTSecret  = "REVIEWS_JWT_SECRET"
	EnvJWTIssuer  = "REVIEWS_JWT_ISSUER"
	EnvJWTExpMins = "REVIEWS_JWT_EXPIRATION_MINUTES"

	EnvCORSOrigins        = "REVIEWS_CORS_ALLOWED_ORIGINS"
	EnvSerializeRecompute = "REVIEWS_RATINGS_SERIALIZE_RECOMPUTE"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
