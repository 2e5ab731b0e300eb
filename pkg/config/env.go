package config

const (
	EnvPrefix = "SPA"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	CatalogSourceSquare = "square"
	CatalogSourceDB     = "db"

	EnvAppEnv    = "SPA_APP_ENV"
	EnvPort      = "SPA_APP_PORT"
	EnvDBDSN     = "SPA_DB_DSN"
	EnvDBHost    = "SPA_DB_HOST"
	EnvDBUser    = "SPA_DB_USER"
	EnvDBName    = "SPA_DB_NAME"
	EnvUseSQLite = "SPA_USE_SQLITE"

	EnvRedisURL = "SPA_REDIS_URL"

	EnvSquareAccessToken = "SPA_SQUARE_ACCESS_TOKEN"
	EnvSquareLocationID  = "SPA_SQUARE_LOCATION_ID"

	EnvAdminJWTSecret = "SPA_ADMIN_JWT_SECRET"

	EnvBusinessTimezone = "SPA_BUSINESS_TIMEZONE"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
