package config

// EnvPrefix namespaces every environment variable read by envconfig.
const EnvPrefix = "KASIRPOS"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv = "KASIRPOS_APP_ENV"
	EnvPort   = "KASIRPOS_APP_PORT"
	EnvDBDSN  = "KASIRPOS_DB_DSN"
	EnvDBHost = "KASIRPOS_DB_HOST"
	EnvDBUser = "KASIRPOS_DB_USER"
	EnvDBName = "KASIRPOS_DB_NAME"
)

var discreteDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
