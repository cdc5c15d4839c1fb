package config

// EnvPrefix scopes every envconfig lookup; each field also carries an explicit
// HARBORLIGHT_* tag so the prefix is effectively documentation.
const EnvPrefix = "HARBORLIGHT"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "HARBORLIGHT_DB_DSN"
	EnvDBHost = "HARBORLIGHT_DB_HOST"
	EnvDBUser = "HARBORLIGHT_DB_USER"
	EnvDBName = "HARBORLIGHT_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
