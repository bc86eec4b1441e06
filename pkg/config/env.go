package config

const EnvPrefix = "PAYABLES"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv = "PAYABLES_APP_ENV"
	EnvPort   = "PAYABLES_APP_PORT"

	EnvDBDSN  = "PAYABLES_DB_DSN"
	EnvDBHost = "PAYABLES_DB_HOST"
	EnvDBUser = "PAYABLES_DB_USER"
	EnvDBName = "PAYABLES_DB_NAME"

	EnvRedisURL = "PAYABLES_REDIS_URL"

	EnvJWTSecret  = "PAYABLES_JWT_SECRET"
	EnvJWTIssuer  = "PAYABLES_JWT_ISSUER"
	EnvJWTExpMins = "PAYABLES_JWT_EXPIRATION_MINUTES"

	EnvGCPProjectID = "PAYABLES_GCP_PROJECT_ID"
	EnvGCSBucket    = "PAYABLES_GCS_BUCKET_NAME"

	EnvPubSubExtractionTopic = "PAYABLES_PUBSUB_EXTRACTION_TOPIC"
	EnvPubSubExtractionSub   = "PAYABLES_PUBSUB_EXTRACTION_SUBSCRIPTION"

	EnvBankDebitAccount = "PAYABLES_BANK_DEBIT_ACCOUNT"
)

// legacyDBEnvVars are the discrete connection vars accepted when
// PAYABLES_DB_DSN is not set.
var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
