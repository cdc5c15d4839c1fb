package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App      AppConfig
	Service  ServiceConfig
	DB       DBConfig
	Redis    RedisConfig
	Stripe   StripeConfig
	Checkout CheckoutConfig
	Cron     CronConfig
	Mail     MailConfig
	GCS      GCSConfig
	Features FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"HARBORLIGHT_APP_ENV" required:"true"`
	Port         string `envconfig:"HARBORLIGHT_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"HARBORLIGHT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"HARBORLIGHT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"HARBORLIGHT_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"HARBORLIGHT_DB_DSN"`
	Driver string `envconfig:"HARBORLIGHT_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"HARBORLIGHT_DB_HOST"`
	LegacyPort     int    `envconfig:"HARBORLIGHT_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"HARBORLIGHT_DB_USER"`
	LegacyPassword string `envconfig:"HARBORLIGHT_DB_PASSWORD"`
	LegacyName     string `envconfig:"HARBORLIGHT_DB_NAME"`
	LegacySSLMode  string `envconfig:"HARBORLIGHT_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"HARBORLIGHT_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"HARBORLIGHT_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"HARBORLIGHT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"HARBORLIGHT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"HARBORLIGHT_REDIS_URL" required:"true"`
	Address      string        `envconfig:"HARBORLIGHT_REDIS_ADDR"`
	Password     string        `envconfig:"HARBORLIGHT_REDIS_PASSWORD"`
	DB           int           `envconfig:"HARBORLIGHT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"HARBORLIGHT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"HARBORLIGHT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"HARBORLIGHT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"HARBORLIGHT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"HARBORLIGHT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type StripeConfig struct {
	APIKey string `envconfig:"HARBORLIGHT_STRIPE_API_KEY"`
	Secret string `envconfig:"HARBORLIGHT_STRIPE_WEBHOOK_SECRET"`
	Env    string `envconfig:"HARBORLIGHT_STRIPE_ENV" default:"test"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

type CheckoutConfig struct {
	DefaultCurrency string `envconfig:"HARBORLIGHT_CHECKOUT_DEFAULT_CURRENCY" default:"usd"`
}

type CronConfig struct {
	ExpiryHourUTC   int           `envconfig:"HARBORLIGHT_CRON_EXPIRY_HOUR_UTC" default:"0"`
	ReminderHourUTC int           `envconfig:"HARBORLIGHT_CRON_REMINDER_HOUR_UTC" default:"9"`
	CycleInterval   time.Duration `envconfig:"HARBORLIGHT_CRON_CYCLE_INTERVAL" default:"1h"`
	LockTTL         time.Duration `envconfig:"HARBORLIGHT_CRON_LOCK_TTL" default:"55m"`
	IdempotencyTTL  time.Duration `envconfig:"HARBORLIGHT_WEBHOOK_IDEMPOTENCY_TTL" default:"720h"`
	ReminderDaysCSV string        `envconfig:"HARBORLIGHT_CRON_REMINDER_DAYS" default:"30,7"`
}

// ReminderDays parses the configured reminder offsets, falling back to 30/7.
func (c CronConfig) ReminderDays() []int {
	parts := strings.Split(c.ReminderDaysCSV, ",")
	days := make([]int, 0, len(parts))
	for _, part := range parts {
		var day int
		if _, err := fmt.Sscanf(strings.TrimSpace(part), "%d", &day); err == nil && day > 0 {
			days = append(days, day)
		}
	}
	if len(days) == 0 {
		return []int{30, 7}
	}
	return days
}

type MailConfig struct {
	SendgridAPIKey string        `envconfig:"HARBORLIGHT_SENDGRID_API_KEY"`
	FromAddress    string        `envconfig:"HARBORLIGHT_MAIL_FROM" default:"no-reply@harborlight.org"`
	FromName       string        `envconfig:"HARBORLIGHT_MAIL_FROM_NAME" default:"Harborlight Community Alliance"`
	BatchSize      int           `envconfig:"HARBORLIGHT_MAIL_BATCH_SIZE" default:"25"`
	PollInterval   time.Duration `envconfig:"HARBORLIGHT_MAIL_POLL_INTERVAL" default:"30s"`
	MaxAttempts    int           `envconfig:"HARBORLIGHT_MAIL_MAX_ATTEMPTS" default:"5"`
}

type GCSConfig struct {
	BucketName      string        `envconfig:"HARBORLIGHT_GCS_BUCKET_NAME"`
	UploadURLExpiry time.Duration `envconfig:"HARBORLIGHT_GCS_UPLOAD_URL_EXPIRY" default:"15m"`
	CredentialsJSON string        `envconfig:"HARBORLIGHT_GCP_CREDENTIALS_JSON"`
	CredentialsFile string        `envconfig:"HARBORLIGHT_GOOGLE_APPLICATION_CREDENTIALS"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"HARBORLIGHT_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
