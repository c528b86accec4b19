package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	Eventing     EventingConfig
	PubSub       PubSubConfig
	GCP          GCPConfig
	Mail         MailConfig
	Outbox       OutboxConfig
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
	Env          string `envconfig:"WORKSHOP_APP_ENV" required:"true"`
	Port         string `envconfig:"WORKSHOP_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"WORKSHOP_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"WORKSHOP_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"WORKSHOP_DB_DSN"`
	Driver string `envconfig:"WORKSHOP_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"WORKSHOP_DB_HOST"`
	Port     int    `envconfig:"WORKSHOP_DB_PORT" default:"5432"`
	User     string `envconfig:"WORKSHOP_DB_USER"`
	Password string `envconfig:"WORKSHOP_DB_PASSWORD"`
	Name     string `envconfig:"WORKSHOP_DB_NAME"`
	SSLMode  string `envconfig:"WORKSHOP_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"WORKSHOP_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"WORKSHOP_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"WORKSHOP_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"WORKSHOP_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"WORKSHOP_REDIS_URL" required:"true"`
	Address      string        `envconfig:"WORKSHOP_REDIS_ADDR"`
	Password     string        `envconfig:"WORKSHOP_REDIS_PASSWORD"`
	DB           int           `envconfig:"WORKSHOP_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"WORKSHOP_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"WORKSHOP_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"WORKSHOP_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"WORKSHOP_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"WORKSHOP_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"WORKSHOP_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"WORKSHOP_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"WORKSHOP_JWT_EXPIRATION_MINUTES" default:"60"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool   `envconfig:"WORKSHOP_USE_SQLITE" default:"false"`
	AutoMigrate bool   `envconfig:"WORKSHOP_AUTO_MIGRATE" default:"false"`
	MotorItems  string `envconfig:"WORKSHOP_FEATURE_MOTOR_ITEMS" default:"staff"`
	// MotorItemsRolloutAt opens the motor-items step to customers from this
	// instant (RFC3339). Empty means staff only.
	MotorItemsRolloutAt string `envconfig:"WORKSHOP_FEATURE_MOTOR_ITEMS_ROLLOUT_AT"`
}

type EventingConfig struct {
	OutboxIdempotencyTTL time.Duration `envconfig:"WORKSHOP_EVENTING_IDEMPOTENCY_TTL" default:"720h"`
}

type PubSubConfig struct {
	OrdersTopic              string `envconfig:"WORKSHOP_PUBSUB_ORDERS_TOPIC" required:"true"`
	OrdersSubscription       string `envconfig:"WORKSHOP_PUBSUB_ORDERS_SUBSCRIPTION" required:"true"`
	NotificationTopic        string `envconfig:"WORKSHOP_PUBSUB_NOTIFICATION_TOPIC" default:"ws-notification-events"`
	NotificationSubscription string `envconfig:"WORKSHOP_PUBSUB_NOTIFICATION_SUBSCRIPTION" required:"true"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"WORKSHOP_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"WORKSHOP_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"WORKSHOP_GOOGLE_APPLICATION_CREDENTIALS"`
}

type MailConfig struct {
	FromAddress    string        `envconfig:"WORKSHOP_MAIL_FROM" default:"no-reply@workshop.local"`
	AdminAddress   string        `envconfig:"WORKSHOP_MAIL_ADMIN"`
	MaxAttempts    int           `envconfig:"WORKSHOP_MAIL_MAX_ATTEMPTS" default:"3"`
	AttemptTimeout time.Duration `envconfig:"WORKSHOP_MAIL_ATTEMPT_TIMEOUT" default:"120s"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"WORKSHOP_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"WORKSHOP_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"WORKSHOP_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	parts := map[string]string{
		"WORKSHOP_DB_HOST": db.Host,
		"WORKSHOP_DB_USER": db.User,
		"WORKSHOP_DB_NAME": db.Name,
	}
	for _, envName := range []string{"WORKSHOP_DB_HOST", "WORKSHOP_DB_USER", "WORKSHOP_DB_NAME"} {
		if parts[envName] == "" {
			missing = append(missing, envName)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either WORKSHOP_DB_DSN or %s are required", strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
