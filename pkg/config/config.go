package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Cron         CronConfig
	FeatureFlags FeatureFlagsConfig
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
	Env          string `envconfig:"DEALROOM_APP_ENV" required:"true"`
	Port         string `envconfig:"DEALROOM_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"DEALROOM_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"DEALROOM_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"DEALROOM_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"DEALROOM_DB_DSN"`
	Driver string `envconfig:"DEALROOM_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"DEALROOM_DB_HOST"`
	LegacyPort     int    `envconfig:"DEALROOM_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"DEALROOM_DB_USER"`
	LegacyPassword string `envconfig:"DEALROOM_DB_PASSWORD"`
	LegacyName     string `envconfig:"DEALROOM_DB_NAME"`
	LegacySSLMode  string `envconfig:"DEALROOM_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"DEALROOM_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"DEALROOM_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"DEALROOM_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"DEALROOM_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"DEALROOM_REDIS_URL" required:"true"`
	Address      string        `envconfig:"DEALROOM_REDIS_ADDR"`
	Password     string        `envconfig:"DEALROOM_REDIS_PASSWORD"`
	DB           int           `envconfig:"DEALROOM_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"DEALROOM_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"DEALROOM_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"DEALROOM_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"DEALROOM_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"DEALROOM_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"DEALROOM_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"DEALROOM_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"DEALROOM_JWT_EXPIRATION_MINUTES" required:"true"`
}

// Expiration returns the access token lifetime.
func (j JWTConfig) Expiration() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type CronConfig struct {
	ActivationReconcileInterval time.Duration `envconfig:"DEALROOM_CRON_ACTIVATION_RECONCILE_INTERVAL" default:"1m"`
	ActivationReconcileBatch    int           `envconfig:"DEALROOM_CRON_ACTIVATION_RECONCILE_BATCH" default:"50"`
	MembershipExpiryInterval    time.Duration `envconfig:"DEALROOM_CRON_MEMBERSHIP_EXPIRY_INTERVAL" default:"15m"`
	MembershipExpiryBatch       int           `envconfig:"DEALROOM_CRON_MEMBERSHIP_EXPIRY_BATCH" default:"200"`
	LockTTL                     time.Duration `envconfig:"DEALROOM_CRON_LOCK_TTL" default:"5m"`
	MetricsPort                 string        `envconfig:"DEALROOM_CRON_METRICS_PORT" default:"9091"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"DEALROOM_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"DEALROOM_AUTO_MIGRATE" default:"false"`
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
