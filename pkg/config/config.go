package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	CORS          CORSConfig
	Ratings       RatingsConfig
	Metrics       MetricsConfig
	FeatureFlags  FeatureFlagsConfig
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
	Env          string `envconfig:"REVIEWS_APP_ENV" required:"true"`
	Port         string `envconfig:"REVIEWS_APP_PORT" default:"3000"`
	LogLevel     string `envconfig:"REVIEWS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"REVIEWS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd) || strings.EqualFold(a.Env, "production")
}

type DBConfig struct {
	DSN string `envconfig:"REVIEWS_DB_DSN"`

	LegacyHost     string `envconfig:"REVIEWS_DB_HOST"`
	LegacyPort     int    `envconfig:"REVIEWS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"REVIEWS_DB_USER"`
	LegacyPassword string `envconfig:"REVIEWS_DB_PASSWORD"`
	LegacyName     string `envconfig:"REVIEWS_DB_NAME"`
	LegacySSLMode  string `envconfig:"REVIEWS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"REVIEWS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"REVIEWS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"REVIEWS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"REVIEWS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// RedisConfig is optional: with neither URL nor Address the API runs without
// rate limiting and idempotency replay.
type RedisConfig struct {
	URL          string        `envconfig:"REVIEWS_REDIS_URL"`
	Address      string        `envconfig:"REVIEWS_REDIS_ADDR"`
	Password     string        `envconfig:"REVIEWS_REDIS_PASSWORD"`
	DB           int           `envconfig:"REVIEWS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"REVIEWS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"REVIEWS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"REVIEWS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"REVIEWS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"REVIEWS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type JWTConfig struct {
	Secret            string `envconfig:"REVIEWS_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"REVIEWS_JWT_ISSUER" default:"restaurant-reviews"`
	ExpirationMinutes int    `envconfig:"REVIEWS_JWT_EXPIRATION_MINUTES" default:"1440"`
}

// TTL returns the access token lifetime.
func (j JWTConfig) TTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"REVIEWS_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"REVIEWS_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"REVIEWS_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"REVIEWS_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"REVIEWS_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"REVIEWS_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"REVIEWS_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"REVIEWS_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"REVIEWS_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"REVIEWS_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"REVIEWS_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"REVIEWS_CORS_ALLOWED_ORIGINS" default:"*"`
}

// RatingsConfig controls rating recompute. SerializeRecompute defaults to true,
// which goes beyond the unserialized recompute of the original service: runs
// for the same restaurant take an in-process lock. The computed summary is the
// same either way; set it to false to restore the unserialized behavior.
type RatingsConfig struct {
	SerializeRecompute bool `envconfig:"REVIEWS_RATINGS_SERIALIZE_RECOMPUTE" default:"true"`
}

type MetricsConfig struct {
	Enabled bool   `envconfig:"REVIEWS_METRICS_ENABLED" default:"true"`
	Path    string `envconfig:"REVIEWS_METRICS_PATH" default:"/metrics"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"REVIEWS_AUTO_MIGRATE" default:"false"`
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
