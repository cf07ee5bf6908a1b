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
	App      AppConfig
	DB       DBConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Password PasswordConfig
	Admin    AdminConfig
	Shop     ShopConfig
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
	Env          string `envconfig:"TINBARI_APP_ENV" default:"dev"`
	Port         string `envconfig:"TINBARI_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"TINBARI_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TINBARI_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"TINBARI_DB_DSN"`
	Driver string `envconfig:"TINBARI_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"TINBARI_DB_HOST"`
	Port     int    `envconfig:"TINBARI_DB_PORT" default:"5432"`
	User     string `envconfig:"TINBARI_DB_USER"`
	Password string `envconfig:"TINBARI_DB_PASSWORD"`
	Name     string `envconfig:"TINBARI_DB_NAME"`
	SSLMode  string `envconfig:"TINBARI_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"TINBARI_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"TINBARI_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"TINBARI_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"TINBARI_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	// Optional: leaving both URL and Address empty disables the report cache.
	URL          string        `envconfig:"TINBARI_REDIS_URL"`
	Address      string        `envconfig:"TINBARI_REDIS_ADDR"`
	Password     string        `envconfig:"TINBARI_REDIS_PASSWORD"`
	DB           int           `envconfig:"TINBARI_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"TINBARI_REDIS_POOL_SIZE" default:"5"`
	MinIdleConns int           `envconfig:"TINBARI_REDIS_MIN_IDLE_CONNS" default:"1"`
	DialTimeout  time.Duration `envconfig:"TINBARI_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TINBARI_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"TINBARI_REDIS_WRITE_TIMEOUT" default:"5s"`
}

func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

type JWTConfig struct {
	Secret            string `envconfig:"TINBARI_JWT_SECRET" default:"dev-secret-change-me"`
	Issuer            string `envconfig:"TINBARI_JWT_ISSUER" default:"tinbari"`
	ExpirationMinutes int    `envconfig:"TINBARI_JWT_EXPIRATION_MINUTES" default:"720"`
}

// Expiration returns the access token TTL.
func (j JWTConfig) Expiration() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"TINBARI_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"TINBARI_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"TINBARI_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"TINBARI_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"TINBARI_ARGON_KEY_LEN" default:"32"`
}

// AdminConfig seeds the bootstrap operator account on first start.
type AdminConfig struct {
	Name     string `envconfig:"TINBARI_ADMIN_NAME" default:"Admin"`
	Email    string `envconfig:"TINBARI_ADMIN_EMAIL" default:"admin@tinbari.local"`
	Password string `envconfig:"TINBARI_ADMIN_PASSWORD" default:"changeme"`
}

type ShopConfig struct {
	Name string `envconfig:"TINBARI_SHOP_NAME" default:"Tinbari"`
	// Minimum digits for a customer phone number on credit sales.
	MinPhoneDigits int `envconfig:"TINBARI_MIN_PHONE_DIGITS" default:"11"`
	// TTL for cached report summaries when redis is configured.
	ReportCacheTTL time.Duration `envconfig:"TINBARI_REPORT_CACHE_TTL" default:"5m"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"TINBARI_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"TINBARI_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	for env, value := range map[string]string{
		"TINBARI_DB_HOST": db.Host,
		"TINBARI_DB_USER": db.User,
		"TINBARI_DB_NAME": db.Name,
	} {
		if value == "" {
			missing = append(missing, env)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("either TINBARI_DB_DSN or %s are required", strings.Join(missing, ", "))
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
