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
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	Import       ImportConfig
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
	Env          string `envconfig:"KASIRPOS_APP_ENV" required:"true"`
	Port         string `envconfig:"KASIRPOS_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"KASIRPOS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"KASIRPOS_LOG_WARN_STACK" default:"false"`
	Timezone     string `envconfig:"KASIRPOS_APP_TIMEZONE" default:"Asia/Jakarta"`
}

// Location resolves the configured reporting timezone.
func (a AppConfig) Location() (*time.Location, error) {
	if a.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(a.Timezone)
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"KASIRPOS_DB_DSN"`
	Driver string `envconfig:"KASIRPOS_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"KASIRPOS_DB_HOST"`
	Port     int    `envconfig:"KASIRPOS_DB_PORT" default:"5432"`
	User     string `envconfig:"KASIRPOS_DB_USER"`
	Password string `envconfig:"KASIRPOS_DB_PASSWORD"`
	Name     string `envconfig:"KASIRPOS_DB_NAME"`
	SSLMode  string `envconfig:"KASIRPOS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"KASIRPOS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"KASIRPOS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"KASIRPOS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"KASIRPOS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"KASIRPOS_REDIS_URL" required:"true"`
	Address      string        `envconfig:"KASIRPOS_REDIS_ADDR"`
	Password     string        `envconfig:"KASIRPOS_REDIS_PASSWORD"`
	DB           int           `envconfig:"KASIRPOS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"KASIRPOS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"KASIRPOS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"KASIRPOS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"KASIRPOS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"KASIRPOS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"KASIRPOS_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"KASIRPOS_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"KASIRPOS_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"KASIRPOS_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"KASIRPOS_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"KASIRPOS_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"KASIRPOS_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"KASIRPOS_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"KASIRPOS_ARGON_KEY_LEN" default:"32"`
}

type ImportConfig struct {
	MaxUploadMB int `envconfig:"KASIRPOS_IMPORT_MAX_UPLOAD_MB" default:"2"`
}

// MaxUploadBytes returns the multipart upload cap in bytes.
func (i ImportConfig) MaxUploadBytes() int64 {
	if i.MaxUploadMB <= 0 {
		return 2 << 20
	}
	return int64(i.MaxUploadMB) << 20
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"KASIRPOS_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	discrete := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range discreteDBEnvVars {
		if discrete[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
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
