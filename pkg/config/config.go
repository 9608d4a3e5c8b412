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
	Session       SessionConfig
	Inventory     InventoryConfig
	Audit         AuditConfig
	AuthRateLimit AuthRateLimitConfig
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
	Env          string `envconfig:"TIENDAPOS_APP_ENV" required:"true"`
	Port         string `envconfig:"TIENDAPOS_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"TIENDAPOS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TIENDAPOS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"TIENDAPOS_DB_DSN"`
	Driver string `envconfig:"TIENDAPOS_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"TIENDAPOS_DB_HOST"`
	LegacyPort     int    `envconfig:"TIENDAPOS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"TIENDAPOS_DB_USER"`
	LegacyPassword string `envconfig:"TIENDAPOS_DB_PASSWORD"`
	LegacyName     string `envconfig:"TIENDAPOS_DB_NAME"`
	LegacySSLMode  string `envconfig:"TIENDAPOS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"TIENDAPOS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"TIENDAPOS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"TIENDAPOS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"TIENDAPOS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"TIENDAPOS_REDIS_URL" required:"true"`
	Address      string        `envconfig:"TIENDAPOS_REDIS_ADDR"`
	Password     string        `envconfig:"TIENDAPOS_REDIS_PASSWORD"`
	DB           int           `envconfig:"TIENDAPOS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"TIENDAPOS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"TIENDAPOS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"TIENDAPOS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TIENDAPOS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"TIENDAPOS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"TIENDAPOS_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"TIENDAPOS_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"TIENDAPOS_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"TIENDAPOS_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"TIENDAPOS_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"TIENDAPOS_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"TIENDAPOS_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"TIENDAPOS_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"TIENDAPOS_ARGON_KEY_LEN" default:"32"`
}

// SessionConfig governs the redis-persisted employee and terminal sessions.
type SessionConfig struct {
	EmployeeTTL time.Duration `envconfig:"TIENDAPOS_EMPLOYEE_SESSION_TTL" default:"12h"`
	TerminalTTL time.Duration `envconfig:"TIENDAPOS_TERMINAL_SESSION_TTL" default:"720h"`
	ShiftTTL    time.Duration `envconfig:"TIENDAPOS_SHIFT_TTL" default:"8h"`
}

// InventoryConfig carries the topology policy knobs.
type InventoryConfig struct {
	ModeChangeCooldownDays int `envconfig:"TIENDAPOS_INVENTORY_MODE_COOLDOWN_DAYS" default:"60"`
}

// AuditConfig sizes the best-effort audit trail queue.
type AuditConfig struct {
	QueueSize    int           `envconfig:"TIENDAPOS_AUDIT_QUEUE_SIZE" default:"256"`
	WriteTimeout time.Duration `envconfig:"TIENDAPOS_AUDIT_WRITE_TIMEOUT" default:"5s"`
}

type AuthRateLimitConfig struct {
	LoginWindow          time.Duration `envconfig:"TIENDAPOS_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginIdentifierLimit int           `envconfig:"TIENDAPOS_AUTH_RATE_LIMIT_LOGIN_IDENTIFIER_LIMIT" default:"5"`
	LoginIPLimit         int           `envconfig:"TIENDAPOS_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

// FeatureFlagsConfig toggles optional startup behavior.
type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"TIENDAPOS_FEATURE_AUTO_MIGRATE" default:"false"`
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
