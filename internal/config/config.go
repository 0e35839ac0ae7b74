package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // reference zone must resolve on hosts without a zoneinfo database

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultTimeZone is the reference zone for appointment partitioning.
const DefaultTimeZone = "America/Sao_Paulo"

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	Schedule ScheduleConfig
	Mail     MailConfig
	Cache    CacheConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	RunMigrations   bool
	ConnMaxIdleSec  int32
	ConnMaxLifeSec  int32
	ConnectAttempts int
}

// RedisConfig holds Redis connection values. An empty Addr disables the session cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	ResetTokenTTLMinutes  int
	SessionIdleTTLMinutes int
	BcryptCost            int
	HashAlgorithm         string
	Secret                SecretPolicyConfig
}

// SecretPolicyConfig mirrors auth.SecretPolicy so config stays free of auth imports.
type SecretPolicyConfig struct {
	MinLength     int
	RequireUpper  bool
	RequireLower  bool
	RequireDigit  bool
	RequireSymbol bool
	Symbols       string
}

// ScheduleConfig controls appointment time semantics.
type ScheduleConfig struct {
	TimeZone string
}

// MailConfig selects the reset-token sender.
type MailConfig struct {
	Mode         string
	From         string
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	ResetURL     string
}

// CacheConfig configures the session lookup cache.
type CacheConfig struct {
	SessionTTLSeconds int
}

// Load reads configuration from environment variables, applying defaults where possible.
// When APP_CONFIG_FILE points to a YAML file its keys (lower-cased env names) act as fallbacks.
func Load() (*Config, error) {
	_ = godotenv.Load()

	src := &source{}
	if path := os.Getenv("APP_CONFIG_FILE"); path != "" {
		k := koanf.New(".")
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
		src.file = k
	}

	redisDB, err := strconv.Atoi(src.getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  src.getEnv("APP_NAME", "staffing-service"),
			Env:                   src.getEnv("APP_ENV", "development"),
			Host:                  src.getEnv("APP_HOST", "0.0.0.0"),
			Port:                  src.getEnv("APP_PORT", "8080"),
			Version:               src.getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: src.getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:             src.getEnv("POSTGRES_DSN", ""),
			MaxConns:        int32(src.getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:        int32(src.getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:   src.getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec:  int32(src.getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec:  int32(src.getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
			ConnectAttempts: src.getEnvAsInt("POSTGRES_CONNECT_ATTEMPTS", 5),
		},
		Redis: RedisConfig{
			Addr:     src.getEnv("REDIS_ADDR", ""),
			Password: src.getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: src.getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             src.getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: src.getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			ResetTokenTTLMinutes:  src.getEnvAsInt("AUTH_RESET_TOKEN_TTL_MINUTES", 0),
			SessionIdleTTLMinutes: src.getEnvAsInt("SESSION_IDLE_TTL_MINUTES", 0),
			BcryptCost:            src.getEnvAsInt("AUTH_BCRYPT_COST", 12),
			HashAlgorithm:         src.getEnv("AUTH_HASH_ALGORITHM", "argon2id"),
			Secret: SecretPolicyConfig{
				MinLength:     src.getEnvAsInt("AUTH_SECRET_MIN_LENGTH", 8),
				RequireUpper:  src.getEnvAsBool("AUTH_SECRET_REQUIRE_UPPER", true),
				RequireLower:  src.getEnvAsBool("AUTH_SECRET_REQUIRE_LOWER", true),
				RequireDigit:  src.getEnvAsBool("AUTH_SECRET_REQUIRE_DIGIT", true),
				RequireSymbol: src.getEnvAsBool("AUTH_SECRET_REQUIRE_SYMBOL", true),
				Symbols:       src.getEnv("AUTH_SECRET_SYMBOLS", "@$!%*?&"),
			},
		},
		Schedule: ScheduleConfig{
			TimeZone: src.getEnv("SCHEDULE_TIMEZONE", DefaultTimeZone),
		},
		Mail: MailConfig{
			Mode:         src.getEnv("MAIL_MODE", "log"),
			From:         src.getEnv("MAIL_FROM", "noreply@example.com"),
			SMTPHost:     src.getEnv("MAIL_SMTP_HOST", ""),
			SMTPPort:     src.getEnvAsInt("MAIL_SMTP_PORT", 587),
			SMTPUser:     src.getEnv("MAIL_SMTP_USER", ""),
			SMTPPassword: src.getEnv("MAIL_SMTP_PASSWORD", ""),
			ResetURL:     src.getEnv("MAIL_RESET_URL", ""),
		},
		Cache: CacheConfig{
			SessionTTLSeconds: src.getEnvAsInt("CACHE_SESSION_TTL_SECONDS", 300),
		},
	}

	if _, err := cfg.Schedule.Location(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Location resolves the reference time zone.
func (s ScheduleConfig) Location() (*time.Location, error) {
	name := s.TimeZone
	if name == "" {
		name = DefaultTimeZone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid SCHEDULE_TIMEZONE %q: %w", name, err)
	}
	return loc, nil
}

// AccessTokenTTL returns the JWT lifetime.
func (a AuthConfig) AccessTokenTTL() time.Duration {
	return minutes(a.AccessTokenTTLMinutes)
}

// ResetTokenTTL returns the reset-token lifetime; zero means tokens never expire.
func (a AuthConfig) ResetTokenTTL() time.Duration {
	return minutes(a.ResetTokenTTLMinutes)
}

// SessionIdleTTL returns the idle timeout after which a session is replaced; zero disables it.
func (a AuthConfig) SessionIdleTTL() time.Duration {
	return minutes(a.SessionIdleTTLMinutes)
}

// SessionTTL returns how long a session stays in the lookup cache.
func (c CacheConfig) SessionTTL() time.Duration {
	if c.SessionTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(c.SessionTTLSeconds) * time.Second
}

func minutes(n int) time.Duration {
	if n <= 0 {
		return 0
	}
	return time.Duration(n) * time.Minute
}

type source struct {
	file *koanf.Koanf
}

func (s *source) lookup(key string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	if s.file != nil {
		return s.file.String(strings.ToLower(key))
	}
	return ""
}

func (s *source) getEnv(key, fallback string) string {
	if val := s.lookup(key); val != "" {
		return val
	}
	return fallback
}

func (s *source) getEnvAsInt(key string, fallback int) int {
	val := s.lookup(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func (s *source) getEnvAsBool(key string, fallback bool) bool {
	val := s.lookup(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
