package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App       AppConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	Logger    LoggerConfig
	Auth      AuthConfig
	Panel     PanelConfig
	UserCache UserCacheConfig
	Events    EventsConfig
	Worker    WorkerConfig
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
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr           string
	Password       string
	DB             int
	TimeoutSeconds int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines session parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
}

// PanelConfig describes how to reach the hosting control panel API.
// Token and Password are both optional; whichever is set enables its strategy.
type PanelConfig struct {
	BaseURL        string
	Username       string
	Token          string
	Password       string
	TimeoutSeconds int
	MockFallback   bool
	AdminEmail     string
}

// UserCacheConfig controls the panel user mirror.
type UserCacheConfig struct {
	TTLSeconds int
}

// EventsConfig holds optional event streaming settings.
type EventsConfig struct {
	KafkaBrokers  []string
	ActivityTopic string
}

// WorkerConfig controls background loops. Zero disables a loop.
type WorkerConfig struct {
	UsageSyncIntervalSeconds int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxConns := int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10))
	minConns := int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2))
	runMigrations := getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true)
	connMaxIdle := int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30))
	connMaxLife := int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300))

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "panel-dashboard"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       maxConns,
			MinConns:       minConns,
			RunMigrations:  runMigrations,
			ConnMaxIdleSec: connMaxIdle,
			ConnMaxLifeSec: connMaxLife,
		},
		Redis: RedisConfig{
			Addr:           getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password:       os.Getenv("REDIS_PASSWORD"),
			DB:             redisDB,
			TimeoutSeconds: getEnvAsInt("REDIS_TIMEOUT_SECONDS", 3),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", getEnv("SESSION_SECRET", "dev-secret")),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60*24),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
		},
		Panel: LoadPanel(),
		UserCache: UserCacheConfig{
			TTLSeconds: getEnvAsInt("USER_CACHE_TTL_SECONDS", 300),
		},
		Events: EventsConfig{
			KafkaBrokers:  getEnvAsList("KAFKA_BROKERS"),
			ActivityTopic: getEnv("KAFKA_ACTIVITY_TOPIC", "panel.activity"),
		},
		Worker: WorkerConfig{
			UsageSyncIntervalSeconds: getEnvAsInt("USAGE_SYNC_INTERVAL_SECONDS", 0),
		},
	}

	return cfg, nil
}

// LoadPanel reads the panel block from the environment. It is called on every panel
// request so credentials can be rotated or injected without a restart.
func LoadPanel() PanelConfig {
	return PanelConfig{
		BaseURL:        strings.TrimRight(strings.TrimSpace(os.Getenv("CYBERPANEL_URL")), "/"),
		Username:       strings.TrimSpace(os.Getenv("CYBERPANEL_USERNAME")),
		Token:          os.Getenv("CYBERPANEL_TOKEN"),
		Password:       os.Getenv("CYBERPANEL_PASSWORD"),
		TimeoutSeconds: getEnvAsInt("CYBERPANEL_TIMEOUT_SECONDS", 15),
		MockFallback:   getEnvAsBool("PANEL_MOCK_FALLBACK", false),
		AdminEmail:     getEnv("ADMIN_EMAIL", "admin@cyberpanel.local"),
	}
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

// Timeout bounds dialing and each command, including the startup ping.
func (r RedisConfig) Timeout() time.Duration {
	if r.TimeoutSeconds <= 0 {
		return 3 * time.Second
	}
	return time.Duration(r.TimeoutSeconds) * time.Second
}

// Timeout bounds a single outbound panel attempt.
func (p PanelConfig) Timeout() time.Duration {
	if p.TimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(p.TimeoutSeconds) * time.Second
}

// TTL returns the freshness window of the user mirror.
func (u UserCacheConfig) TTL() time.Duration {
	if u.TTLSeconds <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(u.TTLSeconds) * time.Second
}

// UsageSyncInterval returns the usage sync period, zero when disabled.
func (w WorkerConfig) UsageSyncInterval() time.Duration {
	if w.UsageSyncIntervalSeconds <= 0 {
		return 0
	}
	return time.Duration(w.UsageSyncIntervalSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsList(key string) []string {
	val := os.Getenv(key)
	if val == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
