package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Queue drivers supported by the generation pipeline.
const (
	QueueDriverMemory = "memory"
	QueueDriverRedis  = "redis"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	CORS       CORSConfig
	Log        LogConfig
	Gemini     GeminiConfig
	Generation GenerationConfig
	Metrics    MetricsConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	AutoMigrate  bool
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// GeminiConfig holds the text-generation upstream settings. APIKey may be
// empty at start-up; it is checked every time a generation job runs.
type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// GenerationConfig tunes the class generation queue, status cache and reaper.
type GenerationConfig struct {
	QueueDriver       string
	QueueKey          string
	Workers           int
	BufferSize        int
	StaleAfter        time.Duration
	PendingStaleAfter time.Duration
	ReaperInterval    time.Duration
	StatusCacheTTL    time.Duration
	StatusCacheOn     bool
	RecoverOnBoot     bool
	RecoverPageSize   int
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := fromViper(v)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings under which the reaper could fail a generation
// that is still running.
func (c *Config) Validate() error {
	if c.Generation.StaleAfter <= c.Gemini.Timeout {
		return fmt.Errorf("GENERATION_STALE_AFTER (%s) must be greater than GEMINI_TIMEOUT (%s)",
			c.Generation.StaleAfter, c.Gemini.Timeout)
	}
	if c.Generation.PendingStaleAfter < c.Generation.StaleAfter {
		return fmt.Errorf("GENERATION_PENDING_STALE_AFTER (%s) must not be less than GENERATION_STALE_AFTER (%s)",
			c.Generation.PendingStaleAfter, c.Generation.StaleAfter)
	}
	return nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
		AutoMigrate:  v.GetBool("DB_AUTO_MIGRATE"),
	}

	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("REDIS_ENABLED"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{Secret: v.GetString("JWT_SECRET")}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Gemini = GeminiConfig{
		APIKey:  v.GetString("GEMINI_API_KEY"),
		Model:   v.GetString("GEMINI_MODEL"),
		BaseURL: v.GetString("GEMINI_BASE_URL"),
		Timeout: parseDuration(v.GetString("GEMINI_TIMEOUT"), 120*time.Second),
	}

	driver := strings.ToLower(strings.TrimSpace(v.GetString("GENERATION_QUEUE_DRIVER")))
	if driver != QueueDriverRedis {
		driver = QueueDriverMemory
	}
	cfg.Generation = GenerationConfig{
		QueueDriver:       driver,
		QueueKey:          v.GetString("GENERATION_QUEUE_KEY"),
		Workers:           v.GetInt("GENERATION_WORKERS"),
		BufferSize:        v.GetInt("GENERATION_BUFFER_SIZE"),
		StaleAfter:        parseDuration(v.GetString("GENERATION_STALE_AFTER"), 10*time.Minute),
		PendingStaleAfter: parseDuration(v.GetString("GENERATION_PENDING_STALE_AFTER"), time.Hour),
		ReaperInterval:    parseDuration(v.GetString("GENERATION_REAPER_INTERVAL"), time.Minute),
		StatusCacheTTL:    parseDuration(v.GetString("GENERATION_STATUS_CACHE_TTL"), 10*time.Minute),
		StatusCacheOn:     v.GetBool("ENABLE_STATUS_CACHE"),
		RecoverOnBoot:     v.GetBool("GENERATION_RECOVER_ON_BOOT"),
		RecoverPageSize:   v.GetInt("GENERATION_RECOVER_PAGE_SIZE"),
	}

	cfg.Metrics = MetricsConfig{Enabled: v.GetBool("ENABLE_METRICS")}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "swim_school")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_AUTO_MIGRATE", true)

	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("GEMINI_API_KEY", "")
	v.SetDefault("GEMINI_MODEL", "gemini-2.5-flash")
	v.SetDefault("GEMINI_BASE_URL", "")
	v.SetDefault("GEMINI_TIMEOUT", "120s")

	v.SetDefault("GENERATION_QUEUE_DRIVER", QueueDriverMemory)
	v.SetDefault("GENERATION_QUEUE_KEY", "queue:class_generations")
	v.SetDefault("GENERATION_WORKERS", 2)
	v.SetDefault("GENERATION_BUFFER_SIZE", 64)
	v.SetDefault("GENERATION_STALE_AFTER", "10m")
	v.SetDefault("GENERATION_PENDING_STALE_AFTER", "1h")
	v.SetDefault("GENERATION_REAPER_INTERVAL", "1m")
	v.SetDefault("GENERATION_STATUS_CACHE_TTL", "10m")
	v.SetDefault("ENABLE_STATUS_CACHE", false)
	v.SetDefault("GENERATION_RECOVER_ON_BOOT", true)
	v.SetDefault("GENERATION_RECOVER_PAGE_SIZE", 50)

	v.SetDefault("ENABLE_METRICS", true)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
