package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	dErrors "paddock/pkg/domain-errors"
	pstrings "paddock/pkg/platform/strings"
)

// Source kinds accepted by PADDOCK_SOURCE.
const (
	SourceCSV = "csv"
	SourceSQL = "sql"
)

// Server captures process level configuration.
type Server struct {
	Addr            string
	Source          SourceConfig
	RefreshInterval time.Duration
	AdminToken      string
	LogLevel        string
	LogFormat       string
	CacheTTL        time.Duration
	RateLimit       RateLimitConfig
	Redis           RedisConfig
	Kafka           KafkaConfig
}

// SourceConfig selects where race records are read from.
type SourceConfig struct {
	Kind     string
	CSVDir   string
	DBDriver string
	DSN      string
}

// RateLimitConfig holds per client IP request budgets per minute. Zero disables a class.
type RateLimitConfig struct {
	PublicPerMinute int
	AdminPerMinute  int
}

// RedisConfig configures the graph document cache. An empty URL disables Redis.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig configures snapshot event publishing. No brokers disables Kafka.
type KafkaConfig struct {
	Brokers  []string
	Topic    string
	ClientID string
}

// Enabled reports whether any broker is configured.
func (k KafkaConfig) Enabled() bool { return len(k.Brokers) > 0 }

// LoadDotEnv loads an optional .env file. A missing file is not an error.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// FromEnv builds a Server config from PADDOCK_* environment variables so main stays lean.
func FromEnv() (Server, error) {
	var errs []string
	durationVar := func(key string, def time.Duration) time.Duration {
		d, err := duration(key, def)
		if err != nil {
			errs = append(errs, err.Error())
		}
		return d
	}
	intVar := func(key string, def int) int {
		n, err := integer(key, def)
		if err != nil {
			errs = append(errs, err.Error())
		}
		return n
	}

	cfg := Server{
		Addr: env("PADDOCK_ADDR", ":8080"),
		Source: SourceConfig{
			Kind:     strings.ToLower(env("PADDOCK_SOURCE", SourceCSV)),
			CSVDir:   env("PADDOCK_CSV_DIR", "data"),
			DBDriver: env("PADDOCK_DB_DRIVER", "postgres"),
			DSN:      os.Getenv("PADDOCK_DB_DSN"),
		},
		RefreshInterval: durationVar("PADDOCK_REFRESH_INTERVAL", time.Hour),
		AdminToken:      os.Getenv("PADDOCK_ADMIN_TOKEN"),
		LogLevel:        env("PADDOCK_LOG_LEVEL", "info"),
		LogFormat:       env("PADDOCK_LOG_FORMAT", "text"),
		CacheTTL:        durationVar("PADDOCK_CACHE_TTL", 10*time.Minute),
		RateLimit: RateLimitConfig{
			PublicPerMinute: intVar("PADDOCK_RATE_LIMIT_PUBLIC", 120),
			AdminPerMinute:  intVar("PADDOCK_RATE_LIMIT_ADMIN", 6),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("PADDOCK_REDIS_URL"),
			PoolSize:     intVar("PADDOCK_REDIS_POOL_SIZE", 10),
			MinIdleConns: intVar("PADDOCK_REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  durationVar("PADDOCK_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  durationVar("PADDOCK_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: durationVar("PADDOCK_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:  pstrings.SplitList(os.Getenv("PADDOCK_KAFKA_BROKERS"), ","),
			Topic:    env("PADDOCK_KAFKA_TOPIC", "paddock.snapshots"),
			ClientID: env("PADDOCK_KAFKA_CLIENT_ID", "paddock"),
		},
	}

	switch cfg.Source.Kind {
	case SourceCSV:
	case SourceSQL:
		if cfg.Source.DSN == "" {
			errs = append(errs, "PADDOCK_DB_DSN is required when PADDOCK_SOURCE=sql")
		}
	default:
		errs = append(errs, fmt.Sprintf("PADDOCK_SOURCE must be %q or %q, got %q", SourceCSV, SourceSQL, cfg.Source.Kind))
	}
	if cfg.RefreshInterval < 0 {
		errs = append(errs, "PADDOCK_REFRESH_INTERVAL must not be negative")
	}

	if len(errs) > 0 {
		return cfg, dErrors.New(dErrors.CodeValidation, "invalid configuration: "+strings.Join(errs, "; "))
	}
	return cfg, nil
}

func env(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func duration(key string, def time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return def, fmt.Errorf("%s: invalid duration %q", key, raw)
	}
	return d, nil
}

func integer(key string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def, fmt.Errorf("%s: invalid integer %q", key, raw)
	}
	return n, nil
}
