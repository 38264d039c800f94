package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix namespaces every environment variable the service reads.
const EnvPrefix = "DANCERANK_"

// ConfigFileEnv names the variable holding an optional YAML config path.
const ConfigFileEnv = EnvPrefix + "CONFIG"

type Config struct {
	Addr                 string        `koanf:"addr"`
	DBDriver             string        `koanf:"db_driver"`
	DBDSN                string        `koanf:"db_dsn"`
	LogLevel             string        `koanf:"log_level"`
	RedisURL             string        `koanf:"redis_url"`
	LeaderboardCacheTTL  time.Duration `koanf:"leaderboard_cache_ttl"`
	LeaderboardMinTop    int           `koanf:"leaderboard_min_top"`
	LeaderboardMaxTop    int           `koanf:"leaderboard_max_top"` // 0 means uncapped
	PersistRetryAttempts int           `koanf:"persist_retry_attempts"`
	PersistRetryDelay    time.Duration `koanf:"persist_retry_delay"`
	PersistTimeout       time.Duration `koanf:"persist_timeout"`
	RefreshWorkerCount   int           `koanf:"refresh_worker_count"`
	RefreshQueueSize     int           `koanf:"refresh_queue_size"`
	CORSOrigins          string        `koanf:"cors_origins"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Addr:                 ":8080",
		DBDriver:             "sqlite3",
		DBDSN:                "file:dancerank.db",
		LogLevel:             "INFO",
		LeaderboardCacheTTL:  30 * time.Second,
		LeaderboardMinTop:    5,
		LeaderboardMaxTop:    0,
		PersistRetryAttempts: 3,
		PersistRetryDelay:    100 * time.Millisecond,
		PersistTimeout:       5 * time.Second,
		RefreshWorkerCount:   2,
		RefreshQueueSize:     64,
		CORSOrigins:          "*",
	}
}

// Load layers, from lowest to highest precedence: defaults, the YAML file
// named by DANCERANK_CONFIG, then DANCERANK_* environment variables. A .env
// file in the working directory is read into the environment first.
func Load() (Config, error) {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	k := koanf.New(".")

	if path := os.Getenv(ConfigFileEnv); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return Config{}, fmt.Errorf("load env: %w", err)
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.Addr == "" {
		return errors.New("DANCERANK_ADDR cannot be empty")
	}
	switch c.DBDriver {
	case "sqlite3", "postgres":
	default:
		return fmt.Errorf("DANCERANK_DB_DRIVER must be sqlite3 or postgres, got %q", c.DBDriver)
	}
	if c.DBDSN == "" {
		return errors.New("DANCERANK_DB_DSN cannot be empty")
	}
	if c.LeaderboardMinTop < 1 {
		return fmt.Errorf("DANCERANK_LEADERBOARD_MIN_TOP must be at least 1, got %d", c.LeaderboardMinTop)
	}
	if c.LeaderboardMaxTop < 0 {
		return fmt.Errorf("DANCERANK_LEADERBOARD_MAX_TOP cannot be negative, got %d", c.LeaderboardMaxTop)
	}
	if c.LeaderboardMaxTop > 0 && c.LeaderboardMaxTop < c.LeaderboardMinTop {
		return fmt.Errorf("DANCERANK_LEADERBOARD_MAX_TOP (%d) must not be below DANCERANK_LEADERBOARD_MIN_TOP (%d)", c.LeaderboardMaxTop, c.LeaderboardMinTop)
	}
	if c.LeaderboardCacheTTL < 0 {
		return errors.New("DANCERANK_LEADERBOARD_CACHE_TTL cannot be negative")
	}
	if c.PersistRetryAttempts < 1 {
		return fmt.Errorf("DANCERANK_PERSIST_RETRY_ATTEMPTS must be at least 1, got %d", c.PersistRetryAttempts)
	}
	if c.PersistRetryDelay < 0 {
		return errors.New("DANCERANK_PERSIST_RETRY_DELAY cannot be negative")
	}
	if c.PersistTimeout <= 0 {
		return errors.New("DANCERANK_PERSIST_TIMEOUT must be positive")
	}
	if c.RefreshWorkerCount < 1 {
		return fmt.Errorf("DANCERANK_REFRESH_WORKER_COUNT must be at least 1, got %d", c.RefreshWorkerCount)
	}
	if c.RefreshQueueSize < 1 {
		return fmt.Errorf("DANCERANK_REFRESH_QUEUE_SIZE must be at least 1, got %d", c.RefreshQueueSize)
	}
	return nil
}

// Origins splits CORSOrigins on commas.
func (c Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
