// Package config loads the service configuration.
//
// Configuration is a TOML file with environment overrides: a .env file (if
// present) is loaded first, then WAYFIND_* variables take precedence over the
// file values. Everything has a sensible default, so a bare `wayfind serve`
// works with an in-memory site.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Defaults applied before the file and environment are consulted.
const (
	DefaultListenAddr = ":8080"
	DefaultAnonTTL    = 300
	DefaultCacheKind  = "memory"
)

// Config is the full service configuration.
type Config struct {
	// ListenAddr is the HTTP bind address.
	ListenAddr string `toml:"listen_addr"`

	// AnonTTL caps anonymous response cacheability, in seconds.
	AnonTTL int `toml:"anon_ttl"`

	// SiteFixture is the path to a TOML site fixture. Empty means an empty
	// in-memory site.
	SiteFixture string `toml:"site_fixture"`

	Cache CacheConfig `toml:"cache"`
	Mongo MongoConfig `toml:"mongo"`
}

// CacheConfig selects and configures the page cache backend.
type CacheConfig struct {
	// Kind is "memory", "redis", or "none".
	Kind string `toml:"kind"`

	// RedisAddr is the redis host:port, used when Kind is "redis".
	RedisAddr string `toml:"redis_addr"`

	// RedisPassword is optional.
	RedisPassword string `toml:"redis_password"`

	// RedisDB selects the redis database number.
	RedisDB int `toml:"redis_db"`
}

// MongoConfig configures the optional MongoDB entity store. When URI is
// empty the service uses the in-memory store seeded from the site fixture.
type MongoConfig struct {
	URI      string `toml:"uri"`
	Database string `toml:"database"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		ListenAddr: DefaultListenAddr,
		AnonTTL:    DefaultAnonTTL,
		Cache: CacheConfig{
			Kind: DefaultCacheKind,
		},
		Mongo: MongoConfig{
			Database: "wayfind",
		},
	}
}

// Load builds the configuration from defaults, an optional TOML file, and
// the environment, in that order of precedence. path may be empty.
func Load(path string) (Config, error) {
	// Missing .env is the normal case, not an error.
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnv overrides file values with WAYFIND_* environment variables.
func applyEnv(cfg *Config) {
	if v := os.Getenv("WAYFIND_LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("WAYFIND_ANON_TTL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.AnonTTL = n
		}
	}
	if v := os.Getenv("WAYFIND_SITE_FIXTURE"); v != "" {
		cfg.SiteFixture = v
	}
	if v := os.Getenv("WAYFIND_CACHE_KIND"); v != "" {
		cfg.Cache.Kind = v
	}
	if v := os.Getenv("WAYFIND_REDIS_ADDR"); v != "" {
		cfg.Cache.RedisAddr = v
	}
	if v := os.Getenv("WAYFIND_REDIS_PASSWORD"); v != "" {
		cfg.Cache.RedisPassword = v
	}
	if v := os.Getenv("WAYFIND_MONGO_URI"); v != "" {
		cfg.Mongo.URI = v
	}
	if v := os.Getenv("WAYFIND_MONGO_DATABASE"); v != "" {
		cfg.Mongo.Database = v
	}
}

// Validate checks the configuration for values that cannot work.
func (c Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("listen_addr must not be empty")
	}
	if c.AnonTTL < 0 {
		return fmt.Errorf("anon_ttl must be >= 0, got %d", c.AnonTTL)
	}
	switch c.Cache.Kind {
	case "memory", "none":
	case "redis":
		if c.Cache.RedisAddr == "" {
			return fmt.Errorf("cache.redis_addr is required when cache.kind is redis")
		}
	default:
		return fmt.Errorf("cache.kind must be memory, redis, or none, got %q", c.Cache.Kind)
	}
	return nil
}
