package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wayfind.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.ListenAddr != DefaultListenAddr {
		t.Errorf("ListenAddr = %q, want %q", cfg.ListenAddr, DefaultListenAddr)
	}
	if cfg.AnonTTL != DefaultAnonTTL {
		t.Errorf("AnonTTL = %d, want %d", cfg.AnonTTL, DefaultAnonTTL)
	}
	if cfg.Cache.Kind != DefaultCacheKind {
		t.Errorf("Cache.Kind = %q, want %q", cfg.Cache.Kind, DefaultCacheKind)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
listen_addr = ":9090"
anon_ttl = 60
site_fixture = "site.toml"

[cache]
kind = "redis"
redis_addr = "localhost:6379"

[mongo]
uri = "mongodb://localhost:27017"
database = "cms"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.ListenAddr != ":9090" {
		t.Errorf("ListenAddr = %q, want :9090", cfg.ListenAddr)
	}
	if cfg.AnonTTL != 60 {
		t.Errorf("AnonTTL = %d, want 60", cfg.AnonTTL)
	}
	if cfg.Cache.Kind != "redis" || cfg.Cache.RedisAddr != "localhost:6379" {
		t.Errorf("Cache = %+v, want redis at localhost:6379", cfg.Cache)
	}
	if cfg.Mongo.Database != "cms" {
		t.Errorf("Mongo.Database = %q, want cms", cfg.Mongo.Database)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `listen_addr = ":9090"`)
	t.Setenv("WAYFIND_LISTEN_ADDR", ":7070")
	t.Setenv("WAYFIND_ANON_TTL", "120")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.ListenAddr != ":7070" {
		t.Errorf("ListenAddr = %q, want env override :7070", cfg.ListenAddr)
	}
	if cfg.AnonTTL != 120 {
		t.Errorf("AnonTTL = %d, want env override 120", cfg.AnonTTL)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("Load() of missing file should fail")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"empty listen addr", func(c *Config) { c.ListenAddr = "" }, true},
		{"negative ttl", func(c *Config) { c.AnonTTL = -1 }, true},
		{"unknown cache kind", func(c *Config) { c.Cache.Kind = "memcached" }, true},
		{"redis without addr", func(c *Config) { c.Cache.Kind = "redis" }, true},
		{"redis with addr", func(c *Config) {
			c.Cache.Kind = "redis"
			c.Cache.RedisAddr = "localhost:6379"
		}, false},
		{"cache disabled", func(c *Config) { c.Cache.Kind = "none" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
