package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pedalstack/pedalstack/pkg/errors"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != Default() {
		t.Errorf("got %+v, want defaults", cfg)
	}
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	doc := `
[engine]
order_weight = 2.5
max_retries = 5

[cache]
backend = "redis"
redis_url = "redis://localhost:6379/0"

[api]
listen = ":9090"
`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Engine.OrderWeight != 2.5 {
		t.Errorf("OrderWeight = %v", cfg.Engine.OrderWeight)
	}
	if cfg.Engine.MaxRetries != 5 {
		t.Errorf("MaxRetries = %d", cfg.Engine.MaxRetries)
	}
	if cfg.Cache.Backend != CacheBackendRedis {
		t.Errorf("Cache.Backend = %q", cfg.Cache.Backend)
	}
	if cfg.API.Listen != ":9090" {
		t.Errorf("API.Listen = %q", cfg.API.Listen)
	}
	// Unset sections keep their defaults.
	if cfg.Catalog.Backend != CatalogBackendFile {
		t.Errorf("Catalog.Backend = %q", cfg.Catalog.Backend)
	}
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("engine = nonsense"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("got %v, want INVALID_CONFIG", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{name: "defaults", mutate: func(*Config) {}, ok: true},
		{
			name:   "negative order weight",
			mutate: func(c *Config) { c.Engine.OrderWeight = -1 },
		},
		{
			name:   "unknown cache backend",
			mutate: func(c *Config) { c.Cache.Backend = "memcached" },
		},
		{
			name:   "redis without url",
			mutate: func(c *Config) { c.Cache.Backend = CacheBackendRedis },
		},
		{
			name:   "mongo without uri",
			mutate: func(c *Config) { c.Catalog.Backend = CatalogBackendMongo },
		},
		{
			name: "mongo with uri",
			mutate: func(c *Config) {
				c.Catalog.Backend = CatalogBackendMongo
				c.Catalog.MongoURI = "mongodb://localhost"
			},
			ok: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok && !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("got %v, want INVALID_CONFIG", err)
			}
		})
	}
}

func TestOptionConversion(t *testing.T) {
	cfg := Default()
	cfg.Engine.OrderWeight = 1.25
	cfg.Engine.MaxNodes = 64

	if got := cfg.PlaceOptions().OrderWeight; got != 1.25 {
		t.Errorf("PlaceOptions().OrderWeight = %v", got)
	}
	if got := cfg.RouteOptions().MaxNodes; got != 64 {
		t.Errorf("RouteOptions().MaxNodes = %d", got)
	}
}
