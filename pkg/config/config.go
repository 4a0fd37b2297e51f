// Package config loads the TOML configuration file shared by the CLI and
// the API server. Everything has a working default; a missing config file
// is not an error.
package config

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/pedalstack/pedalstack/pkg/errors"
	"github.com/pedalstack/pedalstack/pkg/place"
	"github.com/pedalstack/pedalstack/pkg/route"
)

// Cache backend names.
const (
	CacheBackendNone  = "none"
	CacheBackendFile  = "file"
	CacheBackendRedis = "redis"
)

// Catalog backend names.
const (
	CatalogBackendFile  = "file"
	CatalogBackendMongo = "mongo"
)

// Config is the full configuration document.
type Config struct {
	Engine  EngineConfig  `toml:"engine"`
	Cache   CacheConfig   `toml:"cache"`
	Catalog CatalogConfig `toml:"catalog"`
	API     APIConfig     `toml:"api"`
}

// EngineConfig holds the optimizer tunables.
type EngineConfig struct {
	// OrderWeight scales the chain-order readability penalty against raw
	// cable length in the placement cost.
	OrderWeight float64 `toml:"order_weight"`

	// Spacing is the minimum clearance between footprints, in inches.
	Spacing float64 `toml:"spacing"`

	// MaxSteps bounds the placement local search.
	MaxSteps int `toml:"max_steps"`

	// MaxRetries bounds the conflict-driven re-optimization loop.
	MaxRetries int `toml:"max_retries"`

	// Clearance is the cable routing margin around pedal bodies.
	Clearance float64 `toml:"clearance"`

	// MaxNodes caps the routing visibility graph per edge.
	MaxNodes int `toml:"max_nodes"`

	// AllowRotate permits 90-degree pedal rotation during placement.
	AllowRotate bool `toml:"allow_rotate"`
}

// CacheConfig selects and configures the result cache backend.
type CacheConfig struct {
	Backend  string `toml:"backend"` // none | file | redis
	Dir      string `toml:"dir"`     // file backend cache directory
	RedisURL string `toml:"redis_url"`
}

// CatalogConfig selects and configures the gear catalog backend.
type CatalogConfig struct {
	Backend  string `toml:"backend"` // file | mongo
	Path     string `toml:"path"`    // file backend fixture path
	MongoURI string `toml:"mongo_uri"`
	MongoDB  string `toml:"mongo_db"`
}

// APIConfig configures the HTTP server.
type APIConfig struct {
	Listen string `toml:"listen"`
}

// Default returns the configuration used when no file overrides it.
func Default() Config {
	return Config{
		Engine: EngineConfig{
			OrderWeight: place.DefaultOrderWeight,
			Spacing:     place.DefaultSpacing,
			MaxSteps:    place.DefaultMaxSteps,
			MaxRetries:  3,
			Clearance:   route.DefaultClearance,
			MaxNodes:    route.DefaultMaxNodes,
		},
		Cache: CacheConfig{
			Backend: CacheBackendFile,
		},
		Catalog: CatalogConfig{
			Backend: CatalogBackendFile,
			MongoDB: "pedalstack",
		},
		API: APIConfig{
			Listen: ":8080",
		},
	}
}

// Load reads a TOML config file over the defaults. A missing file returns
// the defaults unchanged; a malformed file or invalid values return
// INVALID_CONFIG.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parsing config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks value ranges and backend names.
func (c *Config) Validate() error {
	if c.Engine.OrderWeight < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "engine.order_weight must be non-negative, got %v", c.Engine.OrderWeight)
	}
	if c.Engine.Spacing < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "engine.spacing must be non-negative, got %v", c.Engine.Spacing)
	}
	if c.Engine.MaxSteps < 0 || c.Engine.MaxRetries < 0 || c.Engine.MaxNodes < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "engine budgets must be non-negative")
	}
	switch c.Cache.Backend {
	case CacheBackendNone, CacheBackendFile, CacheBackendRedis:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q", c.Cache.Backend)
	}
	if c.Cache.Backend == CacheBackendRedis && c.Cache.RedisURL == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "cache backend %q requires redis_url", c.Cache.Backend)
	}
	switch c.Catalog.Backend {
	case CatalogBackendFile, CatalogBackendMongo:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown catalog backend %q", c.Catalog.Backend)
	}
	if c.Catalog.Backend == CatalogBackendMongo && c.Catalog.MongoURI == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "catalog backend %q requires mongo_uri", c.Catalog.Backend)
	}
	return nil
}

// PlaceOptions converts the engine config into placement options.
func (c *Config) PlaceOptions() place.Options {
	return place.Options{
		OrderWeight: c.Engine.OrderWeight,
		Spacing:     c.Engine.Spacing,
		MaxSteps:    c.Engine.MaxSteps,
		AllowRotate: c.Engine.AllowRotate,
	}
}

// RouteOptions converts the engine config into routing options.
func (c *Config) RouteOptions() route.Options {
	return route.Options{
		Clearance: c.Engine.Clearance,
		MaxNodes:  c.Engine.MaxNodes,
	}
}
