// Package cli implements the pedalstack command-line interface.
//
// This package provides commands for optimizing pedalboard layouts from
// catalog fixtures, inspecting conflicts in exported layouts, serving the
// HTTP API, and managing the result cache. The CLI is built using cobra
// and supports verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - optimize: Place and route a pedalboard, exporting SVG/JSON artifacts
//   - conflicts: Check an exported layout document for violations
//   - serve: Run the HTTP API for the board editor
//   - cache: Manage the optimize result cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/pedalstack/pedalstack/pkg/buildinfo"
	"github.com/pedalstack/pedalstack/pkg/cache"
	"github.com/pedalstack/pedalstack/pkg/config"
	"github.com/pedalstack/pedalstack/pkg/engine"
)

// appName is the application name used for directories and display.
const appName = "pedalstack"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// configPath is the --config flag value, resolved lazily per command.
	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "pedalstack",
		Short:        "Pedalstack lays out pedalboards and routes their cables",
		Long:         `Pedalstack is a layout engine for guitar pedalboards: it places pedals on a board without overlaps, routes patch cables along the signal chain, and reports any conflicts it cannot resolve.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "path to TOML config file")

	// Attach the logger to the command context so subcommands and anything
	// they call can retrieve it with loggerFromContext.
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		return nil
	}

	root.AddCommand(c.optimizeCommand())
	root.AddCommand(c.conflictsCommand())
	root.AddCommand(c.chainCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())

	return root
}

// loadConfig resolves the effective configuration for a command run.
func (c *CLI) loadConfig() (config.Config, error) {
	return config.Load(c.configPath)
}

// newRunner creates an engine runner for CLI use.
func (c *CLI) newRunner(cfg config.Config, noCache bool) (*engine.Runner, error) {
	store, err := newCache(cfg, noCache)
	if err != nil {
		return nil, err
	}
	return engine.NewRunner(store, nil, c.Logger), nil
}

// newCache builds the cache backend the config selects. Failures to set up
// a file cache degrade to no caching rather than failing the command.
func newCache(cfg config.Config, noCache bool) (cache.Cache, error) {
	if noCache || cfg.Cache.Backend == config.CacheBackendNone {
		return cache.NewNullCache(), nil
	}
	if cfg.Cache.Backend == config.CacheBackendRedis {
		return cache.NewRedisCache(cfg.Cache.RedisURL)
	}
	dir := cfg.Cache.Dir
	if dir == "" {
		var err error
		if dir, err = cacheDir(); err != nil {
			return cache.NewNullCache(), nil
		}
	}
	return cache.NewFileCache(dir)
}

// cacheDir returns the cache directory using XDG standard (~/.cache/pedalstack/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
