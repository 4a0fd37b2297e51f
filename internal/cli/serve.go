package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/pedalstack/pedalstack/internal/api"
	"github.com/pedalstack/pedalstack/pkg/catalog"
	"github.com/pedalstack/pedalstack/pkg/config"
	"github.com/pedalstack/pedalstack/pkg/engine"
	"github.com/pedalstack/pedalstack/pkg/errors"
	"github.com/pedalstack/pedalstack/pkg/session"
)

// serveCommand creates the "serve" command running the editor API.
func (c *CLI) serveCommand() *cobra.Command {
	var listen string
	var catalogPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API for the board editor",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if listen != "" {
				cfg.API.Listen = listen
			}
			if catalogPath != "" {
				cfg.Catalog.Backend = config.CatalogBackendFile
				cfg.Catalog.Path = catalogPath
			}

			store, err := newCatalogStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer store.Close(context.Background())

			runner, err := c.newRunner(cfg, false)
			if err != nil {
				return err
			}
			defer runner.Cache.Close()

			srv := api.NewServer(session.NewManager(), store, runner, engine.Options{
				Place:      cfg.PlaceOptions(),
				Route:      cfg.RouteOptions(),
				MaxRetries: cfg.Engine.MaxRetries,
				Logger:     c.Logger,
			}, c.Logger)

			printInfo("Serving on %s", cfg.API.Listen)
			return srv.ListenAndServe(cmd.Context(), cfg.API.Listen)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "listen address (overrides config)")
	cmd.Flags().StringVar(&catalogPath, "catalog", "", "catalog fixture file (overrides config)")
	return cmd
}

// newCatalogStore builds the catalog backend the config selects.
func newCatalogStore(ctx context.Context, cfg config.Config) (catalog.Store, error) {
	switch cfg.Catalog.Backend {
	case config.CatalogBackendMongo:
		return catalog.NewMongoStore(ctx, cfg.Catalog.MongoURI, cfg.Catalog.MongoDB)
	case config.CatalogBackendFile:
		if cfg.Catalog.Path == "" {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "file catalog backend requires a fixture path")
		}
		return catalog.LoadFile(cfg.Catalog.Path)
	}
	return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown catalog backend %q", cfg.Catalog.Backend)
}
