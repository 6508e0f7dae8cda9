package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"crop-yield-service/internal/adapters/secondary/memcatalog"
	"crop-yield-service/internal/adapters/secondary/postgres"
	"crop-yield-service/internal/config"
	ports "crop-yield-service/internal/core/ports/output"
	"crop-yield-service/internal/core/services"
)

func newVarietyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "variety <crop_type> <location>",
		Short: "resolve the default variety for a crop at a location",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, closeFn, err := a.catalog(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			location := args[1]
			sel, err := services.NewVarietyResolver(catalog, nil).SelectDefaultVariety(cmd.Context(), args[0], &location)
			if err != nil {
				return err
			}
			return a.print(cmd.OutOrStdout(), sel)
		},
	}
}

func newCatalogCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "manage the variety catalog",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "import",
		Short: "upsert the YAML seed into the postgres catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			varieties, err := memcatalog.LoadSeed(a.cfg.Catalog.SeedPath)
			if err != nil {
				return err
			}
			pool, err := openPool(cmd.Context(), a.cfg.Database)
			if err != nil {
				return err
			}
			defer pool.Close()

			n, err := postgres.UpsertVarieties(cmd.Context(), pool, varieties)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d varieties from %s\n", n, a.cfg.Catalog.SeedPath)
			return nil
		},
	})
	return cmd
}

// catalog opens the configured backend. The returned func releases it.
func (a *app) catalog(ctx context.Context) (ports.VarietyCatalog, func(), error) {
	if a.cfg.Catalog.Backend == config.CatalogBackendPostgres {
		pool, err := openPool(ctx, a.cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		return postgres.NewVarietyCatalog(pool), pool.Close, nil
	}
	catalog, err := memcatalog.Load(a.cfg.Catalog.SeedPath)
	if err != nil {
		return nil, nil, err
	}
	return catalog, func() {}, nil
}

func openPool(ctx context.Context, db config.DatabaseConfig) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, db.DSN())
	if err != nil {
		return nil, fmt.Errorf("create db pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return pool, nil
}
