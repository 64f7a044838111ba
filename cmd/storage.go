package cmd

import (
	"fmt"

	"github.com/pavelhrncir/casebook/internal/config"
	"github.com/pavelhrncir/casebook/internal/raster"
	"github.com/pavelhrncir/casebook/internal/store"
	"github.com/pavelhrncir/casebook/internal/store/postgres"
	"github.com/pavelhrncir/casebook/internal/store/sqlite"
)

// openGateway opens the configured case store: PostgreSQL when DATABASE_URL
// is set, the local SQLite file otherwise.
func openGateway(cfg *config.Config) (store.Gateway, error) {
	if cfg.Database.URL != "" {
		fmt.Printf("Connecting to PostgreSQL database...\n")
		gw, err := postgres.Open(&cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to open PostgreSQL store: %w", err)
		}
		return gw, nil
	}

	fmt.Printf("Using SQLite database %s\n", cfg.Sqlite.Path)
	gw, err := sqlite.Open(&cfg.Sqlite)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite store: %w", err)
	}
	return gw, nil
}

// openRasters opens the raster directory. The --rasters flag wins over the
// configured directory.
func openRasters(cfg *config.Config) (*raster.DirStore, error) {
	dir := cfg.Raster.Dir
	if rasterDir != "" {
		dir = rasterDir
	}
	rs, err := raster.NewDirStore(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open raster directory: %w", err)
	}
	return rs, nil
}
