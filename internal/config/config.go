// Package config reads the process configuration from environment
// variables. Every value has a usable default so a bare `casebook serve`
// starts with a local SQLite file and a raster directory next to it.
package config

import (
	"os"
	"strconv"
)

type Config struct {
	Database DatabaseConfig
	Sqlite   SqliteConfig
	Raster   RasterConfig
	Export   ExportConfig
	Web      WebConfig
}

type DatabaseConfig struct {
	URL          string // PostgreSQL connection URL; empty means SQLite fallback
	MaxOpenConns int    // Maximum open connections (default 25)
	MaxIdleConns int    // Maximum idle connections (default 5)
}

type SqliteConfig struct {
	Path string // SQLite database file (default casebook.db)
}

type RasterConfig struct {
	Dir string // directory holding the photo raster files (default rasters)
}

type ExportConfig struct {
	Preset  string // layout preset name from the embedded presets file
	Workers int    // concurrent export jobs (default 2)
}

type WebConfig struct {
	Port int // HTTP listen port (default 8080)
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envString reads an environment variable with a default.
func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func Load() *Config {
	return &Config{
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		Sqlite: SqliteConfig{
			Path: envString("SQLITE_PATH", "casebook.db"),
		},
		Raster: RasterConfig{
			Dir: envString("RASTER_DIR", "rasters"),
		},
		Export: ExportConfig{
			Preset:  envString("EXPORT_PRESET", "a4"),
			Workers: envInt("EXPORT_WORKERS", 2),
		},
		Web: WebConfig{
			Port: envInt("PORT", 8080),
		},
	}
}
