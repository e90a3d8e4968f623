package app

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"wsup/internal/conn"
	"wsup/internal/library"
	"wsup/internal/paths"
	"wsup/internal/storage"
	"wsup/internal/storage/sqlite"
)

// App represents the application context
type App struct {
	Storage     storage.Store
	Library     *library.Store
	Connections *conn.Manager
	Config      *Config
}

// Config represents application configuration
type Config struct {
	DBPath string
}

// Options overrides application defaults from the command line.
type Options struct {
	// DBPath overrides the default database location when non-empty.
	DBPath string
	// Verbose mirrors the diagnostic log to stderr.
	Verbose bool
}

// New creates a new application instance
func New(opts Options) (*App, error) {
	if _, err := paths.ConfigDir(); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	dataDir, err := paths.DataDir()
	if err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	// The TUI owns the terminal, so diagnostics go to a file.
	logPath := filepath.Join(dataDir, "wsup.log")
	if f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err == nil {
		if opts.Verbose {
			log.SetOutput(io.MultiWriter(f, os.Stderr))
		} else {
			log.SetOutput(f)
		}
	}

	// Initialize storage
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = filepath.Join(dataDir, "wsup.db")
	}
	store, err := sqlite.New(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	ctx := context.Background()

	app := &App{
		Storage:     store,
		Library:     library.New(ctx, store),
		Connections: conn.NewManager(ctx, store),
		Config: &Config{
			DBPath: dbPath,
		},
	}

	return app, nil
}

// Close closes the application and releases resources
func (a *App) Close() error {
	if a.Connections != nil {
		a.Connections.CloseAll()
	}
	if a.Storage != nil {
		return a.Storage.Close()
	}
	return nil
}
