package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jasperwreed/astroguide/internal/client"
	"github.com/jasperwreed/astroguide/internal/config"
	"github.com/jasperwreed/astroguide/internal/logger"
	"github.com/jasperwreed/astroguide/internal/notify"
	"github.com/jasperwreed/astroguide/internal/storage"
)

// app holds the collaborators every networked command needs.
type app struct {
	cfg     config.Config
	store   *storage.SQLiteStore
	api     *client.Client
	center  *notify.Center
	logFile *os.File
}

// openApp loads configuration, applies the --db and --api overrides, sets up
// logging to the log file and opens local state. sink receives toasts; nil
// sends them to the log so one-shot commands report each failure once,
// through the returned error.
func openApp(sink notify.Sink) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if dbPath != "" {
		cfg.Storage.DBPath = dbPath
	}
	if apiURL != "" {
		cfg.API.BaseURL = apiURL
	}

	a := &app{cfg: cfg}
	a.logFile = setupLogging(cfg)

	store, err := storage.NewSQLiteStore(cfg.Storage.DBPath)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	a.store = store

	clientID, err := store.ClientID()
	if err != nil {
		a.Close()
		return nil, err
	}

	a.api = client.New(cfg.API.BaseURL, clientID, client.WithTimeout(cfg.API.RequestTimeout))
	a.center = notify.NewCenter(sink, cfg.RateLimitCooldown)
	return a, nil
}

// openStore opens local state only. An empty database resolves through the
// configuration so ASTROGUIDE_DB and ASTROGUIDE_STATE_DIR apply.
func openStore(database string) (*storage.SQLiteStore, error) {
	if database == "" {
		cfg, err := config.Load()
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		database = cfg.Storage.DBPath
	}

	store, err := storage.NewSQLiteStore(database)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return store, nil
}

func (a *app) Close() {
	if a.store != nil {
		a.store.Close()
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
}

// setupLogging writes logs to the configured file so they never mix with
// command output or the TUI. It falls back to stderr.
func setupLogging(cfg config.Config) *os.File {
	if err := os.MkdirAll(filepath.Dir(cfg.Log.File), 0755); err == nil {
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err == nil {
			logger.Setup(cfg, f)
			return f
		}
	}
	logger.Setup(cfg, os.Stderr)
	return nil
}
