// Package server parses registry server flags and launches the service.
package server

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/folioworks/folio/internal/api/httpapi"
	"github.com/folioworks/folio/internal/payout"
	entrypoint "github.com/folioworks/folio/internal/platform/cmd"
	"github.com/folioworks/folio/internal/registry/service"
	"github.com/folioworks/folio/internal/storage"
	"github.com/folioworks/folio/internal/storage/memory"
	"github.com/folioworks/folio/internal/storage/sqlite"
	"github.com/folioworks/folio/internal/telemetry"
)

const shutdownTimeout = 10 * time.Second

// Config holds registry server configuration.
type Config struct {
	Port int `env:"FOLIO_SERVER_PORT" envDefault:"8080"`
	// DBPath points at the SQLite database file. Empty runs the server
	// on the in-memory store, which loses all state on restart.
	DBPath string `env:"FOLIO_DB_PATH" envDefault:""`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The registry HTTP server port")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to the SQLite database file (empty for in-memory)")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the registry HTTP API service and blocks until ctx is done
// or the listener fails.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceRegistry, func(ctx context.Context) error {
		return serve(ctx, cfg)
	})
}

type combinedStore interface {
	storage.PageStore
	storage.RequestStore
	storage.ReactionStore
	storage.TelemetryStore
}

func serve(ctx context.Context, cfg Config) error {
	var store combinedStore
	if cfg.DBPath == "" {
		log.Print("no db path configured, using in-memory storage")
		store = memory.New()
	} else {
		sqliteStore, err := sqlite.Open(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open storage: %w", err)
		}
		defer func() {
			if closeErr := sqliteStore.Close(); closeErr != nil {
				log.Printf("close storage: %v", closeErr)
			}
		}()
		store = sqliteStore
	}

	registry := service.New(
		service.Stores{Page: store, Request: store, Reaction: store},
		service.WithTransferrer(payout.NewBank()),
		service.WithTelemetry(telemetry.NewEmitter(store)),
	)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: httpapi.New(registry),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("registry server listening on %s", httpServer.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve http: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}
