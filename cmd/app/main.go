package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/benpsk/weather-gate/db"
	"github.com/benpsk/weather-gate/internal/auth"
	"github.com/benpsk/weather-gate/internal/config"
	"github.com/benpsk/weather-gate/internal/janitor"
	"github.com/benpsk/weather-gate/internal/postgres"
	"github.com/benpsk/weather-gate/internal/redisstore"
	"github.com/benpsk/weather-gate/internal/server"
	"github.com/benpsk/weather-gate/internal/session"
	"github.com/benpsk/weather-gate/internal/sqlite"
	"github.com/benpsk/weather-gate/internal/weather"
	"github.com/joho/godotenv"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("env: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, closeBackend, err := openBackend(ctx, cfg)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}
	defer closeBackend()

	if cfg.Weather.APIKey == "" {
		log.Println("weather: OPENWEATHER_API_KEY is empty; lookups will be rejected by the provider")
	}
	client := weather.NewClient(weather.ClientConfig{
		BaseURL:         cfg.Weather.APIURL,
		APIKey:          cfg.Weather.APIKey,
		HTTPClient:      &http.Client{Timeout: cfg.Weather.HTTPTimeout},
		BreakerFailures: cfg.Weather.BreakerFailures,
		BreakerCooldown: cfg.Weather.BreakerCooldown,
	})
	registry := weather.NewRegistry(client, cfg.Janitor.WorkflowIdleTTL)

	var purger janitor.Purger
	if p, ok := backend.(janitor.Purger); ok {
		purger = p
	}
	jan := janitor.New(cfg.Janitor.Interval, registry, purger)
	if err := jan.Start(); err != nil {
		log.Fatalf("janitor: %v", err)
	}
	defer jan.Stop()

	r := server.NewRouter(cfg, server.Dependencies{
		Backend:  backend,
		Decoder:  tokenDecoder(cfg),
		Registry: registry,
	})
	srv := server.New(cfg, r)

	log.Printf("Listening on %s (storage: %s)", listenURL(cfg.HTTPAddr), cfg.Storage.Driver)
	if err := srv.Start(ctx); err != nil {
		log.Fatalf("server: %v", err)
	}
}

// openBackend returns the server-side storage for the configured driver, or
// nil for cookie storage.
func openBackend(ctx context.Context, cfg config.Config) (session.Backend, func(), error) {
	noop := func() {}
	switch cfg.Storage.Driver {
	case config.DriverCookie:
		return nil, noop, nil
	case config.DriverMemory:
		return session.NewMemoryBackend(cfg.Auth.SessionTTL), noop, nil
	case config.DriverPostgres:
		pool, err := postgres.Connect(ctx, cfg.Database)
		if err != nil {
			return nil, noop, err
		}
		if err := postgres.EnsureTable(ctx, pool); err != nil {
			pool.Close()
			return nil, noop, err
		}
		applied, err := postgres.ApplyFS(ctx, pool, db.Migrations())
		if err != nil {
			pool.Close()
			return nil, noop, err
		}
		for _, name := range applied {
			log.Printf("migrate: applied %s", name)
		}
		return postgres.NewStorageStore(pool, cfg.Auth.SessionTTL), pool.Close, nil
	case config.DriverSQLite:
		store, err := sqlite.Open(ctx, cfg.SQLite.Path, cfg.Auth.SessionTTL)
		if err != nil {
			return nil, noop, err
		}
		return store, func() { _ = store.Close() }, nil
	case config.DriverRedis:
		client, err := redisstore.Connect(ctx, cfg.Redis)
		if err != nil {
			return nil, noop, err
		}
		return redisstore.NewStorageStore(client, cfg.Auth.SessionTTL), func() { _ = client.Close() }, nil
	default:
		return nil, noop, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}
}

func tokenDecoder(cfg config.Config) auth.TokenDecoder {
	if !cfg.Auth.VerifyIDToken {
		log.Println("auth: AUTH_VERIFY_ID_TOKEN=false, Google credentials are decoded without verification")
		return auth.UnverifiedDecoder{}
	}
	return auth.NewTokeninfoVerifier(cfg.Auth.GoogleClientID, nil, "")
}

func listenURL(addr string) string {
	listen := addr
	if strings.HasPrefix(listen, ":") {
		listen = "127.0.0.1" + listen
	} else if strings.HasPrefix(listen, "0.0.0.0:") {
		listen = "127.0.0.1" + listen[len("0.0.0.0"):]
	}
	if !strings.Contains(listen, "://") {
		listen = "http://" + listen
	}
	return listen
}
