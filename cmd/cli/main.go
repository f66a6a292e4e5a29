package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/benpsk/weather-gate/db"
	"github.com/benpsk/weather-gate/internal/config"
	"github.com/benpsk/weather-gate/internal/postgres"
	"github.com/benpsk/weather-gate/internal/weather"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

const (
	defaultMigrationsDir = "db/migrations"
	usage                = "usage: %s [migrate|fresh|weather] [options]"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if len(os.Args) < 2 {
		log.Fatalf(usage, os.Args[0])
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("env: %v", err)
	}

	switch os.Args[1] {
	case "migrate":
		runMigrate(os.Args[2:])
	case "fresh":
		runFresh(os.Args[2:])
	case "weather":
		runWeather(os.Args[2:])
	default:
		log.Fatalf(usage, os.Args[0])
	}
}

func runMigrate(args []string) {
	flags := flag.NewFlagSet("migrate", flag.ExitOnError)
	migrationsDir := flags.String("path", defaultMigrationsDir, "directory containing .sql migrations (overrides embedded bundle)")
	pending := flags.Bool("pending", false, "list pending migrations without applying them")
	_ = flags.Parse(args)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool := connect(ctx)
	defer pool.Close()

	if err := postgres.EnsureTable(ctx, pool); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	migrations, err := migrationsFS(*migrationsDir)
	if err != nil {
		log.Fatalf("migrate: %v", err)
	}

	if *pending {
		names, err := postgres.Pending(ctx, pool, migrations)
		if err != nil {
			log.Fatalf("migrate: %v", err)
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return
	}

	applied, err := postgres.ApplyFS(ctx, pool, migrations)
	if err != nil {
		log.Fatalf("migrate: %v", err)
	}
	if len(applied) == 0 {
		log.Println("migrate: no migrations applied")
		return
	}
	for _, name := range applied {
		log.Printf("migrate: applied %s", name)
	}
}

func runFresh(args []string) {
	flags := flag.NewFlagSet("fresh", flag.ExitOnError)
	migrationsDir := flags.String("path", defaultMigrationsDir, "directory containing .sql migrations (overrides embedded bundle)")
	_ = flags.Parse(args)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.AppEnv != "development" {
		log.Fatalf("fresh: APP_ENV must be development (got %q)", cfg.AppEnv)
	}

	pool := connect(ctx)
	defer pool.Close()

	if err := postgres.ResetSchema(ctx, pool); err != nil {
		log.Fatalf("fresh: %v", err)
	}
	if err := postgres.EnsureTable(ctx, pool); err != nil {
		log.Fatalf("fresh: %v", err)
	}
	migrations, err := migrationsFS(*migrationsDir)
	if err != nil {
		log.Fatalf("fresh: %v", err)
	}
	applied, err := postgres.ApplyFS(ctx, pool, migrations)
	if err != nil {
		log.Fatalf("fresh: %v", err)
	}
	for _, name := range applied {
		log.Printf("fresh: applied %s", name)
	}
}

// runWeather performs one lookup and prints the snapshot as JSON.
func runWeather(args []string) {
	flags := flag.NewFlagSet("weather", flag.ExitOnError)
	timeout := flags.Duration("timeout", 15*time.Second, "request timeout")
	_ = flags.Parse(args)

	city := strings.TrimSpace(strings.Join(flags.Args(), " "))

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	client := weather.NewClient(weather.ClientConfig{
		BaseURL:    cfg.Weather.APIURL,
		APIKey:     cfg.Weather.APIKey,
		HTTPClient: &http.Client{Timeout: *timeout},
	})

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	view, err := weather.NewWorkflow(client).Search(ctx, city)
	if err != nil {
		log.Fatalf("weather: %v", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(view.Snapshot); err != nil {
		log.Fatalf("weather: %v", err)
	}
}

func connect(ctx context.Context) *pgxpool.Pool {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.Database.URL == "" {
		log.Fatal("database: DATABASE_URL is required")
	}
	pool, err := postgres.Connect(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	return pool
}

// migrationsFS prefers a migrations directory on disk and falls back to the
// embedded bundle when the default directory is absent.
func migrationsFS(path string) (fs.FS, error) {
	if path == "" {
		return db.Migrations(), nil
	}

	info, err := os.Stat(path)
	switch {
	case err == nil:
		if !info.IsDir() {
			return nil, fmt.Errorf("path %q is not a directory", path)
		}
		return os.DirFS(path), nil
	case errors.Is(err, os.ErrNotExist):
		if path == defaultMigrationsDir {
			return db.Migrations(), nil
		}
		return nil, fmt.Errorf("path %q not found", path)
	default:
		return nil, fmt.Errorf("stat path %q: %w", path, err)
	}
}
