package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/autofeedr/autofeedr/internal/config"
	"github.com/autofeedr/autofeedr/internal/db"
	"github.com/autofeedr/autofeedr/internal/repository/sqlite"
	"github.com/autofeedr/autofeedr/internal/secrets"
	"github.com/autofeedr/autofeedr/internal/worker"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	var configPath = flag.String("config", "", "Path to config YAML file")
	flag.Parse()

	// Missing .env is fine, environment may already be set.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	worker.SetLogger(logger)

	log.Printf("Starting autofeedr worker version %s (built at %s)", version, buildTime)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	box, err := secrets.NewBox(cfg.TokenEncryptionKey)
	if err != nil {
		log.Fatalf("Failed to build secrets box: %v", err)
	}

	conn, err := db.New(ctx, cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	if err := db.Migrate(ctx, conn); err != nil {
		log.Fatalf("Failed to migrate DB: %v", err)
	}

	store := sqlite.New(conn, logger)

	w := worker.New(cfg, store, box)
	if err := w.Run(ctx); err != nil && err != context.Canceled {
		log.Fatalf("Worker stopped with error: %v", err)
	}

	if err := conn.Close(); err != nil {
		log.Printf("Error closing DB: %v", err)
	}

	log.Println("Worker exited")
}
