package main

import (
	"context"
	"fmt"
	"os"

	"github.com/autofeedr/autofeedr/internal/config"
	"github.com/autofeedr/autofeedr/internal/db"
	"github.com/autofeedr/autofeedr/internal/secrets"
)

func main() {
	ctx := context.Background()
	cfg, err := config.LoadConfig("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	database, err := db.New(ctx, cfg.DatabasePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "DB init error: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	if err := db.Migrate(ctx, database); err != nil {
		fmt.Fprintf(os.Stderr, "Migration runner error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Database initialized successfully.")

	if cfg.TokenEncryptionKey == "" {
		key, err := secrets.GenerateKey()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Key generation error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("No AUTOFEEDR_TOKEN_ENCRYPTION_KEY configured. Generated one for you:")
		fmt.Println(key)
	}
}
