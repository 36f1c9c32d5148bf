package main

import (
	"context"
	"errors"
	"log"
	"os"

	"eventhub/internal/config"
	"eventhub/internal/db"
	eventrepo "eventhub/internal/repository/event"
	userrepo "eventhub/internal/repository/user"
	"eventhub/internal/seed"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("load .env: %v", err)
	}
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[seed] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	events := eventrepo.NewPostgres(pool, logger)
	users := userrepo.NewPostgres(pool, logger)
	if err := seed.Apply(ctx, events, users, logger, cfg.SeedAdminEmail, cfg.SeedAdminPassword); err != nil {
		logger.Fatalf("seed apply: %v", err)
	}

	logger.Println("seed applied")
}
