package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/matchreel-dev/matchreel/db"
	"github.com/matchreel-dev/matchreel/internal/auth"
	"github.com/matchreel-dev/matchreel/internal/config"
	"github.com/matchreel-dev/matchreel/internal/logger"
	"github.com/matchreel-dev/matchreel/internal/router"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logger.Init(os.Getenv("GIN_MODE") != "release"); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Log.Sync()

	if err := auth.InitJWTSecret(cfg.JWTSecret); err != nil {
		logger.Log.Fatalw("failed to initialize JWT secret", "error", err)
	}

	if err := db.ConnectDatabase(cfg.DatabaseDSN); err != nil {
		logger.Log.Fatalw("failed to connect to database", "error", err)
	}

	if err := db.MigrateDatabase(); err != nil {
		logger.Log.Fatalw("failed to migrate database", "error", err)
	}

	r := router.NewRouter(cfg)

	logger.Log.Infow("starting server", "port", cfg.Port)

	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Log.Fatalw("failed to start server", "error", err)
	}
}
