package main

import (
	"log"

	"ai-docchat-be/internal/bootstrap"
	"ai-docchat-be/internal/config"
	"ai-docchat-be/pkg/database"
)

// Standalone chat relay worker. Runs the same container as the REST binary
// but serves no HTTP; it only consumes prompt events and streams answers.
func main() {
	// 1. Load Configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Panicf("Invalid configuration: %v", err)
	}

	// 2. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 3. Bootstrap Dependencies (Container starts the worker internally)
	bootstrap.NewContainer(gormDB, cfg)

	log.Println("✅ Chat relay worker is running")
	select {}
}
