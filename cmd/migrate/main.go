package main

import (
	"context"
	"flag"
	"log"

	"gorm.io/gorm"

	"seedworks/internal/config"
	"seedworks/internal/database"
)

// Usage: migrate [up|down|status|redo|version]
func main() {
	flag.Parse()

	command := flag.Arg(0)
	if command == "" {
		command = "up"
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Database.Driver == "postgres" {
		if err := database.RunMigrations(context.Background(), cfg.GetDSN(), command, flag.Args()[min(1, flag.NArg()):]...); err != nil {
			log.Fatalf("Failed to apply migrations: %v", err)
		}
		log.Printf("Migration %s applied successfully", command)
		return
	}

	// mysql and sqlite are migrated from the models
	if command != "up" {
		log.Fatalf("Command %q is only supported on postgres", command)
	}

	dialector, err := database.Dialector(cfg.Database.Driver, cfg.GetDSN())
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	db, err := gorm.Open(dialector, database.GormConfig(cfg.Database.LogLevel))
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to migrate: %v", err)
	}
}
