// Command main runs the database seeder on its own.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"placehold/internal/config"
	"placehold/internal/database"
	"placehold/internal/seed"

	"github.com/joho/godotenv"
)

func main() {
	url := flag.String("url", "", "Seed source URL (overrides SEED_URL)")
	timeout := flag.Duration("timeout", 30*time.Second, "Overall seeding timeout")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *url != "" {
		cfg.SeedURL = *url
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := seed.NewSeeder(db, cfg.SeedURL, cfg.SeedPassword).Run(ctx); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Println("Seeding complete")
}
