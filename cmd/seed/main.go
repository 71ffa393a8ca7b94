// Command seed loads the demo catalog into postgres.
package main

import (
	"context"
	"log"
	"time"

	"storefront/internal/config"
	"storefront/internal/infrastructure/persistence/postgres"
	"storefront/internal/infrastructure/persistence/seed"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}

	if err := postgres.RunMigrations(cfg.DB); err != nil {
		log.Fatalf("run migrations failed: %v", err)
	}

	pool, err := postgres.NewPool(cfg.DB)
	if err != nil {
		log.Fatalf("postgres connection failed: %v", err)
	}
	defer pool.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	count, err := seed.Load(ctx, postgres.NewStore(pool))
	if err != nil {
		log.Fatalf("seed failed: %v", err)
	}
	log.Printf("seeded %d products", count)
}
