package main

import (
	"context"
	"database/sql"
	"log"

	"github.com/joho/godotenv"

	"nearby-route-service/internal/adapters/repositories"
	"nearby-route-service/internal/config"
	"nearby-route-service/internal/platform/db"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg := config.Load()
	if cfg.DSN() == "" {
		log.Fatalf("no connection string for driver %q (set DATABASE_URL or DB_PATH)", cfg.DBDriver)
	}

	conn, err := db.Open(cfg.DBDriver, cfg.DSN())
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	initAndSeed(conn, cfg.DBDriver, cfg.SeedPath)
}

func initAndSeed(conn *sql.DB, driver, seedPath string) {
	ctx := context.Background()

	log.Printf("Initializing database schema... driver=%s", driver)
	if err := repositories.InitSchema(ctx, conn); err != nil {
		log.Fatalf("schema initialization failed: %v", err)
	}
	log.Println("Schema ready.")

	log.Printf("Seeding database... path=%s", seedPath)
	if err := repositories.SeedFromJSON(ctx, conn, driver, seedPath); err != nil {
		log.Fatalf("seeding failed: %v", err)
	}
	log.Println("Seeding complete.")
}
