package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"nearby-route-service/internal/adapters/locations"
	"nearby-route-service/internal/adapters/repositories"
	"nearby-route-service/internal/api"
	"nearby-route-service/internal/config"
	"nearby-route-service/internal/domain"
	"nearby-route-service/internal/live"
	"nearby-route-service/internal/platform/db"
	"nearby-route-service/internal/ports"
	"nearby-route-service/internal/services"
)

// main is the application composition root.
// It wires concrete adapters (SQL roster, Redis positions, WebSocket feed)
// behind ports and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg := config.Load()

	conn, err := db.Open(cfg.DBDriver, cfg.DSN())
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	// Initialize schema and seed demo data on startup for local runs.
	if err := initAndSeed(conn, cfg.DBDriver, cfg.SeedPath); err != nil {
		log.Fatal(err)
	}
	repo := repositories.NewSQLConsumerRepository(conn, cfg.DBDriver)

	var (
		store *locations.RedisLocationStore
		sinks []ports.PositionSink
	)
	if cfg.RedisAddr != "" {
		store, err = openLocationStore(cfg.RedisAddr, cfg.PositionTTL)
		if err != nil {
			log.Printf("location store disabled: addr=%s err=%v", cfg.RedisAddr, err)
			store = nil
		} else {
			sinks = append(sinks, store)
		}
	}

	// The hub reads the roster from the controller it is registered with.
	var controller *services.RouteController
	hub := live.NewHub(func() domain.Roster { return controller.Roster() })
	sinks = append(sinks, hub)

	controller = services.NewRouteController(
		services.WithTickInterval(cfg.TickInterval),
		services.WithPositionSinks(sinks...),
	)

	// A nil *RedisLocationStore must not become a non-nil interface.
	var locs ports.LocationStore
	if store != nil {
		locs = store
	}

	ctx := context.Background()
	consumers, err := services.LoadRoster(ctx, repo, locs)
	if err != nil {
		log.Fatal(err)
	}
	if _, err := controller.Load(ctx, cfg.Origin, consumers); err != nil {
		log.Fatal(err)
	}

	router := api.NewRouter(api.Deps{
		Controller:    controller,
		Hub:           hub,
		Repo:          repo,
		Locations:     locs,
		DefaultOrigin: cfg.Origin,
	})

	log.Printf("Server listening addr=:%s db=%s origin=%.4f,%.4f tick=%s", cfg.Port, cfg.DBDriver, cfg.Origin.Lat, cfg.Origin.Lon, cfg.TickInterval)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	sig := <-shutdown
	log.Printf("Received signal %v, starting graceful shutdown", sig)

	controller.StopSimulation()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("could not gracefully shutdown the server: %v", err)
	}
	log.Println("Server stopped")
}

func initAndSeed(conn *sql.DB, driver, seedPath string) error {
	ctx := context.Background()
	if err := repositories.InitSchema(ctx, conn); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	if _, err := os.Stat(seedPath); errors.Is(err, os.ErrNotExist) {
		log.Printf("seed file not found, skipping: path=%s", seedPath)
		return nil
	}
	if err := repositories.SeedFromJSON(ctx, conn, driver, seedPath); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	return nil
}

func openLocationStore(addr string, ttl time.Duration) (*locations.RedisLocationStore, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("open location store: ping %s: %w", addr, err)
	}

	return locations.NewRedisLocationStore(client, ttl)
}
